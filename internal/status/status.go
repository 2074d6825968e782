// Package status owns the service-record lifecycle: the status enum, the
// mapping table for legacy free-text values, the transition graph and the
// terminal/saleable predicates. Nothing outside this package compares raw
// status strings.
package status

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Status string

const (
	Pending      Status = "pending"
	InReview     Status = "in_review"
	Diagnosing   Status = "diagnosing"
	AwaitingPart Status = "awaiting_part"
	Repairing    Status = "repairing"
	Ready        Status = "ready"
	Finalized    Status = "finalized"
	Delivered    Status = "delivered"
	Cancelled    Status = "cancelled"
	Unrepairable Status = "unrepairable"
)

// legacyValues maps normalized free-text status strings (the values the old
// Firestore documents carry, mostly Spanish) onto the enum. Built once; call
// sites never re-derive normalization rules.
var legacyValues = map[string]Status{
	"pendiente":               Pending,
	"revision":                InReview,
	"en_revision":             InReview,
	"diagnostico":             Diagnosing,
	"reparacion":              Repairing,
	"en_reparacion":           Repairing,
	"trabajando":              Repairing,
	"espera_refaccion":        AwaitingPart,
	"en_espera_de_refaccion":  AwaitingPart,
	"listo":                   Ready,
	"finalizado":              Finalized,
	"entregado":               Delivered,
	"cancelado":               Cancelled,
	"no_reparable":            Unrepairable,
	string(Pending):           Pending,
	string(InReview):          InReview,
	string(Diagnosing):        Diagnosing,
	string(AwaitingPart):      AwaitingPart,
	string(Repairing):         Repairing,
	string(Ready):             Ready,
	string(Finalized):         Finalized,
	string(Delivered):         Delivered,
	string(Cancelled):         Cancelled,
	string(Unrepairable):      Unrepairable,
}

// transitions is the allowed next-status set per current status. Terminal
// states have no entry: once reached, every transition is rejected (the
// administrative leave-delivered correction bypasses this table).
var transitions = map[Status][]Status{
	Pending:      {InReview, Cancelled},
	InReview:     {Diagnosing, AwaitingPart, Repairing, Cancelled, Unrepairable},
	Diagnosing:   {AwaitingPart, Repairing, Ready, Finalized, Cancelled, Unrepairable},
	AwaitingPart: {Diagnosing, Repairing, Ready, Finalized, Cancelled, Unrepairable},
	Repairing:    {Diagnosing, AwaitingPart, Ready, Finalized, Cancelled, Unrepairable},
	Ready:        {Finalized, Delivered, Cancelled, Unrepairable},
	Finalized:    {Ready, Delivered, Cancelled, Unrepairable},
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips accents and squashes whitespace into
// underscores. Used for legacy status parsing and for the case/accent
// insensitive comparisons in duplicate detection.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if out, _, err := transform.String(accentStripper, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastSpace = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Parse resolves a raw status string (enum value or legacy free text) to the
// enum. ok is false for anything the mapping table does not know.
func Parse(raw string) (Status, bool) {
	s, ok := legacyValues[Normalize(raw)]
	return s, ok
}

// IsTerminal reports whether s locks the record for good.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Unrepairable
}

// TerminalValues returns the terminal statuses as strings for SQL IN clauses.
func TerminalValues() []string {
	return []string{string(Delivered), string(Cancelled), string(Unrepairable)}
}

// CanTransition reports whether from → to is a legal step in the lifecycle.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// saleableStatuses are the states in which the POS may collect on a record.
var saleableStatuses = map[Status]bool{
	Ready:        true,
	Cancelled:    true,
	Unrepairable: true,
}

// IsSaleable reports whether a record in status s with the given cost can be
// added to a POS cart. Delivered records are never saleable again; records
// still in service or without a positive cost are rejected.
func IsSaleable(s Status, cost decimal.Decimal) bool {
	return saleableStatuses[s] && cost.IsPositive()
}
