package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates a day's sales, split by payment method. Every
// figure is rounded to 2 decimals at the point of storage.
type SalesSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
	Other    decimal.Decimal `json:"other"`
	Tickets  int             `json:"tickets"`
	Units    int             `json:"units"`
}

// Denomination is one counted row of the closing drawer count.
type Denomination struct {
	FaceValue decimal.Decimal `json:"face_value"`
	Quantity  int             `json:"quantity"`
}

// Withdrawal is cash taken out of the drawer during the day.
type Withdrawal struct {
	Kind     string          `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
	Operator string          `json:"operator"`
}

// Operator identifies who opened or closed the register. Supplied by the
// auth collaborator; the core does not re-verify it.
type Operator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CashSessionReport is the one-per-day register reconciliation document,
// keyed by the local calendar day. Once Closed it is immutable; re-closing
// returns the stored report unchanged.
type CashSessionReport struct {
	DayKey string `gorm:"primaryKey;type:varchar(10)" json:"day_key"` // YYYY-MM-DD
	Closed bool   `gorm:"not null;default:false" json:"closed"`

	OpeningFloat decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"opening_float"`
	Summary      SalesSummary    `gorm:"serializer:json" json:"summary"`

	Denominations    []Denomination  `gorm:"serializer:json" json:"denominations"`
	Withdrawals      []Withdrawal    `gorm:"serializer:json" json:"withdrawals"`
	WithdrawalsTotal decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"withdrawals_total"`

	// CountedCash and Discrepancy stay nil when no manual count exists
	// (system-closed days). Discrepancy = counted cash − cash sales.
	CountedCash         *decimal.Decimal `gorm:"type:decimal(10,2)" json:"counted_cash"`
	Discrepancy         *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discrepancy"`
	ExpectedClosingCash decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"expected_closing_cash"`

	Notes   string   `json:"notes"`
	SaleIDs []string `gorm:"serializer:json" json:"sale_ids"`

	OpenedAt *time.Time `json:"opened_at"`
	OpenedBy *Operator  `gorm:"serializer:json" json:"opened_by,omitempty"`

	ClosedAt       *time.Time `json:"closed_at"`
	ClosedBy       *Operator  `gorm:"serializer:json" json:"closed_by,omitempty"`
	ClosedBySystem bool       `gorm:"not null;default:false" json:"closed_by_system"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CashSessionReport) TableName() string { return "cash_session_reports" }
