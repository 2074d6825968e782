package status

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Entregado  ":          "entregado",
		"REVISIÓN":               "revision",
		"En   Reparación":        "en_reparacion",
		"no reparable":           "no_reparable",
		"Diagnóstico":            "diagnostico",
		"":                       "",
		"Láptop HP-15 (gris)":    "laptop_hp15_gris",
		"en_espera_de_refacción": "en_espera_de_refaccion",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestParseLegacyValues(t *testing.T) {
	cases := map[string]Status{
		"Pendiente":        Pending,
		"Revisión":         InReview,
		"en revisión":      InReview,
		"Reparación":       Repairing,
		"trabajando":       Repairing,
		"Espera Refacción": AwaitingPart,
		"Listo":            Ready,
		"Finalizado":       Finalized,
		"ENTREGADO":        Delivered,
		"cancelado":        Cancelled,
		"No Reparable":     Unrepairable,
		"ready":            Ready,
		"delivered":        Delivered,
	}
	for raw, want := range cases {
		got, ok := Parse(raw)
		require.True(t, ok, "Parse(%q)", raw)
		assert.Equal(t, want, got, "Parse(%q)", raw)
	}

	_, ok := Parse("definitely not a status")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{Pending, InReview},
		{Pending, Cancelled},
		{InReview, Diagnosing},
		{InReview, Unrepairable},
		{Diagnosing, Ready},
		{AwaitingPart, Repairing},
		{Repairing, Finalized},
		{Ready, Delivered},
		{Finalized, Delivered},
		{Finalized, Ready},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s → %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct{ from, to Status }{
		{Pending, Delivered},
		{Pending, Ready},
		{InReview, Delivered},
		{Delivered, Ready},
		{Cancelled, Pending},
		{Unrepairable, Repairing},
		{Delivered, Delivered},
	}
	for _, tc := range rejected {
		assert.False(t, CanTransition(tc.from, tc.to), "%s → %s should be rejected", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{Delivered, Cancelled, Unrepairable} {
		assert.True(t, s.IsTerminal(), "%s", s)
	}
	for _, s := range []Status{Pending, InReview, Diagnosing, AwaitingPart, Repairing, Ready, Finalized} {
		assert.False(t, s.IsTerminal(), "%s", s)
	}
}

func TestIsSaleable(t *testing.T) {
	price := decimal.NewFromInt(150)

	// Collectable statuses with a positive cost.
	assert.True(t, IsSaleable(Ready, price))
	assert.True(t, IsSaleable(Cancelled, price))
	assert.True(t, IsSaleable(Unrepairable, price))

	// Never saleable regardless of cost.
	assert.False(t, IsSaleable(Delivered, price))
	assert.False(t, IsSaleable(Pending, price))
	assert.False(t, IsSaleable(Repairing, price))

	// Zero or missing cost blocks the sale even in a collectable status.
	assert.False(t, IsSaleable(Ready, decimal.Zero))
	assert.False(t, IsSaleable(Unrepairable, decimal.NewFromInt(-5)))
}
