package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateServiceRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=2"`
	Phone        string `json:"phone"         validate:"required,min=7,max=20"`
	Address      string `json:"address"`

	DeviceClass string              `json:"device_class" validate:"required,oneof=laptop pc printer monitor"`
	Brand       string              `json:"brand"        validate:"required"`
	Model       string              `json:"model"`
	Symptom     string              `json:"symptom"`
	Details     model.DeviceDetails `json:"details"`

	// Cost may be deferred at intake ("decide later") — send cost_pending
	// instead of a figure.
	Cost        *decimal.Decimal `json:"cost"`
	CostPending bool             `json:"cost_pending"`
}

// UpdateServiceRequest is a partial patch: nil fields are left untouched.
// Status accepts enum values and legacy free-text forms ("Entregado", …).
type UpdateServiceRequest struct {
	CustomerName *string              `json:"customer_name"`
	Phone        *string              `json:"phone"`
	Address      *string              `json:"address"`
	Model        *string              `json:"model"`
	Symptom      *string              `json:"symptom"`
	Details      *model.DeviceDetails `json:"details"`
	Cost         *decimal.Decimal     `json:"cost"`
	CostPending  *bool                `json:"cost_pending"`
	Billing      *model.Billing       `json:"billing"`
	Status       *string              `json:"status"`
	// Folio is accepted only so a mismatch can be rejected explicitly.
	Folio *string `json:"folio"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CreateServiceResponse struct {
	ID    string `json:"id"`
	Folio string `json:"folio"`
}
