package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

// SaleItemRequest is one cart line. When Folio is set the line collects on a
// service record: description and price come from the record itself.
type SaleItemRequest struct {
	Folio       *string         `json:"folio"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"   validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"min=0"`
}

type PaymentRequest struct {
	Method   string          `json:"method" validate:"required,oneof=cash card transfer mixed"`
	Cash     decimal.Decimal `json:"cash"     validate:"min=0"`
	Card     decimal.Decimal `json:"card"     validate:"min=0"`
	Transfer decimal.Decimal `json:"transfer" validate:"min=0"`
	CardRef  string          `json:"card_ref"`
}

type CheckoutRequest struct {
	Items   []SaleItemRequest `json:"items"   validate:"required,min=1,dive"`
	Payment PaymentRequest    `json:"payment" validate:"required"`
}

type SaleResponse struct {
	Sale   *model.Sale     `json:"sale"`
	Change decimal.Decimal `json:"change"`
	// DeliveredFolios lists service records this checkout moved to delivered.
	DeliveredFolios []string `json:"delivered_folios,omitempty"`
}
