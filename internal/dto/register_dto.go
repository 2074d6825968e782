package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

type OpenRegisterRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"min=0"`
}

type DenominationRequest struct {
	FaceValue decimal.Decimal `json:"face_value" validate:"min=0"`
	Quantity  int             `json:"quantity"   validate:"min=0"`
}

type WithdrawalRequest struct {
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
	Reason string          `json:"reason"`
}

type CloseRegisterRequest struct {
	// DayKey defaults to today when empty. Closing past days manually is
	// allowed for supervisors; the sweeper handles forgotten ones anyway.
	DayKey        string                `json:"day_key" validate:"omitempty,len=10"`
	Denominations []DenominationRequest `json:"denominations" validate:"dive"`
	Withdrawals   []WithdrawalRequest   `json:"withdrawals"   validate:"dive"`
	// CountedCash is the fallback when the operator types a single counted
	// figure instead of a denomination breakdown.
	CountedCash *decimal.Decimal `json:"counted_cash"`
	Notes       string           `json:"notes"`
}

type CloseRegisterResponse struct {
	AlreadyClosed bool                     `json:"already_closed"`
	Report        *model.CashSessionReport `json:"report"`
}

type TodayReportResponse struct {
	DayKey    string                   `json:"day_key"`
	Closed    bool                     `json:"closed"`
	Report    *model.CashSessionReport `json:"report"`
	Sales     []model.Sale             `json:"sales_today"`
	Summary   model.SalesSummary       `json:"summary_today"`
	FloatOpen bool                     `json:"float_open"`
}

type ExpenseRequest struct {
	Kind        string          `json:"kind" validate:"omitempty,oneof=invoice sales_slip credit_note debit_note other"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	DayKey      string          `json:"day_key" validate:"omitempty,len=10"`
}
