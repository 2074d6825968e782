package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense kinds mirror the receipt types the shop tracks.
const (
	ExpenseInvoice    = "invoice"
	ExpenseSalesSlip  = "sales_slip"
	ExpenseCreditNote = "credit_note"
	ExpenseDebitNote  = "debit_note"
	ExpenseOther      = "other"
)

// ExpenseEntry is one outflow recorded against a calendar day. Entries can
// be edited or removed until the day's register closes; at close time they
// are merged into the report's withdrawals.
type ExpenseEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DayKey      string          `gorm:"type:varchar(10);index;not null" json:"day_key"`
	Kind        string          `gorm:"type:varchar(20);not null;default:'other'" json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Operator    string          `json:"operator"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
