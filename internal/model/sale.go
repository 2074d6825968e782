package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the POS. There is no gateway; card and
// transfer amounts are keyed in manually with a reference.
const (
	PayCash     = "cash"
	PayCard     = "card"
	PayTransfer = "transfer"
	PayMixed    = "mixed"
)

// SaleItem is one line of a sale: either a free-form catalog line or a
// service record being collected on (ServiceRecordID / ServiceFolio set).
type SaleItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SaleID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"sale_id"`
	Description     string          `gorm:"not null" json:"description"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	ServiceRecordID *uuid.UUID      `gorm:"type:uuid;index" json:"service_record_id,omitempty"`
	ServiceFolio    *string         `json:"service_folio,omitempty"`
}

// Sale is an immutable record of one POS transaction. Created once at
// checkout and never mutated; the day ledger is derived from DayKey.
type Sale struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DayKey string    `gorm:"type:varchar(10);index;not null" json:"day_key"` // YYYY-MM-DD

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	Method         string          `gorm:"type:varchar(20);not null" json:"method"`
	CashAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cash_amount"`
	CardAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"card_amount"`
	TransferAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"transfer_amount"`
	CardRef        string          `json:"card_ref,omitempty"`

	OperatorID    string `gorm:"index" json:"operator_id"`
	OperatorEmail string `json:"operator_email"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`

	CreatedAt time.Time `json:"created_at"`
}

// Units returns the total item quantity across all lines.
func (s *Sale) Units() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
