package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lechug1122/LuisITRepair/internal/status"
)

// DeviceClass is the fixed set of device kinds the shop takes in.
type DeviceClass string

const (
	DeviceLaptop  DeviceClass = "laptop"
	DevicePC      DeviceClass = "pc"
	DevicePrinter DeviceClass = "printer"
	DeviceMonitor DeviceClass = "monitor"
)

// LaptopPCDetails covers both laptop and desktop intakes.
type LaptopPCDetails struct {
	CPU            string `json:"cpu"`
	RAM            string `json:"ram"`
	Disk           string `json:"disk"`
	ScreenState    string `json:"screen_state"`
	KeyboardState  string `json:"keyboard_state"`
	MouseState     string `json:"mouse_state"`
	Works          string `json:"works"`
	PowersOn       string `json:"powers_on"`
	DevicePassword string `json:"device_password"`
}

type PrinterDetails struct {
	PrinterType string `json:"printer_type"`
	Prints      string `json:"prints"`
	Condition   string `json:"condition"`
}

type MonitorDetails struct {
	SizeInches string `json:"size_inches"`
	Colors     string `json:"colors"`
	Condition  string `json:"condition"`
}

// DeviceDetails is a tagged union selected by the record's DeviceClass.
// Exactly one branch is expected to be non-nil for a complete intake.
type DeviceDetails struct {
	LaptopPC *LaptopPCDetails `json:"laptop_pc,omitempty"`
	Printer  *PrinterDetails  `json:"printer,omitempty"`
	Monitor  *MonitorDetails  `json:"monitor,omitempty"`
}

// Pending reports whether the class-specific characteristics are still
// missing. The switch is exhaustive over DeviceClass so adding a class
// without a details branch fails review, not production.
func (d DeviceDetails) Pending(class DeviceClass) bool {
	switch class {
	case DeviceLaptop, DevicePC:
		return d.LaptopPC == nil
	case DevicePrinter:
		return d.Printer == nil
	case DeviceMonitor:
		return d.Monitor == nil
	}
	return true
}

// BillingLine is one line of a formal receipt.
type BillingLine struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Billing is stamped on a record by the POS when the service is collected.
// Its presence with a method and a positive total is the precondition for
// the delivered transition.
type Billing struct {
	Method string          `json:"method"`
	Lines  []BillingLine   `json:"lines"`
	Notes  string          `json:"notes"`
	Total  decimal.Decimal `json:"total"`
}

// Paid reports whether the billing satisfies the delivered precondition.
func (b *Billing) Paid() bool {
	return b != nil && b.Method != "" && b.Total.IsPositive()
}

// ServiceRecord is one repair intake. Customer fields are a denormalized
// copy taken at intake time. Once Locked, only the administrative override
// path may mutate the record.
type ServiceRecord struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Folio string    `gorm:"uniqueIndex;not null" json:"folio"`

	CustomerName string `gorm:"not null" json:"customer_name"`
	Phone        string `gorm:"index;not null" json:"phone"`
	Address      string `json:"address"`

	DeviceClass DeviceClass   `gorm:"type:varchar(20);not null" json:"device_class"`
	Brand       string        `gorm:"not null" json:"brand"`
	Model       string        `json:"model"`
	Symptom     string        `json:"symptom"`
	Details     DeviceDetails `gorm:"serializer:json" json:"details"`

	// Cost is nil while the quote is deferred ("decide later").
	Cost        *decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost"`
	CostPending bool             `gorm:"not null;default:false" json:"cost_pending"`
	Billing     *Billing         `gorm:"serializer:json" json:"billing,omitempty"`
	DeliveredAt *time.Time       `json:"delivered_at"`

	Status       status.Status `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Locked       bool          `gorm:"not null;default:false" json:"locked"`
	LockedReason *string       `gorm:"type:varchar(20)" json:"locked_reason,omitempty"`

	// DedupeKey = last-10 phone digits | device class | brand | model,
	// all normalized. See service.DedupeKey.
	DedupeKey string `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CostValue returns the cost or zero when the quote is still deferred.
func (r *ServiceRecord) CostValue() decimal.Decimal {
	if r.Cost == nil {
		return decimal.Zero
	}
	return *r.Cost
}
