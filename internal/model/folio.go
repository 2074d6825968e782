package model

import (
	"time"

	"github.com/google/uuid"
)

// FolioIndexEntry maps folio → record id so lookups are a point read instead
// of a table scan. Created exactly once, in the same transaction as the
// record it describes, and never updated — folio changes are rejected.
type FolioIndexEntry struct {
	Folio     string    `gorm:"primaryKey" json:"folio"`
	RecordID  uuid.UUID `gorm:"type:uuid;not null" json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FolioIndexEntry) TableName() string { return "folio_index" }

// FolioCounter holds the monotonic sequence for one (brand slug, day) pair.
// Incremented inside the intake transaction; rows are kept forever for audit.
type FolioCounter struct {
	BrandSlug string    `gorm:"primaryKey;type:varchar(3)" json:"brand_slug"`
	DayKey    string    `gorm:"primaryKey;type:varchar(6)" json:"day_key"` // ddmmyy
	Seq       int       `gorm:"not null;default:0" json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FolioCounter) TableName() string { return "folio_counters" }
