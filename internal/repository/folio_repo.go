package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

type FolioRepository interface {
	// NextSequenceTx atomically increments and returns the counter for the
	// (brand slug, day) pair. Must be called inside the intake transaction:
	// the counter row is the serialization point for folio minting.
	NextSequenceTx(tx *gorm.DB, brandSlug, dayKey string) (int, error)
	FindIndexEntry(ctx context.Context, folio string) (*model.FolioIndexEntry, error)
	CreateIndexEntryTx(tx *gorm.DB, e *model.FolioIndexEntry) error
	FindIndexEntryTx(tx *gorm.DB, folio string) (*model.FolioIndexEntry, error)
}

type folioRepo struct{ db *gorm.DB }

func NewFolioRepository(db *gorm.DB) FolioRepository { return &folioRepo{db: db} }

func (r *folioRepo) NextSequenceTx(tx *gorm.DB, brandSlug, dayKey string) (int, error) {
	// Single-statement upsert so two racing intakes serialize on the row
	// lock and never read the same sequence.
	var seq int
	err := tx.Raw(`
		INSERT INTO folio_counters (brand_slug, day_key, seq, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (brand_slug, day_key)
		DO UPDATE SET seq = folio_counters.seq + 1, updated_at = NOW()
		RETURNING seq`, brandSlug, dayKey).Scan(&seq).Error
	return seq, err
}

func (r *folioRepo) FindIndexEntry(ctx context.Context, folio string) (*model.FolioIndexEntry, error) {
	var e model.FolioIndexEntry
	err := r.db.WithContext(ctx).First(&e, "folio = ?", folio).Error
	return &e, err
}

func (r *folioRepo) FindIndexEntryTx(tx *gorm.DB, folio string) (*model.FolioIndexEntry, error) {
	var e model.FolioIndexEntry
	err := tx.First(&e, "folio = ?", folio).Error
	return &e, err
}

func (r *folioRepo) CreateIndexEntryTx(tx *gorm.DB, e *model.FolioIndexEntry) error {
	return tx.Create(e).Error
}
