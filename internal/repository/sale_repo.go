package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

// SaleRepository only creates and reads — sales are immutable.
type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListByDay(ctx context.Context, dayKey string) ([]model.Sale, error)
	// ListAll feeds the auto-close sweeper, which buckets sales by day key.
	ListAll(ctx context.Context) ([]model.Sale, error)
	ExistsForRecord(ctx context.Context, recordID uuid.UUID) (bool, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) ListByDay(ctx context.Context, dayKey string) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("day_key = ?", dayKey).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListAll(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ExistsForRecord(ctx context.Context, recordID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SaleItem{}).
		Where("service_record_id = ?", recordID).
		Count(&count).Error
	return count > 0, err
}
