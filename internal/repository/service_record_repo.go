package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/status"
)

type ServiceRecordRepository interface {
	CreateTx(tx *gorm.DB, r *model.ServiceRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error)
	// FindByFolioScan is the legacy fallback: a filtered scan on the folio
	// column for records that predate the folio index. Never used for writes.
	FindByFolioScan(ctx context.Context, folio string) (*model.ServiceRecord, error)
	FindByDedupeKey(ctx context.Context, key string) ([]model.ServiceRecord, error)
	FindByPhone(ctx context.Context, phone string) ([]model.ServiceRecord, error)
	ListPending(ctx context.Context) ([]model.ServiceRecord, error)
	ListHistory(ctx context.Context) ([]model.ServiceRecord, error)
	Save(ctx context.Context, r *model.ServiceRecord) error
	SaveTx(tx *gorm.DB, r *model.ServiceRecord) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type serviceRecordRepo struct{ db *gorm.DB }

func NewServiceRecordRepository(db *gorm.DB) ServiceRecordRepository {
	return &serviceRecordRepo{db: db}
}

func (r *serviceRecordRepo) DB() *gorm.DB { return r.db }

func (r *serviceRecordRepo) CreateTx(tx *gorm.DB, rec *model.ServiceRecord) error {
	return tx.Create(rec).Error
}

func (r *serviceRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error) {
	var rec model.ServiceRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *serviceRecordRepo) FindByFolioScan(ctx context.Context, folio string) (*model.ServiceRecord, error) {
	var rec model.ServiceRecord
	err := r.db.WithContext(ctx).Where("folio = ?", folio).First(&rec).Error
	return &rec, err
}

func (r *serviceRecordRepo) FindByDedupeKey(ctx context.Context, key string) ([]model.ServiceRecord, error) {
	var recs []model.ServiceRecord
	err := r.db.WithContext(ctx).Where("dedupe_key = ?", key).Find(&recs).Error
	return recs, err
}

func (r *serviceRecordRepo) FindByPhone(ctx context.Context, phone string) ([]model.ServiceRecord, error) {
	var recs []model.ServiceRecord
	err := r.db.WithContext(ctx).Where("phone = ?", phone).Find(&recs).Error
	return recs, err
}

// ListPending returns the in-shop board: every record whose status is not
// terminal. Terminal records move to the history listing.
func (r *serviceRecordRepo) ListPending(ctx context.Context) ([]model.ServiceRecord, error) {
	var recs []model.ServiceRecord
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", status.TerminalValues()).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *serviceRecordRepo) ListHistory(ctx context.Context) ([]model.ServiceRecord, error) {
	var recs []model.ServiceRecord
	err := r.db.WithContext(ctx).
		Where("status IN ?", status.TerminalValues()).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *serviceRecordRepo) Save(ctx context.Context, rec *model.ServiceRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *serviceRecordRepo) SaveTx(tx *gorm.DB, rec *model.ServiceRecord) error {
	return tx.Save(rec).Error
}
