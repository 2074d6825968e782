package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

type CashReportRepository interface {
	FindByDay(ctx context.Context, dayKey string) (*model.CashSessionReport, error)
	// Upsert merges the report for its day key — the close and the sweeper
	// both converge on one document per day.
	Upsert(ctx context.Context, rep *model.CashSessionReport) error
	List(ctx context.Context) ([]model.CashSessionReport, error)
}

type cashReportRepo struct{ db *gorm.DB }

func NewCashReportRepository(db *gorm.DB) CashReportRepository {
	return &cashReportRepo{db: db}
}

func (r *cashReportRepo) FindByDay(ctx context.Context, dayKey string) (*model.CashSessionReport, error) {
	var rep model.CashSessionReport
	err := r.db.WithContext(ctx).First(&rep, "day_key = ?", dayKey).Error
	return &rep, err
}

func (r *cashReportRepo) Upsert(ctx context.Context, rep *model.CashSessionReport) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_key"}},
			UpdateAll: true,
		}).
		Create(rep).Error
}

func (r *cashReportRepo) List(ctx context.Context) ([]model.CashSessionReport, error) {
	var reps []model.CashSessionReport
	err := r.db.WithContext(ctx).Order("day_key DESC").Find(&reps).Error
	return reps, err
}
