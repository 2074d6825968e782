package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/model"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.ExpenseEntry) error
	ListByDay(ctx context.Context, dayKey string) ([]model.ExpenseEntry, error)
	Delete(ctx context.Context, id uuid.UUID, dayKey string) error
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) Create(ctx context.Context, e *model.ExpenseEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) ListByDay(ctx context.Context, dayKey string) ([]model.ExpenseEntry, error) {
	var entries []model.ExpenseEntry
	err := r.db.WithContext(ctx).
		Where("day_key = ?", dayKey).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID, dayKey string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND day_key = ?", id, dayKey).
		Delete(&model.ExpenseEntry{}).Error
}
