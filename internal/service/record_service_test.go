package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/status"
)

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales []*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo { return &fakeSaleRepo{} }

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	s.CreatedAt = time.Now()
	r.sales = append(r.sales, s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) ListByDay(_ context.Context, dayKey string) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.DayKey == dayKey {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) ListAll(_ context.Context) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSaleRepo) ExistsForRecord(_ context.Context, recordID uuid.UUID) (bool, error) {
	for _, s := range r.sales {
		for _, it := range s.Items {
			if it.ServiceRecordID != nil && *it.ServiceRecordID == recordID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func seedRecord(records *fakeRecordRepo, st status.Status) *model.ServiceRecord {
	cost := decimal.NewFromInt(150)
	rec := &model.ServiceRecord{
		ID:           uuid.New(),
		Folio:        "len29082601",
		CustomerName: "Ana Torres",
		Phone:        "4421234567",
		DeviceClass:  model.DeviceLaptop,
		Brand:        "Lenovo",
		Model:        "IdeaPad 3",
		Cost:         &cost,
		Status:       st,
		Locked:       st.IsTerminal(),
	}
	if rec.Locked {
		reason := string(st)
		rec.LockedReason = &reason
	}
	records.records[rec.ID] = rec
	return rec
}

func strPtr(s string) *string { return &s }

func newTestRecordService(records *fakeRecordRepo, sales *fakeSaleRepo) RecordService {
	return NewRecordService(records, sales, nil)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestUpdateLockedRecordRejected(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Delivered)

	// Any patch at all, even a harmless one, bounces off the lock.
	_, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		CustomerName: strPtr("Ana T."),
	}, false)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestUpdateLockedRecordAdminBypass(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Delivered)
	rec.DeliveredAt = func() *time.Time { now := time.Now(); return &now }()

	// The administrative correction path may pull a record back out of
	// delivered; the lock and the delivery stamp are both cleared.
	got, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("ready"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, status.Ready, got.Status)
	assert.False(t, got.Locked)
	assert.Nil(t, got.LockedReason)
	assert.Nil(t, got.DeliveredAt)
}

func TestUpdateFolioImmutable(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Pending)

	_, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Folio: strPtr("hp29082601"),
	}, false)
	assert.ErrorIs(t, err, ErrImmutableFolio)

	// Echoing the current folio back is fine.
	_, err = svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Folio: strPtr(rec.Folio),
	}, false)
	assert.NoError(t, err)
}

func TestUpdateInvalidStatusValue(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Pending)

	_, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("exploded"),
	}, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateInvalidTransition(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Pending)

	// pending cannot jump straight to delivered.
	_, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("delivered"),
	}, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateLegacyStatusText(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Pending)

	got, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("Cancelado"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, status.Cancelled, got.Status)
	assert.True(t, got.Locked)
	require.NotNil(t, got.LockedReason)
	assert.Equal(t, "cancelled", *got.LockedReason)
}

func TestDeliveredRequiresRecordedSale(t *testing.T) {
	records := newFakeRecordRepo()
	sales := newFakeSaleRepo()
	svc := newTestRecordService(records, sales)
	rec := seedRecord(records, status.Ready)
	ctx := context.Background()

	// No billing and no POS sale → the transition is blocked.
	_, err := svc.Update(ctx, rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("delivered"),
	}, false)
	assert.ErrorIs(t, err, ErrNotPaid)

	// Record the sale at the POS, then the same patch goes through.
	recID := rec.ID
	sales.sales = append(sales.sales, &model.Sale{
		ID:     uuid.New(),
		DayKey: DayKey(time.Now()),
		Items:  []model.SaleItem{{ServiceRecordID: &recID, Quantity: 1}},
	})

	got, err := svc.Update(ctx, rec.ID, dto.UpdateServiceRequest{
		Status: strPtr("delivered"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, status.Delivered, got.Status)
	assert.True(t, got.Locked)
	require.NotNil(t, got.DeliveredAt)
	assert.WithinDuration(t, time.Now(), *got.DeliveredAt, time.Minute)
}

func TestUpdateCostAndCostPending(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.InReview)
	rec.Cost = nil
	rec.CostPending = true
	ctx := context.Background()

	cost := decimal.NewFromInt(480)
	got, err := svc.Update(ctx, rec.ID, dto.UpdateServiceRequest{Cost: &cost}, false)
	require.NoError(t, err)
	require.NotNil(t, got.Cost)
	assert.True(t, got.Cost.Equal(cost))
	assert.False(t, got.CostPending)

	// Deferring the quote again drops the figure.
	pending := true
	got, err = svc.Update(ctx, rec.ID, dto.UpdateServiceRequest{CostPending: &pending}, false)
	require.NoError(t, err)
	assert.Nil(t, got.Cost)
	assert.True(t, got.CostPending)
}

func TestUpdatePhoneRecomputesDedupeKey(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	rec := seedRecord(records, status.Pending)
	rec.DedupeKey = DedupeKey(rec.Phone, rec.DeviceClass, rec.Brand, rec.Model)
	before := rec.DedupeKey

	got, err := svc.Update(context.Background(), rec.ID, dto.UpdateServiceRequest{
		Phone: strPtr("442-999-0000"),
	}, false)
	require.NoError(t, err)
	assert.NotEqual(t, before, got.DedupeKey)
	assert.Equal(t, DedupeKey("442-999-0000", rec.DeviceClass, rec.Brand, rec.Model), got.DedupeKey)
}

func TestUpdateUnknownRecord(t *testing.T) {
	svc := newTestRecordService(newFakeRecordRepo(), newFakeSaleRepo())
	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateServiceRequest{}, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeliverTx(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())
	now := time.Now()

	rec := seedRecord(records, status.Ready)
	billing := model.Billing{Method: model.PayCash, Total: decimal.NewFromInt(150)}
	require.NoError(t, svc.DeliverTx(nil, rec, billing, now))
	assert.Equal(t, status.Delivered, rec.Status)
	assert.True(t, rec.Locked)
	require.NotNil(t, rec.DeliveredAt)
	assert.Equal(t, now, *rec.DeliveredAt)

	// Locked records are never re-delivered.
	err := svc.DeliverTx(nil, rec, billing, now)
	assert.ErrorIs(t, err, ErrLocked)

	// A record still in service cannot be delivered even with billing.
	repairing := seedRecord(records, status.Repairing)
	err = svc.DeliverTx(nil, repairing, billing, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Billing without a positive total fails the paid check.
	ready := seedRecord(records, status.Ready)
	err = svc.DeliverTx(nil, ready, model.Billing{Method: model.PayCash}, now)
	assert.ErrorIs(t, err, ErrNotPaid)
}

func TestIsSaleablePredicate(t *testing.T) {
	records := newFakeRecordRepo()
	svc := newTestRecordService(records, newFakeSaleRepo())

	ready := seedRecord(records, status.Ready)
	assert.True(t, svc.IsSaleable(ready))

	noCost := seedRecord(records, status.Ready)
	noCost.Cost = nil
	assert.False(t, svc.IsSaleable(noCost))

	pending := seedRecord(records, status.Pending)
	assert.False(t, svc.IsSaleable(pending))

	delivered := seedRecord(records, status.Delivered)
	assert.False(t, svc.IsSaleable(delivered))
}
