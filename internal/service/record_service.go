package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/repository"
	"github.com/lechug1122/LuisITRepair/internal/status"
	"github.com/lechug1122/LuisITRepair/internal/worker"
)

type RecordService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error)
	// Update applies a partial patch under the state machine's rules. The
	// patch is rejected wholesale on any violation — no partial application.
	// admin enables the administrative correction path (leaving a terminal
	// status), which is not exposed to normal operators.
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceRequest, admin bool) (*model.ServiceRecord, error)
	// DeliverTx stamps billing and moves an unlocked record to delivered
	// inside the caller's (POS checkout) transaction.
	DeliverTx(tx *gorm.DB, rec *model.ServiceRecord, billing model.Billing, now time.Time) error
	IsSaleable(rec *model.ServiceRecord) bool
}

type recordService struct {
	records    repository.ServiceRecordRepository
	sales      repository.SaleRepository
	dispatcher *worker.Dispatcher
}

func NewRecordService(records repository.ServiceRecordRepository, sales repository.SaleRepository, dispatcher *worker.Dispatcher) RecordService {
	return &recordService{records: records, sales: sales, dispatcher: dispatcher}
}

func (s *recordService) Get(ctx context.Context, id uuid.UUID) (*model.ServiceRecord, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// IsSaleable is the predicate the POS consults before adding a record to the
// cart: collectable status and a positive cost.
func (s *recordService) IsSaleable(rec *model.ServiceRecord) bool {
	return status.IsSaleable(rec.Status, rec.CostValue())
}

func (s *recordService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateServiceRequest, admin bool) (*model.ServiceRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.Locked && !admin {
		return nil, ErrLocked
	}
	if req.Folio != nil && *req.Folio != rec.Folio {
		return nil, ErrImmutableFolio
	}

	// Resolve the status change first so a bad patch rejects before any
	// field is touched.
	var target *status.Status
	if req.Status != nil {
		parsed, ok := status.Parse(*req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		if parsed != rec.Status {
			target = &parsed
		}
	}

	if target != nil {
		if err := s.checkTransition(ctx, rec, *target, admin); err != nil {
			return nil, err
		}
	}

	applyPatch(rec, req)

	from := rec.Status
	if target != nil {
		s.applyTransition(rec, *target, time.Now())
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return nil, err
	}

	if target != nil {
		s.dispatcher.PublishStatusChange(ctx, worker.StatusChangeEvent{
			RecordID: rec.ID.String(),
			Folio:    rec.Folio,
			From:     from,
			To:       *target,
			At:       time.Now(),
		})
	}
	return rec, nil
}

func (s *recordService) checkTransition(ctx context.Context, rec *model.ServiceRecord, to status.Status, admin bool) error {
	from := rec.Status

	// Administrative correction: leaving delivered (or another terminal
	// state) bypasses the transition table.
	if from.IsTerminal() {
		if !admin {
			return ErrLocked
		}
		return nil
	}

	if !status.CanTransition(from, to) {
		return ErrInvalidTransition
	}

	if to == status.Delivered {
		// The sale must have happened through the POS first.
		if rec.Billing.Paid() {
			return nil
		}
		sold, err := s.sales.ExistsForRecord(ctx, rec.ID)
		if err != nil {
			return err
		}
		if !sold {
			return ErrNotPaid
		}
	}
	return nil
}

// applyTransition mutates status and its side effects: deliveredAt stamping
// and the terminal lock.
func (s *recordService) applyTransition(rec *model.ServiceRecord, to status.Status, now time.Time) {
	from := rec.Status
	rec.Status = to

	if to == status.Delivered {
		at := now
		rec.DeliveredAt = &at
	}
	if from == status.Delivered && to != status.Delivered {
		rec.DeliveredAt = nil
	}

	if to.IsTerminal() {
		reason := string(to)
		rec.Locked = true
		rec.LockedReason = &reason
	} else {
		rec.Locked = false
		rec.LockedReason = nil
	}
}

func applyPatch(rec *model.ServiceRecord, req dto.UpdateServiceRequest) {
	if req.CustomerName != nil {
		rec.CustomerName = *req.CustomerName
	}
	if req.Phone != nil {
		rec.Phone = *req.Phone
		rec.DedupeKey = DedupeKey(rec.Phone, rec.DeviceClass, rec.Brand, rec.Model)
	}
	if req.Address != nil {
		rec.Address = *req.Address
	}
	if req.Model != nil {
		rec.Model = *req.Model
		rec.DedupeKey = DedupeKey(rec.Phone, rec.DeviceClass, rec.Brand, rec.Model)
	}
	if req.Symptom != nil {
		rec.Symptom = *req.Symptom
	}
	if req.Details != nil {
		rec.Details = *req.Details
	}
	if req.Cost != nil {
		cost := *req.Cost
		rec.Cost = &cost
		rec.CostPending = false
	}
	if req.CostPending != nil && *req.CostPending {
		rec.Cost = nil
		rec.CostPending = true
	}
	if req.Billing != nil {
		rec.Billing = req.Billing
	}
}

func (s *recordService) DeliverTx(tx *gorm.DB, rec *model.ServiceRecord, billing model.Billing, now time.Time) error {
	if rec.Locked {
		return ErrLocked
	}
	if !status.CanTransition(rec.Status, status.Delivered) {
		return ErrInvalidTransition
	}
	rec.Billing = &billing
	if !rec.Billing.Paid() {
		return ErrNotPaid
	}
	s.applyTransition(rec, status.Delivered, now)
	return s.records.SaveTx(tx, rec)
}
