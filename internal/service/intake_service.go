package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/repository"
	"github.com/lechug1122/LuisITRepair/internal/status"
)

type IntakeService interface {
	// Create runs duplicate detection, mints a folio and persists the record
	// plus its folio index entry in one transaction.
	Create(ctx context.Context, req dto.CreateServiceRequest) (*dto.CreateServiceResponse, error)
	// LookupByFolio resolves via the folio index first; the full-scan
	// fallback only covers records that predate the index.
	LookupByFolio(ctx context.Context, folio string) (*model.ServiceRecord, error)
	FindActiveDuplicate(ctx context.Context, req dto.CreateServiceRequest) (*model.ServiceRecord, error)
	ListPending(ctx context.Context) ([]model.ServiceRecord, error)
	ListHistory(ctx context.Context) ([]model.ServiceRecord, error)
}

type intakeService struct {
	records repository.ServiceRecordRepository
	folios  repository.FolioRepository
}

func NewIntakeService(records repository.ServiceRecordRepository, folios repository.FolioRepository) IntakeService {
	return &intakeService{records: records, folios: folios}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Folio minting ─────────────────────────────────────────────────────────────

// BrandSlug is the first 3 letters of the trimmed, lowercased brand,
// falling back to "srv" when the brand is empty.
func BrandSlug(brand string) string {
	s := strings.ToLower(strings.TrimSpace(brand))
	runes := []rune(s)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	if len(runes) == 0 {
		return "srv"
	}
	return string(runes)
}

// folioBase builds the date part: <slug><dd><mm><yy>. The wall clock is read
// outside the transaction; the counter key, not the date, is the
// serialization point, so a midnight race is harmless.
func folioBase(brand string, now time.Time) (slug, dayKey, base string) {
	slug = BrandSlug(brand)
	dayKey = now.Format("020106")
	return slug, dayKey, slug + dayKey
}

// ── DedupeKey ─────────────────────────────────────────────────────────────────

// phoneTail keeps the last 10 digits of a phone number, ignoring formatting.
func phoneTail(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// DedupeKey derives the normalized composite key used to spot duplicate
// intakes: phone tail, device class, brand and model, accent/case folded.
func DedupeKey(phone string, class model.DeviceClass, brand, mdl string) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		phoneTail(phone), class, status.Normalize(brand), status.Normalize(mdl))
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *intakeService) Create(ctx context.Context, req dto.CreateServiceRequest) (*dto.CreateServiceResponse, error) {
	if dup, err := s.FindActiveDuplicate(ctx, req); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, &DuplicateServiceError{ExistingFolio: dup.Folio}
	}

	class := model.DeviceClass(req.DeviceClass)
	now := time.Now()
	slug, dayKey, base := folioBase(req.Brand, now)

	cost := req.Cost
	if req.CostPending {
		cost = nil
	}

	rec := &model.ServiceRecord{
		ID:           uuid.New(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		DeviceClass:  class,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Symptom:      strings.TrimSpace(req.Symptom),
		Details:      req.Details,
		Cost:         cost,
		CostPending:  req.CostPending,
		Status:       status.Pending,
		DedupeKey:    DedupeKey(req.Phone, class, req.Brand, req.Model),
	}

	txErr := runTx(ctx, s.records.DB(), func(tx *gorm.DB) error {
		seq, err := s.folios.NextSequenceTx(tx, slug, dayKey)
		if err != nil {
			return fmt.Errorf("folio counter: %w", err)
		}
		rec.Folio = fmt.Sprintf("%s%02d", base, seq)

		// The counter makes collisions astronomically rare, but counters and
		// minting are separate operations; this read closes the TOCTOU window.
		if _, err := s.folios.FindIndexEntryTx(tx, rec.Folio); err == nil {
			return ErrDuplicateFolio
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := s.folios.CreateIndexEntryTx(tx, &model.FolioIndexEntry{
			Folio:    rec.Folio,
			RecordID: rec.ID,
		}); err != nil {
			return err
		}
		return s.records.CreateTx(tx, rec)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.CreateServiceResponse{ID: rec.ID.String(), Folio: rec.Folio}, nil
}

// ── LookupByFolio ─────────────────────────────────────────────────────────────

func (s *intakeService) LookupByFolio(ctx context.Context, folio string) (*model.ServiceRecord, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, ErrMissingFolio
	}

	entry, err := s.folios.FindIndexEntry(ctx, folio)
	switch {
	case err == nil:
		rec, err := s.records.FindByID(ctx, entry.RecordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return rec, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Pre-index records only. New writes always create an index entry.
		rec, err := s.records.FindByFolioScan(ctx, folio)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return rec, nil
	default:
		return nil, err
	}
}

func (s *intakeService) ListPending(ctx context.Context) ([]model.ServiceRecord, error) {
	return s.records.ListPending(ctx)
}

func (s *intakeService) ListHistory(ctx context.Context) ([]model.ServiceRecord, error) {
	return s.records.ListHistory(ctx)
}

// ── Duplicate detection ───────────────────────────────────────────────────────

// FindActiveDuplicate returns a non-terminal record describing the same
// device for the same customer, or nil. A match with a different symptom
// description counts as a second legitimate repair, not a duplicate. This is
// a heuristic: a customer who changes phone numbers slips through.
func (s *intakeService) FindActiveDuplicate(ctx context.Context, req dto.CreateServiceRequest) (*model.ServiceRecord, error) {
	class := model.DeviceClass(req.DeviceClass)
	key := DedupeKey(req.Phone, class, req.Brand, req.Model)

	byKey, err := s.records.FindByDedupeKey(ctx, key)
	if err != nil {
		return nil, err
	}
	// Fallback for records created before the dedupe key existed. Broader
	// than the key (ignores device), so the field checks below still apply.
	byPhone, err := s.records.FindByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(byKey)+len(byPhone))
	merged := make([]model.ServiceRecord, 0, len(byKey)+len(byPhone))
	for _, rec := range append(byKey, byPhone...) {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		merged = append(merged, rec)
	}

	wantSymptom := status.Normalize(req.Symptom)
	for i := range merged {
		rec := &merged[i]
		if rec.Status.IsTerminal() {
			continue
		}
		if phoneTail(rec.Phone) != phoneTail(req.Phone) ||
			rec.DeviceClass != class ||
			status.Normalize(rec.Brand) != status.Normalize(req.Brand) ||
			status.Normalize(rec.Model) != status.Normalize(req.Model) {
			continue
		}
		haveSymptom := status.Normalize(rec.Symptom)
		if (haveSymptom == "" && wantSymptom == "") || haveSymptom == wantSymptom {
			return rec, nil
		}
	}
	return nil, nil
}
