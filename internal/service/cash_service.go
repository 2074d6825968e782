package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/repository"
)

// DayKey formats a local timestamp as the calendar-day key every daily
// document is bucketed by.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

type CashService interface {
	// OpenRegister records the day's opening float. A no-op when the day
	// already has a positive float recorded.
	OpenRegister(ctx context.Context, openingFloat decimal.Decimal, op model.Operator) (*model.CashSessionReport, error)
	// CloseRegister is idempotent by day key: a second close returns the
	// stored report untouched (alreadyClosed=true) — callers needing a fresh
	// document must branch on that, never recompute.
	CloseRegister(ctx context.Context, req dto.CloseRegisterRequest, op model.Operator) (rep *model.CashSessionReport, alreadyClosed bool, err error)
	TodayReport(ctx context.Context) (*dto.TodayReportResponse, error)
	ListReports(ctx context.Context) ([]model.CashSessionReport, error)
	// EnsureOpenToday gates POS checkout: the day must have an opening
	// float and must not be closed yet.
	EnsureOpenToday(ctx context.Context) error
	// SweepStaleDays force-closes past days that have sales but no closed
	// report. Returns how many days it closed.
	SweepStaleDays(ctx context.Context) (int, error)

	AddExpense(ctx context.Context, req dto.ExpenseRequest, op model.Operator) (*model.ExpenseEntry, error)
	ListExpenses(ctx context.Context, dayKey string) ([]model.ExpenseEntry, error)
	RemoveExpense(ctx context.Context, id uuid.UUID, dayKey string) error
}

type cashService struct {
	reports  repository.CashReportRepository
	sales    repository.SaleRepository
	expenses repository.ExpenseRepository
	rdb      *redis.Client
}

func NewCashService(
	reports repository.CashReportRepository,
	sales repository.SaleRepository,
	expenses repository.ExpenseRepository,
	rdb *redis.Client,
) CashService {
	return &cashService{reports: reports, sales: sales, expenses: expenses, rdb: rdb}
}

// ── Sales summary ─────────────────────────────────────────────────────────────

// SummarizeSales aggregates a day's sales by payment method. A sale paid
// with a single method contributes its full total to that method even when
// the explicit amount was left at zero; mixed payments use the explicit
// split. Methods outside cash/card/transfer land in Other. Every figure is
// rounded to 2 decimals here, at the point of storage.
func SummarizeSales(sales []model.Sale) model.SalesSummary {
	var sum model.SalesSummary
	sum.Tickets = len(sales)

	for i := range sales {
		s := &sales[i]
		sum.Subtotal = sum.Subtotal.Add(s.Subtotal)
		sum.Tax = sum.Tax.Add(s.Tax)
		sum.Total = sum.Total.Add(s.Total)
		sum.Units += s.Units()

		cash, card, transfer := s.CashAmount, s.CardAmount, s.TransferAmount
		switch s.Method {
		case model.PayCash:
			if cash.IsZero() {
				cash = s.Total
			}
		case model.PayCard:
			if card.IsZero() {
				card = s.Total
			}
		case model.PayTransfer:
			if transfer.IsZero() {
				transfer = s.Total
			}
		case model.PayMixed:
			// explicit split
		default:
			sum.Other = sum.Other.Add(s.Total)
			continue
		}
		sum.Cash = sum.Cash.Add(cash)
		sum.Card = sum.Card.Add(card)
		sum.Transfer = sum.Transfer.Add(transfer)
	}

	sum.Subtotal = round2(sum.Subtotal)
	sum.Tax = round2(sum.Tax)
	sum.Total = round2(sum.Total)
	sum.Cash = round2(sum.Cash)
	sum.Card = round2(sum.Card)
	sum.Transfer = round2(sum.Transfer)
	sum.Other = round2(sum.Other)
	return sum
}

// ── OpenRegister ──────────────────────────────────────────────────────────────

func (s *cashService) OpenRegister(ctx context.Context, openingFloat decimal.Decimal, op model.Operator) (*model.CashSessionReport, error) {
	if openingFloat.IsNegative() {
		return nil, ErrInvalidAmount
	}
	dayKey := DayKey(time.Now())

	existing, err := s.reports.FindByDay(ctx, dayKey)
	switch {
	case err == nil:
		if existing.OpeningFloat.IsPositive() {
			return existing, nil // already opened — no-op
		}
		if existing.Closed {
			return nil, ErrRegisterClosed
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = &model.CashSessionReport{DayKey: dayKey}
	default:
		return nil, err
	}

	now := time.Now()
	existing.OpeningFloat = round2(openingFloat)
	existing.OpenedAt = &now
	existing.OpenedBy = &op

	if err := s.reports.Upsert(ctx, existing); err != nil {
		return nil, err
	}
	s.cacheRegisterState(ctx, dayKey, "open")
	return existing, nil
}

// ── CloseRegister ─────────────────────────────────────────────────────────────

func (s *cashService) CloseRegister(ctx context.Context, req dto.CloseRegisterRequest, op model.Operator) (*model.CashSessionReport, bool, error) {
	dayKey := strings.TrimSpace(req.DayKey)
	if dayKey == "" {
		dayKey = DayKey(time.Now())
	}

	existing, err := s.reports.FindByDay(ctx, dayKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err == nil && existing.Closed {
		return existing, true, nil
	}
	if existing == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		existing = &model.CashSessionReport{DayKey: dayKey}
	}

	daySales, err := s.sales.ListByDay(ctx, dayKey)
	if err != nil {
		return nil, false, err
	}
	summary := SummarizeSales(daySales)

	// Denomination count; the single counted figure is the fallback.
	denoms := make([]model.Denomination, 0, len(req.Denominations))
	denomTotal := decimal.Zero
	for _, d := range req.Denominations {
		if !d.FaceValue.IsPositive() || d.Quantity <= 0 {
			continue
		}
		denoms = append(denoms, model.Denomination{FaceValue: d.FaceValue, Quantity: d.Quantity})
		denomTotal = denomTotal.Add(d.FaceValue.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	var counted *decimal.Decimal
	switch {
	case len(denoms) > 0:
		v := round2(denomTotal)
		counted = &v
	case req.CountedCash != nil:
		v := round2(*req.CountedCash)
		counted = &v
	}

	withdrawals, total := s.collectWithdrawals(ctx, dayKey, req.Withdrawals, op)

	expected := round2(existing.OpeningFloat.Add(summary.Cash).Sub(total))

	var discrepancy *decimal.Decimal
	if counted != nil {
		// Variance against the day's cash sales only — the opening float and
		// withdrawals deliberately do not participate here (they do in
		// expectedClosingCash). Do not "fix" without product confirmation.
		v := round2(counted.Sub(summary.Cash))
		discrepancy = &v
	}

	now := time.Now()
	saleIDs := make([]string, 0, len(daySales))
	for i := range daySales {
		saleIDs = append(saleIDs, daySales[i].ID.String())
	}

	existing.Closed = true
	existing.Summary = summary
	existing.Denominations = denoms
	existing.Withdrawals = withdrawals
	existing.WithdrawalsTotal = total
	existing.CountedCash = counted
	existing.Discrepancy = discrepancy
	existing.ExpectedClosingCash = expected
	existing.Notes = strings.TrimSpace(req.Notes)
	existing.SaleIDs = saleIDs
	existing.ClosedAt = &now
	existing.ClosedBy = &op
	existing.ClosedBySystem = false

	if err := s.reports.Upsert(ctx, existing); err != nil {
		return nil, false, err
	}
	s.cacheRegisterState(ctx, dayKey, "closed")
	return existing, false, nil
}

// collectWithdrawals merges the operator-submitted withdrawals with the
// day's expense sheet, dropping non-positive amounts.
func (s *cashService) collectWithdrawals(ctx context.Context, dayKey string, reqs []dto.WithdrawalRequest, op model.Operator) ([]model.Withdrawal, decimal.Decimal) {
	out := make([]model.Withdrawal, 0, len(reqs))
	total := decimal.Zero

	for _, w := range reqs {
		if !w.Amount.IsPositive() {
			continue
		}
		kind := strings.TrimSpace(w.Kind)
		if kind == "" {
			kind = "withdrawal"
		}
		out = append(out, model.Withdrawal{
			Kind:     kind,
			Amount:   round2(w.Amount),
			Reason:   strings.TrimSpace(w.Reason),
			Operator: op.Email,
		})
		total = total.Add(w.Amount)
	}

	entries, err := s.expenses.ListByDay(ctx, dayKey)
	if err != nil {
		log.Warn().Err(err).Str("day_key", dayKey).Msg("close: could not load expense sheet")
		return out, round2(total)
	}
	for _, e := range entries {
		if !e.Amount.IsPositive() {
			continue
		}
		out = append(out, model.Withdrawal{
			Kind:     e.Kind,
			Amount:   round2(e.Amount),
			Reason:   e.Description,
			Operator: e.Operator,
		})
		total = total.Add(e.Amount)
	}
	return out, round2(total)
}

// ── TodayReport ───────────────────────────────────────────────────────────────

func (s *cashService) TodayReport(ctx context.Context) (*dto.TodayReportResponse, error) {
	dayKey := DayKey(time.Now())

	report, err := s.reports.FindByDay(ctx, dayKey)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		report = nil
	}

	daySales, err := s.sales.ListByDay(ctx, dayKey)
	if err != nil {
		return nil, err
	}

	resp := &dto.TodayReportResponse{
		DayKey:  dayKey,
		Report:  report,
		Sales:   daySales,
		Summary: SummarizeSales(daySales),
	}
	if report != nil {
		resp.Closed = report.Closed
		resp.FloatOpen = !report.Closed && report.OpeningFloat.IsPositive()
	}
	return resp, nil
}

func (s *cashService) ListReports(ctx context.Context) ([]model.CashSessionReport, error) {
	return s.reports.List(ctx)
}

func (s *cashService) EnsureOpenToday(ctx context.Context) error {
	dayKey := DayKey(time.Now())

	if state := s.cachedRegisterState(ctx, dayKey); state != "" {
		switch state {
		case "open":
			return nil
		case "closed":
			return ErrRegisterClosed
		case "unopened":
			return ErrRegisterNotOpen
		}
	}

	report, err := s.reports.FindByDay(ctx, dayKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.cacheRegisterState(ctx, dayKey, "unopened")
			return ErrRegisterNotOpen
		}
		return err
	}
	switch {
	case report.Closed:
		s.cacheRegisterState(ctx, dayKey, "closed")
		return ErrRegisterClosed
	case !report.OpeningFloat.IsPositive():
		s.cacheRegisterState(ctx, dayKey, "unopened")
		return ErrRegisterNotOpen
	}
	s.cacheRegisterState(ctx, dayKey, "open")
	return nil
}

// ── Register-state cache ──────────────────────────────────────────────────────
// The POS polls the open/closed state on every checkout; a short TTL keeps
// the hot path off the database without letting a stale "open" survive long.

const registerStateTTL = 30 * time.Second

func (s *cashService) cacheRegisterState(ctx context.Context, dayKey, state string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, "register:state:"+dayKey, state, registerStateTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("register state cache set failed")
	}
}

func (s *cashService) cachedRegisterState(ctx context.Context, dayKey string) string {
	if s.rdb == nil {
		return ""
	}
	state, err := s.rdb.Get(ctx, "register:state:"+dayKey).Result()
	if err != nil {
		return ""
	}
	return state
}

// ── SweepStaleDays ────────────────────────────────────────────────────────────

func (s *cashService) SweepStaleDays(ctx context.Context) (int, error) {
	today := DayKey(time.Now())

	allSales, err := s.sales.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	byDay := make(map[string][]model.Sale)
	for _, sale := range allSales {
		byDay[sale.DayKey] = append(byDay[sale.DayKey], sale)
	}

	existing, err := s.reports.List(ctx)
	if err != nil {
		return 0, err
	}
	reportByDay := make(map[string]*model.CashSessionReport, len(existing))
	for i := range existing {
		reportByDay[existing[i].DayKey] = &existing[i]
	}

	closed := 0
	for dayKey, daySales := range byDay {
		// Never force-close today — it may still receive sales.
		if dayKey >= today {
			continue
		}
		prior := reportByDay[dayKey]
		if prior != nil && prior.Closed {
			continue
		}

		report := prior
		if report == nil {
			report = &model.CashSessionReport{DayKey: dayKey}
		}

		summary := SummarizeSales(daySales)
		saleIDs := make([]string, 0, len(daySales))
		for i := range daySales {
			saleIDs = append(saleIDs, daySales[i].ID.String())
		}

		now := time.Now()
		report.Closed = true
		report.ClosedAt = &now
		report.ClosedBySystem = true
		report.Summary = summary
		report.SaleIDs = saleIDs
		report.WithdrawalsTotal = round2(report.WithdrawalsTotal)
		report.ExpectedClosingCash = round2(
			report.OpeningFloat.Add(summary.Cash).Sub(report.WithdrawalsTotal))
		// No manual count exists on a system close; preserve one only if an
		// operator had partially recorded it before abandoning the day.

		if err := s.reports.Upsert(ctx, report); err != nil {
			// Log and move on: one broken day must not block the sweep.
			log.Error().Err(err).Str("day_key", dayKey).Msg("sweep: failed to close day")
			continue
		}
		closed++
		log.Info().Str("day_key", dayKey).Int("tickets", summary.Tickets).Msg("sweep: day force-closed")
	}
	return closed, nil
}

// ── Expense sheet ─────────────────────────────────────────────────────────────

func (s *cashService) AddExpense(ctx context.Context, req dto.ExpenseRequest, op model.Operator) (*model.ExpenseEntry, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	dayKey := strings.TrimSpace(req.DayKey)
	if dayKey == "" {
		dayKey = DayKey(time.Now())
	}
	if err := s.ensureDayMutable(ctx, dayKey); err != nil {
		return nil, err
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = model.ExpenseOther
	}
	entry := &model.ExpenseEntry{
		DayKey:      dayKey,
		Kind:        kind,
		Description: strings.TrimSpace(req.Description),
		Amount:      round2(req.Amount),
		Operator:    op.Email,
	}
	if err := s.expenses.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *cashService) ListExpenses(ctx context.Context, dayKey string) ([]model.ExpenseEntry, error) {
	if strings.TrimSpace(dayKey) == "" {
		dayKey = DayKey(time.Now())
	}
	return s.expenses.ListByDay(ctx, dayKey)
}

func (s *cashService) RemoveExpense(ctx context.Context, id uuid.UUID, dayKey string) error {
	if strings.TrimSpace(dayKey) == "" {
		dayKey = DayKey(time.Now())
	}
	if err := s.ensureDayMutable(ctx, dayKey); err != nil {
		return err
	}
	return s.expenses.Delete(ctx, id, dayKey)
}

// ensureDayMutable rejects expense edits on a day whose register closed.
func (s *cashService) ensureDayMutable(ctx context.Context, dayKey string) error {
	report, err := s.reports.FindByDay(ctx, dayKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if report.Closed {
		return ErrRegisterClosed
	}
	return nil
}
