package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/repository"
	"github.com/lechug1122/LuisITRepair/internal/status"
	"github.com/lechug1122/LuisITRepair/internal/worker"
)

type SaleService interface {
	// Checkout records one POS sale. Service-folio lines are priced from the
	// record and, when the record is unlocked, move it to delivered within
	// the same transaction. Locked saleable records (cancelled, unrepairable)
	// are collected on without being mutated.
	Checkout(ctx context.Context, req dto.CheckoutRequest, op model.Operator) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListByDay(ctx context.Context, dayKey string) ([]model.Sale, error)
}

type saleService struct {
	sales      repository.SaleRepository
	intake     IntakeService
	records    RecordService
	cash       CashService
	dispatcher *worker.Dispatcher
	taxRatePct decimal.Decimal
}

func NewSaleService(
	sales repository.SaleRepository,
	intake IntakeService,
	records RecordService,
	cash CashService,
	dispatcher *worker.Dispatcher,
	taxRatePct decimal.Decimal,
) SaleService {
	return &saleService{
		sales:      sales,
		intake:     intake,
		records:    records,
		cash:       cash,
		dispatcher: dispatcher,
		taxRatePct: taxRatePct,
	}
}

// resolvedLine pairs a sale item with the service record it collects on, if
// any, so the delivery step runs over the same snapshot the pricing used.
type resolvedLine struct {
	item   model.SaleItem
	record *model.ServiceRecord
}

func (s *saleService) Checkout(ctx context.Context, req dto.CheckoutRequest, op model.Operator) (*dto.SaleResponse, error) {
	if err := s.cash.EnsureOpenToday(ctx); err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, ln := range lines {
		subtotal = subtotal.Add(ln.item.Subtotal)
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal.Mul(s.taxRatePct).Div(decimal.NewFromInt(100)))
	total := round2(subtotal.Add(tax))

	cash, card, transfer, err := splitPayment(req.Payment, total)
	if err != nil {
		return nil, err
	}
	paid := cash.Add(card).Add(transfer)
	if paid.LessThan(total) {
		return nil, ErrInsufficientPay
	}
	change := round2(paid.Sub(total))

	now := time.Now()
	sale := &model.Sale{
		ID:             uuid.New(),
		DayKey:         DayKey(now),
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          total,
		Method:         req.Payment.Method,
		CashAmount:     round2(cash),
		CardAmount:     round2(card),
		TransferAmount: round2(transfer),
		CardRef:        strings.TrimSpace(req.Payment.CardRef),
		OperatorID:     op.ID,
		OperatorEmail:  op.Email,
	}
	for i := range lines {
		lines[i].item.SaleID = sale.ID
		sale.Items = append(sale.Items, lines[i].item)
	}

	type deliveredRec struct {
		rec  *model.ServiceRecord
		from status.Status
	}
	var delivered []deliveredRec
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return err
		}
		for _, ln := range lines {
			if ln.record == nil || ln.record.Locked {
				// Locked saleable records keep their terminal status; the
				// sale line is the only trace of the collection.
				continue
			}
			from := ln.record.Status
			billing := model.Billing{
				Method: sale.Method,
				Total:  ln.item.Subtotal,
				Lines: []model.BillingLine{{
					Description: ln.item.Description,
					Quantity:    ln.item.Quantity,
					UnitPrice:   ln.item.UnitPrice,
					Subtotal:    ln.item.Subtotal,
				}},
			}
			if err := s.records.DeliverTx(tx, ln.record, billing, now); err != nil {
				return fmt.Errorf("deliver %s: %w", ln.record.Folio, err)
			}
			delivered = append(delivered, deliveredRec{rec: ln.record, from: from})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := &dto.SaleResponse{Sale: sale, Change: change}
	for _, d := range delivered {
		resp.DeliveredFolios = append(resp.DeliveredFolios, d.rec.Folio)
		s.dispatcher.PublishStatusChange(ctx, worker.StatusChangeEvent{
			RecordID: d.rec.ID.String(),
			Folio:    d.rec.Folio,
			From:     d.from,
			To:       status.Delivered,
			At:       now,
		})
	}
	return resp, nil
}

// resolveLines turns the request cart into priced sale items. Folio lines are
// priced from the record: one unit at the quoted cost.
func (s *saleService) resolveLines(ctx context.Context, items []dto.SaleItemRequest) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(items))
	for _, it := range items {
		if it.Folio != nil {
			rec, err := s.intake.LookupByFolio(ctx, *it.Folio)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, ErrNotFound
			}
			if rec.Status == status.Delivered {
				return nil, ErrAlreadyDelivered
			}
			if !s.records.IsSaleable(rec) {
				return nil, ErrStillInService
			}
			cost := rec.CostValue()
			folio := rec.Folio
			recID := rec.ID
			lines = append(lines, resolvedLine{
				item: model.SaleItem{
					ID:              uuid.New(),
					Description:     serviceLineDescription(rec),
					Quantity:        1,
					UnitPrice:       cost,
					Subtotal:        cost,
					ServiceRecordID: &recID,
					ServiceFolio:    &folio,
				},
				record: rec,
			})
			continue
		}

		desc := strings.TrimSpace(it.Description)
		if desc == "" || it.Quantity <= 0 || !it.UnitPrice.IsPositive() {
			return nil, ErrInvalidAmount
		}
		lines = append(lines, resolvedLine{
			item: model.SaleItem{
				ID:          uuid.New(),
				Description: desc,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Subtotal:    round2(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
			},
		})
	}
	return lines, nil
}

func serviceLineDescription(rec *model.ServiceRecord) string {
	parts := []string{"Service", rec.Folio}
	if rec.Brand != "" {
		parts = append(parts, rec.Brand)
	}
	if rec.Model != "" {
		parts = append(parts, rec.Model)
	}
	return strings.Join(parts, " ")
}

// splitPayment resolves the per-method amounts. A single-method payment with
// a zero explicit amount defaults to the sale total; mixed must be explicit.
func splitPayment(p dto.PaymentRequest, total decimal.Decimal) (cash, card, transfer decimal.Decimal, err error) {
	cash, card, transfer = p.Cash, p.Card, p.Transfer
	switch p.Method {
	case model.PayCash:
		if cash.IsZero() {
			cash = total
		}
		card, transfer = decimal.Zero, decimal.Zero
	case model.PayCard:
		if card.IsZero() {
			card = total
		}
		cash, transfer = decimal.Zero, decimal.Zero
	case model.PayTransfer:
		if transfer.IsZero() {
			transfer = total
		}
		cash, card = decimal.Zero, decimal.Zero
	case model.PayMixed:
		if cash.IsNegative() || card.IsNegative() || transfer.IsNegative() {
			return decimal.Zero, decimal.Zero, decimal.Zero, ErrInvalidAmount
		}
	default:
		return decimal.Zero, decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	return cash, card, transfer, nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) ListByDay(ctx context.Context, dayKey string) ([]model.Sale, error) {
	if strings.TrimSpace(dayKey) == "" {
		dayKey = DayKey(time.Now())
	}
	return s.sales.ListByDay(ctx, dayKey)
}
