package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lechug1122/LuisITRepair/internal/dto"
	"github.com/lechug1122/LuisITRepair/internal/model"
	"github.com/lechug1122/LuisITRepair/internal/status"
)

// checkoutFixture wires the real services over in-memory repositories, the
// same graph the router builds.
type checkoutFixture struct {
	records *fakeRecordRepo
	sales   *fakeSaleRepo
	intake  IntakeService
	cash    CashService
	svc     SaleService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	records := newFakeRecordRepo()
	folios := newFakeFolioRepo()
	sales := newFakeSaleRepo()

	intake := NewIntakeService(records, folios)
	recordSvc := NewRecordService(records, sales, nil)
	cash := NewCashService(newFakeReportRepo(), sales, newFakeExpenseRepo(), nil)
	svc := NewSaleService(sales, intake, recordSvc, cash, nil, decimal.NewFromInt(16))

	return &checkoutFixture{records: records, sales: sales, intake: intake, cash: cash, svc: svc}
}

// readyService creates an intake and moves it to ready so the POS can
// collect on it. Returns the folio.
func (f *checkoutFixture) readyService(t *testing.T, symptom string, st status.Status) string {
	t.Helper()
	resp, err := f.intake.Create(context.Background(), laptopIntake(symptom))
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	rec := f.records.records[id]
	rec.Status = st
	rec.Locked = st.IsTerminal()
	quoted := decimal.NewFromInt(150)
	rec.Cost = &quoted
	return resp.Folio
}

func (f *checkoutFixture) openRegister(t *testing.T) {
	t.Helper()
	_, err := f.cash.OpenRegister(context.Background(), decimal.NewFromInt(500), testOperator)
	require.NoError(t, err)
}

func cashPayment(amount float64) dto.PaymentRequest {
	return dto.PaymentRequest{Method: model.PayCash, Cash: dec(amount)}
}

func TestCheckoutRequiresOpenRegister(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Description: "HDMI cable", Quantity: 1, UnitPrice: dec(25)}},
		Payment: cashPayment(100),
	}, testOperator)
	assert.ErrorIs(t, err, ErrRegisterNotOpen)
}

func TestCheckoutDeliversServiceLine(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)
	folio := f.readyService(t, "no enciende", status.Ready)

	// Service at 150 plus 2×25 free-form = 200; 16% tax = 32; total 232.
	resp, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items: []dto.SaleItemRequest{
			{Folio: &folio},
			{Description: "HDMI cable", Quantity: 2, UnitPrice: dec(25)},
		},
		Payment: cashPayment(300),
	}, testOperator)
	require.NoError(t, err)

	assert.True(t, resp.Sale.Subtotal.Equal(dec(200)), "subtotal %s", resp.Sale.Subtotal)
	assert.True(t, resp.Sale.Tax.Equal(dec(32)), "tax %s", resp.Sale.Tax)
	assert.True(t, resp.Sale.Total.Equal(dec(232)), "total %s", resp.Sale.Total)
	assert.True(t, resp.Change.Equal(dec(68)), "change %s", resp.Change)
	assert.Equal(t, []string{folio}, resp.DeliveredFolios)

	// The record left the shop: delivered, locked, billing stamped.
	rec, err := f.intake.LookupByFolio(context.Background(), folio)
	require.NoError(t, err)
	assert.Equal(t, status.Delivered, rec.Status)
	assert.True(t, rec.Locked)
	require.NotNil(t, rec.Billing)
	assert.Equal(t, model.PayCash, rec.Billing.Method)
	assert.True(t, rec.Billing.Total.Equal(dec(150)))
	assert.NotNil(t, rec.DeliveredAt)

	// The sale line references the record for the paid-precondition check.
	recorded, err := f.sales.ExistsForRecord(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, recorded)
}

func TestCheckoutSingleMethodDefaultsToTotal(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)

	// Card payment with no explicit amount: the total is implied, change 0.
	resp, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Description: "mouse", Quantity: 1, UnitPrice: dec(100)}},
		Payment: dto.PaymentRequest{Method: model.PayCard, CardRef: "A1234"},
	}, testOperator)
	require.NoError(t, err)
	assert.True(t, resp.Sale.CardAmount.Equal(dec(116)))
	assert.True(t, resp.Change.IsZero())
}

func TestCheckoutRejectsDeliveredFolio(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)
	folio := f.readyService(t, "no enciende", status.Delivered)

	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Folio: &folio}},
		Payment: cashPayment(500),
	}, testOperator)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
}

func TestCheckoutRejectsServiceStillInRepair(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)
	folio := f.readyService(t, "no enciende", status.Repairing)

	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Folio: &folio}},
		Payment: cashPayment(500),
	}, testOperator)
	assert.ErrorIs(t, err, ErrStillInService)
}

func TestCheckoutUnknownFolio(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)
	folio := "zzz99999901"

	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Folio: &folio}},
		Payment: cashPayment(500),
	}, testOperator)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutInsufficientPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)

	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items: []dto.SaleItemRequest{{Description: "SSD", Quantity: 1, UnitPrice: dec(1000)}},
		Payment: dto.PaymentRequest{
			Method: model.PayMixed, Cash: dec(500), Card: dec(100),
		},
	}, testOperator)
	assert.ErrorIs(t, err, ErrInsufficientPay)
}

func TestCheckoutLockedSaleableRecordIsNotMutated(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)
	// Cancelled with a positive cost: collectable, but the terminal status
	// must survive the sale.
	folio := f.readyService(t, "no enciende", status.Cancelled)

	resp, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Folio: &folio}},
		Payment: cashPayment(500),
	}, testOperator)
	require.NoError(t, err)
	assert.Empty(t, resp.DeliveredFolios)

	rec, err := f.intake.LookupByFolio(context.Background(), folio)
	require.NoError(t, err)
	assert.Equal(t, status.Cancelled, rec.Status)
	assert.True(t, rec.Locked)
	assert.Nil(t, rec.Billing)

	// The sale still references the record.
	recorded, err := f.sales.ExistsForRecord(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, recorded)
}

func TestCheckoutRejectsEmptyFreeFormLine(t *testing.T) {
	f := newCheckoutFixture(t)
	f.openRegister(t)

	_, err := f.svc.Checkout(context.Background(), dto.CheckoutRequest{
		Items:   []dto.SaleItemRequest{{Description: "", Quantity: 1, UnitPrice: dec(25)}},
		Payment: cashPayment(100),
	}, testOperator)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
