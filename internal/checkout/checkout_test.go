package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/api"
	"github.com/fastorder/storefront/internal/cart"
	"github.com/fastorder/storefront/internal/model"
	"github.com/fastorder/storefront/internal/storage"
)

type mockBackend struct {
	placeErr   error
	paymentErr error
	ticketErr  error

	placedItems []api.OrderItemInput
	placeCalls  int
	paymentIn   api.PaymentInput
}

func (m *mockBackend) PlaceOrder(ctx context.Context, items []api.OrderItemInput) (int64, error) {
	m.placeCalls++
	if m.placeErr != nil {
		return 0, m.placeErr
	}
	m.placedItems = items
	return 42, nil
}

func (m *mockBackend) CreatePayment(ctx context.Context, in api.PaymentInput) (model.Payment, error) {
	if m.paymentErr != nil {
		return model.Payment{}, m.paymentErr
	}
	m.paymentIn = in
	now := time.Now()
	return model.Payment{ID: 7, OrderID: in.OrderID, Method: in.Method, Amount: in.Amount, Status: "completed", PaidAt: &now}, nil
}

func (m *mockBackend) Ticket(ctx context.Context, orderID int64) (model.Ticket, error) {
	if m.ticketErr != nil {
		return model.Ticket{}, m.ticketErr
	}
	return model.Ticket{OrderID: orderID, TicketCode: "code-42", IssuedAt: time.Now()}, nil
}

func newCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(storage.NewMemory())
	c.Add(model.Food{ID: 1, Name: "Nasi Goreng", Price: decimal.NewFromInt(20000)})
	c.Add(model.Food{ID: 1, Name: "Nasi Goreng", Price: decimal.NewFromInt(20000)})
	c.Add(model.Food{ID: 2, Name: "Es Teh", Price: decimal.NewFromInt(5000)})
	return c
}

func TestBeginEmptyCart(t *testing.T) {
	backend := &mockBackend{}
	flow := NewFlow(backend, cart.New(storage.NewMemory()))

	if err := flow.Begin(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if backend.placeCalls != 0 {
		t.Errorf("expected no API calls, got %d", backend.placeCalls)
	}
	if flow.State() != StateIdle {
		t.Errorf("expected idle state, got %s", flow.State())
	}
}

func TestBeginCapturesTotal(t *testing.T) {
	flow := NewFlow(&mockBackend{}, newCart(t))

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if flow.State() != StateConfirming {
		t.Errorf("expected confirming, got %s", flow.State())
	}
	if want := decimal.NewFromInt(45000); !flow.Total().Equal(want) {
		t.Errorf("expected total %s, got %s", want, flow.Total())
	}
}

func TestCancelKeepsCart(t *testing.T) {
	c := newCart(t)
	flow := NewFlow(&mockBackend{}, c)

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if flow.State() != StateIdle {
		t.Errorf("expected idle, got %s", flow.State())
	}
	if got := len(c.Lines()); got != 2 {
		t.Errorf("expected cart untouched, got %d lines", got)
	}
	if c.Count() != 3 {
		t.Errorf("expected 3 items in cart, got %d", c.Count())
	}
}

func TestConfirmClearsCartOnce(t *testing.T) {
	c := newCart(t)
	backend := &mockBackend{}
	flow := NewFlow(backend, c)

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if flow.State() != StateAwaitingPayment {
		t.Errorf("expected awaiting_payment, got %s", flow.State())
	}
	if flow.OrderID() != 42 {
		t.Errorf("expected order id 42, got %d", flow.OrderID())
	}
	if c.Count() != 0 {
		t.Errorf("expected cart cleared, got %d lines", c.Count())
	}
	if len(backend.placedItems) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(backend.placedItems))
	}
	if backend.placedItems[0].FoodID != 1 || backend.placedItems[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", backend.placedItems[0])
	}
}

func TestConfirmFailureKeepsCart(t *testing.T) {
	c := newCart(t)
	backend := &mockBackend{placeErr: errors.New("boom")}
	flow := NewFlow(backend, c)

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if flow.State() != StateIdle {
		t.Errorf("expected idle after failure, got %s", flow.State())
	}
	if got := len(c.Lines()); got != 2 {
		t.Errorf("expected cart retained, got %d lines", got)
	}
	if c.Count() != 3 {
		t.Errorf("expected 3 items in cart, got %d", c.Count())
	}
}

func TestPayCompletes(t *testing.T) {
	backend := &mockBackend{}
	flow := NewFlow(backend, newCart(t))

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := flow.Pay(context.Background(), "cash"); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if flow.State() != StateCompleted {
		t.Errorf("expected completed, got %s", flow.State())
	}
	if !backend.paymentIn.Amount.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("expected payment amount 45000, got %s", backend.paymentIn.Amount)
	}
	if flow.Ticket().TicketCode != "code-42" {
		t.Errorf("unexpected ticket: %+v", flow.Ticket())
	}
}

func TestPayFailureCartStaysCleared(t *testing.T) {
	c := newCart(t)
	backend := &mockBackend{paymentErr: errors.New("provider down")}
	flow := NewFlow(backend, c)

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := flow.Pay(context.Background(), "cash"); err == nil {
		t.Fatal("expected error")
	}

	if flow.State() != StateAwaitingPayment {
		t.Errorf("expected awaiting_payment after failure, got %s", flow.State())
	}
	if c.Count() != 0 {
		t.Errorf("expected cart to stay cleared, got %d lines", c.Count())
	}

	// Retry succeeds.
	backend.paymentErr = nil
	if err := flow.Pay(context.Background(), "cash"); err != nil {
		t.Fatalf("retry Pay: %v", err)
	}
	if flow.State() != StateCompleted {
		t.Errorf("expected completed after retry, got %s", flow.State())
	}
}

func TestTicketFailureReturnsToAwaitingPayment(t *testing.T) {
	backend := &mockBackend{ticketErr: errors.New("not ready")}
	flow := NewFlow(backend, newCart(t))

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := flow.Pay(context.Background(), "online"); err == nil {
		t.Fatal("expected error")
	}
	if flow.State() != StateAwaitingPayment {
		t.Errorf("expected awaiting_payment, got %s", flow.State())
	}
}

func TestCloseReturnsToIdle(t *testing.T) {
	c := newCart(t)
	backend := &mockBackend{}
	flow := NewFlow(backend, c)

	if err := flow.Close(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Close before completion: expected ErrInvalidState, got %v", err)
	}

	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := flow.Pay(context.Background(), "cash"); err != nil {
		t.Fatalf("Pay: %v", err)
	}
	if err := flow.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if flow.State() != StateIdle {
		t.Errorf("expected idle after close, got %s", flow.State())
	}
	if flow.OrderID() != 0 || flow.Ticket().TicketCode != "" {
		t.Error("expected order state reset after close")
	}

	// The flow is reusable for the next order.
	c.Add(model.Food{ID: 3, Name: "Ayam Bakar", Price: decimal.NewFromInt(30000)})
	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin after close: %v", err)
	}
	if want := decimal.NewFromInt(30000); !flow.Total().Equal(want) {
		t.Errorf("expected total %s after close, got %s", want, flow.Total())
	}
}

func TestMethodsOutOfOrder(t *testing.T) {
	flow := NewFlow(&mockBackend{}, newCart(t))

	if err := flow.Confirm(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Confirm before Begin: expected ErrInvalidState, got %v", err)
	}
	if err := flow.Pay(context.Background(), "cash"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Pay before Begin: expected ErrInvalidState, got %v", err)
	}
	if err := flow.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := flow.Begin(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double Begin: expected ErrInvalidState, got %v", err)
	}
}
