// Package checkout drives the order placement and payment flow as a small
// state machine. The cart is cleared exactly once, when the order has been
// accepted by the backend; payment failures leave the order awaiting payment
// without resurrecting the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/api"
	"github.com/fastorder/storefront/internal/cart"
	"github.com/fastorder/storefront/internal/model"
)

// State of the checkout flow.
type State string

const (
	StateIdle            State = "idle"
	StateConfirming      State = "confirming"
	StatePlacing         State = "placing"
	StateAwaitingPayment State = "awaiting_payment"
	StatePaying          State = "paying"
	StateCompleted       State = "completed"
)

var (
	// ErrEmptyCart rejects checkout on an empty cart before any API call.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidState reports a flow method called out of order.
	ErrInvalidState = errors.New("invalid checkout state")
)

var allowedTransitions = map[State][]State{
	StateIdle:            {StateConfirming},
	StateConfirming:      {StatePlacing, StateIdle},
	StatePlacing:         {StateAwaitingPayment, StateIdle},
	StateAwaitingPayment: {StatePaying},
	StatePaying:          {StateCompleted, StateAwaitingPayment},
	StateCompleted:       {StateIdle},
}

// Backend is the slice of the API client the flow needs.
type Backend interface {
	PlaceOrder(ctx context.Context, items []api.OrderItemInput) (int64, error)
	CreatePayment(ctx context.Context, in api.PaymentInput) (model.Payment, error)
	Ticket(ctx context.Context, orderID int64) (model.Ticket, error)
}

// Cart is the slice of the cart the flow needs.
type Cart interface {
	Lines() []cart.Line
	Total() decimal.Decimal
	Clear()
}

// Flow is one checkout attempt. Not safe for concurrent use; the storefront
// runs one flow at a time.
type Flow struct {
	backend Backend
	cart    Cart

	state   State
	total   decimal.Decimal
	orderID int64
	payment model.Payment
	ticket  model.Ticket
}

// NewFlow starts an idle checkout flow.
func NewFlow(backend Backend, c Cart) *Flow {
	return &Flow{backend: backend, cart: c, state: StateIdle}
}

// State reports the current position in the flow.
func (f *Flow) State() State { return f.state }

// OrderID is valid once the flow reaches awaiting payment.
func (f *Flow) OrderID() int64 { return f.orderID }

// Total is the cart total captured when the flow began.
func (f *Flow) Total() decimal.Decimal { return f.total }

// Payment is valid once the flow completes.
func (f *Flow) Payment() model.Payment { return f.payment }

// Ticket is valid once the flow completes.
func (f *Flow) Ticket() model.Ticket { return f.ticket }

func (f *Flow) transition(to State) error {
	for _, next := range allowedTransitions[f.state] {
		if next == to {
			f.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: cannot go from %s to %s", ErrInvalidState, f.state, to)
}

// Begin captures the cart total and moves to confirming. The cart must not
// be empty; no API call is made here.
func (f *Flow) Begin() error {
	if f.state != StateIdle {
		return fmt.Errorf("%w: flow already started", ErrInvalidState)
	}
	if len(f.cart.Lines()) == 0 {
		return ErrEmptyCart
	}
	f.total = f.cart.Total()
	return f.transition(StateConfirming)
}

// Cancel abandons the flow before the order is placed. The cart is untouched.
func (f *Flow) Cancel() error {
	if f.state != StateConfirming {
		return fmt.Errorf("%w: nothing to cancel", ErrInvalidState)
	}
	return f.transition(StateIdle)
}

// Confirm places the order. On success the cart is cleared and the flow
// awaits payment; on failure the flow returns to idle and the cart is kept
// so the customer can retry.
func (f *Flow) Confirm(ctx context.Context) error {
	if err := f.transition(StatePlacing); err != nil {
		return err
	}

	lines := f.cart.Lines()
	items := make([]api.OrderItemInput, len(lines))
	for i, line := range lines {
		items[i] = api.OrderItemInput{FoodID: line.FoodID, Quantity: line.Quantity}
	}

	orderID, err := f.backend.PlaceOrder(ctx, items)
	if err != nil {
		f.state = StateIdle
		return fmt.Errorf("place order: %w", err)
	}

	f.orderID = orderID
	f.cart.Clear()
	return f.transition(StateAwaitingPayment)
}

// Close dismisses a completed checkout and returns the flow to idle, ready
// for the next order.
func (f *Flow) Close() error {
	if f.state != StateCompleted {
		return fmt.Errorf("%w: nothing to close", ErrInvalidState)
	}
	if err := f.transition(StateIdle); err != nil {
		return err
	}
	f.total = decimal.Zero
	f.orderID = 0
	f.payment = model.Payment{}
	f.ticket = model.Ticket{}
	return nil
}

// Pay creates the payment and fetches the ticket. Any failure returns the
// flow to awaiting payment; the cart stays cleared because the order exists
// on the backend either way.
func (f *Flow) Pay(ctx context.Context, method string) error {
	if err := f.transition(StatePaying); err != nil {
		return err
	}

	payment, err := f.backend.CreatePayment(ctx, api.PaymentInput{
		OrderID: f.orderID,
		Method:  method,
		Amount:  f.total,
	})
	if err != nil {
		f.state = StateAwaitingPayment
		return fmt.Errorf("create payment: %w", err)
	}

	ticket, err := f.backend.Ticket(ctx, f.orderID)
	if err != nil {
		f.state = StateAwaitingPayment
		return fmt.Errorf("fetch ticket: %w", err)
	}

	f.payment = payment
	f.ticket = ticket
	return f.transition(StateCompleted)
}
