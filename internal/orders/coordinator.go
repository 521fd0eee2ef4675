// Package orders drives the order lifecycle against the marketplace backend:
// creation, payment hand-off and confirmation, and the trader-side status
// transitions. The client never mutates status locally; it requests a
// transition and re-fetches authoritative state.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tengemart/internal/domain"
	"tengemart/internal/marketplace"
)

var (
	ErrQuantity      = errors.New("quantity must be at least 1")
	ErrNotPending    = errors.New("only pending orders can be cancelled")
	ErrBadTransition = errors.New("order is not in a state that allows this action")
	ErrNoInvoice     = errors.New("invoice has not been generated yet")
	ErrUnknownAction = errors.New("unknown order action")
	ErrNotAuthorized = errors.New("sign in to manage orders")
)

// ReturnDelay is how long the payment confirmation view lingers before
// sending the user back to the order list.
const ReturnDelay = 5 * time.Second

type Coordinator struct {
	API *marketplace.Client
}

func NewCoordinator(api *marketplace.Client) *Coordinator {
	return &Coordinator{API: api}
}

// Create places a new order. The backend returns it in pending with its
// sales order reference; stock and ownership rules are enforced there and
// surface as rejected-call messages.
func (co *Coordinator) Create(ctx context.Context, token string, productID int64, quantity int) (domain.Order, error) {
	if token == "" {
		return domain.Order{}, ErrNotAuthorized
	}
	if quantity < 1 {
		return domain.Order{}, ErrQuantity
	}
	o, err := co.API.CreateOrder(ctx, token, productID, quantity)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create: %w", err)
	}
	return o, nil
}

// StartPayment requests a hosted checkout URL for the order. The caller must
// issue a full redirect to it; no client state survives that navigation.
func (co *Coordinator) StartPayment(ctx context.Context, token string, orderID int64) (string, error) {
	url, err := co.API.CreatePaymentSession(ctx, token, orderID)
	if err != nil {
		return "", fmt.Errorf("start payment: %w", err)
	}
	return url, nil
}

type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailed  PaymentOutcome = "failed"
)

// ClassifyPayment applies the post-payment check: success when the linked
// sales order is paid OR the order itself is approved. Accepting either
// signal is deliberate and mirrors the backend's settlement flow, where the
// webhook may land on either record first.
func ClassifyPayment(o domain.Order) PaymentOutcome {
	if o.SalesOrder.IsPaid() || o.Status == domain.StatusApproved {
		return OutcomeSuccess
	}
	return OutcomeFailed
}

// ConfirmPayment polls the order exactly once after landing back from the
// payment redirect. Any fetch failure reads as a failed payment; the error is
// returned for logging only.
func (co *Coordinator) ConfirmPayment(ctx context.Context, token string, orderID int64) (PaymentOutcome, error) {
	o, err := co.API.Order(ctx, token, orderID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("confirm payment: %w", err)
	}
	return ClassifyPayment(o), nil
}

// Cancel is customer-initiated and only legal from pending. The guard holds
// even when the request is forced outside the UI.
func (co *Coordinator) Cancel(ctx context.Context, token string, orderID int64) error {
	o, err := co.API.Order(ctx, token, orderID)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	if o.Status != domain.StatusPending {
		return ErrNotPending
	}
	if err := co.API.OrderAction(ctx, token, orderID, "cancel"); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	return nil
}

// transitionTargets maps a requestable action to the status it asks for.
var transitionTargets = map[string]domain.OrderStatus{
	"approve": domain.StatusApproved,
	"reject":  domain.StatusRejected,
	"ship":    domain.StatusShipped,
}

// Transition requests a trader-side status change (approve, reject, ship),
// re-checking the state machine against the current backend state first.
func (co *Coordinator) Transition(ctx context.Context, token string, orderID int64, action string) error {
	target, ok := transitionTargets[action]
	if !ok {
		return ErrUnknownAction
	}
	o, err := co.API.Order(ctx, token, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if !domain.CanTransition(o.Status, target) {
		return ErrBadTransition
	}
	if err := co.API.OrderAction(ctx, token, orderID, action); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

// RequestInvoice starts asynchronous invoice generation. The document will
// not exist when this returns; the UI tells the user to check back rather
// than polling.
func (co *Coordinator) RequestInvoice(ctx context.Context, token string, salesOrderID int64) error {
	if err := co.API.GenerateInvoice(ctx, token, salesOrderID); err != nil {
		return fmt.Errorf("request invoice: %w", err)
	}
	return nil
}

// InvoiceURL resolves the downloadable document for an order. A missing URL
// is a reportable condition, not a crash.
func InvoiceURL(o domain.Order) (string, error) {
	if o.SalesOrder == nil || o.SalesOrder.Invoice == nil || o.SalesOrder.Invoice.PDFFile == "" {
		return "", ErrNoInvoice
	}
	return o.SalesOrder.Invoice.PDFFile, nil
}
