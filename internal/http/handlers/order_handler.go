package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"tengemart/internal/domain"
	applog "tengemart/internal/log"
	"tengemart/internal/marketplace"
	"tengemart/internal/orders"
	"tengemart/internal/validate"
)

type OrderHandler struct {
	API   *marketplace.Client
	Coord *orders.Coordinator
}

func escape(s string) string { return url.QueryEscape(s) }

// orderRow is what the order templates consume: the order plus the action
// set legal for the viewer right now.
type orderRow struct {
	Order   domain.Order
	Total   string
	Actions []domain.Action
}

func (r orderRow) Can(a string) bool {
	return lo.Contains(r.Actions, domain.Action(a))
}

func rows(os []domain.Order, viewer *domain.User) []orderRow {
	return lo.Map(os, func(o domain.Order, _ int) orderRow {
		return orderRow{
			Order:   o,
			Total:   domain.FormatPrice(o.TotalPrice),
			Actions: domain.ActionsFor(o, viewer),
		}
	})
}

func orderQuery(c *fiber.Ctx) marketplace.OrderQuery {
	q := marketplace.OrderQuery{Page: c.QueryInt("page", 1)}
	if q.Page < 1 {
		q.Page = 1
	}
	if st, err := domain.ToOrderStatus(c.Query("status")); err == nil {
		q.Status = st
	}
	return q
}

// List renders the customer's orders with status filter and pagination.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	q := orderQuery(c)
	page, err := h.API.Orders(c.Context(), token(c), q)
	if err != nil {
		applog.Upstream(c, "orders.list", string(marketplace.Classify(err)), err)
		return render(c, "orders", fiber.Map{
			"Err":    "Could not load your orders. Please try again.",
			"Status": string(q.Status),
			"Page":   q.Page,
		})
	}
	return render(c, "orders", fiber.Map{
		"Rows":       rows(page.Results, currentUser(c)),
		"Status":     string(q.Status),
		"Page":       q.Page,
		"TotalPages": page.TotalPages(),
		"HasNext":    page.HasNext(),
		"HasPrev":    page.HasPrevious(),
	})
}

// Buy is the product page's buy-now: create the order, then immediately ask
// for a payment session and redirect to the hosted checkout. When the
// payment session fails after the order was created, the order stands in
// pending (the backend reconciles that half-state) and the user lands on the
// order list with the reason.
func (h *OrderHandler) Buy(c *fiber.Ctx) error {
	productID, okP := validate.ID(c.Params("id"))
	qty, okQ := validate.Qty(c.FormValue("quantity"))
	if !okP || !okQ {
		applog.Security(c, "validation.fail", map[string]any{"form": "buy"})
		return c.Status(400).Render("notfound", fiber.Map{"Message": "Invalid order request"})
	}

	o, err := h.Coord.Create(c.Context(), token(c), productID, qty)
	if err != nil {
		applog.Error(c, "order.create.fail", err, map[string]any{"product_id": productID})
		return c.Redirect("/product/" + c.Params("id") + "?msg=" + escape(marketplace.Reason(err)))
	}
	applog.Audit(c, "order.create", map[string]any{"order_id": o.ID, "product_id": productID, "qty": qty})

	checkout, err := h.Coord.StartPayment(c.Context(), token(c), o.ID)
	if err != nil {
		applog.Error(c, "order.payment.start.fail", err, map[string]any{"order_id": o.ID})
		return c.Redirect("/orders?msg=" + escape("Order placed. Payment could not be started; use Pay Now once it is approved."))
	}

	// Point of no return: full navigation away from this client.
	return c.Redirect(checkout)
}

// Pay starts a payment session for an existing order.
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	checkout, err := h.Coord.StartPayment(c.Context(), token(c), id)
	if err != nil {
		applog.Error(c, "order.payment.start.fail", err, map[string]any{"order_id": id})
		return c.Redirect("/orders?msg=" + escape(marketplace.Reason(err)))
	}
	return c.Redirect(checkout)
}

// Confirm is the post-payment landing view. One poll, then a 5-second
// return to the order list driven by the page itself, so leaving the page
// tears the countdown down with it.
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	outcome, err := h.Coord.ConfirmPayment(c.Context(), token(c), id)
	if err != nil {
		applog.Upstream(c, "order.payment.confirm", string(marketplace.Classify(err)), err)
	}
	applog.Info(c, "order.payment.confirm", map[string]any{"order_id": id, "outcome": outcome})

	return render(c, "payment_result", fiber.Map{
		"OrderID":      id,
		"Success":      outcome == orders.OutcomeSuccess,
		"ReturnAfterS": int(orders.ReturnDelay.Seconds()),
	})
}

// CancelConfirm asks before anything is sent; cancel is terminal.
func (h *OrderHandler) CancelConfirm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	return render(c, "cancel_confirm", fiber.Map{"OrderID": id})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	if err := h.Coord.Cancel(c.Context(), token(c), id); err != nil {
		applog.Error(c, "order.cancel.fail", err, map[string]any{"order_id": id})
		if errors.Is(err, orders.ErrNotPending) {
			return c.Redirect("/orders?msg=" + escape("Only pending orders can be cancelled."))
		}
		return c.Redirect("/orders?msg=" + escape(marketplace.Reason(err)))
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": id})
	return c.Redirect("/orders")
}

// Manage renders the trader-side order list with approve/reject/ship.
func (h *OrderHandler) Manage(c *fiber.Ctx) error {
	q := orderQuery(c)
	page, err := h.API.Orders(c.Context(), token(c), q)
	if err != nil {
		applog.Upstream(c, "trading.orders.list", string(marketplace.Classify(err)), err)
		return render(c, "trader_orders", fiber.Map{
			"Err":    "Could not load orders. Please try again.",
			"Status": string(q.Status),
			"Page":   q.Page,
		})
	}
	return render(c, "trader_orders", fiber.Map{
		"Rows":       rows(page.Results, currentUser(c)),
		"Status":     string(q.Status),
		"Page":       q.Page,
		"TotalPages": page.TotalPages(),
		"HasNext":    page.HasNext(),
		"HasPrev":    page.HasPrevious(),
	})
}

// Transition posts approve/reject/ship, then sends the manager back to the
// list, which re-fetches authoritative state.
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	action := c.Params("action")

	if err := h.Coord.Transition(c.Context(), token(c), id, action); err != nil {
		applog.Error(c, "order.transition.fail", err, map[string]any{"order_id": id, "action": action})
		switch {
		case errors.Is(err, orders.ErrUnknownAction):
			return c.Status(404).Render("notfound", fiber.Map{"Message": "Unknown action"})
		case errors.Is(err, orders.ErrBadTransition):
			return c.Redirect("/trading/orders?msg=" + escape("That order has moved on; list refreshed."))
		}
		return c.Redirect("/trading/orders?msg=" + escape(marketplace.Reason(err)))
	}

	applog.Audit(c, "order.transition", map[string]any{"order_id": id, "action": action})
	return c.Redirect("/trading/orders")
}

// GenerateInvoice is fire-and-forget; the document comes later.
func (h *OrderHandler) GenerateInvoice(c *fiber.Ctx) error {
	salesOrderID, ok := validate.ID(c.FormValue("sales_order"))
	if !ok {
		return c.Redirect("/orders?msg=" + escape("Invoice request was incomplete."))
	}
	if err := h.Coord.RequestInvoice(c.Context(), token(c), salesOrderID); err != nil {
		applog.Error(c, "invoice.request.fail", err, map[string]any{"sales_order_id": salesOrderID})
		return c.Redirect("/orders?msg=" + escape("Failed to request the invoice."))
	}
	applog.Audit(c, "invoice.request", map[string]any{"sales_order_id": salesOrderID})
	return c.Redirect("/orders?msg=" + escape("Invoice is being generated. Check back in a few moments."))
}

// DownloadInvoice redirects to the generated document. A missing document is
// a message, not an error page.
func (h *OrderHandler) DownloadInvoice(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	o, err := h.API.Order(c.Context(), token(c), id)
	if err != nil {
		applog.Upstream(c, "invoice.download", string(marketplace.Classify(err)), err)
		return c.Redirect("/orders?msg=" + escape(marketplace.Reason(err)))
	}
	docURL, err := orders.InvoiceURL(o)
	if err != nil {
		return c.Redirect("/orders?msg=" + escape("The invoice is not ready yet. Check back later."))
	}
	return c.Redirect(docURL)
}
