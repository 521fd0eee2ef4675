package domain

// Action is an affordance a viewer may be offered for an order. Anything the
// backend would reject is hidden, not disabled; the backend remains the
// authority and re-checks every request.
type Action string

const (
	ActionCancel          Action = "cancel"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionPay             Action = "pay"
	ActionShip            Action = "ship"
	ActionGenerateInvoice Action = "generate_invoice"
	ActionDownloadInvoice Action = "download_invoice"
)

// ActionsFor computes the legal action set for (order, viewer).
//
//	pending   + owning customer            -> cancel
//	pending   + selling trader             -> approve, reject
//	approved  + owning customer, not paid  -> pay
//	approved/paid + owning customer, paid, no invoice -> generate_invoice
//	approved/paid + owning customer, paid, invoice    -> download_invoice
//	paid      + selling trader             -> ship
func ActionsFor(o Order, viewer *User) []Action {
	if viewer == nil {
		return nil
	}

	var out []Action

	if viewer.IsCustomer() && o.OwnedBy(viewer) {
		switch {
		case o.Status == StatusPending:
			out = append(out, ActionCancel)
		case o.Status == StatusApproved && !o.SalesOrder.IsPaid():
			out = append(out, ActionPay)
		}
		if (o.Status == StatusApproved || o.Status == StatusPaid) && o.SalesOrder.IsPaid() {
			if o.SalesOrder.Invoice == nil {
				out = append(out, ActionGenerateInvoice)
			} else {
				out = append(out, ActionDownloadInvoice)
			}
		}
	}

	if sellerSide(o, viewer) {
		switch o.Status {
		case StatusPending:
			out = append(out, ActionApprove, ActionReject)
		case StatusPaid:
			out = append(out, ActionShip)
		}
	}

	return out
}

// sellerSide: the owning trader, or an order-management role with visibility
// across traders.
func sellerSide(o Order, viewer *User) bool {
	if viewer.IsTrader() {
		return o.SoldBy(viewer)
	}
	return viewer.Role == RoleSalesRep || viewer.Role == RoleAdmin
}

// Allowed reports whether a specific action is in the computed set.
func Allowed(o Order, viewer *User, a Action) bool {
	for _, got := range ActionsFor(o, viewer) {
		if got == a {
			return true
		}
	}
	return false
}
