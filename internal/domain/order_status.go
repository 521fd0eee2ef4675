package domain

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	StatusPending  OrderStatus = "pending"
	StatusApproved OrderStatus = "approved"
	StatusRejected OrderStatus = "rejected"
	StatusPaid     OrderStatus = "paid"
	StatusShipped  OrderStatus = "shipped"
	StatusCanceled OrderStatus = "canceled"
	StatusFailed   OrderStatus = "failed"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	StatusPending:  {},
	StatusApproved: {},
	StatusRejected: {},
	StatusPaid:     {},
	StatusShipped:  {},
	StatusCanceled: {},
	StatusFailed:   {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}

// validNext holds the transitions this client may request. The backend
// authorizes and applies them; these guards only keep the client from
// requesting a transition the backend would reject anyway. The paid state is
// entered by the payment webhook, never requested from here.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:  {StatusApproved: true, StatusRejected: true, StatusCanceled: true},
	StatusApproved: {StatusPaid: true},
	StatusPaid:     {StatusShipped: true},
	StatusRejected: {},
	StatusShipped:  {},
	StatusCanceled: {},
	StatusFailed:   {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}
