package domain

import "github.com/shopspring/decimal"

type Order struct {
	ID            int64           `json:"id"`
	Product       Product         `json:"product"`
	User          User            `json:"user"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     string          `json:"created_at"`
	SalesOrder    *SalesOrder     `json:"sales_order"`
}

// OwnedBy reports whether the order belongs to the given customer.
func (o Order) OwnedBy(u *User) bool { return u != nil && o.User.ID == u.ID }

// SoldBy reports whether the order is against one of the user's own listings.
func (o Order) SoldBy(u *User) bool { return u != nil && o.Product.Trader == u.ID }
