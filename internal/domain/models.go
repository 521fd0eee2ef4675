package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    int64           `json:"category"`
	Image       string          `json:"image"`
	Trader      int64           `json:"user"`
	CreatedAt   string          `json:"created_at"`
}

// InStock only decides whether a buy form is rendered; the backend is the
// authority on stock at order time.
func (p Product) InStock() bool { return p.Stock > 0 }

type SalesOrder struct {
	ID      int64    `json:"id"`
	Status  string   `json:"status"` // pending | paid | failed
	Invoice *Invoice `json:"invoice"`
}

const SalesStatusPaid = "paid"

func (s *SalesOrder) IsPaid() bool { return s != nil && s.Status == SalesStatusPaid }

type Invoice struct {
	ID      int64  `json:"id"`
	PDFFile string `json:"pdf_file"`
}

type Notification struct {
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
}
