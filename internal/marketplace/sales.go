package marketplace

import (
	"context"
	"fmt"

	"tengemart/internal/domain"
)

type paymentSessionReq struct {
	OrderID int64 `json:"orderId"`
}

type paymentSessionResp struct {
	CheckoutURL string `json:"checkout_url"`
}

// CreatePaymentSession asks the backend for a hosted checkout URL. The caller
// performs a full redirect to it; nothing client-side survives that jump.
func (c *Client) CreatePaymentSession(ctx context.Context, token string, orderID int64) (string, error) {
	var resp paymentSessionResp
	if err := c.postJSON(ctx, token, "sales/sales-orders/create_payment_session/", paymentSessionReq{OrderID: orderID}, &resp); err != nil {
		return "", fmt.Errorf("payment session: %w", err)
	}
	if resp.CheckoutURL == "" {
		return "", &Error{Kind: KindBackend, Message: "no checkout URL in response"}
	}
	return resp.CheckoutURL, nil
}

func (c *Client) SalesOrder(ctx context.Context, token string, id int64) (domain.SalesOrder, error) {
	var so domain.SalesOrder
	if err := c.get(ctx, token, fmt.Sprintf("sales/sales-orders/%d/", id), nil, &so); err != nil {
		return domain.SalesOrder{}, fmt.Errorf("sales order %d: %w", id, err)
	}
	return so, nil
}

type invoiceReq struct {
	SalesOrder int64 `json:"sales_order"`
}

// GenerateInvoice kicks off asynchronous invoice generation. The request
// returns before the document exists; callers tell the user to check back.
func (c *Client) GenerateInvoice(ctx context.Context, token string, salesOrderID int64) error {
	if err := c.postJSON(ctx, token, "sales/invoices/", invoiceReq{SalesOrder: salesOrderID}, nil); err != nil {
		return fmt.Errorf("generate invoice: %w", err)
	}
	return nil
}

// MarkNotificationsRead is the single read-state call the backend offers.
func (c *Client) MarkNotificationsRead(ctx context.Context, token string) error {
	if err := c.postJSON(ctx, token, "notifications/mark_as_read/", struct{}{}, nil); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
