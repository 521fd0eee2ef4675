package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"tengemart/internal/domain"
)

type OrderQuery struct {
	Page   int
	Status domain.OrderStatus // empty means all
}

// Orders lists the viewer's orders: customers see their own, trader-side
// roles see orders against their listings. The backend scopes by the token.
func (c *Client) Orders(ctx context.Context, token string, q OrderQuery) (Page[domain.Order], error) {
	vals := url.Values{}
	if q.Page > 1 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	if q.Status != "" {
		vals.Set("status", string(q.Status))
	}
	var page Page[domain.Order]
	if err := c.get(ctx, token, "trading/orders/", vals, &page); err != nil {
		return Page[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return page, nil
}

func (c *Client) OrdersAt(ctx context.Context, token, pageURL string) (Page[domain.Order], error) {
	var page Page[domain.Order]
	if err := c.getPageURL(ctx, token, pageURL, &page); err != nil {
		return Page[domain.Order]{}, fmt.Errorf("follow order page: %w", err)
	}
	return page, nil
}

func (c *Client) Order(ctx context.Context, token string, id int64) (domain.Order, error) {
	var o domain.Order
	if err := c.get(ctx, token, fmt.Sprintf("trading/orders/%d/", id), nil, &o); err != nil {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	return o, nil
}

type createOrderReq struct {
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

// CreateOrder places a new order; the backend derives the total price and
// creates the linked sales order reference.
func (c *Client) CreateOrder(ctx context.Context, token string, productID int64, quantity int) (domain.Order, error) {
	var o domain.Order
	req := createOrderReq{Product: productID, Quantity: quantity}
	if err := c.postJSON(ctx, token, "trading/orders/", req, &o); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// OrderAction requests a status transition: cancel, approve, reject or ship.
// The backend authorizes and applies it; callers re-fetch afterwards.
func (c *Client) OrderAction(ctx context.Context, token string, id int64, action string) error {
	path := fmt.Sprintf("trading/orders/%d/%s/", id, action)
	if err := c.postJSON(ctx, token, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("order %d %s: %w", id, action, err)
	}
	return nil
}
