package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"tengemart/internal/domain"
)

type ProductQuery struct {
	Page     int
	Search   string
	Category int64 // 0 means all
}

// Products lists the catalog. Works anonymously; token only widens nothing
// here but is attached when present.
func (c *Client) Products(ctx context.Context, token string, q ProductQuery) (Page[domain.Product], error) {
	vals := url.Values{}
	if q.Page > 1 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Category != 0 {
		vals.Set("category", strconv.FormatInt(q.Category, 10))
	}
	var page Page[domain.Product]
	if err := c.get(ctx, token, "products/", vals, &page); err != nil {
		return Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

// ProductsAt follows an opaque next/previous reference from a prior page.
func (c *Client) ProductsAt(ctx context.Context, token, pageURL string) (Page[domain.Product], error) {
	var page Page[domain.Product]
	if err := c.getPageURL(ctx, token, pageURL, &page); err != nil {
		return Page[domain.Product]{}, fmt.Errorf("follow product page: %w", err)
	}
	return page, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.get(ctx, "", "products/categories/", nil, &cats); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return cats, nil
}

func (c *Client) Featured(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	if err := c.get(ctx, "", "products/featured/", nil, &ps); err != nil {
		return nil, fmt.Errorf("featured: %w", err)
	}
	return ps, nil
}

func (c *Client) Latest(ctx context.Context) ([]domain.Product, error) {
	var ps []domain.Product
	if err := c.get(ctx, "", "products/latest/", nil, &ps); err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	return ps, nil
}

func (c *Client) MyListings(ctx context.Context, token string) ([]domain.Product, error) {
	var ps []domain.Product
	if err := c.get(ctx, token, "products/my_listings/", nil, &ps); err != nil {
		return nil, fmt.Errorf("my listings: %w", err)
	}
	return ps, nil
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "", fmt.Sprintf("products/%d/", id), nil, &p); err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, err)
	}
	return p, nil
}

// ProductForm is a create/edit submission. Image is optional.
type ProductForm struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    int64
	Image       *Upload
}

func (f ProductForm) fields() map[string]string {
	return map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"price":       f.Price.StringFixed(2),
		"stock":       strconv.Itoa(f.Stock),
		"category":    strconv.FormatInt(f.Category, 10),
	}
}

// CreateProduct posts a new listing as multipart form data (the image rides
// along with the fields).
func (c *Client) CreateProduct(ctx context.Context, token string, f ProductForm) (domain.Product, error) {
	var p domain.Product
	if err := c.doMultipart(ctx, token, "POST", "products/", f.fields(), f.Image, &p); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, f ProductForm) (domain.Product, error) {
	var p domain.Product
	path := fmt.Sprintf("products/%d/", id)
	if f.Image != nil {
		if err := c.doMultipart(ctx, token, "PATCH", path, f.fields(), f.Image, &p); err != nil {
			return domain.Product{}, fmt.Errorf("update product %d: %w", id, err)
		}
		return p, nil
	}
	if err := c.patchJSON(ctx, token, path, map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"price":       f.Price.StringFixed(2),
		"stock":       strconv.Itoa(f.Stock),
		"category":    strconv.FormatInt(f.Category, 10),
	}, &p); err != nil {
		return domain.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// DeleteProduct hard-removes a listing from the trader's set.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	if err := c.delete(ctx, token, fmt.Sprintf("products/%d/", id)); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}
