package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tengemart/internal/domain"
)

// decimals have unexported fields; compare by value.
var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func fakeProduct(f *gofakeit.Faker, id int64) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       f.ProductName(),
		Description: f.Sentence(8),
		Price:       decimal.NewFromFloat(f.Price(100, 100000)).Round(2),
		Stock:       f.Number(1, 50),
		Category:    int64(f.Number(1, 5)),
		Trader:      int64(f.Number(1, 20)),
	}
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := New("127.0.0.1:8000/api")
	require.Error(t, err)
}

func TestLoginIsAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/users/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "aigerim", creds.Username)

		json.NewEncoder(w).Encode(TokenPair{Access: "acc", Refresh: "ref"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	pair, err := c.Login(context.Background(), Credentials{Username: "aigerim", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "acc", pair.Access)
	assert.Equal(t, "ref", pair.Refresh)
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(domain.User{ID: 1, Username: "aigerim", Role: domain.RoleCustomer})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	u, err := c.Profile(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)
}

func TestRejectedCarriesBackendText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"quantity": ["Not enough stock available."]}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateOrder(context.Background(), "tok", 1, 99)
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Equal(t, KindRejected, Classify(err))
	assert.Equal(t, "quantity: Not enough stock available.", Reason(err))
}

func TestBackendFailureHidesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "pq: connection refused"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Orders(context.Background(), "tok", OrderQuery{})
	require.Error(t, err)
	assert.Equal(t, KindBackend, Classify(err))
	// Internal detail never reaches the user.
	assert.Equal(t, "The marketplace is unavailable right now. Please try again.", Reason(err))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Categories(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Classify(err))
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail": "Given token not valid"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Profile(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestProductListAndPaging(t *testing.T) {
	f := gofakeit.New(11)
	first := make([]domain.Product, 10)
	for i := range first {
		first[i] = fakeProduct(f, int64(i+1))
	}
	second := []domain.Product{fakeProduct(f, 11)}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "", "1":
			assert.Equal(t, "phone", r.URL.Query().Get("search"))
			assert.Equal(t, "3", r.URL.Query().Get("category"))
			next := srv.URL + "/products/?page=2"
			json.NewEncoder(w).Encode(Page[domain.Product]{Count: 11, Next: &next, Results: first})
		case "2":
			prev := srv.URL + "/products/"
			json.NewEncoder(w).Encode(Page[domain.Product]{Count: 11, Previous: &prev, Results: second})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	page, err := c.Products(context.Background(), "", ProductQuery{Page: 1, Search: "phone", Category: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages())
	assert.True(t, page.HasNext())
	if diff := cmp.Diff(first, page.Results, decimalCmp); diff != "" {
		t.Errorf("first page mismatch (-want +got):\n%s", diff)
	}

	// The next reference is followed verbatim, never rebuilt.
	page2, err := c.ProductsAt(context.Background(), "", *page.Next)
	require.NoError(t, err)
	assert.True(t, page2.HasPrevious())
	if diff := cmp.Diff(second, page2.Results, decimalCmp); diff != "" {
		t.Errorf("second page mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Dombra", r.FormValue("title"))
		assert.Equal(t, "45000.00", r.FormValue("price"))
		assert.Equal(t, "3", r.FormValue("stock"))

		file, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "dombra.jpg", hdr.Filename)

		json.NewEncoder(w).Encode(domain.Product{ID: 7, Title: "Dombra"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	p, err := c.CreateProduct(context.Background(), "tok", ProductForm{
		Title:    "Dombra",
		Price:    decimal.NewFromInt(45000),
		Stock:    3,
		Category: 2,
		Image:    &Upload{Field: "image", Name: "dombra.jpg", Content: strings.NewReader("jpegbytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
}

func TestUpdateProductWithoutImageUsesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/products/7/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(domain.Product{ID: 7})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.UpdateProduct(context.Background(), "tok", 7, ProductForm{
		Title: "Dombra", Price: decimal.NewFromInt(40000), Stock: 2, Category: 2,
	})
	require.NoError(t, err)
}

func TestCreatePaymentSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/sales-orders/create_payment_session/", r.URL.Path)

		var req map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req["orderId"])

		fmt.Fprint(w, `{"checkout_url": "https://pay.example/session/abc"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	u, err := c.CreatePaymentSession(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/abc", u)
}

func TestCreatePaymentSessionEmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.CreatePaymentSession(context.Background(), "tok", 42)
	require.Error(t, err)
	assert.Equal(t, KindBackend, Classify(err))
}

func TestSalesOrderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/sales-orders/3/", r.URL.Path)
		fmt.Fprint(w, `{"id": 3, "status": "paid", "invoice": {"id": 4, "pdf_file": "/media/invoices/4.pdf"}}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	so, err := c.SalesOrder(context.Background(), "tok", 3)
	require.NoError(t, err)
	assert.True(t, so.IsPaid())
	require.NotNil(t, so.Invoice)
	assert.Equal(t, "/media/invoices/4.pdf", so.Invoice.PDFFile)
}

func TestOrderActionPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	require.NoError(t, c.OrderAction(context.Background(), "tok", 42, "approve"))
	assert.Equal(t, "/trading/orders/42/approve/", gotPath)
}
