package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"tengemart/internal/domain"
	"tengemart/internal/http/handlers"
	"tengemart/internal/marketplace"
	"tengemart/internal/notifications"
	"tengemart/internal/session"
)

// deadWS is a websocket base nothing listens on; login tolerates the failed
// subscription and the tests that need a live channel bring their own server.
const deadWS = "ws://127.0.0.1:1"

func newViews() *html.Engine {
	engine := html.New("../../web/templates", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })
	return engine
}

// newApp wires the full route table against a fake backend, mirroring the
// production composition minus csrf and rate limits.
func newApp(t *testing.T, apiURL string) (*fiber.App, *session.Store) {
	t.Helper()

	api, err := marketplace.New(apiURL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	sessions := session.NewStore()
	hub := notifications.NewHub(deadWS, api)
	t.Cleanup(hub.Shutdown)
	deps := handlers.NewDeps(api, sessions, hub)

	app := fiber.New(fiber.Config{Views: newViews()})
	app.Use(handlers.Attach(sessions))

	app.Get("/", deps.ProductHandler.Home)
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)

	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	orders := app.Group("/orders", handlers.RequireUser())
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:id/success", deps.OrderHandler.Confirm)
	orders.Get("/:id/cancel", deps.OrderHandler.CancelConfirm)
	orders.Post("/:id/cancel", deps.OrderHandler.Cancel)
	orders.Post("/:id/pay", deps.OrderHandler.Pay)
	orders.Get("/:id/invoice", deps.OrderHandler.DownloadInvoice)
	app.Post("/invoices", handlers.RequireUser(), deps.OrderHandler.GenerateInvoice)
	app.Post("/product/:id/buy", handlers.RequireUser(), deps.OrderHandler.Buy)

	trading := app.Group("/trading/orders", handlers.RequireOrderManager())
	trading.Get("/", deps.OrderHandler.Manage)
	trading.Post("/:id/:action", deps.OrderHandler.Transition)

	listings := app.Group("/listings", handlers.RequireUser())
	listings.Get("/", deps.ProductHandler.MyListings)
	listings.Get("/new", deps.ProductHandler.NewForm)
	listings.Post("/", deps.ProductHandler.Create)
	listings.Get("/:id/edit", deps.ProductHandler.EditForm)
	listings.Post("/:id", deps.ProductHandler.Update)
	listings.Post("/:id/delete", deps.ProductHandler.Delete)

	profile := app.Group("/profile", handlers.RequireUser())
	profile.Get("/", deps.ProfileHandler.View)
	profile.Post("/", deps.ProfileHandler.Update)

	app.Get("/api/notifications", deps.NotificationHandler.Panel)
	app.Post("/api/notifications/open", deps.NotificationHandler.Open)
	app.Post("/api/notifications/clear", deps.NotificationHandler.Clear)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{})
	})

	return app, sessions
}

// signIn binds an authenticated session directly and returns its sid cookie.
func signIn(sessions *session.Store, u domain.User) string {
	sid := "test-sid-" + u.Username
	sessions.Bind(sid, &session.State{Token: "tok", User: &u})
	return sid
}

func get(t *testing.T, app *fiber.App, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func postForm(t *testing.T, app *fiber.App, path, sid, form string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
