package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"tengemart/internal/config"
	"tengemart/internal/http/handlers"
	applog "tengemart/internal/log"
	"tengemart/internal/marketplace"
	"tengemart/internal/notifications"
	"tengemart/internal/session"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	api, err := marketplace.New(cfg.APIBaseURL)
	if err != nil {
		log.Fatal(err)
	}
	sessions := session.NewStore()
	hub := notifications.NewHub(cfg.WSBaseURL, api)
	defer hub.Shutdown()

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard; product images ride through this process.
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.Attach(sessions))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// JSON panel endpoints are same-origin GET/POST driven by page
			// script; forms carry the token.
			return c.Path() == "/api/notifications/open" || c.Path() == "/api/notifications/clear"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(api, sessions, hub)

	// Public pages
	app.Get("/", deps.ProductHandler.Home)
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)

	// Auth (login throttled)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	// Customer orders
	orders := app.Group("/orders", handlers.RequireUser())
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:id/success", deps.OrderHandler.Confirm)
	orders.Get("/:id/cancel", deps.OrderHandler.CancelConfirm)
	orders.Post("/:id/cancel", deps.OrderHandler.Cancel)
	orders.Post("/:id/pay", deps.OrderHandler.Pay)
	orders.Get("/:id/invoice", deps.OrderHandler.DownloadInvoice)
	app.Post("/invoices", handlers.RequireUser(), deps.OrderHandler.GenerateInvoice)
	app.Post("/product/:id/buy", handlers.RequireUser(), deps.OrderHandler.Buy)

	// Trader-side order management
	trading := app.Group("/trading/orders", handlers.RequireOrderManager())
	trading.Get("/", deps.OrderHandler.Manage)
	trading.Post("/:id/:action", deps.OrderHandler.Transition)

	// Listings
	listings := app.Group("/listings", handlers.RequireUser())
	listings.Get("/", deps.ProductHandler.MyListings)
	listings.Get("/new", deps.ProductHandler.NewForm)
	listings.Post("/", deps.ProductHandler.Create)
	listings.Get("/:id/edit", deps.ProductHandler.EditForm)
	listings.Post("/:id", deps.ProductHandler.Update)
	listings.Post("/:id/delete", deps.ProductHandler.Delete)

	// Profile
	profile := app.Group("/profile", handlers.RequireUser())
	profile.Get("/", deps.ProfileHandler.View)
	profile.Post("/", deps.ProfileHandler.Update)
	profile.Post("/avatar", deps.ProfileHandler.Avatar)

	// Notification panel
	app.Get("/api/notifications", deps.NotificationHandler.Panel)
	app.Post("/api/notifications/open", deps.NotificationHandler.Open)
	app.Post("/api/notifications/clear", deps.NotificationHandler.Clear)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(cfg.HTTPAddr))
}
