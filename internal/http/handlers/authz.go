package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tengemart/internal/domain"
	applog "tengemart/internal/log"
	"tengemart/internal/session"
)

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

// Attach resolves the session's auth state on every request and stores it in
// locals for handlers and templates.
func Attach(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if st := sessions.Get(sid); st != nil {
				c.Locals("sess", st)
				c.Locals("user", st.User)
			}
		}
		return c.Next()
	}
}

// state returns the session auth state, nil when anonymous.
func state(c *fiber.Ctx) *session.State {
	st, _ := c.Locals("sess").(*session.State)
	return st
}

func currentUser(c *fiber.Ctx) *domain.User {
	if st := state(c); st != nil {
		return st.User
	}
	return nil
}

func token(c *fiber.Ctx) string {
	if st := state(c); st != nil {
		return st.Token
	}
	return ""
}

// RequireUser sends anonymous visitors to the login page.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if state(c) == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireOrderManager gates the trader-side order surface: traders, sales
// reps and admins.
func RequireOrderManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Redirect("/login")
		}
		if !u.ManagesOrders() {
			applog.Security(c, "access.denied.orders", map[string]any{"role": u.Role})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		return c.Next()
	}
}
