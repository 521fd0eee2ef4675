package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	applog "tengemart/internal/log"
	"tengemart/internal/marketplace"
	"tengemart/internal/notifications"
	"tengemart/internal/session"
	"tengemart/internal/validate"
)

type AuthHandler struct {
	API      *marketplace.Client
	Sessions *session.Store
	Hub      *notifications.Hub
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	username, okU := validate.Username(c.FormValue("username"))
	pass := c.FormValue("password")
	if !okU || pass == "" {
		applog.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "bad_format"})
		return render(c.Status(401), "login", fiber.Map{"Err": "Invalid username or password"})
	}

	pair, err := h.API.Login(c.Context(), marketplace.Credentials{Username: username, Password: pass})
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"username": username})
		return render(c.Status(401), "login", fiber.Map{"Err": "Invalid username or password"})
	}

	// A profile failure right after login means the token is unusable; treat
	// it the same as bad credentials rather than half-binding a session.
	user, err := h.API.Profile(c.Context(), pair.Access)
	if err != nil {
		applog.Error(c, "auth.profile.fail", err, nil)
		return render(c.Status(401), "login", fiber.Map{"Err": "Could not sign you in. Please try again."})
	}

	h.Sessions.Bind(sid, &session.State{Token: pair.Access, User: &user})

	// Live notifications are best-effort; browsing works without them.
	if _, err := h.Hub.Subscribe(c.Context(), sid, pair.Access); err != nil {
		applog.Error(c, "notifications.subscribe.fail", err, nil)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"username": username, "role": user.Role})
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	username, okU := validate.Username(c.FormValue("username"))
	email, okE := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")
	if !okU || !okE || !validate.Password(pass) {
		applog.Security(c, "auth.register.fail", map[string]any{"username": username, "reason": "bad_format"})
		return render(c.Status(400), "register", fiber.Map{"Err": "Please check the form and try again"})
	}

	err := h.API.Register(c.Context(), marketplace.Registration{Username: username, Email: email, Password: pass})
	if err != nil {
		applog.Error(c, "auth.register.fail", err, map[string]any{"username": username})
		return render(c.Status(400), "register", fiber.Map{"Err": marketplace.Reason(err)})
	}

	applog.Audit(c, "auth.register.success", map[string]any{"username": username})
	return c.Redirect("/login")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Hub.Drop(sid)
	h.Sessions.Drop(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
