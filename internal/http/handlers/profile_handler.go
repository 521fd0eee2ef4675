package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tengemart/internal/domain"
	applog "tengemart/internal/log"
	"tengemart/internal/marketplace"
	"tengemart/internal/session"
	"tengemart/internal/validate"
)

type ProfileHandler struct {
	API      *marketplace.Client
	Sessions *session.Store
}

func (h *ProfileHandler) View(c *fiber.Ctx) error {
	u, err := h.API.Profile(c.Context(), token(c))
	if err != nil {
		// An auth failure here means the token went stale; show the page as
		// signed out rather than an error banner.
		if marketplace.IsUnauthorized(err) {
			h.Sessions.Drop(c.Cookies("sid"))
			return c.Redirect("/login")
		}
		applog.Upstream(c, "profile.load", string(marketplace.Classify(err)), err)
		return render(c, "profile", fiber.Map{"Err": "Could not load your profile."})
	}
	h.refresh(c, u)
	return render(c, "profile", fiber.Map{"P": u, "Balance": domain.FormatPrice(u.Balance)})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var patch marketplace.ProfilePatch
	if email, ok := validate.Email(c.FormValue("email")); ok {
		patch.Email = &email
	}
	if first := c.FormValue("first_name"); first != "" {
		patch.FirstName = &first
	}
	if last := c.FormValue("last_name"); last != "" {
		patch.LastName = &last
	}

	u, err := h.API.UpdateProfile(c.Context(), token(c), patch)
	if err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return render(c.Status(400), "profile", fiber.Map{"Err": marketplace.Reason(err)})
	}
	h.refresh(c, u)
	applog.Audit(c, "profile.update", nil)
	return c.Redirect("/profile")
}

func (h *ProfileHandler) Avatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil || fh == nil {
		return c.Redirect("/profile?msg=" + escape("Choose an image to upload."))
	}
	f, err := fh.Open()
	if err != nil {
		return c.Redirect("/profile?msg=" + escape("Could not read the uploaded image."))
	}

	u, err := h.API.UpdateAvatar(c.Context(), token(c), fh.Filename, f)
	if err != nil {
		applog.Error(c, "profile.avatar.fail", err, nil)
		return c.Redirect("/profile?msg=" + escape(marketplace.Reason(err)))
	}
	h.refresh(c, u)
	applog.Audit(c, "profile.avatar", nil)
	return c.Redirect("/profile")
}

// refresh keeps the session's cached identity in step with what the backend
// just returned.
func (h *ProfileHandler) refresh(c *fiber.Ctx, u domain.User) {
	if st := state(c); st != nil {
		h.Sessions.Bind(c.Cookies("sid"), &session.State{Token: st.Token, User: &u})
	}
}
