package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tengemart/internal/domain"
	"tengemart/internal/notifications"
)

// NotificationHandler serves the bell panel as JSON; the page polls it and
// renders the dropdown client-side.
type NotificationHandler struct {
	Hub *notifications.Hub
}

type panelResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
	Stale         bool                  `json:"stale"`
}

func (h *NotificationHandler) Panel(c *fiber.Ctx) error {
	in := h.Hub.Inbox(c.Cookies("sid"))
	if in == nil {
		return c.JSON(panelResponse{Notifications: []domain.Notification{}})
	}
	items, unread := in.Snapshot()
	return c.JSON(panelResponse{Notifications: items, Unread: unread, Stale: in.Stale()})
}

// Open mirrors the panel-open gesture: local unread reset plus the
// best-effort mark-as-read call.
func (h *NotificationHandler) Open(c *fiber.Ctx) error {
	h.Hub.Open(c.Context(), c.Cookies("sid"), token(c))
	return c.JSON(fiber.Map{"ok": true})
}

// Clear empties the local list only.
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if in := h.Hub.Inbox(c.Cookies("sid")); in != nil {
		in.Clear()
	}
	return c.JSON(fiber.Map{"ok": true})
}
