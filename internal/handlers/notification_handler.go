package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
)

type NotificationHandler struct {
	Inbox *notify.Service
}

func NewNotificationHandler(s *notify.Service) *NotificationHandler {
	return &NotificationHandler{Inbox: s}
}

func (h *NotificationHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	r.Get("/notifications", chain(authMiddleware, h.List)...)
	r.Get("/notifications/unread-count", chain(authMiddleware, h.UnreadCount)...)
	r.Patch("/notifications/read-all", chain(authMiddleware, h.MarkAllRead)...)
	r.Patch("/notifications/:id/read", chain(authMiddleware, h.MarkRead)...)
}

// GET /api/notifications?unread=true&limit=50
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	unreadOnly := c.QueryBool("unread", false)
	list, err := h.Inbox.List(c.UserContext(), p.UserID, unreadOnly, queryInt(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	n, err := h.Inbox.UnreadCount(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", fiber.Map{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Inbox.MarkRead(c.UserContext(), p.UserID, id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	n, err := h.Inbox.MarkAllRead(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Notifications marked as read", fiber.Map{"updated": n})
}
