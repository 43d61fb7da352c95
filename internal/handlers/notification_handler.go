package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tokoadmin/internal/middleware"
	"tokoadmin/internal/notifications"
)

// NotificationHandler serves the notification dropdown.
type NotificationHandler struct {
	service *notifications.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *notifications.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers the notification routes on an already gated router.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleFeed)
	router.Post("/read", h.HandleMarkRead)
}

// HandleFeed returns the operator's notifications and unread count.
func (h *NotificationHandler) HandleFeed(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)
	return c.JSON(h.service.Feed(identity.ID))
}

// HandleMarkRead resets the unread counter.
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)
	return c.JSON(h.service.MarkRead(identity.ID))
}
