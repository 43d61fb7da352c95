package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/middleware"
	"tokoadmin/internal/models"
	"tokoadmin/internal/services"
	"tokoadmin/internal/table"
	"tokoadmin/internal/viewmodels"
)

// OrderHandler serves the order management screen.
type OrderHandler struct {
	service       *services.OrderService
	table         *table.Table[viewmodels.OrderRow]
	defaultUserID string
	log           zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, t *table.Table[viewmodels.OrderRow], defaultUserID string, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{service: service, table: t, defaultUserID: defaultUserID, log: log}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orders := router.Group("/orders")
	orders.Get("/", h.HandleList)
	orders.Get("/:id", h.HandleGet)
	orders.Patch("/:id/status", h.HandleUpdateStatus)
}

// userID picks whose orders are shown: ?user=, then the configured user,
// then the signed-in operator.
func (h *OrderHandler) userID(c *fiber.Ctx) string {
	if id := c.Query("user"); id != "" {
		return id
	}
	if h.defaultUserID != "" {
		return h.defaultUserID
	}
	identity, _ := middleware.IdentityFrom(c)
	return identity.ID
}

// HandleList returns one page of the order table.
func (h *OrderHandler) HandleList(c *fiber.Ctx) error {
	snap, err := h.service.List(c.UserContext(), h.userID(c), c.QueryBool("refresh", false))
	return listing(c, h.table, snap, err)
}

// HandleGet returns the expanded order panel.
func (h *OrderHandler) HandleGet(c *fiber.Ctx) error {
	row, detail, err := h.service.Get(c.UserContext(), h.userID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(fiber.Map{"order": row, "detail": detail})
}

// HandleUpdateStatus changes the status of an order.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	orderID := c.Params("id")
	if err := h.service.UpdateStatus(c.UserContext(), h.userID(c), orderID, body.Status); err != nil {
		h.log.Warn().Err(err).Str("order", orderID).Msg("order status update failed")
		return respondError(c, err, "Failed to update order status")
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"status":  body.Status,
	})
}
