package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/services"
	"tokoadmin/internal/table"
	"tokoadmin/internal/viewmodels"
)

// SellerHandler serves the seller requests screen.
type SellerHandler struct {
	service *services.SellerService
	table   *table.Table[viewmodels.SellerRow]
	log     zerolog.Logger
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(service *services.SellerService, t *table.Table[viewmodels.SellerRow], log zerolog.Logger) *SellerHandler {
	return &SellerHandler{service: service, table: t, log: log}
}

// RegisterRoutes registers the seller routes.
func (h *SellerHandler) RegisterRoutes(router fiber.Router) {
	sellers := router.Group("/sellers")
	sellers.Get("/", h.HandleList)
	sellers.Get("/:id", h.HandleGet)
	sellers.Patch("/:id/accept", h.HandleAccept)
	sellers.Patch("/:id/reject", h.HandleReject)
}

// HandleList returns one page of the seller table.
func (h *SellerHandler) HandleList(c *fiber.Ctx) error {
	snap, err := h.service.List(c.UserContext(), c.QueryBool("refresh", false))
	return listing(c, h.table, snap, err)
}

// HandleGet returns the expanded seller panel.
func (h *SellerHandler) HandleGet(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve seller")
	}
	return c.JSON(fiber.Map{"seller": detail})
}

// HandleAccept approves a pending seller.
func (h *SellerHandler) HandleAccept(c *fiber.Ctx) error {
	if err := h.service.Accept(c.UserContext(), c.Params("id")); err != nil {
		h.log.Warn().Err(err).Str("seller", c.Params("id")).Msg("accept seller failed")
		return respondError(c, err, "Failed to accept seller")
	}
	return c.JSON(fiber.Map{"message": "Seller accepted"})
}

// HandleReject declines a pending seller.
func (h *SellerHandler) HandleReject(c *fiber.Ctx) error {
	if err := h.service.Reject(c.UserContext(), c.Params("id")); err != nil {
		h.log.Warn().Err(err).Str("seller", c.Params("id")).Msg("reject seller failed")
		return respondError(c, err, "Failed to reject seller")
	}
	return c.JSON(fiber.Map{"message": "Seller rejected"})
}
