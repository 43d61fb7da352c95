package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/loader"
	"tokoadmin/internal/services"
	"tokoadmin/internal/table"
	"tokoadmin/internal/viewmodels"
)

// ProductHandler serves the product management and product approval screens.
type ProductHandler struct {
	service   *services.ProductService
	products  *table.Table[viewmodels.ProductRow]
	approvals *table.Table[viewmodels.ProductRow]
	log       zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, products, approvals *table.Table[viewmodels.ProductRow], log zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: service, products: products, approvals: approvals, log: log}
}

// RegisterRoutes registers the product and approval routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Get("/:id", h.HandleGet)
	products.Get("/:id/draft", h.HandleDraft)
	products.Post("/", h.HandleCreate)
	products.Put("/:id", h.HandleUpdate)
	products.Delete("/:id", h.HandleDelete)

	approvals := router.Group("/approvals")
	approvals.Get("/", h.HandleApprovals)
	approvals.Get("/:id", h.HandleGet)
	approvals.Patch("/:id/accept", h.HandleAccept)
	approvals.Patch("/:id/reject", h.HandleReject)
}

// HandleList returns one page of the product table.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	snap, err := h.service.List(c.UserContext(), c.QueryBool("refresh", false))
	return listing(c, h.products, snap, err)
}

// HandleApprovals lists the same products with the approval columns.
func (h *ProductHandler) HandleApprovals(c *fiber.Ctx) error {
	snap, err := h.service.List(c.UserContext(), c.QueryBool("refresh", false))
	if c.QueryBool("reviewable", false) {
		snap = reviewable(snap)
	}
	return listing(c, h.approvals, snap, err)
}

func reviewable(snap loader.Snapshot[viewmodels.ProductRow]) loader.Snapshot[viewmodels.ProductRow] {
	rows := make([]viewmodels.ProductRow, 0, len(snap.Data))
	for _, r := range snap.Data {
		if r.Reviewable() {
			rows = append(rows, r)
		}
	}
	snap.Data = rows
	return snap
}

// HandleGet returns the expanded product panel.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	row, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(fiber.Map{"product": viewmodels.NewProductDetail(row)})
}

// HandleDraft returns the edit form prefilled from the product.
func (h *ProductHandler) HandleDraft(c *fiber.Ctx) error {
	row, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(fiber.Map{"draft": forms.DraftFromRow(row)})
}

// HandleCreate accepts the add-product form either as multipart, with image
// files under "images", or as a JSON draft without images.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var draft *forms.ProductDraft
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid multipart form",
				"error":   err.Error(),
			})
		}
		if draft, err = forms.ParseMultipartDraft(form); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid product form",
				"error":   err.Error(),
			})
		}
	} else {
		draft = forms.NewProductDraft()
		if err := c.BodyParser(draft); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	if err := h.service.Create(c.UserContext(), draft); err != nil {
		h.log.Warn().Err(err).Str("name", draft.Name).Msg("add product failed")
		return respondError(c, err, "Failed to add product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product added successfully"})
}

// HandleUpdate submits the edit-product form.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	draft := forms.NewProductDraft()
	if err := c.BodyParser(draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.Update(c.UserContext(), c.Params("id"), draft); err != nil {
		h.log.Warn().Err(err).Str("product", c.Params("id")).Msg("update product failed")
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(fiber.Map{"message": "Product updated successfully"})
}

// HandleDelete needs ?confirm=true.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id"), confirmed(c)); err != nil {
		h.log.Warn().Err(err).Str("product", c.Params("id")).Msg("delete product failed")
		return respondError(c, err, "Failed to delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// HandleAccept approves a product awaiting review.
func (h *ProductHandler) HandleAccept(c *fiber.Ctx) error {
	if err := h.service.Accept(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to accept product")
	}
	return c.JSON(fiber.Map{"message": "Product accepted"})
}

// HandleReject declines a product awaiting review.
func (h *ProductHandler) HandleReject(c *fiber.Ctx) error {
	if err := h.service.Reject(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to reject product")
	}
	return c.JSON(fiber.Map{"message": "Product rejected"})
}
