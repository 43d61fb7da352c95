package storefront

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/models"
	"tokoadmin/internal/notifications"
)

type upload struct {
	contentType string
	data        []byte
}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	products, err := s.products.GetAll()
	if err != nil {
		return s.notFoundOr500(c, err, "Products")
	}
	return c.JSON(models.ProductList{Products: products})
}

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	product, err := s.products.GetByID(c.Params("id"))
	if err != nil {
		return s.notFoundOr500(c, err, "Product")
	}
	return c.JSON(fiber.Map{"product": product})
}

func (s *Server) handleCreateProduct(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Expected a multipart form",
			"error":   err.Error(),
		})
	}
	draft, err := forms.ParseMultipartDraft(form)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product form",
			"error":   err.Error(),
		})
	}
	if resp := s.validationFailed(c, draft); resp != nil {
		return resp
	}

	caller := callerFrom(c)
	product := &models.Product{
		Title:          draft.Name,
		Category:       draft.Category,
		Description:    draft.Description,
		Brand:          draft.Brand,
		Specifications: draft.Specifications.Map(),
		Variants:       draft.ResolvedVariants(),
		Images:         s.storeImages(draft.Images, draft.Name),
		Status:         models.ProductPending,
		Seller:         &models.SellerRef{ID: caller.ID, Name: caller.FullName},
	}
	if err := s.products.Create(product); err != nil {
		return s.notFoundOr500(c, err, "Product")
	}

	s.notify(notifications.ProductRequest(*product))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (s *Server) handleUpdateProduct(c *fiber.Ctx) error {
	product, err := s.products.GetByID(c.Params("id"))
	if err != nil {
		return s.notFoundOr500(c, err, "Product")
	}

	var draft forms.ProductDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if resp := s.validationFailed(c, draft); resp != nil {
		return resp
	}

	product.Title = draft.Name
	product.Category = draft.Category
	product.Description = draft.Description
	product.Brand = draft.Brand
	product.Specifications = draft.Specifications.Map()
	product.Variants = draft.ResolvedVariants()
	if draft.ExistingImages != nil {
		product.Images = draft.ExistingImages
	}
	if err := s.products.Update(product); err != nil {
		return s.notFoundOr500(c, err, "Product")
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	if err := s.products.Delete(c.Params("id")); err != nil {
		return s.notFoundOr500(c, err, "Product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

func (s *Server) handleProductStatus(status models.ProductStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := s.products.UpdateStatus(id, status); err != nil {
			return s.notFoundOr500(c, err, "Product")
		}
		s.log.Info().Str("product", id).Str("status", string(status)).Msg("product status changed")
		return c.JSON(fiber.Map{"message": "Product status updated", "status": status})
	}
}

// storeImages keeps uploads in memory and returns their public references.
func (s *Server) storeImages(files []forms.ImageFile, alt string) []models.Image {
	images := make([]models.Image, 0, len(files))
	s.uploadsMu.Lock()
	defer s.uploadsMu.Unlock()
	for _, f := range files {
		name := uuid.NewString() + strings.ToLower(filepath.Ext(f.Filename))
		s.uploads[name] = upload{contentType: f.ContentType, data: f.Data}
		images = append(images, models.Image{URL: "/uploads/" + name, Alt: alt})
	}
	return images
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	s.uploadsMu.RLock()
	u, ok := s.uploads[c.Params("name")]
	s.uploadsMu.RUnlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Image not found"})
	}
	if u.contentType != "" {
		c.Set(fiber.HeaderContentType, u.contentType)
	}
	return c.Send(u.data)
}
