package storefront

import (
	"github.com/gofiber/fiber/v2"

	"tokoadmin/internal/models"
)

func (s *Server) handleListSellers(c *fiber.Ctx) error {
	sellers, err := s.users.ListByRole(models.RoleSeller)
	if err != nil {
		return s.notFoundOr500(c, err, "Sellers")
	}
	return c.JSON(models.SellerList{Sellers: sellers})
}

func (s *Server) handleSellerStatus(status models.SellerStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		user, err := s.users.GetByID(id)
		if err != nil {
			return s.notFoundOr500(c, err, "Seller")
		}
		if user.Role != models.RoleSeller {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "User is not a seller",
			})
		}
		if err := s.users.UpdateStatus(id, status); err != nil {
			return s.notFoundOr500(c, err, "Seller")
		}
		user.Status = status
		s.log.Info().Str("seller", id).Str("status", string(status)).Msg("seller status changed")
		return c.JSON(fiber.Map{
			"message": "Seller status updated",
			"seller":  user,
		})
	}
}
