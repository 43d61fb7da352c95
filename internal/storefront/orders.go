package storefront

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrEmptyOrder        = errors.New("order has no items")
)

// OrderService handles order placement and fulfilment.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// OrderLine is one requested item of a new order.
type OrderLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the body of POST /order.
type CreateOrderRequest struct {
	Items           []OrderLine            `json:"items" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

// ByUser lists the orders of userID.
func (s *OrderService) ByUser(userID string) ([]models.Order, error) {
	return repositories.NewGORMOrderRepository(s.db).GetByUser(userID)
}

// Create checks stock, prices every line from the product's first variant,
// decrements stock and stores the order in one transaction.
func (s *OrderService) Create(userID string, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var created *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := repositories.NewGORMProductRepository(tx)
		orders := repositories.NewGORMOrderRepository(tx)

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := products.GetByID(line.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", line.ProductID, err)
			}
			if len(product.Variants) == 0 || product.Variants[0].Stock < line.Quantity {
				available := 0
				if len(product.Variants) > 0 {
					available = product.Variants[0].Stock
				}
				return fmt.Errorf("%w for product %s (requested: %d, available: %d)",
					ErrInsufficientStock, product.Title, line.Quantity, available)
			}

			price := product.Variants[0].Price
			product.Variants[0].Stock -= line.Quantity
			if err := products.Update(product); err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				Product:  models.ProductRef{ID: product.ID, Title: product.Title},
				Quantity: line.Quantity,
				Price:    price,
			})
			total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order := &models.Order{
			UserID:          userID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			TotalAmount:     total.InexactFloat64(),
			Status:          models.OrderPending,
			PlacedAt:        time.Now(),
		}
		if err := orders.Create(order); err != nil {
			return fmt.Errorf("failed to create order in repository: %w", err)
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStatus changes the status, stamping shippedAt and deliveredAt the
// first time an order reaches those states.
func (s *OrderService) UpdateStatus(id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	orders := repositories.NewGORMOrderRepository(s.db)
	order, err := orders.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = status
	switch status {
	case models.OrderShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case models.OrderDelivered:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}

	if err := orders.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return order, nil
}

func (s *Server) handleOrdersByUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	caller := callerFrom(c)
	if caller.Role != models.RoleAdmin && caller.ID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You can only view your own orders",
		})
	}

	orders, err := s.orders.ByUser(userID)
	if err != nil {
		return s.notFoundOr500(c, err, "Orders")
	}
	return c.JSON(models.OrderList{Orders: orders})
}

func (s *Server) handleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if resp := s.validationFailed(c, req); resp != nil {
		return resp
	}

	order, err := s.orders.Create(callerFrom(c).ID, req)
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Insufficient stock",
			"error":   err.Error(),
		})
	case err != nil:
		return s.notFoundOr500(c, err, "Product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (s *Server) handleUpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := s.orders.UpdateStatus(c.Params("id"), req.Status)
	if errors.Is(err, ErrInvalidStatus) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order status",
			"error":   err.Error(),
		})
	}
	if err != nil {
		return s.notFoundOr500(c, err, "Order")
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}
