// Package handlers exposes the console screens over HTTP.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/loader"
	"tokoadmin/internal/middleware"
	"tokoadmin/internal/models"
	"tokoadmin/internal/notifications"
	"tokoadmin/internal/services"
	"tokoadmin/internal/table"
	"tokoadmin/pkg/apiclient"
)

// Deps are the services the console routes need.
type Deps struct {
	Sellers       *services.SellerService
	Products      *services.ProductService
	Orders        *services.OrderService
	Auth          *services.AuthService
	Notifications *notifications.Service
	Tables        Tables
	CookieName    string
	// OrdersUserID selects whose orders the order screen lists when the
	// request does not say. Empty means the signed-in operator.
	OrdersUserID string
	Log          zerolog.Logger
}

// Router registers the console routes on app.
func Router(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	console := app.Group("/console")
	gate := middleware.SessionRequired(deps.Auth, deps.CookieName, deps.Log)

	authHandler := NewAuthHandler(deps.Auth, deps.CookieName, deps.Log)
	authHandler.RegisterRoutes(console, gate)

	NewNotificationHandler(deps.Notifications).RegisterRoutes(console.Group("/notifications", gate))

	screens := console.Group("", gate, middleware.RequireRole(models.RoleAdmin))
	NewSellerHandler(deps.Sellers, deps.Tables.Sellers, deps.Log).RegisterRoutes(screens)
	NewProductHandler(deps.Products, deps.Tables.Products, deps.Tables.Approvals, deps.Log).RegisterRoutes(screens)
	NewOrderHandler(deps.Orders, deps.Tables.Orders, deps.OrdersUserID, deps.Log).RegisterRoutes(screens)
}

// listing is the body of every table endpoint.
func listing[V any](c *fiber.Ctx, t *table.Table[V], snap loader.Snapshot[V], loadErr error) error {
	q, err := table.ParseQuery(c.Query, t.FilterFields())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid table query",
			"error":   err.Error(),
		})
	}
	page, err := t.Apply(snap.Data, q)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid table query",
			"error":   err.Error(),
		})
	}

	body := fiber.Map{
		"columns": t.Columns(),
		"page":    page,
		"loading": snap.Loading,
		"stale":   snap.Stale,
	}
	if !snap.LoadedAt.IsZero() {
		body["loadedAt"] = snap.LoadedAt
	}
	if loadErr != nil {
		if snap.LoadedAt.IsZero() {
			return respondError(c, loadErr, "Could not load data")
		}
		body["error"] = loadErr.Error()
	}
	return c.JSON(body)
}

// respondError maps service errors onto statuses in the usual
// {"message", "error"} shape.
func respondError(c *fiber.Ctx, err error, message string) error {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrActionNotAllowed):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, forms.ErrDuplicateKey),
		errors.Is(err, forms.ErrIndexOutOfRange):
		status = fiber.StatusBadRequest
	default:
		switch code := apiclient.StatusCode(err); {
		case code == fiber.StatusUnauthorized || code == fiber.StatusForbidden:
			status = code
		case code != 0:
			status = fiber.StatusBadGateway
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func confirmed(c *fiber.Ctx) bool {
	return c.QueryBool("confirm", false)
}
