// Package storefront is a small implementation of the storefront REST API the
// console administers. It backs local development and the integration tests.
package storefront

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/pkg/rabbitmq"
)

// DefaultCookieName is the session cookie set on login and register.
const DefaultCookieName = "technology-heaven-token"

// Options configures a Server.
type Options struct {
	DB         *gorm.DB
	Publisher  rabbitmq.Publisher // nil disables notifications
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	CookieName string
	AccessLog  bool // log every request with Fiber's logger middleware
	Quiet      bool // no Fiber startup banner
	Log        zerolog.Logger
}

// Server is the storefront double.
type Server struct {
	app        *fiber.App
	db         *gorm.DB
	users      repositories.UserRepository
	products   repositories.ProductRepository
	orders     *OrderService
	auth       *AuthService
	publisher  rabbitmq.Publisher
	cookieName string
	validate   *validator.Validate
	log        zerolog.Logger

	uploadsMu sync.RWMutex
	uploads   map[string]upload
}

// New migrates the schema and builds the Fiber app.
func New(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("storefront: DB is required")
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("storefront: JWT secret is required")
	}
	if err := opts.DB.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storefront schema: %w", err)
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}

	users := repositories.NewGORMUserRepository(opts.DB)
	products := repositories.NewGORMProductRepository(opts.DB)

	s := &Server{
		db:         opts.DB,
		users:      users,
		products:   products,
		orders:     NewOrderService(opts.DB),
		auth:       NewAuthService(users, opts.JWTSecret, opts.TokenTTL, opts.BcryptCost),
		publisher:  opts.Publisher,
		cookieName: opts.CookieName,
		validate:   validator.New(),
		log:        opts.Log.With().Str("component", "storefront").Logger(),
		uploads:    make(map[string]upload),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "storefront",
		BodyLimit:             16 << 20,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: opts.Quiet,
	})
	s.app.Use(recover.New())
	if opts.AccessLog {
		s.app.Use(logger.New())
	}
	s.routes()
	return s, nil
}

// App returns the Fiber app, e.g. for app.Listen or app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Auth exposes token issuing for seeding and tests.
func (s *Server) Auth() *AuthService { return s.auth }

func (s *Server) routes() {
	api := s.app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", s.handleRegister)
	auth.Post("/login", s.handleLogin)

	admin := s.authRequired(models.RoleAdmin)

	users := api.Group("/users")
	users.Get("/sellers", admin, s.handleListSellers)
	users.Patch("/:id/accept", admin, s.handleSellerStatus(models.SellerApproved))
	users.Patch("/:id/reject", admin, s.handleSellerStatus(models.SellerRejected))

	products := api.Group("/products")
	products.Get("/", s.handleListProducts)
	products.Get("/:id", s.handleGetProduct)
	products.Post("/", s.authRequired(models.RoleSeller, models.RoleAdmin), s.handleCreateProduct)
	products.Put("/:id", admin, s.handleUpdateProduct)
	products.Delete("/:id", admin, s.handleDeleteProduct)
	products.Patch("/:id/accept", admin, s.handleProductStatus(models.ProductActive))
	products.Patch("/:id/reject", admin, s.handleProductStatus(models.ProductRejected))

	order := api.Group("/order")
	order.Get("/user/:id", s.authRequired(), s.handleOrdersByUser)
	order.Post("/", s.authRequired(), s.handleCreateOrder)
	order.Patch("/:id", admin, s.handleUpdateOrderStatus)

	s.app.Get("/uploads/:name", s.handleUpload)
}

func (s *Server) notify(n models.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(rabbitmq.EventNewNotification, n); err != nil {
		s.log.Warn().Err(err).Str("type", string(n.Type)).Msg("failed to publish notification")
	}
}

// validationFailed writes a 400 with per-field messages when v is invalid and
// returns nil otherwise.
func (s *Server) validationFailed(c *fiber.Ctx, v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "error": err.Error()})
	}
	errorMessages := make(map[string]string)
	for _, e := range verrs {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func (s *Server) notFoundOr500(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": what + " not found",
		})
	}
	s.log.Error().Err(err).Msg(what + " request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
