package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/forms"
	"tokoadmin/internal/middleware"
	"tokoadmin/internal/services"
)

// AuthHandler handles login, registration and logout of console operators.
type AuthHandler struct {
	service    *services.AuthService
	cookieName string
	log        zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *services.AuthService, cookieName string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: service, cookieName: cookieName, log: log}
}

// RegisterRoutes registers the auth routes. gate guards /auth/me.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, gate fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/login", h.HandleLogin)
	auth.Post("/register", h.HandleRegister)
	auth.Post("/logout", h.HandleLogout)
	auth.Get("/me", gate, h.HandleMe)
}

// HandleLogin signs an operator in and sets the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var form forms.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	login, err := h.service.Login(c.UserContext(), form)
	if err != nil {
		return h.authFailed(c, err)
	}
	h.setSessionCookie(c, login)
	return c.JSON(fiber.Map{
		"message":  "Logged in successfully",
		"identity": login.Identity,
		"state":    login.State,
	})
}

// HandleRegister creates an account upstream and signs it in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var form forms.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	login, err := h.service.Register(c.UserContext(), form)
	if err != nil {
		return h.authFailed(c, err)
	}
	h.setSessionCookie(c, login)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Registered successfully",
		"identity": login.Identity,
		"state":    login.State,
	})
}

// HandleLogout clears the cookie and the operator's state. It works with an
// already expired session too.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if token := middleware.RequestToken(c, h.cookieName); token != "" {
		if identity, _, err := h.service.Restore(token); err == nil {
			h.service.Logout(identity.ID)
		}
	}
	c.ClearCookie(h.cookieName)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleMe returns the signed-in operator and their state.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)
	body := fiber.Map{"identity": identity}
	if store := middleware.StoreFrom(c); store != nil {
		body["state"] = store.State()
	}
	return c.JSON(body)
}

func (h *AuthHandler) authFailed(c *fiber.Ctx, err error) error {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		body := fiber.Map{"message": authErr.Message}
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			body["errors"] = verr.Fields
		}
		return c.Status(authErr.StatusCode).JSON(body)
	}
	h.log.Error().Err(err).Msg("authentication error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Authentication failed",
		"error":   err.Error(),
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, login *services.Login) {
	cookie := &fiber.Cookie{
		Name:     h.cookieName,
		Value:    login.Token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if !login.Identity.ExpiresAt.IsZero() {
		cookie.Expires = login.Identity.ExpiresAt
	} else {
		cookie.Expires = time.Now().Add(24 * time.Hour)
	}
	c.Cookie(cookie)
}
