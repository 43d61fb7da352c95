package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"tokoadmin/internal/models"
	"tokoadmin/internal/session"
	"tokoadmin/internal/state"
	"tokoadmin/pkg/apiclient"
)

const (
	localIdentity = "identity"
	localToken    = "token"
	localStore    = "store"
)

// Restorer turns a session token back into the operator and their state.
type Restorer interface {
	Restore(token string) (*session.Identity, *state.Store, error)
}

// SessionRequired reads the session cookie (or a Bearer header), derives the
// operator and stores it in the request locals. Requests without a derivable
// session get 401 and lose the cookie.
func SessionRequired(auth Restorer, cookieName string, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := RequestToken(c, cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please log in",
			})
		}

		identity, store, err := auth.Restore(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("session rejected")
			c.ClearCookie(cookieName)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
				"error":   err.Error(),
			})
		}

		c.Locals(localIdentity, *identity)
		c.Locals(localToken, token)
		c.Locals(localStore, store)
		c.SetUserContext(apiclient.WithToken(c.UserContext(), token))
		return c.Next()
	}
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please log in",
			})
		}
		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this page",
		})
	}
}

// IdentityFrom returns the operator set by SessionRequired.
func IdentityFrom(c *fiber.Ctx) (session.Identity, bool) {
	id, ok := c.Locals(localIdentity).(session.Identity)
	return id, ok
}

// TokenFrom returns the session token set by SessionRequired.
func TokenFrom(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}

// StoreFrom returns the operator's state store set by SessionRequired.
func StoreFrom(c *fiber.Ctx) *state.Store {
	store, _ := c.Locals(localStore).(*state.Store)
	return store
}

// RequestToken returns the session token of the request: the session cookie,
// or else a Bearer Authorization header.
func RequestToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}
	return bearer(c.Get(fiber.HeaderAuthorization))
}

func bearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
