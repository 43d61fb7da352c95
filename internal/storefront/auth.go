package storefront

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"tokoadmin/internal/models"
	"tokoadmin/internal/notifications"
	"tokoadmin/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("account is not registered with this role")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService registers users and issues session tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register hashes the password and stores the user. Sellers start PENDING.
func (s *AuthService) Register(user *models.User) error {
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if user.Role == models.RoleSeller && user.Status == "" {
		user.Status = models.SellerPending
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login checks the credentials and the chosen role, returning the user and a
// signed token.
func (s *AuthService) Login(email, password string, role models.Role) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, "", ErrRoleMismatch
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 token carrying id, fullname and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       user.ID,
		"fullname": user.Name,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Caller is the authenticated user of a storefront request.
type Caller struct {
	ID       string
	FullName string
	Role     models.Role
}

const callerKey = "caller"

// authRequired checks the Bearer token and stores the Caller in Locals.
func (s *Server) authRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.log.Debug().Err(err).Msg("token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		caller := Caller{}
		caller.ID, _ = claims["id"].(string)
		caller.FullName, _ = claims["fullname"].(string)
		role, _ := claims["role"].(string)
		caller.Role = models.Role(role)

		if len(roles) > 0 && !hasRole(caller.Role, roles) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You are not allowed to perform this action",
			})
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

func hasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func callerFrom(c *fiber.Ctx) Caller {
	caller, _ := c.Locals(callerKey).(Caller)
	return caller
}

type registerRequest struct {
	FullName string      `json:"fullname" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=customer seller admin"`
}

type loginRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=customer seller admin"`
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if resp := s.validationFailed(c, req); resp != nil {
		return resp
	}

	user := &models.User{
		Name:     req.FullName,
		Email:    strings.ToLower(req.Email),
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := s.auth.Register(user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Email already registered",
				"error":   err.Error(),
			})
		}
		s.log.Error().Err(err).Msg("error registering user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	if user.Role == models.RoleSeller {
		s.notify(notifications.SellerRequest(*user))
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue token",
			"error":   err.Error(),
		})
	}
	s.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"role":    user.Role,
		"token":   token,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if resp := s.validationFailed(c, req); resp != nil {
		return resp
	}

	user, token, err := s.auth.Login(strings.ToLower(req.Email), req.Password, req.Role)
	switch {
	case errors.Is(err, ErrRoleMismatch):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": fmt.Sprintf("You are not registered as %s", req.Role),
		})
	case err != nil:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
		})
	}

	s.setSessionCookie(c, token)
	return c.JSON(fiber.Map{
		"message": "Logged in successfully",
		"user":    user,
		"role":    user.Role,
		"token":   token,
	})
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.auth.tokenTTL),
		SameSite: "Lax",
	})
}
