package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/internal/models"
	"tokoadmin/internal/session"
	"tokoadmin/internal/state"
	"tokoadmin/pkg/apiclient"
)

type fakeRestorer map[string]session.Identity

func (f fakeRestorer) Restore(token string) (*session.Identity, *state.Store, error) {
	id, ok := f[token]
	if !ok {
		return nil, nil, session.ErrMalformed
	}
	return &id, state.NewStore(), nil
}

func newTestApp() *fiber.App {
	auth := fakeRestorer{
		"admin-token":  {ID: "a1", Role: models.RoleAdmin},
		"seller-token": {ID: "s1", Role: models.RoleSeller},
	}
	app := fiber.New()
	app.Use(SessionRequired(auth, "technology-heaven-token", zerolog.Nop()))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, _ := IdentityFrom(c)
		return c.JSON(fiber.Map{
			"id":       id.ID,
			"token":    TokenFrom(c),
			"upstream": apiclient.TokenFrom(c.UserContext()),
			"store":    StoreFrom(c) != nil,
		})
	})
	app.Get("/admin", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestSessionRequired(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		cookie string
		header string
		status int
	}{
		{name: "no session", status: http.StatusUnauthorized},
		{name: "cookie", cookie: "admin-token", status: http.StatusOK},
		{name: "bearer header", header: "Bearer seller-token", status: http.StatusOK},
		{name: "unknown token", cookie: "garbage", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "technology-heaven-token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestSessionRequired_ClearsBadCookie(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "technology-heaven-token", Value: "garbage"})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == "technology-heaven-token" && c.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRequireRole(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer seller-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "abc", bearer("Bearer abc"))
	assert.Empty(t, bearer("Basic abc"))
	assert.Empty(t, bearer(""))
}

func TestRequestToken(t *testing.T) {
	app := fiber.New()
	app.Post("/logout", func(c *fiber.Ctx) error {
		return c.SendString(RequestToken(c, "technology-heaven-token"))
	})

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie preferred", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "bearer fallback", header: "Bearer from-header", want: "from-header"},
		{name: "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "technology-heaven-token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
