package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/internal/handlers"
	"tokoadmin/internal/models"
	"tokoadmin/internal/notifications"
	"tokoadmin/internal/services"
	"tokoadmin/internal/state"
	"tokoadmin/internal/storefront"
	"tokoadmin/internal/storefront/storefronttest"
	"tokoadmin/pkg/apiclient"
)

const cookieName = storefront.DefaultCookieName

type console struct {
	app      *fiber.App
	registry *state.Registry
}

func newConsole(t *testing.T, upstreamURL string) *console {
	t.Helper()
	log := zerolog.Nop()
	api := apiclient.New(apiclient.Config{BaseURL: upstreamURL, Timeout: 5 * time.Second}, log)
	registry := state.NewRegistry()

	app := fiber.New()
	handlers.Router(app, handlers.Deps{
		Sellers:       services.NewSellerService(api, log),
		Products:      services.NewProductService(api, log),
		Orders:        services.NewOrderService(api, log),
		Auth:          services.NewAuthService(api, registry, cookieName, storefronttest.Secret, log),
		Notifications: notifications.NewService(registry, nil, log),
		Tables:        handlers.NewTables(10),
		CookieName:    cookieName,
		Log:           log,
	})
	return &console{app: app, registry: registry}
}

func (c *console) do(t *testing.T, method, path string, body any, session *http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(t, req, session)
}

func (c *console) send(t *testing.T, req *http.Request, session *http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	if session != nil {
		req.AddCookie(session)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (c *console) login(t *testing.T, email string, role models.Role) *http.Cookie {
	t.Helper()
	resp, body := c.do(t, http.MethodPost, "/console/auth/login", map[string]string{
		"email": email, "password": storefronttest.Password, "role": string(role),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	for _, ck := range resp.Cookies() {
		if ck.Name == cookieName {
			return &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func page(t *testing.T, body map[string]any) ([]any, int) {
	t.Helper()
	p, ok := body["page"].(map[string]any)
	require.True(t, ok, body)
	rows, _ := p["rows"].([]any)
	return rows, int(p["total"].(float64))
}

func TestHealth(t *testing.T) {
	c := newConsole(t, "http://127.0.0.1:1/api/v1")
	resp, body := c.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestLocalAuthChecksNeverReachUpstream(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTeapot)
	}))
	defer upstream.Close()
	c := newConsole(t, upstream.URL)

	resp, body := c.do(t, http.MethodPost, "/console/auth/login", map[string]string{
		"email": "ada@example.test", "password": "secret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please select a user type", body["message"])

	resp, body = c.do(t, http.MethodPost, "/console/auth/register", map[string]string{
		"fullname": "Ada", "email": "ada@example.test", "phone": "1", "password": "secret1",
		"confirmPassword": "secret2", "role": "seller",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Passwords do not match", body["message"])

	assert.Zero(t, hits.Load())
}

func TestScreensRequireAdminSession(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)

	resp, _ := c.do(t, http.MethodGet, "/console/sellers", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.do(t, http.MethodGet, "/console/sellers", nil, &http.Cookie{Name: cookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	seller := c.login(t, inst.Seed.Sellers[1].Email, models.RoleSeller)
	resp, _ = c.do(t, http.MethodGet, "/console/sellers", nil, seller)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := c.do(t, http.MethodGet, "/console/auth/me", nil, seller)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "seller", body["identity"].(map[string]any)["role"])
}

func TestSellerScreen(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)

	resp, body := c.do(t, http.MethodGet, "/console/sellers", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	_, total := page(t, body)
	assert.Equal(t, 3, total)

	resp, body = c.do(t, http.MethodGet, "/console/sellers?status=PENDING", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, total = page(t, body)
	assert.Equal(t, 2, total)

	resp, body = c.do(t, http.MethodGet, "/console/sellers?q=chip", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows, total := page(t, body)
	require.Equal(t, 1, total)
	assert.Equal(t, "Chip Hub", rows[0].(map[string]any)["businessName"])

	resp, _ = c.do(t, http.MethodGet, "/console/sellers?rows=7", nil, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	id := inst.Seed.Sellers[0].ID
	resp, body = c.do(t, http.MethodPatch, "/console/sellers/"+id+"/accept", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = c.do(t, http.MethodGet, "/console/sellers/"+id, nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	seller := body["seller"].(map[string]any)
	assert.Equal(t, "APPROVED", seller["status"])
	assert.Empty(t, seller["actions"])

	resp, _ = c.do(t, http.MethodPatch, "/console/sellers/"+id+"/reject", nil, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProductScreens(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range [][2]string{
		{"name", `"Arc A770"`}, {"category", `"GPU"`}, {"price", "349"}, {"stock", "8"},
		{"description", `"16GB Intel card"`}, {"specifications", `{"memory":{"size":16,"unit":"GB"}}`},
		{"variants", "[]"}, {"brand", `"Intel"`},
	} {
		require.NoError(t, w.WriteField(f[0], f[1]))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="a770.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/console/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, body := c.send(t, req, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = c.do(t, http.MethodGet, "/console/products?q=arc", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows, total := page(t, body)
	require.Equal(t, 1, total)
	created := rows[0].(map[string]any)
	assert.Equal(t, "Intel", created["brand"])
	assert.Equal(t, "₹349", created["priceLabel"])
	id := created["id"].(string)

	resp, body = c.do(t, http.MethodGet, "/console/products/"+id, nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Intel Arc A770", body["product"].(map[string]any)["heading"])

	resp, body = c.do(t, http.MethodGet, "/console/approvals?reviewable=true&sort=price&order=desc", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows, total = page(t, body)
	assert.Equal(t, 3, total, "pending, inactive and the new product")
	assert.Equal(t, "Ryzen 9 7950X", rows[0].(map[string]any)["name"])

	resp, _ = c.do(t, http.MethodPatch, "/console/approvals/"+id+"/accept", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = c.do(t, http.MethodPatch, "/console/approvals/"+id+"/accept", nil, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = c.do(t, http.MethodDelete, "/console/products/"+id, nil, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = c.do(t, http.MethodDelete, "/console/products/"+id+"?confirm=true", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = c.do(t, http.MethodGet, "/console/products/"+id, nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEditAndValidation(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)
	id := inst.Seed.Products[0].ID

	resp, body := c.do(t, http.MethodGet, "/console/products/"+id+"/draft", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	draft := body["draft"].(map[string]any)
	draft["name"] = "RTX 4090 Founders Edition"

	resp, body = c.do(t, http.MethodPut, "/console/products/"+id, draft, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = c.do(t, http.MethodGet, "/console/products/"+id, nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NVIDIA RTX 4090 Founders Edition", body["product"].(map[string]any)["heading"])

	resp, body = c.do(t, http.MethodPost, "/console/products", map[string]any{"category": "Monitor"}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestOrderScreen(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)
	user := inst.Seed.Customer.ID
	orderID := inst.Seed.Orders[0].ID

	resp, body := c.do(t, http.MethodGet, "/console/orders?user="+user, nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	_, total := page(t, body)
	assert.Equal(t, 2, total)

	path := fmt.Sprintf("/console/orders/%s/status?user=%s", orderID, user)
	resp, body = c.do(t, http.MethodPatch, path, map[string]string{"status": "Delivered"}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, _ = c.do(t, http.MethodPatch, path, map[string]string{"status": "Lost"}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = c.do(t, http.MethodGet, "/console/orders/"+orderID+"?user="+user, nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Delivered", body["order"].(map[string]any)["status"])
	timeline := body["detail"].(map[string]any)["timeline"].([]any)
	assert.Len(t, timeline, 3, "delivery stamps shipping as well")
}

func TestNotificationsAndLogout(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)

	for i := 0; i < 12; i++ {
		c.registry.Broadcast(models.Notification{ID: fmt.Sprint(i), Type: models.NotificationSellerRequest, Timestamp: time.Now()})
	}

	resp, body := c.do(t, http.MethodGet, "/console/notifications", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 10)
	assert.Equal(t, 12.0, body["unread"])
	assert.Equal(t, "11", body["items"].([]any)[0].(map[string]any)["id"])

	resp, body = c.do(t, http.MethodPost, "/console/notifications/read", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, body["unread"])

	resp, _ = c.do(t, http.MethodPost, "/console/auth/logout", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, ok := c.registry.Lookup(inst.Seed.Admin.ID)
	assert.False(t, ok)
}

func TestForgedTokenIsRejected(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)
	resp, _ := c.do(t, http.MethodGet, "/console/sellers", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, id := range []string{"attacker", inst.Seed.Admin.ID} {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":   id,
			"role": "admin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("not-the-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/console/sellers", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		resp, _ = c.send(t, req, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, id)

		resp, _ = c.do(t, http.MethodGet, "/console/sellers", nil, &http.Cookie{Name: cookieName, Value: forged})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, id)
	}
}

func TestLogoutWithBearerToken(t *testing.T) {
	inst := storefronttest.Start(t)
	c := newConsole(t, inst.URL)
	admin := c.login(t, inst.Seed.Admin.Email, models.RoleAdmin)
	_, ok := c.registry.Lookup(inst.Seed.Admin.ID)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPost, "/console/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+admin.Value)
	resp, body := c.send(t, req, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	_, ok = c.registry.Lookup(inst.Seed.Admin.ID)
	assert.False(t, ok)
}
