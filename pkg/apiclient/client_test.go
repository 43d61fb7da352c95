package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoadmin/pkg/apiclient"
)

func newServer(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api/v1/", Timeout: time.Second}, zerolog.Nop())
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sellers":[{"_id":"s1","name":"Asha"}]}`))
	})

	var out struct {
		Sellers []struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		} `json:"sellers"`
	}
	ctx := apiclient.WithToken(context.Background(), "abc.def.ghi")
	require.NoError(t, client.GetJSON(ctx, "/users/sellers", &out))

	assert.Equal(t, "Bearer abc.def.ghi", gotAuth)
	assert.Equal(t, "/api/v1/users/sellers", gotPath)
	require.Len(t, out.Sellers, 1)
	assert.Equal(t, "Asha", out.Sellers[0].Name)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.GetJSON(context.Background(), "/products", nil))
	assert.Empty(t, gotAuth)
}

func TestDo_StatusError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Admins only"}`))
	})

	_, err := client.SendJSON(context.Background(), http.MethodPatch, "/users/s1/accept", nil, nil)
	require.Error(t, err)

	var se *apiclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, "Admins only", se.Message)
	assert.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
}

func TestSendJSON_EncodesBodyAndExposesCookies(t *testing.T) {
	var got map[string]string
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		http.SetCookie(w, &http.Cookie{Name: "technology-heaven-token", Value: "tok"})
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	resp, err := client.SendJSON(context.Background(), http.MethodPost, "/auth/login",
		map[string]string{"email": "a@b.c", "role": "admin"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "admin", got["role"])
	cookie := resp.Cookie("technology-heaven-token")
	require.NotNil(t, cookie)
	assert.Equal(t, "tok", cookie.Value)
	assert.Nil(t, resp.Cookie("missing"))
}

func TestDo_HonoursContextCancellation(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.GetJSON(ctx, "/products", nil)
	assert.Error(t, err)
	assert.Equal(t, 0, apiclient.StatusCode(err))
}
