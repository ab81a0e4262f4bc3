package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lavanya/expenseshare/internal/auth"
	"github.com/lavanya/expenseshare/internal/middleware"
	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage/sqlite"
)

// newAuthServer builds a server with the JWT guard in front of the
// API, the way the binary wires it when a secret is configured.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	mux := http.NewServeMux()
	NewExpenseResource(store).Register(mux)
	NewAuthResource(authenticator, jwtManager).Register(mux)

	srv := httptest.NewServer(middleware.RequireAuth(jwtManager)(mux))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthFlow(t *testing.T) {
	srv := newAuthServer(t)

	t.Run("register creates a profile without exposing credentials", func(t *testing.T) {
		var profile models.UserProfile
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/register", map[string]string{
			"name":     "Dana",
			"email":    "dana@example.com",
			"password": "correct horse",
		}, &profile)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", resp.StatusCode)
		}
		if profile.ID == 0 {
			t.Fatal("Expected a generated id")
		}
	})

	t.Run("register rejects weak passwords", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/register", map[string]string{
			"email":    "short@example.com",
			"password": "short",
		}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
	})

	var token string
	t.Run("authenticate returns a token", func(t *testing.T) {
		var body map[string]string
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/authenticate", map[string]string{
			"email":    "dana@example.com",
			"password": "correct horse",
		}, &body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		token = body["id_token"]
		if token == "" {
			t.Fatal("Expected an id_token in the response")
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/authenticate", map[string]string{
			"email":    "dana@example.com",
			"password": "wrong horse",
		}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("guarded route requires a bearer token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/expenses", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", resp.StatusCode)
		}

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/expenses", nil)
		if err != nil {
			t.Fatalf("Failed to build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		authed, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer authed.Body.Close()
		if authed.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 with token, got %d", authed.StatusCode)
		}
	})
}
