package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lavanya/expenseshare/internal/auth"
)

// AuthResource serves /api/authenticate and /api/register.
type AuthResource struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

func NewAuthResource(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthResource {
	return &AuthResource{authenticator: authenticator, jwtManager: jwtManager}
}

func (res *AuthResource) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/authenticate", res.authenticate)
	mux.HandleFunc("POST /api/register", res.register)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (res *AuthResource) authenticate(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed request body"})
		return
	}
	profile, err := res.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "invalid credentials"})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	token, err := res.jwtManager.Generate(profile)
	if err != nil {
		serverError(w, r, err)
		return
	}
	slog.Info("authenticated user", "id", profile.ID)
	writeJSON(w, http.StatusOK, map[string]string{"id_token": token})
}

func (res *AuthResource) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed request body"})
		return
	}
	profile, err := res.authenticator.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
		return
	case err != nil:
		serverError(w, r, err)
		return
	}
	slog.Info("registered user", "id", profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}
