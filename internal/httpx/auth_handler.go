package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pamlee/kitchen/internal/auth"
	"github.com/pamlee/kitchen/internal/users"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.Tokens
	Log    zerolog.Logger
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResp struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/auth/signup", h.signup)
	r.Post("/api/auth/login", h.login)
	r.With(h.Tokens.Authenticate).Get("/api/auth/me", h.me)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.Users.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		mapError(w, err)
		return
	}
	h.respondWithToken(w, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}
	h.respondWithToken(w, u)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	u, err := h.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userResp{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
	})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, u *users.User) {
	token, err := h.Tokens.Sign(u.ID, u.Email, u.Role)
	if err != nil {
		h.Log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    userResp{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
	})
}
