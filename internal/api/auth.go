package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/iskkyy/LNFRP/internal/auth"
	"github.com/iskkyy/LNFRP/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Credentials CredentialStore
	JWTSecret   string
	TokenExpiry time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, ErrCodeValidation, "username and password required")
		return
	}

	log := hlog.FromRequest(r)

	user, err := h.Credentials.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(req.Password)
		log.Warn().Str("username", req.Username).Str("remote", r.RemoteAddr).Msg("login failed")
		jsonError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("looking up user")
		jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}

	match, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("checking password")
		jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	if !match {
		log.Warn().Str("username", req.Username).Str("remote", r.RemoteAddr).Msg("login failed")
		jsonError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, h.TokenExpiry)
	if err != nil {
		log.Error().Err(err).Msg("generating token")
		jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to generate token")
		return
	}

	log.Info().Str("user", user.Username).Msg("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Message: "Login successful"})
}

// Logout handles POST /logout. The presented token is revoked until it
// would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}

	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.Credentials.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("revoking token")
			jsonError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to log out")
			return
		}
	}

	hlog.FromRequest(r).Info().Str("user", claims.Username).Msg("user logged out")
	jsonResponse(w, http.StatusOK, messageResponse{Message: "Logged out"})
}
