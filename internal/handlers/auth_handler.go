package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mall-api/internal/metrics"
	"mall-api/internal/middleware"
	"mall-api/internal/models"
	"mall-api/internal/services"
)

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	userService *services.UserService
	authService *services.AuthService
	metrics     *metrics.Metrics
	cookie      SessionCookie
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, m *metrics.Metrics, cookie SessionCookie, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		metrics:     m,
		cookie:      cookie,
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	session, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, session)
	respondWithJSON(w, http.StatusCreated, envelope{
		"message": "User created successfully",
		"user":    session.User,
		"role":    session.Role,
		"token":   session.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.userService.Login)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.userService.AdminLogin)
}

type loginFunc func(ctx context.Context, req *models.LoginRequest) (*models.Session, error)

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, login loginFunc) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	session, err := login(r.Context(), &req)
	if h.metrics != nil {
		h.metrics.ObserveLogin(err == nil)
	}
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, session)
	respondWithJSON(w, http.StatusOK, envelope{
		"message": "Logged in successfully",
		"user":    session.User,
		"role":    session.Role,
		"token":   session.Token,
	})
}

// Logout clears the cookie and, when a revocation store is configured, makes
// the token unusable before its expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetClaims(r); ok {
		if err := h.authService.Revoke(r.Context(), claims); err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
	respondWithJSON(w, http.StatusOK, envelope{"message": "Logged out successfully"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.sameSite(),
	})
}

// sameSite allows the cookie on cross-site requests only when it is Secure,
// which browsers require for SameSite=None.
func (h *AuthHandler) sameSite() http.SameSite {
	if h.cookie.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
