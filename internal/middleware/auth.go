package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/models"
	"mall-api/internal/services"
)

// Authenticator resolves a session token to its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Claims, error)
}

// Authentication requires a valid session. The token is read from the cookie
// first and the Authorization header second.
func Authentication(auth Authenticator, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
				return
			}

			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				status := apperr.Status(err)
				if status == http.StatusInternalServerError {
					respondWithError(w, status, "Internal server error")
					return
				}
				logger.Warn().Err(err).Str("request_id", GetRequestID(r)).Msg("Invalid token")
				respondWithError(w, status, apperr.Message(err))
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, claims.Actor())
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRole(allowedRoles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized - no token provided")
				return
			}

			for _, role := range allowedRoles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Forbidden - insufficient permissions")
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func GetActor(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(ActorKey).(models.Actor)
	return actor, ok
}

func GetClaims(r *http.Request) (*services.Claims, bool) {
	claims, ok := r.Context().Value(ClaimsKey).(*services.Claims)
	return claims, ok
}
