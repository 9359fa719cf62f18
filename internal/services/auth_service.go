package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/models"
	"mall-api/internal/revocation"
)

// AuthService issues and verifies signed session tokens.
type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	revoked   revocation.Store
	logger    zerolog.Logger
	now       func() time.Time
}

type Claims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the identity the claims prove.
func (c *Claims) Actor() models.Actor {
	return models.Actor{ID: c.UserID, Role: c.Role}
}

// NewAuthService builds the session issuer. revoked may be nil, in which case
// tokens stay valid until they expire.
func NewAuthService(secret string, ttl time.Duration, revoked revocation.Store, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		ttl:       ttl,
		revoked:   revoked,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

func (s *AuthService) GenerateToken(user *models.User, role models.UserRole) (string, time.Time, error) {
	now := s.now()
	expirationTime := now.Add(s.ttl)

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", time.Time{}, err
	}

	return tokenString, expirationTime, nil
}

// ValidateToken checks signature and expiry. Every failure is reported as
// Unauthenticated.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.Unauthenticated("Session expired")
	}
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("Invalid token")
	}
	if claims.UserID == "" {
		return nil, apperr.Unauthenticated("Invalid token")
	}

	return claims, nil
}

// Authenticate validates the token and rejects it if it was revoked.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revoked == nil {
		return claims, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", claims.UserID).Msg("Error checking token revocation")
		return nil, err
	}
	if revoked {
		return nil, apperr.Unauthenticated("Session has been logged out")
	}
	return claims, nil
}

// Revoke records the token id until the token would have expired. It is a
// no-op without a revocation store.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		s.logger.Error().Err(err).Str("user_id", claims.UserID).Msg("Error revoking token")
		return err
	}
	s.logger.Info().Str("user_id", claims.UserID).Msg("Session revoked")
	return nil
}
