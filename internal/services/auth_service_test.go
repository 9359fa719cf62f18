package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-api/internal/apperr"
	"mall-api/internal/models"
	"mall-api/internal/revocation"
)

func TestTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("secret", 7*24*time.Hour, nil, zerolog.Nop())
	user := &models.User{ID: "u1", Email: "a@x.com"}

	token, expiresAt, err := auth.GenerateToken(user, models.RoleShopOwner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleShopOwner, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, models.Actor{ID: "u1", Role: models.RoleShopOwner}, claims.Actor())
}

func TestExpiredTokenIsUnauthenticated(t *testing.T) {
	auth := NewAuthService("secret", time.Hour, nil, zerolog.Nop())
	token, _, err := auth.GenerateToken(&models.User{ID: "u1"}, models.RoleUser)
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.ValidateToken(token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, "Session expired", apperr.Message(err))
}

func TestTokenSignedWithOtherKeyIsRejected(t *testing.T) {
	issuer := NewAuthService("one", time.Hour, nil, zerolog.Nop())
	verifier := NewAuthService("two", time.Hour, nil, zerolog.Nop())

	token, _, err := issuer.GenerateToken(&models.User{ID: "u1"}, models.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	auth := NewAuthService("secret", time.Hour, nil, zerolog.Nop())
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1", Role: models.RoleAdmin})
	token, err := unsigned.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestNoneAlgorithmIsRejected(t *testing.T) {
	auth := NewAuthService("secret", time.Hour, nil, zerolog.Nop())
	forged := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := forged.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService("secret", time.Hour, revocation.NewMemoryStore(), zerolog.Nop())
	token, _, err := auth.GenerateToken(&models.User{ID: "u1"}, models.RoleUser)
	require.NoError(t, err)

	claims, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Revoke(ctx, claims))
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRevokeWithoutStoreIsStateless(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService("secret", time.Hour, nil, zerolog.Nop())
	token, _, err := auth.GenerateToken(&models.User{ID: "u1"}, models.RoleUser)
	require.NoError(t, err)

	claims, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	require.NoError(t, auth.Revoke(ctx, claims))

	_, err = auth.Authenticate(ctx, token)
	assert.NoError(t, err)
}
