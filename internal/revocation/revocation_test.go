package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	clock time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.clock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore()
	s.store.now = func() time.Time { return s.clock }
}

func (s *MemoryStoreSuite) TestRevokedUntilExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := s.store.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	s.clock = s.clock.Add(2 * time.Hour)
	revoked, err = s.store.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *MemoryStoreSuite) TestUnknownTokenNotRevoked() {
	revoked, err := s.store.IsRevoked(context.Background(), "never-seen")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *MemoryStoreSuite) TestIgnoresEmptyIDAndNonPositiveTTL() {
	ctx := context.Background()
	s.Require().NoError(s.store.Revoke(ctx, "", time.Hour))
	s.Require().NoError(s.store.Revoke(ctx, "jti-2", 0))

	revoked, err := s.store.IsRevoked(ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}
