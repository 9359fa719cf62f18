package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferIsActiveBoundaryInclusive(t *testing.T) {
	offer := Offer{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, offer.IsActive(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, offer.IsActive(offer.StartDate))
	assert.True(t, offer.IsActive(offer.EndDate))
	assert.False(t, offer.IsActive(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, offer.IsActive(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPatchLeavesUnsetFields(t *testing.T) {
	price := 5.5
	p := Product{Name: "Phone", Price: 10, Features: []string{"5G"}, ShopID: "s1"}

	ProductPatch{Price: &price}.Apply(&p)

	assert.Equal(t, "Phone", p.Name)
	assert.Equal(t, 5.5, p.Price)
	assert.Equal(t, []string{"5G"}, p.Features)
	assert.Equal(t, "s1", p.ShopID)
}

func TestFloorPatchAcceptsGroundFloor(t *testing.T) {
	zero := 0
	f := Floor{Number: 3}
	FloorPatch{Number: &zero}.Apply(&f)
	assert.Equal(t, 0, f.Number)
}

func TestRefMarshalsUnresolvedAsNull(t *testing.T) {
	ref := Resolve("gone", map[string]*ShopSummary{})
	assert.False(t, ref.Resolved())

	raw, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"gone","value":null}`, string(raw))
}

func TestUserNeverSerialisesSecrets(t *testing.T) {
	exp := time.Now()
	u := User{
		ID:                         "u1",
		Email:                      "a@x.com",
		PasswordHash:               "$2a$hash",
		VerificationTokenHash:      "vhash",
		VerificationTokenExpiresAt: &exp,
		ResetTokenHash:             "rhash",
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "hash")
}
