package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-api/internal/events"
)

func TestPublishCountsEvents(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, events.Event{Action: events.ActionSignedUp, EntityType: "user"}))
	require.NoError(t, m.Publish(ctx, events.Event{Action: events.ActionCreated, EntityType: "shop"}))
	require.NoError(t, m.Publish(ctx, events.Event{Action: events.ActionCreated, EntityType: "shop"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Signups))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntityMutations.WithLabelValues("shop", "created")))
}

func TestInstancesDoNotShareRegistries(t *testing.T) {
	first, second := New(), New()
	first.ObserveLogin(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(first.Logins.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.Logins.WithLabelValues("success")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveLogin(false)
	m.RateLimited.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mall_logins_total{outcome="failure"} 1`)
	assert.Contains(t, string(body), "mall_rate_limited_requests_total 1")
}
