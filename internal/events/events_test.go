package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-api/internal/db"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

type recordingPublisher struct{ got []Event }

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return nil
}

func TestFanoutDeliversToAllAndJoinsErrors(t *testing.T) {
	rec := &recordingPublisher{}
	boom := errors.New("broker down")

	err := Fanout{failingPublisher{err: boom}, rec}.Publish(context.Background(), Event{EntityID: "x"})

	require.ErrorIs(t, err, boom)
	require.Len(t, rec.got, 1)
	assert.Equal(t, "x", rec.got[0].EntityID)
}

func TestAuditLogRoundTrip(t *testing.T) {
	database, err := db.InitDB(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer database.Close()
	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, database))

	audit := NewAuditLog(database)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, audit.Publish(ctx, Event{Action: ActionCreated, EntityType: "shop", EntityID: "s1", ActorID: "u1", OccurredAt: base}))
	require.NoError(t, audit.Publish(ctx, Event{Action: ActionDeleted, EntityType: "shop", EntityID: "s1", ActorID: "u1", OccurredAt: base.Add(time.Minute)}))

	entries, err := audit.Recent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionDeleted, entries[0].Action)
	assert.Equal(t, ActionCreated, entries[1].Action)
	assert.NotEmpty(t, entries[0].ID)

	page, err := audit.Recent(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ActionCreated, page[0].Action)
}

func TestKafkaMessageKeyedByEntity(t *testing.T) {
	e := Event{ID: "e1", Action: ActionUpdated, EntityType: "product", EntityID: "p1", OccurredAt: time.Unix(100, 0).UTC()}

	msg, err := toMessage(e)
	require.NoError(t, err)

	assert.Equal(t, "product:p1", string(msg.Key))
	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e, decoded)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "updated", string(msg.Headers[0].Value))
}

func TestKafkaWriterFlushesEachEvent(t *testing.T) {
	k := NewKafkaPublisher([]string{"localhost:9092"}, "mall-events")
	defer k.Close()

	assert.Equal(t, 1, k.writer.BatchSize)
	assert.LessOrEqual(t, k.writer.BatchTimeout, 50*time.Millisecond)
	assert.Equal(t, "mall-events", k.writer.Topic)
}
