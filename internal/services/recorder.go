package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/events"
	"mall-api/internal/models"
)

// recorder carries what every service needs besides its tables: a clock, a
// logger and the event publisher.
type recorder struct {
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time
}

func newRecorder(publisher events.Publisher, logger zerolog.Logger) recorder {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return recorder{events: publisher, logger: logger, now: time.Now}
}

// timestamp is the current time at the precision DATETIME columns keep.
func (r *recorder) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Second)
}

// record publishes an event for a completed write. Publishing failures are
// logged and never fail the write.
func (r *recorder) record(ctx context.Context, action events.Action, entity, id string, actor models.Actor) {
	err := r.events.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		ActorID:    actor.ID,
		OccurredAt: r.timestamp(),
	})
	if err != nil {
		r.logger.Warn().Err(err).
			Str("entity", entity).
			Str("entity_id", id).
			Str("action", string(action)).
			Msg("Failed to publish event")
	}
}

// fail logs unexpected errors and passes every error through unchanged.
func (r *recorder) fail(err error, msg string) error {
	if apperr.Status(err) == http.StatusInternalServerError {
		r.logger.Error().Err(err).Msg(msg)
	}
	return err
}

// requireRef fails with NotFound when id does not name a row of t.
func requireRef[T any](ctx context.Context, t *table[T], id, message string) error {
	ok, err := t.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(message)
	}
	return nil
}

func summarize[T, S any](loaded map[string]*T, f func(*T) S) map[string]*S {
	out := make(map[string]*S, len(loaded))
	for id, rec := range loaded {
		s := f(rec)
		out[id] = &s
	}
	return out
}
