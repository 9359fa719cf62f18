package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/events"
	"mall-api/internal/models"
	"mall-api/internal/validation"
)

type FloorService struct {
	recorder
	floors *table[models.Floor]
}

func NewFloorService(db *sql.DB, publisher events.Publisher, logger zerolog.Logger) *FloorService {
	return &FloorService{
		recorder: newRecorder(publisher, logger),
		floors:   newFloorTable(db),
	}
}

func (s *FloorService) Create(ctx context.Context, actor models.Actor, patch models.FloorPatch) (*models.Floor, error) {
	// ground floor is 0, so absence has to be checked on the patch
	if patch.Number == nil {
		return nil, apperr.InvalidInput("Validation failed: number is required", "number is required")
	}

	var floor models.Floor
	patch.Apply(&floor)
	if err := validation.Struct(&floor); err != nil {
		return nil, err
	}

	now := s.timestamp()
	floor.ID = uuid.NewString()
	floor.CreatedAt = now
	floor.UpdatedAt = now

	if err := s.floors.insert(ctx, &floor); err != nil {
		return nil, s.fail(err, "Error creating floor")
	}

	s.logger.Info().Str("floor_id", floor.ID).Int("number", floor.Number).Msg("Floor created")
	s.record(ctx, events.ActionCreated, "floor", floor.ID, actor)
	return &floor, nil
}

func (s *FloorService) List(ctx context.Context) ([]models.Floor, error) {
	floors, err := s.floors.list(ctx)
	if err != nil {
		return nil, s.fail(err, "Error listing floors")
	}
	return floors, nil
}

func (s *FloorService) Get(ctx context.Context, id string) (*models.Floor, error) {
	floor, err := s.floors.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching floor")
	}
	return floor, nil
}

func (s *FloorService) Update(ctx context.Context, actor models.Actor, id string, patch models.FloorPatch) (*models.Floor, error) {
	floor, err := s.floors.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching floor")
	}

	patch.Apply(floor)
	if err := validation.Struct(floor); err != nil {
		return nil, err
	}
	floor.UpdatedAt = s.timestamp()

	if err := s.floors.update(ctx, floor); err != nil {
		return nil, s.fail(err, "Error updating floor")
	}

	s.record(ctx, events.ActionUpdated, "floor", floor.ID, actor)
	return floor, nil
}

func (s *FloorService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := s.floors.delete(ctx, id); err != nil {
		return s.fail(err, "Error deleting floor")
	}
	s.logger.Info().Str("floor_id", id).Msg("Floor deleted")
	s.record(ctx, events.ActionDeleted, "floor", id, actor)
	return nil
}
