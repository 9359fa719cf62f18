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

type ShopService struct {
	recorder
	shops      *table[models.Shop]
	users      *table[models.User]
	categories *table[models.Category]
	floors     *table[models.Floor]
}

func NewShopService(db *sql.DB, publisher events.Publisher, logger zerolog.Logger) *ShopService {
	return &ShopService{
		recorder:   newRecorder(publisher, logger),
		shops:      newShopTable(db),
		users:      newUserTable(db),
		categories: newCategoryTable(db),
		floors:     newFloorTable(db),
	}
}

// Create registers a shop owned by the actor. Admins may name another owner.
func (s *ShopService) Create(ctx context.Context, actor models.Actor, patch models.ShopPatch) (*models.ShopView, error) {
	if !actor.IsAdmin() || patch.OwnerID == nil || *patch.OwnerID == "" {
		patch.OwnerID = &actor.ID
	}

	var shop models.Shop
	patch.Apply(&shop)
	if err := validation.Struct(&shop); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &models.Shop{}, &shop); err != nil {
		return nil, s.fail(err, "Error checking shop references")
	}

	now := s.timestamp()
	shop.ID = uuid.NewString()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	if err := s.shops.insert(ctx, &shop); err != nil {
		return nil, s.fail(err, "Error creating shop")
	}

	s.logger.Info().Str("shop_id", shop.ID).Str("owner_id", shop.OwnerID).Msg("Shop created")
	s.record(ctx, events.ActionCreated, "shop", shop.ID, actor)
	return s.view(ctx, &shop)
}

func (s *ShopService) List(ctx context.Context, filter models.ShopFilter) ([]models.ShopView, error) {
	shops, err := s.shops.list(ctx, equal(
		"owner_id", filter.OwnerID,
		"category_id", filter.CategoryID,
		"floor_id", filter.FloorID,
	)...)
	if err != nil {
		return nil, s.fail(err, "Error listing shops")
	}
	views, err := s.populate(ctx, shops)
	if err != nil {
		return nil, s.fail(err, "Error resolving shop references")
	}
	return views, nil
}

func (s *ShopService) Get(ctx context.Context, id string) (*models.ShopView, error) {
	shop, err := s.shops.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching shop")
	}
	return s.view(ctx, shop)
}

func (s *ShopService) Update(ctx context.Context, actor models.Actor, id string, patch models.ShopPatch) (*models.ShopView, error) {
	shop, err := s.shops.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching shop")
	}
	if err := authorizeOwner(actor, shop); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		patch.OwnerID = nil
	}

	before := *shop
	patch.Apply(shop)
	if err := validation.Struct(shop); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &before, shop); err != nil {
		return nil, s.fail(err, "Error checking shop references")
	}
	shop.UpdatedAt = s.timestamp()

	if err := s.shops.update(ctx, shop); err != nil {
		return nil, s.fail(err, "Error updating shop")
	}

	s.record(ctx, events.ActionUpdated, "shop", shop.ID, actor)
	return s.view(ctx, shop)
}

// Delete removes the shop. Its products and offers are left in place.
func (s *ShopService) Delete(ctx context.Context, actor models.Actor, id string) error {
	shop, err := s.shops.get(ctx, id)
	if err != nil {
		return s.fail(err, "Error fetching shop")
	}
	if err := authorizeOwner(actor, shop); err != nil {
		return err
	}

	if err := s.shops.delete(ctx, id); err != nil {
		return s.fail(err, "Error deleting shop")
	}

	s.logger.Info().Str("shop_id", id).Str("actor_id", actor.ID).Msg("Shop deleted")
	s.record(ctx, events.ActionDeleted, "shop", id, actor)
	return nil
}

func authorizeOwner(actor models.Actor, shop *models.Shop) error {
	if actor.IsAdmin() || shop.OwnerID == actor.ID {
		return nil
	}
	return apperr.Forbidden("You can only modify your own shop")
}

// checkRefs verifies the references that differ from before.
func (s *ShopService) checkRefs(ctx context.Context, before, after *models.Shop) error {
	if after.OwnerID != before.OwnerID {
		if err := requireRef(ctx, s.users, after.OwnerID, "Owner not found"); err != nil {
			return err
		}
	}
	if after.CategoryID != before.CategoryID {
		if err := requireRef(ctx, s.categories, after.CategoryID, "Category not found"); err != nil {
			return err
		}
	}
	if after.FloorID != before.FloorID {
		if err := requireRef(ctx, s.floors, after.FloorID, "Floor not found"); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShopService) view(ctx context.Context, shop *models.Shop) (*models.ShopView, error) {
	views, err := s.populate(ctx, []models.Shop{*shop})
	if err != nil {
		return nil, s.fail(err, "Error resolving shop references")
	}
	return &views[0], nil
}

func (s *ShopService) populate(ctx context.Context, shops []models.Shop) ([]models.ShopView, error) {
	ownerIDs := make([]string, 0, len(shops))
	categoryIDs := make([]string, 0, len(shops))
	floorIDs := make([]string, 0, len(shops))
	for _, shop := range shops {
		ownerIDs = append(ownerIDs, shop.OwnerID)
		categoryIDs = append(categoryIDs, shop.CategoryID)
		floorIDs = append(floorIDs, shop.FloorID)
	}

	users, err := s.users.getMany(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.getMany(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	floors, err := s.floors.getMany(ctx, floorIDs)
	if err != nil {
		return nil, err
	}

	owners := summarize(users, ownerSummary)
	categorySummaries := summarize(categories, categorySummary)
	floorSummaries := summarize(floors, floorSummary)

	views := make([]models.ShopView, 0, len(shops))
	for _, shop := range shops {
		views = append(views, models.ShopView{
			Shop:     shop,
			Owner:    models.Resolve(shop.OwnerID, owners),
			Category: models.Resolve(shop.CategoryID, categorySummaries),
			Floor:    models.Resolve(shop.FloorID, floorSummaries),
		})
	}
	return views, nil
}

func ownerSummary(u *models.User) models.OwnerSummary {
	return models.OwnerSummary{ID: u.ID, Fullname: u.Fullname, Email: u.Email}
}

func categorySummary(c *models.Category) models.CategorySummary {
	return models.CategorySummary{ID: c.ID, Name: c.Name}
}

func floorSummary(f *models.Floor) models.FloorSummary {
	return models.FloorSummary{ID: f.ID, Number: f.Number, Name: f.Name}
}

func shopSummary(s *models.Shop) models.ShopSummary {
	return models.ShopSummary{ID: s.ID, Name: s.Name, FloorID: s.FloorID}
}
