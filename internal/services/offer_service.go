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

// OfferService manages shop-scoped offers.
type OfferService struct {
	recorder
	offers *table[models.Offer]
	shops  *table[models.Shop]
}

func NewOfferService(db *sql.DB, publisher events.Publisher, logger zerolog.Logger) *OfferService {
	return &OfferService{
		recorder: newRecorder(publisher, logger),
		offers:   newOfferTable(db),
		shops:    newShopTable(db),
	}
}

func (s *OfferService) Create(ctx context.Context, actor models.Actor, patch models.OfferPatch) (*models.OfferView, error) {
	if patch.Discount == nil {
		return nil, apperr.InvalidInput("Validation failed: discount is required", "discount is required")
	}

	var offer models.Offer
	patch.Apply(&offer)
	if err := validation.Struct(&offer); err != nil {
		return nil, err
	}
	if err := requireRef(ctx, s.shops, offer.ShopID, "Shop not found"); err != nil {
		return nil, s.fail(err, "Error checking offer shop")
	}

	now := s.timestamp()
	offer.ID = uuid.NewString()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	if err := s.offers.insert(ctx, &offer); err != nil {
		return nil, s.fail(err, "Error creating offer")
	}

	s.logger.Info().Str("offer_id", offer.ID).Str("shop_id", offer.ShopID).Msg("Offer created")
	s.record(ctx, events.ActionCreated, "offer", offer.ID, actor)
	return s.view(ctx, &offer)
}

// List returns every offer, or only those running now when activeOnly is set.
func (s *OfferService) List(ctx context.Context, activeOnly bool) ([]models.OfferView, error) {
	offers, err := s.offers.list(ctx)
	if err != nil {
		return nil, s.fail(err, "Error listing offers")
	}
	if activeOnly {
		now := s.now()
		running := offers[:0]
		for _, o := range offers {
			if o.IsActive(now) {
				running = append(running, o)
			}
		}
		offers = running
	}
	return s.populateOrFail(ctx, offers)
}

func (s *OfferService) ListByShop(ctx context.Context, shopID string) ([]models.OfferView, error) {
	offers, err := s.offers.list(ctx, equal("shop_id", shopID)...)
	if err != nil {
		return nil, s.fail(err, "Error listing shop offers")
	}
	return s.populateOrFail(ctx, offers)
}

func (s *OfferService) Get(ctx context.Context, id string) (*models.OfferView, error) {
	offer, err := s.offers.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching offer")
	}
	return s.view(ctx, offer)
}

func (s *OfferService) Update(ctx context.Context, actor models.Actor, id string, patch models.OfferPatch) (*models.OfferView, error) {
	offer, err := s.offers.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching offer")
	}

	previousShop := offer.ShopID
	patch.Apply(offer)
	if err := validation.Struct(offer); err != nil {
		return nil, err
	}
	if offer.ShopID != previousShop {
		if err := requireRef(ctx, s.shops, offer.ShopID, "Shop not found"); err != nil {
			return nil, s.fail(err, "Error checking offer shop")
		}
	}
	offer.UpdatedAt = s.timestamp()

	if err := s.offers.update(ctx, offer); err != nil {
		return nil, s.fail(err, "Error updating offer")
	}

	s.record(ctx, events.ActionUpdated, "offer", offer.ID, actor)
	return s.view(ctx, offer)
}

func (s *OfferService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := s.offers.delete(ctx, id); err != nil {
		return s.fail(err, "Error deleting offer")
	}
	s.logger.Info().Str("offer_id", id).Msg("Offer deleted")
	s.record(ctx, events.ActionDeleted, "offer", id, actor)
	return nil
}

func (s *OfferService) view(ctx context.Context, offer *models.Offer) (*models.OfferView, error) {
	views, err := s.populateOrFail(ctx, []models.Offer{*offer})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *OfferService) populateOrFail(ctx context.Context, offers []models.Offer) ([]models.OfferView, error) {
	shopIDs := make([]string, 0, len(offers))
	for _, o := range offers {
		shopIDs = append(shopIDs, o.ShopID)
	}
	shops, err := s.shops.getMany(ctx, shopIDs)
	if err != nil {
		return nil, s.fail(err, "Error resolving offer shops")
	}

	now := s.now()
	summaries := summarize(shops, shopSummary)
	views := make([]models.OfferView, 0, len(offers))
	for _, o := range offers {
		views = append(views, models.OfferView{
			Offer:  o,
			Active: o.IsActive(now),
			Shop:   models.Resolve(o.ShopID, summaries),
		})
	}
	return views, nil
}
