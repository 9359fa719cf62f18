package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mall-api/internal/apperr"
	"mall-api/internal/events"
	"mall-api/internal/models"
	"mall-api/internal/validation"
)

type ProductService struct {
	recorder
	products   *table[models.Product]
	shops      *table[models.Shop]
	categories *table[models.Category]
	offers     *table[models.Offer]
}

func NewProductService(db *sql.DB, publisher events.Publisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		recorder:   newRecorder(publisher, logger),
		products:   newProductTable(db),
		shops:      newShopTable(db),
		categories: newCategoryTable(db),
		offers:     newOfferTable(db),
	}
}

func (s *ProductService) Create(ctx context.Context, actor models.Actor, patch models.ProductPatch) (*models.ProductView, error) {
	// a zero price is valid, so absence has to be checked on the patch
	if patch.Price == nil {
		return nil, apperr.InvalidInput("Validation failed: price is required", "price is required")
	}

	product := models.Product{Features: []string{}}
	patch.Apply(&product)
	if err := validation.Struct(&product); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &models.Product{}, &product); err != nil {
		return nil, s.fail(err, "Error checking product references")
	}

	now := s.timestamp()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.insert(ctx, &product); err != nil {
		return nil, s.fail(err, "Error creating product")
	}

	s.logger.Info().Str("product_id", product.ID).Str("shop_id", product.ShopID).Msg("Product created")
	s.record(ctx, events.ActionCreated, "product", product.ID, actor)
	return s.view(ctx, &product)
}

// List returns the products matching every non-empty field of filter.
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.ProductView, error) {
	products, err := s.products.list(ctx, equal(
		"shop_id", filter.ShopID,
		"category_id", filter.CategoryID,
		"offer_id", filter.OfferID,
	)...)
	if err != nil {
		return nil, s.fail(err, "Error listing products")
	}
	views, err := s.populate(ctx, products)
	if err != nil {
		return nil, s.fail(err, "Error resolving product references")
	}
	return views, nil
}

// Compare returns the products named by ids in the order given. Unknown ids
// are skipped, so the result may hold fewer than two products.
func (s *ProductService) Compare(ctx context.Context, ids []string) ([]models.ProductView, error) {
	loaded, err := s.products.getMany(ctx, ids)
	if err != nil {
		return nil, s.fail(err, "Error fetching products")
	}

	products := make([]models.Product, 0, len(loaded))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := loaded[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		products = append(products, *p)
	}

	views, err := s.populate(ctx, products)
	if err != nil {
		return nil, s.fail(err, "Error resolving product references")
	}
	return views, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.ProductView, error) {
	product, err := s.products.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching product")
	}
	return s.view(ctx, product)
}

func (s *ProductService) Update(ctx context.Context, actor models.Actor, id string, patch models.ProductPatch) (*models.ProductView, error) {
	product, err := s.products.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching product")
	}

	before := *product
	patch.Apply(product)
	if err := validation.Struct(product); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &before, product); err != nil {
		return nil, s.fail(err, "Error checking product references")
	}
	product.UpdatedAt = s.timestamp()

	if err := s.products.update(ctx, product); err != nil {
		return nil, s.fail(err, "Error updating product")
	}

	s.record(ctx, events.ActionUpdated, "product", product.ID, actor)
	return s.view(ctx, product)
}

func (s *ProductService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := s.products.delete(ctx, id); err != nil {
		return s.fail(err, "Error deleting product")
	}
	s.logger.Info().Str("product_id", id).Msg("Product deleted")
	s.record(ctx, events.ActionDeleted, "product", id, actor)
	return nil
}

func (s *ProductService) checkRefs(ctx context.Context, before, after *models.Product) error {
	if after.ShopID != before.ShopID {
		if err := requireRef(ctx, s.shops, after.ShopID, "Shop not found"); err != nil {
			return err
		}
	}
	if after.CategoryID != before.CategoryID {
		if err := requireRef(ctx, s.categories, after.CategoryID, "Category not found"); err != nil {
			return err
		}
	}
	if after.OfferID != "" && after.OfferID != before.OfferID {
		if err := requireRef(ctx, s.offers, after.OfferID, "Offer not found"); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) view(ctx context.Context, product *models.Product) (*models.ProductView, error) {
	views, err := s.populate(ctx, []models.Product{*product})
	if err != nil {
		return nil, s.fail(err, "Error resolving product references")
	}
	return &views[0], nil
}

func (s *ProductService) populate(ctx context.Context, products []models.Product) ([]models.ProductView, error) {
	shopIDs := make([]string, 0, len(products))
	categoryIDs := make([]string, 0, len(products))
	offerIDs := make([]string, 0, len(products))
	for _, p := range products {
		shopIDs = append(shopIDs, p.ShopID)
		categoryIDs = append(categoryIDs, p.CategoryID)
		offerIDs = append(offerIDs, p.OfferID)
	}

	shops, err := s.shops.getMany(ctx, shopIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.getMany(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.getMany(ctx, offerIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	shopSummaries := summarize(shops, shopSummary)
	categorySummaries := summarize(categories, categorySummary)
	offerSummaries := summarize(offers, func(o *models.Offer) models.OfferSummary {
		return offerSummary(o, now)
	})

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		view := models.ProductView{
			Product:  p,
			Shop:     models.Resolve(p.ShopID, shopSummaries),
			Category: models.Resolve(p.CategoryID, categorySummaries),
		}
		if p.OfferID != "" {
			offer := models.Resolve(p.OfferID, offerSummaries)
			view.Offer = &offer
		}
		views = append(views, view)
	}
	return views, nil
}

func offerSummary(o *models.Offer, now time.Time) models.OfferSummary {
	return models.OfferSummary{ID: o.ID, Title: o.Title, Discount: o.Discount, Active: o.IsActive(now)}
}
