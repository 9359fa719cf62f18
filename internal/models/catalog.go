package models

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p CategoryPatch) Apply(c *Category) {
	setString(&c.Name, p.Name)
	setString(&c.Description, p.Description)
}

type Floor struct {
	ID          string    `json:"id"`
	Number      int       `json:"number" validate:"gte=-10,lte=300"`
	Name        string    `json:"name" validate:"max=100"`
	Description string    `json:"description" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FloorPatch struct {
	Number      *int    `json:"number"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p FloorPatch) Apply(f *Floor) {
	if p.Number != nil {
		f.Number = *p.Number
	}
	setString(&f.Name, p.Name)
	setString(&f.Description, p.Description)
}

type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=150"`
	OwnerID     string    `json:"owner_id" validate:"required"`
	CategoryID  string    `json:"category_id" validate:"required"`
	FloorID     string    `json:"floor_id" validate:"required"`
	Address     string    `json:"address" validate:"max=255"`
	Contact     string    `json:"contact" validate:"omitempty,phone"`
	Description string    `json:"description" validate:"max=2000"`
	Image       string    `json:"image" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ShopPatch is used for both create and partial update. OwnerID is only
// honoured for admins.
type ShopPatch struct {
	Name        *string `json:"name"`
	OwnerID     *string `json:"owner_id"`
	CategoryID  *string `json:"category_id"`
	FloorID     *string `json:"floor_id"`
	Address     *string `json:"address"`
	Contact     *string `json:"contact"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (p ShopPatch) Apply(s *Shop) {
	setString(&s.Name, p.Name)
	setString(&s.OwnerID, p.OwnerID)
	setString(&s.CategoryID, p.CategoryID)
	setString(&s.FloorID, p.FloorID)
	setString(&s.Address, p.Address)
	setString(&s.Contact, p.Contact)
	setString(&s.Description, p.Description)
	setString(&s.Image, p.Image)
}

type ShopView struct {
	Shop
	Owner    Ref[OwnerSummary]    `json:"owner"`
	Category Ref[CategorySummary] `json:"category"`
	Floor    Ref[FloorSummary]    `json:"floor"`
}

type ShopFilter struct {
	OwnerID    string
	CategoryID string
	FloorID    string
}

const (
	MaxProductFeatures = 20
	// MaxProductPrice is the largest value the DECIMAL(12,2) price column holds.
	MaxProductPrice = 9999999999.99
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=150"`
	Price       float64   `json:"price" validate:"gte=0,lte=9999999999.99"`
	Features    []string  `json:"features" validate:"max=20,dive,required,max=100"`
	ShopID      string    `json:"shop_id" validate:"required"`
	CategoryID  string    `json:"category_id" validate:"required"`
	OfferID     string    `json:"offer_id,omitempty"`
	Description string    `json:"description" validate:"max=2000"`
	Image       string    `json:"image" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductPatch struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	Features    *[]string `json:"features"`
	ShopID      *string   `json:"shop_id"`
	CategoryID  *string   `json:"category_id"`
	OfferID     *string   `json:"offer_id"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
}

func (p ProductPatch) Apply(pr *Product) {
	setString(&pr.Name, p.Name)
	if p.Price != nil {
		pr.Price = *p.Price
	}
	if p.Features != nil {
		pr.Features = append([]string(nil), (*p.Features)...)
	}
	setString(&pr.ShopID, p.ShopID)
	setString(&pr.CategoryID, p.CategoryID)
	setString(&pr.OfferID, p.OfferID)
	setString(&pr.Description, p.Description)
	setString(&pr.Image, p.Image)
}

type ProductView struct {
	Product
	Shop     Ref[ShopSummary]     `json:"shop"`
	Category Ref[CategorySummary] `json:"category"`
	Offer    *Ref[OfferSummary]   `json:"offer,omitempty"`
}

type CompareRequest struct {
	IDs []string `json:"ids" validate:"max=20"`
}

type ProductFilter struct {
	ShopID     string
	CategoryID string
	OfferID    string
}

type Offer struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=150"`
	Description string    `json:"description" validate:"max=2000"`
	Discount    float64   `json:"discount" validate:"gte=0,lte=100"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	ShopID      string    `json:"shop_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive reports whether at falls within [StartDate, EndDate], both ends
// inclusive.
func (o *Offer) IsActive(at time.Time) bool {
	return !at.Before(o.StartDate) && !at.After(o.EndDate)
}

type OfferPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Discount    *float64   `json:"discount"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ShopID      *string    `json:"shop_id"`
}

func (p OfferPatch) Apply(o *Offer) {
	setString(&o.Title, p.Title)
	setString(&o.Description, p.Description)
	if p.Discount != nil {
		o.Discount = *p.Discount
	}
	if p.StartDate != nil {
		o.StartDate = p.StartDate.UTC()
	}
	if p.EndDate != nil {
		o.EndDate = p.EndDate.UTC()
	}
	setString(&o.ShopID, p.ShopID)
}

type OfferView struct {
	Offer
	Active bool             `json:"active"`
	Shop   Ref[ShopSummary] `json:"shop"`
}
