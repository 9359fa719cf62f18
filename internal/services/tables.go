package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mall-api/internal/models"
)

func newUserTable(db *sql.DB) *table[models.User] {
	return &table[models.User]{db: db, schema: schema[models.User]{
		entity: "user",
		name:   "users",
		columns: []string{
			"id", "fullname", "email", "password_hash", "contact", "address", "city", "country",
			"profile_picture", "admin", "verification_status", "verification_token_hash",
			"verification_token_expires_at", "reset_token_hash", "reset_token_expires_at",
			"last_login_at", "created_at", "updated_at",
		},
		orderBy: "created_at DESC",
		scan: func(row scanner, u *models.User) error {
			var status string
			var verifyExp, resetExp, lastLogin sql.NullTime
			err := row.Scan(
				&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Contact, &u.Address, &u.City, &u.Country,
				&u.ProfilePicture, &u.Admin, &status, &u.VerificationTokenHash,
				&verifyExp, &u.ResetTokenHash, &resetExp,
				&lastLogin, &u.CreatedAt, &u.UpdatedAt,
			)
			if err != nil {
				return err
			}
			u.VerificationStatus = models.VerificationStatus(status)
			u.VerificationTokenExpiresAt = timePtr(verifyExp)
			u.ResetTokenExpiresAt = timePtr(resetExp)
			u.LastLoginAt = timePtr(lastLogin)
			u.CreatedAt = u.CreatedAt.UTC()
			u.UpdatedAt = u.UpdatedAt.UTC()
			return nil
		},
		args: func(u *models.User) []any {
			return []any{
				u.ID, u.Fullname, u.Email, u.PasswordHash, u.Contact, u.Address, u.City, u.Country,
				u.ProfilePicture, u.Admin, string(u.VerificationStatus), u.VerificationTokenHash,
				nullTime(u.VerificationTokenExpiresAt), u.ResetTokenHash, nullTime(u.ResetTokenExpiresAt),
				nullTime(u.LastLoginAt), u.CreatedAt, u.UpdatedAt,
			}
		},
		id: func(u *models.User) string { return u.ID },
		unique: []uniqueKey[models.User]{{
			column:  "email",
			value:   func(u *models.User) any { return u.Email },
			message: "User already exists",
		}},
	}}
}

func newCategoryTable(db *sql.DB) *table[models.Category] {
	return &table[models.Category]{db: db, schema: schema[models.Category]{
		entity:  "category",
		name:    "categories",
		columns: []string{"id", "name", "description", "created_at", "updated_at"},
		orderBy: "name ASC",
		scan: func(row scanner, c *models.Category) error {
			if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return err
			}
			c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
			return nil
		},
		args: func(c *models.Category) []any {
			return []any{c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt}
		},
		id: func(c *models.Category) string { return c.ID },
		unique: []uniqueKey[models.Category]{{
			column:   "name",
			value:    func(c *models.Category) any { return c.Name },
			message:  "Category already exists",
			foldCase: true,
		}},
	}}
}

func newFloorTable(db *sql.DB) *table[models.Floor] {
	return &table[models.Floor]{db: db, schema: schema[models.Floor]{
		entity:  "floor",
		name:    "floors",
		columns: []string{"id", "number", "name", "description", "created_at", "updated_at"},
		orderBy: "number ASC",
		scan: func(row scanner, f *models.Floor) error {
			if err := row.Scan(&f.ID, &f.Number, &f.Name, &f.Description, &f.CreatedAt, &f.UpdatedAt); err != nil {
				return err
			}
			f.CreatedAt, f.UpdatedAt = f.CreatedAt.UTC(), f.UpdatedAt.UTC()
			return nil
		},
		args: func(f *models.Floor) []any {
			return []any{f.ID, f.Number, f.Name, f.Description, f.CreatedAt, f.UpdatedAt}
		},
		id: func(f *models.Floor) string { return f.ID },
		unique: []uniqueKey[models.Floor]{{
			column:  "number",
			value:   func(f *models.Floor) any { return f.Number },
			message: "Floor already exists",
		}},
	}}
}

func newShopTable(db *sql.DB) *table[models.Shop] {
	return &table[models.Shop]{db: db, schema: schema[models.Shop]{
		entity: "shop",
		name:   "shops",
		columns: []string{
			"id", "name", "owner_id", "category_id", "floor_id", "address", "contact",
			"description", "image", "created_at", "updated_at",
		},
		orderBy: "created_at DESC",
		scan: func(row scanner, s *models.Shop) error {
			err := row.Scan(
				&s.ID, &s.Name, &s.OwnerID, &s.CategoryID, &s.FloorID, &s.Address, &s.Contact,
				&s.Description, &s.Image, &s.CreatedAt, &s.UpdatedAt,
			)
			if err != nil {
				return err
			}
			s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
			return nil
		},
		args: func(s *models.Shop) []any {
			return []any{
				s.ID, s.Name, s.OwnerID, s.CategoryID, s.FloorID, s.Address, s.Contact,
				s.Description, s.Image, s.CreatedAt, s.UpdatedAt,
			}
		},
		id: func(s *models.Shop) string { return s.ID },
	}}
}

func newProductTable(db *sql.DB) *table[models.Product] {
	return &table[models.Product]{db: db, schema: schema[models.Product]{
		entity: "product",
		name:   "products",
		columns: []string{
			"id", "name", "price", "features", "shop_id", "category_id", "offer_id",
			"description", "image", "created_at", "updated_at",
		},
		orderBy: "created_at DESC",
		scan: func(row scanner, p *models.Product) error {
			var features string
			err := row.Scan(
				&p.ID, &p.Name, &p.Price, &features, &p.ShopID, &p.CategoryID, &p.OfferID,
				&p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
			)
			if err != nil {
				return err
			}
			p.Features = []string{}
			if features != "" {
				if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
					return fmt.Errorf("invalid features for product %s: %w", p.ID, err)
				}
			}
			p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
			return nil
		},
		args: func(p *models.Product) []any {
			features := p.Features
			if features == nil {
				features = []string{}
			}
			raw, _ := json.Marshal(features)
			return []any{
				p.ID, p.Name, p.Price, string(raw), p.ShopID, p.CategoryID, p.OfferID,
				p.Description, p.Image, p.CreatedAt, p.UpdatedAt,
			}
		},
		id: func(p *models.Product) string { return p.ID },
	}}
}

func newOfferTable(db *sql.DB) *table[models.Offer] {
	return &table[models.Offer]{db: db, schema: schema[models.Offer]{
		entity: "offer",
		name:   "offers",
		columns: []string{
			"id", "title", "description", "discount", "start_date", "end_date", "shop_id",
			"created_at", "updated_at",
		},
		orderBy: "created_at DESC",
		scan: func(row scanner, o *models.Offer) error {
			err := row.Scan(
				&o.ID, &o.Title, &o.Description, &o.Discount, &o.StartDate, &o.EndDate, &o.ShopID,
				&o.CreatedAt, &o.UpdatedAt,
			)
			if err != nil {
				return err
			}
			o.StartDate, o.EndDate = o.StartDate.UTC(), o.EndDate.UTC()
			o.CreatedAt, o.UpdatedAt = o.CreatedAt.UTC(), o.UpdatedAt.UTC()
			return nil
		},
		args: func(o *models.Offer) []any {
			return []any{
				o.ID, o.Title, o.Description, o.Discount, o.StartDate, o.EndDate, o.ShopID,
				o.CreatedAt, o.UpdatedAt,
			}
		},
		id: func(o *models.Offer) string { return o.ID },
	}}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
