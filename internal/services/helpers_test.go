package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mall-api/internal/db"
	"mall-api/internal/events"
	"mall-api/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.InitDB(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), database))
	return database
}

type sentMail struct {
	kind  string
	to    string
	name  string
	token string
	url   string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) add(m sentMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, name, token string) error {
	return f.add(sentMail{kind: "verify", to: to, name: name, token: token})
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	return f.add(sentMail{kind: "welcome", to: to, name: name})
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, resetURL string) error {
	return f.add(sentMail{kind: "reset", to: to, url: resetURL})
}

func (f *fakeMailer) SendResetSuccessEmail(_ context.Context, to string) error {
	return f.add(sentMail{kind: "reset-success", to: to})
}

func (f *fakeMailer) last(kind string) (sentMail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].kind == kind {
			return f.sent[i], true
		}
	}
	return sentMail{}, false
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturePublisher) actions(entity string) []events.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Action
	for _, e := range c.events {
		if e.EntityType == entity {
			out = append(out, e.Action)
		}
	}
	return out
}

// fixture bundles every service over one in-memory database.
type fixture struct {
	db         *sql.DB
	mail       *fakeMailer
	published  *capturePublisher
	auth       *AuthService
	users      *UserService
	categories *CategoryService
	floors     *FloorService
	shops      *ShopService
	products   *ProductService
	offers     *OfferService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := newTestDB(t)
	logger := zerolog.Nop()
	published := &capturePublisher{}
	mail := &fakeMailer{}
	auth := NewAuthService("test-secret", time.Hour, nil, logger)

	return &fixture{
		db:        database,
		mail:      mail,
		published: published,
		auth:      auth,
		users: NewUserService(database, auth, mail, published, UserServiceConfig{
			BcryptCost:  4,
			FrontendURL: "http://mall.local",
		}, logger),
		categories: NewCategoryService(database, published, logger),
		floors:     NewFloorService(database, published, logger),
		shops:      NewShopService(database, published, logger),
		products:   NewProductService(database, published, logger),
		offers:     NewOfferService(database, published, logger),
	}
}

var adminActor = models.Actor{ID: "admin-1", Role: models.RoleAdmin}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func timePtrOf(t time.Time) *time.Time { return &t }

// seedUser signs up an identity and returns its actor.
func (f *fixture) seedUser(t *testing.T, email string) models.Actor {
	t.Helper()
	session, err := f.users.Signup(context.Background(), &models.SignupRequest{
		Fullname: "Test User",
		Email:    email,
		Password: "secret123",
		Contact:  "1234567890",
	})
	require.NoError(t, err)
	return models.Actor{ID: session.User.ID, Role: session.Role}
}

// seedShop creates a category, a floor and a shop owned by owner.
func (f *fixture) seedShop(t *testing.T, owner models.Actor, name string) *models.ShopView {
	t.Helper()
	ctx := context.Background()
	category, err := f.categories.Create(ctx, adminActor, models.CategoryPatch{Name: strPtr("Category " + name)})
	require.NoError(t, err)
	floors, err := f.floors.List(ctx)
	require.NoError(t, err)
	floor, err := f.floors.Create(ctx, adminActor, models.FloorPatch{Number: intPtr(len(floors) + 1)})
	require.NoError(t, err)

	shop, err := f.shops.Create(ctx, owner, models.ShopPatch{
		Name:       strPtr(name),
		CategoryID: &category.ID,
		FloorID:    &floor.ID,
	})
	require.NoError(t, err)
	return shop
}
