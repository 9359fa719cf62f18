package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"mall-api/internal/db"
	"mall-api/internal/events"
	"mall-api/internal/handlers"
	"mall-api/internal/mailer"
	"mall-api/internal/metrics"
	"mall-api/internal/middleware"
	"mall-api/internal/revocation"
	"mall-api/internal/services"
)

const (
	testAdminEmail    = "admin@mall.local"
	testAdminPassword = "admin-secret"
)

type RouterSuite struct {
	suite.Suite
	handler http.Handler
	metrics *metrics.Metrics
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	database, err := db.InitDB(db.DriverSQLite, ":memory:")
	s.Require().NoError(err)
	s.T().Cleanup(func() { database.Close() })
	s.Require().NoError(db.RunMigrations(context.Background(), database))

	logger := zerolog.Nop()
	s.metrics = metrics.New()
	auditLog := events.NewAuditLog(database)
	publishers := events.Fanout{auditLog, s.metrics}

	auth := services.NewAuthService("router-secret", time.Hour, revocation.NewMemoryStore(), logger)
	users := services.NewUserService(database, auth, mailer.NewLogMailer(logger), publishers, services.UserServiceConfig{
		BcryptCost:  4,
		FrontendURL: "http://mall.local",
	}, logger)
	s.Require().NoError(users.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword))

	s.handler = SetupRouter(Dependencies{
		DB:             database,
		Logger:         logger,
		Auth:           auth,
		Users:          users,
		Categories:     services.NewCategoryService(database, publishers, logger),
		Floors:         services.NewFloorService(database, publishers, logger),
		Shops:          services.NewShopService(database, publishers, logger),
		Products:       services.NewProductService(database, publishers, logger),
		Offers:         services.NewOfferService(database, publishers, logger),
		AuditLog:       auditLog,
		Metrics:        s.metrics,
		RateLimiter:    middleware.NewRateLimiter(1000, time.Minute, s.metrics),
		Cookie:         handlers.SessionCookie{Name: "token"},
		FrontendOrigin: "http://localhost:5173",
	})
}

type response struct {
	code    int
	body    map[string]any
	cookies []*http.Cookie
}

func (s *RouterSuite) do(method, path string, body any, cookies ...*http.Cookie) response {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := response{code: rec.Code, cookies: rec.Result().Cookies()}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out.body))
	}
	return out
}

func (s *RouterSuite) sessionCookie(res response) *http.Cookie {
	for _, c := range res.cookies {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	s.FailNow("session cookie not set")
	return nil
}

func (s *RouterSuite) signup(email string) *http.Cookie {
	res := s.do(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"fullname": "A",
		"email":    email,
		"password": "secret123",
		"contact":  "1234567890",
	})
	s.Require().Equal(http.StatusCreated, res.code, res.body)
	return s.sessionCookie(res)
}

func (s *RouterSuite) adminCookie() *http.Cookie {
	res := s.do(http.MethodPost, "/api/v1/auth/admin/login", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	s.Require().Equal(http.StatusOK, res.code, res.body)
	return s.sessionCookie(res)
}

func (s *RouterSuite) create(path string, body map[string]any, cookie *http.Cookie, key string) map[string]any {
	res := s.do(http.MethodPost, path, body, cookie)
	s.Require().Equal(http.StatusCreated, res.code, res.body)
	entity, ok := res.body[key].(map[string]any)
	s.Require().True(ok, "missing %q in response", key)
	return entity
}

func (s *RouterSuite) TestSignupCheckAuthAndForbiddenCategory() {
	res := s.do(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"fullname": "A",
		"email":    "a@x.com",
		"password": "secret123",
		"contact":  "1234567890",
	})
	s.Require().Equal(http.StatusCreated, res.code, res.body)
	s.Equal(true, res.body["success"])

	user := res.body["user"].(map[string]any)
	s.Equal("a@x.com", user["email"])
	s.NotContains(user, "password")
	s.NotContains(user, "password_hash")

	cookie := s.sessionCookie(res)
	s.True(cookie.HttpOnly)

	check := s.do(http.MethodGet, "/api/v1/user/check-auth", nil, cookie)
	s.Require().Equal(http.StatusOK, check.code, check.body)
	s.Equal(user["id"], check.body["user"].(map[string]any)["id"])
	s.Equal("user", check.body["role"])

	forbidden := s.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Electronics"}, cookie)
	s.Equal(http.StatusForbidden, forbidden.code)
	s.Equal(false, forbidden.body["success"])
}

func (s *RouterSuite) TestCheckAuthWithoutSession() {
	res := s.do(http.MethodGet, "/api/v1/user/check-auth", nil)
	s.Equal(http.StatusUnauthorized, res.code)
	s.Equal("Unauthorized - no token provided", res.body["message"])
}

func (s *RouterSuite) TestDuplicateSignupConflicts() {
	s.signup("dup@x.com")

	res := s.do(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"fullname": "B",
		"email":    "DUP@x.com",
		"password": "secret123",
		"contact":  "1234567890",
	})
	s.Equal(http.StatusConflict, res.code)
}

func (s *RouterSuite) TestLoginWithWrongPassword() {
	s.signup("login@x.com")

	res := s.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "login@x.com",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, res.code)

	ok := s.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "login@x.com",
		"password": "secret123",
	})
	s.Equal(http.StatusOK, ok.code)
	s.sessionCookie(ok)
}

func (s *RouterSuite) TestAdminLoginRejectsRegularUser() {
	s.signup("plain@x.com")

	res := s.do(http.MethodPost, "/api/v1/auth/admin/login", map[string]any{
		"email":    "plain@x.com",
		"password": "secret123",
	})
	s.Equal(http.StatusUnauthorized, res.code)
}

func (s *RouterSuite) TestLogoutRevokesSession() {
	cookie := s.signup("logout@x.com")

	res := s.do(http.MethodPost, "/api/v1/user/logout", nil, cookie)
	s.Require().Equal(http.StatusOK, res.code, res.body)

	check := s.do(http.MethodGet, "/api/v1/user/check-auth", nil, cookie)
	s.Equal(http.StatusUnauthorized, check.code)
}

func (s *RouterSuite) TestDuplicateCategoryAndFloorConflict() {
	admin := s.adminCookie()

	s.create("/api/v1/categories", map[string]any{"name": "Electronics"}, admin, "category")
	res := s.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Electronics"}, admin)
	s.Equal(http.StatusConflict, res.code)

	s.create("/api/v1/floors", map[string]any{"number": 1, "name": "Ground"}, admin, "floor")
	res = s.do(http.MethodPost, "/api/v1/floors", map[string]any{"number": 1, "name": "Again"}, admin)
	s.Equal(http.StatusConflict, res.code)
}

func (s *RouterSuite) TestCatalogReadsArePublic() {
	admin := s.adminCookie()
	category := s.create("/api/v1/categories", map[string]any{"name": "Books"}, admin, "category")

	list := s.do(http.MethodGet, "/api/v1/categories", nil)
	s.Require().Equal(http.StatusOK, list.code)
	s.Len(list.body["categories"], 1)

	get := s.do(http.MethodGet, "/api/v1/categories/"+category["id"].(string), nil)
	s.Equal(http.StatusOK, get.code)

	missing := s.do(http.MethodGet, "/api/v1/categories/does-not-exist", nil)
	s.Equal(http.StatusNotFound, missing.code)
}

func (s *RouterSuite) TestDeletedShopLeavesDanglingProductReference() {
	admin := s.adminCookie()
	owner := s.signup("owner@x.com")

	category := s.create("/api/v1/categories", map[string]any{"name": "Fashion"}, admin, "category")
	floor := s.create("/api/v1/floors", map[string]any{"number": 2}, admin, "floor")
	shop := s.create("/api/v1/shops", map[string]any{
		"name":        "Boutique",
		"category_id": category["id"],
		"floor_id":    floor["id"],
	}, owner, "shop")
	product := s.create("/api/v1/products", map[string]any{
		"name":        "Scarf",
		"price":       19.5,
		"shop_id":     shop["id"],
		"category_id": category["id"],
	}, admin, "product")

	stranger := s.signup("stranger@x.com")
	forbidden := s.do(http.MethodDelete, "/api/v1/shops/"+shop["id"].(string), nil, stranger)
	s.Equal(http.StatusForbidden, forbidden.code)

	deleted := s.do(http.MethodDelete, "/api/v1/shops/"+shop["id"].(string), nil, owner)
	s.Require().Equal(http.StatusOK, deleted.code, deleted.body)

	res := s.do(http.MethodGet, "/api/v1/products/"+product["id"].(string), nil)
	s.Require().Equal(http.StatusOK, res.code, res.body)
	ref := res.body["product"].(map[string]any)["shop"].(map[string]any)
	s.Equal(shop["id"], ref["id"])
	s.Nil(ref["value"])
}

func (s *RouterSuite) TestCompareReturnsWhateverMatches() {
	admin := s.adminCookie()
	category := s.create("/api/v1/categories", map[string]any{"name": "Toys"}, admin, "category")
	floor := s.create("/api/v1/floors", map[string]any{"number": 3}, admin, "floor")
	owner := s.signup("toys@x.com")
	shop := s.create("/api/v1/shops", map[string]any{
		"name":        "Toy Store",
		"category_id": category["id"],
		"floor_id":    floor["id"],
	}, owner, "shop")
	product := s.create("/api/v1/products", map[string]any{
		"name":        "Kite",
		"price":       12,
		"shop_id":     shop["id"],
		"category_id": category["id"],
	}, admin, "product")
	id := product["id"].(string)

	post := s.do(http.MethodPost, "/api/v1/products/compare", map[string]any{"ids": []string{id, "unknown"}})
	s.Require().Equal(http.StatusOK, post.code, post.body)
	s.Len(post.body["products"], 1)

	get := s.do(http.MethodGet, "/api/v1/products/compare?ids="+id, nil)
	s.Require().Equal(http.StatusOK, get.code, get.body)
	s.Len(get.body["products"], 1)

	filtered := s.do(http.MethodGet, "/api/v1/products/filter?shop="+shop["id"].(string), nil)
	s.Require().Equal(http.StatusOK, filtered.code)
	s.Len(filtered.body["products"], 1)
}

func (s *RouterSuite) TestOffersByShopAndActiveFilter() {
	admin := s.adminCookie()
	category := s.create("/api/v1/categories", map[string]any{"name": "Food"}, admin, "category")
	floor := s.create("/api/v1/floors", map[string]any{"number": 4}, admin, "floor")
	owner := s.signup("food@x.com")
	shop := s.create("/api/v1/shops", map[string]any{
		"name":        "Bakery",
		"category_id": category["id"],
		"floor_id":    floor["id"],
	}, owner, "shop")

	now := time.Now().UTC()
	s.create("/api/v1/offers", map[string]any{
		"title":      "Now",
		"discount":   10,
		"start_date": now.Add(-time.Hour),
		"end_date":   now.Add(time.Hour),
		"shop_id":    shop["id"],
	}, admin, "offer")
	s.create("/api/v1/offers", map[string]any{
		"title":      "Later",
		"discount":   20,
		"start_date": now.Add(24 * time.Hour),
		"end_date":   now.Add(48 * time.Hour),
		"shop_id":    shop["id"],
	}, admin, "offer")

	all := s.do(http.MethodGet, "/api/v1/offers", nil)
	s.Require().Equal(http.StatusOK, all.code)
	s.Len(all.body["offers"], 2)

	active := s.do(http.MethodGet, "/api/v1/offers?active=true", nil)
	s.Require().Equal(http.StatusOK, active.code)
	s.Len(active.body["offers"], 1)

	byShop := s.do(http.MethodGet, "/api/v1/offers/shop/"+shop["id"].(string), nil)
	s.Require().Equal(http.StatusOK, byShop.code)
	s.Len(byShop.body["offers"], 2)
}

func (s *RouterSuite) TestAdminRoutes() {
	admin := s.adminCookie()
	user := s.signup("someone@x.com")

	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/api/v1/user", nil, user).code)

	users := s.do(http.MethodGet, "/api/v1/user", nil, admin)
	s.Require().Equal(http.StatusOK, users.code)
	s.Len(users.body["users"], 1)

	created := s.create("/api/v1/admin", map[string]any{
		"fullname": "Second Admin",
		"email":    "second@mall.local",
		"password": "admin-secret-2",
	}, admin, "admin")
	s.Equal(true, created["admin"])

	admins := s.do(http.MethodGet, "/api/v1/admin", nil, admin)
	s.Require().Equal(http.StatusOK, admins.code)
	s.Len(admins.body["admins"], 2)

	logs := s.do(http.MethodGet, "/api/v1/admin/audit-logs?limit=10", nil, admin)
	s.Require().Equal(http.StatusOK, logs.code)
	s.NotEmpty(logs.body["audit_logs"])
}

func (s *RouterSuite) TestHealthAndMetrics() {
	health := s.do(http.MethodGet, "/health", nil)
	s.Require().Equal(http.StatusOK, health.code)
	s.Equal("ok", health.body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "mall_http_requests_total")
}

func (s *RouterSuite) TestPreflightIsAnsweredOutsideRoutes() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/categories", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
