package router

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"mall-api/internal/events"
	"mall-api/internal/handlers"
	"mall-api/internal/metrics"
	"mall-api/internal/middleware"
	"mall-api/internal/models"
	"mall-api/internal/services"
)

// Dependencies is everything the HTTP surface needs, built once in main.
type Dependencies struct {
	DB     *sql.DB
	Logger zerolog.Logger

	Auth       *services.AuthService
	Users      *services.UserService
	Categories *services.CategoryService
	Floors     *services.FloorService
	Shops      *services.ShopService
	Products   *services.ProductService
	Offers     *services.OfferService

	AuditLog    *events.AuditLog
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter

	Cookie         handlers.SessionCookie
	FrontendOrigin string
}

func SetupRouter(deps Dependencies) http.Handler {
	logger := deps.Logger

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Auth, deps.Metrics, deps.Cookie, logger)
	userHandler := handlers.NewUserHandler(deps.Users, logger)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.AuditLog, logger)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories, logger)
	floorHandler := handlers.NewFloorHandler(deps.Floors, logger)
	shopHandler := handlers.NewShopHandler(deps.Shops, logger)
	productHandler := handlers.NewProductHandler(deps.Products, logger)
	offerHandler := handlers.NewOfferHandler(deps.Offers, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, logger)

	authenticated := middleware.Authentication(deps.Auth, deps.Cookie.Name, logger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	session := func(h http.HandlerFunc) http.Handler {
		return authenticated(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticated(adminOnly(h))
	}

	r := mux.NewRouter()

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(deps.Metrics, logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}
	r.Use(middleware.RequestValidation())

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/admin/login", authHandler.AdminLogin).Methods("POST")

	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/verify-email", userHandler.VerifyEmail).Methods("POST")
	user.HandleFunc("/forgot-password", userHandler.ForgotPassword).Methods("POST")
	user.HandleFunc("/reset-password/{token}", userHandler.ResetPassword).Methods("POST")
	user.Handle("/check-auth", session(userHandler.CheckAuth)).Methods("GET")
	user.Handle("/profile/update", session(userHandler.UpdateProfile)).Methods("PUT")
	user.Handle("/resend-verification", session(userHandler.ResendVerification)).Methods("POST")
	user.Handle("/logout", session(authHandler.Logout)).Methods("POST")
	user.Handle("", admin(userHandler.ListUsers)).Methods("GET")

	adm := api.PathPrefix("/admin").Subrouter()
	adm.Handle("", admin(adminHandler.CreateAdmin)).Methods("POST")
	adm.Handle("", admin(adminHandler.ListAdmins)).Methods("GET")
	if deps.AuditLog != nil {
		adm.Handle("/audit-logs", admin(adminHandler.AuditLogs)).Methods("GET")
	}

	categories := api.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", categoryHandler.List).Methods("GET")
	categories.HandleFunc("/{id}", categoryHandler.Get).Methods("GET")
	categories.Handle("", admin(categoryHandler.Create)).Methods("POST")
	categories.Handle("/{id}", admin(categoryHandler.Update)).Methods("PUT")
	categories.Handle("/{id}", admin(categoryHandler.Delete)).Methods("DELETE")

	floors := api.PathPrefix("/floors").Subrouter()
	floors.HandleFunc("", floorHandler.List).Methods("GET")
	floors.HandleFunc("/{id}", floorHandler.Get).Methods("GET")
	floors.Handle("", admin(floorHandler.Create)).Methods("POST")
	floors.Handle("/{id}", admin(floorHandler.Update)).Methods("PUT")
	floors.Handle("/{id}", admin(floorHandler.Delete)).Methods("DELETE")

	// Shop writes are checked against ownership in the service.
	shops := api.PathPrefix("/shops").Subrouter()
	shops.HandleFunc("", shopHandler.List).Methods("GET")
	shops.Handle("/mine", session(shopHandler.Mine)).Methods("GET")
	shops.HandleFunc("/{id}", shopHandler.Get).Methods("GET")
	shops.Handle("", session(shopHandler.Create)).Methods("POST")
	shops.Handle("/{id}", session(shopHandler.Update)).Methods("PUT")
	shops.Handle("/{id}", session(shopHandler.Delete)).Methods("DELETE")

	// filter and compare must be registered before /{id}.
	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", productHandler.List).Methods("GET")
	products.HandleFunc("/filter", productHandler.List).Methods("GET")
	products.HandleFunc("/compare", productHandler.Compare).Methods("GET", "POST")
	products.HandleFunc("/{id}", productHandler.Get).Methods("GET")
	products.Handle("", admin(productHandler.Create)).Methods("POST")
	products.Handle("/{id}", admin(productHandler.Update)).Methods("PUT")
	products.Handle("/{id}", admin(productHandler.Delete)).Methods("DELETE")

	offers := api.PathPrefix("/offers").Subrouter()
	offers.HandleFunc("", offerHandler.List).Methods("GET")
	offers.HandleFunc("/shop/{shopId}", offerHandler.ListByShop).Methods("GET")
	offers.HandleFunc("/{id}", offerHandler.Get).Methods("GET")
	offers.Handle("", admin(offerHandler.Create)).Methods("POST")
	offers.Handle("/{id}", admin(offerHandler.Update)).Methods("PUT")
	offers.Handle("/{id}", admin(offerHandler.Delete)).Methods("DELETE")

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	// CORS sits outside the router so preflight requests never reach route
	// matching.
	return middleware.CORS(deps.FrontendOrigin)(r)
}
