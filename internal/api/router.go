package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/pixelforge/storefront/internal/api/handler"
	"github.com/pixelforge/storefront/internal/api/middleware"
	"github.com/pixelforge/storefront/internal/core/ports"

	_ "github.com/pixelforge/storefront/docs"
)

// Services are the core services behind the HTTP surface.
type Services struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Categories ports.CategoryService
	Products   ports.ProductService
	Inquiries  ports.InquiryService
}

type RouterOptions struct {
	Logger zerolog.Logger
	// UploadDir is served under /uploads when images live on local disk.
	UploadDir string
	// BodyLimit caps request bodies, e.g. "32M".
	BodyLimit string
	// Checks are the readiness probes keyed by dependency name.
	Checks map[string]handler.Check
	// Swagger mounts /swagger/* when true.
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.Metrics())
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}

	open := middleware.Authenticate(svc.Auth, ports.RequireNone)
	authenticated := middleware.Authenticate(svc.Auth, ports.RequireAuthenticated)
	admin := middleware.Authenticate(svc.Auth, ports.RequireAdmin)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	e.POST("/auth/register", authHandler.Register, open)
	e.POST("/auth/login", authHandler.Login, open)
	e.POST("/auth/token", authHandler.Token, open)

	// --- Users ---
	userHandler := handler.NewUserHandler(svc.Users)
	users := e.Group("/users")
	users.GET("/me", userHandler.Me, authenticated)
	users.GET("", userHandler.List, admin)
	users.GET("/:id", userHandler.Get, admin)

	// --- Categories ---
	categoryHandler := handler.NewCategoryHandler(svc.Categories)
	categories := e.Group("/categories")
	categories.GET("", categoryHandler.List, open)
	categories.GET("/active", categoryHandler.Active, open)
	categories.GET("/:name", categoryHandler.Get, open)
	categories.POST("", categoryHandler.Create, admin)
	categories.PUT("/:name", categoryHandler.Update, admin)
	categories.DELETE("/:name", categoryHandler.Delete, admin)

	// --- Products ---
	productHandler := handler.NewProductHandler(svc.Products)
	products := e.Group("/products")
	products.GET("", productHandler.List, open)
	products.GET("/unlocked", productHandler.Unlocked, open)
	products.GET("/:id", productHandler.Get, open)
	products.POST("", productHandler.Create, admin)
	products.PUT("/:id", productHandler.Update, admin)
	products.DELETE("/:id", productHandler.Delete, admin)
	products.PATCH("/:id/lock", productHandler.Lock, admin)
	products.PATCH("/:id/unlock", productHandler.Unlock, admin)

	// --- Inquiry ---
	inquiryHandler := handler.NewInquiryHandler(svc.Inquiries)
	e.POST("/inquiry/contact", inquiryHandler.Contact, open)
	e.GET("/inquiry/subjects", inquiryHandler.Subjects, open)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(opts.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if opts.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	return e
}
