package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/config"
	"github.com/shinyyama/village-market/internal/db"
	"github.com/shinyyama/village-market/internal/handler"
	appmw "github.com/shinyyama/village-market/internal/middleware"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shinyyama/village-market/internal/service"
	"github.com/shinyyama/village-market/internal/session"
	"github.com/shinyyama/village-market/internal/storage"
	"gorm.io/gorm"
)

// Deps are the collaborators built in main. Firebase, Line, Uploader and
// Redis are optional.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Issuer   *session.Issuer
	Firebase handler.TokenVerifier
	Line     handler.OAuthProvider
	Uploader storage.Uploader
	Redis    *redis.Client
	SHA      string
	Build    string
}

type Server struct {
	e  *echo.Echo
	db *gorm.DB
}

func New(d Deps) *Server {
	cfg := d.Config
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestContext)
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.UploadMaxBytes)))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin(cfg.AllowedOrigins),
	}))

	userRepo := repository.NewUserRepository(d.DB)
	shopRepo := repository.NewShopRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	slipRepo := repository.NewPaymentSlipRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)

	notifySvc := service.NewNotificationService(notificationRepo)
	authSvc := service.NewAuthService(userRepo, d.Issuer, cfg.BcryptCost)
	userSvc := service.NewUserService(userRepo)
	shopSvc := service.NewShopService(shopRepo, productRepo)
	productSvc := service.NewProductService(shopRepo, productRepo)
	catalogSvc := service.NewCatalogService(shopRepo, productRepo, db.DefaultRetry)
	orderSvc := service.NewOrderService(d.DB, userRepo, productRepo, orderRepo, notifySvc)
	fulfillmentSvc := service.NewFulfillmentService(d.DB, orderRepo, notifySvc)
	uploadSvc := service.NewUploadService(d.Uploader, cfg.UploadMaxBytes, cfg.ImageMaxDimension)
	slipSvc := service.NewPaymentSlipService(d.DB, slipRepo, orderRepo, uploadSvc, notifySvc)

	authHandler := handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}, d.Firebase, d.Line, cfg.AppBaseURL)
	notificationHandler := handler.NewNotificationHandler(notifySvc)
	shopHandler := handler.NewShopHandler(catalogSvc, shopSvc)
	productHandler := handler.NewProductHandler(catalogSvc, productSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, fulfillmentSvc)
	slipHandler := handler.NewPaymentSlipHandler(slipSvc)
	userHandler := handler.NewUserHandler(userSvc)

	s := &Server{e: e, db: d.DB}
	e.GET("/healthz", s.health(d.SHA, d.Build))

	var rdb *redis.Client
	if cfg.RateLimitEnabled {
		rdb = d.Redis
	}
	limit := appmw.NewRateLimiter(appmw.RateLimitConfig{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}, rdb)

	sess := appmw.NewSessionAuth(d.Issuer, userRepo, cfg.SessionCookie)
	api := e.Group("/api", sess.Load)

	api.POST("/auth/register", authHandler.Register, limit)
	api.POST("/auth/login", authHandler.Login, limit)
	api.POST("/auth/firebase", authHandler.Firebase, limit)
	api.GET("/auth/line", authHandler.LineStart)
	api.GET("/auth/line/callback", authHandler.LineCallback)
	api.POST("/auth/logout", authHandler.Logout)

	me := api.Group("/me", appmw.RequireAuth)
	me.GET("", authHandler.Me)
	me.PUT("/profile", authHandler.UpdateProfile)
	me.GET("/notifications", notificationHandler.List)
	me.POST("/notifications/read", notificationHandler.MarkRead)

	api.GET("/shops", shopHandler.List)
	api.GET("/shops/:slug", shopHandler.GetBySlug)
	api.GET("/products", productHandler.List)
	api.GET("/products/:slug", productHandler.GetBySlug)

	manageShops := appmw.RequirePermission(authz.ManageShops)
	manageProducts := appmw.RequirePermission(authz.ManageProducts)
	api.POST("/shops", shopHandler.Create, manageShops)
	api.PUT("/shops/:id", shopHandler.Update, manageShops)
	api.DELETE("/shops/:id", shopHandler.Delete, manageShops)
	api.POST("/products", productHandler.Create, manageProducts)
	api.PUT("/products/:id", productHandler.Update, manageProducts)
	api.DELETE("/products/:id", productHandler.Delete, manageProducts)
	api.POST("/uploads", uploadHandler.Upload, appmw.RequirePermission(authz.UploadImages), limit)

	api.POST("/orders", orderHandler.Place, appmw.RequireAuth, limit)
	api.GET("/orders", orderHandler.List, appmw.RequireAuth)
	api.GET("/orders/:orderId", orderHandler.Get, appmw.RequireAuth)
	api.PATCH("/orders/:orderId/items/:itemId", orderHandler.UpdateItemStatus, appmw.RequirePermission(authz.FulfillOrders))
	api.GET("/orders/:orderId/payment-slip", slipHandler.GetByOrder, appmw.RequireAuth)

	vendor := api.Group("/vendor", appmw.RequireAuth)
	vendor.GET("/shops", shopHandler.ListMine, manageShops)
	vendor.GET("/order-items", orderHandler.ListVendorItems, appmw.RequirePermission(authz.FulfillOrders))

	verify := appmw.RequirePermission(authz.VerifyPayments)
	api.POST("/payment-slips", slipHandler.Create, appmw.RequirePermission(authz.UploadPaymentSlip), limit)
	api.PATCH("/payment-slips", slipHandler.Verify, verify)
	api.GET("/payment-slips", slipHandler.List, verify)

	admin := api.Group("/admin", appmw.RequirePermission(authz.ManageUsers))
	admin.GET("/users", userHandler.List)
	admin.PATCH("/users/:id", userHandler.Update)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) health(sha, buildTime string) echo.HandlerFunc {
	return func(c echo.Context) error {
		dbStatus := "ok"
		if sqlDB, err := s.db.DB(); err != nil {
			dbStatus = "unavailable"
		} else {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				dbStatus = "unavailable"
			}
		}
		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]string{
			"ok":         "true",
			"db":         dbStatus,
			"git_sha":    sha,
			"build_time": buildTime,
		})
	}
}

// bodyLimit leaves headroom over the upload size for multipart framing.
func bodyLimit(uploadMax int64) string {
	if uploadMax <= 0 {
		return "8M"
	}
	mb := uploadMax/(1<<20) + 2
	return strconv.FormatInt(mb, 10) + "M"
}

func allowOrigin(allowed []string) func(string) (bool, error) {
	return func(origin string) (bool, error) {
		low := strings.ToLower(origin)
		if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
			strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false, nil
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimRight(a, "/"), low) {
				return true, nil
			}
		}
		return false, nil
	}
}
