package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/api/handlers"
	"github.com/yawerky/houseOfGul-sub000/internal/api/middleware"
	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc *Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	repos := svc.Repos

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "House of Gul API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/products",
				"GET /v1/pincodes/:code",
				"POST /v1/checkout/quote",
				"POST /v1/checkout/orders",
				"GET /v1/orders/:orderNumber",
				"POST /v1/admin/login",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment gateway callback, authenticated by HMAC signature
	router.POST("/webhooks/payments", handlers.HandlePaymentWebhook(cfg.PaymentWebhookSecret, svc.Orders, logger))

	cartHandlers := handlers.NewCartHandlers(svc.Sessions, svc.Carts, repos, logger)
	fallback := svc.Aggregator.Fallback

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/products", handlers.HandleListProducts(repos, logger))
		v1.GET("/products/:slug", handlers.HandleGetProduct(repos, logger))
		v1.GET("/categories", handlers.HandleListCategories(repos, logger))
		v1.GET("/occasions", handlers.HandleListOccasions(repos, logger))
		v1.GET("/blog", handlers.HandleListBlogPosts(repos, logger))
		v1.GET("/blog/:slug", handlers.HandleGetBlogPost(repos, logger))
		v1.GET("/banners", handlers.HandleListBanners(repos, logger))
		v1.GET("/testimonials", handlers.HandleListTestimonials(repos, logger))
		v1.POST("/inquiries", handlers.HandleCreateInquiry(repos, logger))

		v1.GET("/pincodes/:code", handlers.HandleGetPincode(svc.Directory, logger))
		v1.POST("/coupons/validate", handlers.HandleValidateCoupon(svc.Coupons, logger))

		v1.GET("/cart", cartHandlers.HandleGetCart())
		v1.DELETE("/cart", cartHandlers.HandleClearCart())
		v1.POST("/cart/items", cartHandlers.HandleAddItem())
		v1.PATCH("/cart/items/:productId", cartHandlers.HandleUpdateItem())
		v1.DELETE("/cart/items/:productId", cartHandlers.HandleRemoveItem())

		v1.GET("/checkout/options", handlers.HandleCheckoutOptions(svc.Options, fallback, cfg.Pricing.Currency))
		v1.POST("/checkout/quote", handlers.HandleQuote(svc.Checkout, svc.Sessions, logger))

		checkoutRoutes := v1.Group("/checkout")
		checkoutRoutes.Use(middleware.IdempotencyMiddleware(repos, logger))
		{
			checkoutRoutes.POST("/orders", handlers.HandlePlaceOrder(svc.Checkout, svc.Orders, svc.Sessions, logger))
		}

		v1.GET("/orders/:orderNumber", handlers.HandleGetOrderByNumber(svc.Orders, logger))

		adminCookie := handlers.AdminCookie{Name: cfg.Auth.AdminCookieName, Secure: cfg.Auth.CookieSecure}
		v1.POST("/admin/login", handlers.HandleAdminLogin(svc.Auth, adminCookie, logger))

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuth(svc.Auth, cfg.Auth.AdminCookieName, logger))
		{
			adminRoutes.POST("/logout", handlers.HandleAdminLogout(adminCookie))
			adminRoutes.GET("/me", handlers.HandleAdminMe())

			registerContent(adminRoutes, svc, logger)

			adminRoutes.GET("/pincodes/search", handlers.HandleSearchPincodes(repos, logger))
			adminRoutes.PATCH("/inquiries/:id/read", handlers.HandleMarkInquiryRead(repos, logger))

			adminRoutes.POST("/pincodes/import", handlers.HandleImportPincodes(svc.Directory, logger))
			adminRoutes.POST("/products/import-sheet", handlers.HandleImportProducts(svc.Importer, cfg.ProductSheet.URL, logger))
			adminRoutes.GET("/products/export", handlers.HandleExportProducts(repos, logger))
			adminRoutes.GET("/orders/export", handlers.HandleExportOrders(svc.Orders, logger))

			adminRoutes.GET("/orders", handlers.HandleListOrders(svc.Orders, logger))
			adminRoutes.GET("/orders/live", handlers.HandleLiveOrders(svc.Feed, logger))
			adminRoutes.GET("/orders/:id", handlers.HandleGetOrder(svc.Orders, logger))
			adminRoutes.GET("/orders/:id/events", handlers.HandleGetOrderEvents(svc.Orders, logger))
			adminRoutes.PATCH("/orders/:id/status", handlers.HandleUpdateOrderStatus(svc.Orders, logger))
			adminRoutes.PATCH("/orders/:id/payment", handlers.HandleUpdatePaymentStatus(svc.Orders, logger))
			adminRoutes.PATCH("/orders/:id/notes", handlers.HandleUpdateOrderNotes(svc.Orders, logger))
		}
	}

	return router
}

// registerContent mounts the admin CRUD endpoints
func registerContent(group *gin.RouterGroup, svc *Services, logger *zap.Logger) {
	repos := svc.Repos

	handlers.RegisterResource(group, "/products", handlers.Resource[domain.Product]{
		Name: "product", Plural: "products", Repo: repos.Product, Prepare: service.PrepareProduct,
	}, logger)
	handlers.RegisterResource(group, "/categories", handlers.Resource[domain.Category]{
		Name: "category", Plural: "categories", Repo: repos.Category, Prepare: service.PrepareCategory,
	}, logger)
	handlers.RegisterResource(group, "/occasions", handlers.Resource[domain.Occasion]{
		Name: "occasion", Plural: "occasions", Repo: repos.Occasion, Prepare: service.PrepareOccasion,
	}, logger)
	handlers.RegisterResource(group, "/blog", handlers.Resource[domain.BlogPost]{
		Name: "blog post", Plural: "posts", Repo: repos.BlogPost,
		Prepare: func(b *domain.BlogPost) error { return service.PrepareBlogPost(b, time.Now()) },
	}, logger)
	handlers.RegisterResource(group, "/banners", handlers.Resource[domain.Banner]{
		Name: "banner", Plural: "banners", Repo: repos.Banner, Prepare: service.PrepareBanner,
	}, logger)
	handlers.RegisterResource(group, "/testimonials", handlers.Resource[domain.Testimonial]{
		Name: "testimonial", Plural: "testimonials", Repo: repos.Testimonial, Prepare: service.PrepareTestimonial,
	}, logger)
	handlers.RegisterResource(group, "/coupons", handlers.Resource[domain.Coupon]{
		Name: "coupon", Plural: "coupons", Repo: repos.Coupon, Prepare: service.PrepareCoupon,
		// redemptions are counted by checkout only
		Preserve: func(stored, updated *domain.Coupon) { updated.UsedCount = stored.UsedCount },
	}, logger)
	handlers.RegisterResource(group, "/pincodes", handlers.Resource[domain.Pincode]{
		Name: "pincode", Plural: "pincodes", Repo: repos.Pincode, Prepare: service.PreparePincode,
	}, logger)
	handlers.RegisterResource(group, "/inquiries", handlers.Resource[domain.Inquiry]{
		Name: "inquiry", Plural: "inquiries", Repo: repos.Inquiry,
	}, logger)
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
