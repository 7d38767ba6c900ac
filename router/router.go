package router

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/config"
	"github.com/yeremiapane/restaurant-site/controllers"
	"github.com/yeremiapane/restaurant-site/kds"
	"github.com/yeremiapane/restaurant-site/middlewares"
	"github.com/yeremiapane/restaurant-site/services"
	"github.com/yeremiapane/restaurant-site/utils"
	"gorm.io/gorm"
)

// Services are the long-lived collaborators shared by the controllers.
type Services struct {
	Auth         *services.AuthService
	Notifier     controllers.BookingNotifier
	Storage      *services.ObjectStorage
	Carts        *services.CartStore
	Availability *services.AvailabilityService
	Reviews      *services.ReviewService
	Reports      *services.ReportService
	Pricing      services.Pricing
	Hub          *kds.Hub
}

// NewServices wires the production collaborators from configuration.
func NewServices(db *gorm.DB, cfg *config.Config) *Services {
	utils.SetJWTSecret(cfg.Server.JWTSecret)

	resend := services.NewResendService(&services.ResendConfig{
		APIKey:  cfg.Email.APIKey,
		BaseURL: cfg.Email.BaseURL,
	})
	stripe := services.NewStripeService(&services.StripeConfig{
		SecretKey: cfg.Payment.StripeSecretKey,
		BaseURL:   cfg.Payment.StripeBaseURL,
		Currency:  cfg.Payment.Currency,
	})
	renderer := services.NewEmailRenderer(cfg.Payment.CurrencySymbol)
	notifier := services.NewNotifier(db, resend, stripe, renderer, cfg.Email.From, cfg.Server.SiteURL)

	storage := services.NewObjectStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	ttl := time.Duration(cfg.Server.JWTExpirationHours) * time.Hour
	return &Services{
		Auth:         services.NewAuthService(db, notifier, ttl, cfg.Server.SiteURL),
		Notifier:     notifier,
		Storage:      storage,
		Carts:        services.NewCartStore(),
		Availability: services.NewAvailabilityService(db, cfg.Booking.ReservationSlotMinutes),
		Reviews:      services.NewReviewService(db, storage),
		Reports:      services.NewReportService(db, cfg.Payment.Currency),
		Pricing:      services.NewPricing(cfg.Booking.AsapCharge, cfg.Booking.DepositRate),
		Hub:          kds.NewHub(),
	}
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif"}

// imagesOnly blocks anything but image files under /storage/.
func imagesOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/storage/") {
			ext := strings.ToLower(filepath.Ext(c.Request.URL.Path))
			allowed := false
			for _, e := range imageExtensions {
				if ext == e {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	}
}

func SetupRouter(db *gorm.DB, cfg *config.Config, svc *Services) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSByPath(cfg.Server.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(cfg.Server.APIRateLimit, 1).RateLimit())
	r.Use(imagesOnly())

	r.Static("/storage", svc.Storage.Root())

	authLimiter := middlewares.NewRateLimiter(cfg.Server.AuthRateLimit, 60).RateLimit()
	requireAuth := middlewares.RequireAuth(svc.Auth)
	optionalAuth := middlewares.OptionalAuth(svc.Auth)

	userController := controllers.NewUserController(db, svc.Auth)
	cartController := controllers.NewCartController(db, svc.Carts)
	menuController := controllers.NewMenuController(db, svc.Storage)
	orderController := controllers.NewOrderController(db, svc.Pricing, svc.Carts, svc.Notifier, svc.Hub)
	reservationController := controllers.NewReservationController(db, svc.Pricing, svc.Availability, svc.Carts, svc.Notifier, svc.Hub)
	tableController := controllers.NewTableController(db)
	reviewController := controllers.NewReviewController(svc.Reviews, svc.Storage, svc.Hub)
	siteController := controllers.NewSiteController(db, svc.Storage)
	contentController := controllers.NewContentController(db, svc.Storage)
	notificationController := controllers.NewNotificationController(db)
	functionController := controllers.NewFunctionController(svc.Notifier)
	adminController := controllers.NewAdminController(db, svc.Reports)
	liveController := controllers.NewLiveController(svc.Auth, svc.Hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authLimiter, userController.SignUp)
		auth.POST("/signin", authLimiter, userController.SignIn)
		auth.POST("/reset-password", authLimiter, userController.ResetPassword)
		auth.POST("/update-password", userController.UpdatePassword)
		auth.POST("/signout", requireAuth, userController.SignOut)
		auth.GET("/session", requireAuth, userController.Session)
		auth.PATCH("/profile", requireAuth, userController.UpdateProfile)
	}

	r.GET("/site", siteController.GetSite)
	r.GET("/gallery", siteController.GetGallery)
	r.GET("/about", contentController.GetAbout)
	r.GET("/legal", contentController.GetLegalDocuments)
	r.GET("/legal/:doc_type", contentController.GetLegalDocument)

	r.GET("/menu", menuController.GetAllMenus)
	r.GET("/menu/categories", menuController.GetCategories)
	r.GET("/menu/:id", menuController.GetMenuByID)

	cart := r.Group("/cart")
	{
		cart.POST("", cartController.OpenCart)
		cart.GET("/:cart_id", cartController.GetCart)
		cart.DELETE("/:cart_id", cartController.ClearCart)
		cart.POST("/:cart_id/items", cartController.AddItem)
		cart.PATCH("/:cart_id/items/:item_id", cartController.UpdateItem)
		cart.DELETE("/:cart_id/items/:item_id", cartController.RemoveItem)
	}

	r.GET("/orders/types", orderController.GetOrderTypes)
	r.POST("/orders", optionalAuth, orderController.CreateOrder)

	r.GET("/tables", tableController.GetAllTables)
	r.GET("/tables/:id/availability", reservationController.CheckTable)
	r.GET("/reservations/availability", reservationController.GetAvailability)
	r.POST("/reservations", optionalAuth, reservationController.CreateReservation)

	r.GET("/reviews", reviewController.GetPublicReviews)
	r.GET("/reviews/stats", reviewController.GetStats)

	customer := r.Group("", requireAuth)
	{
		customer.GET("/me/orders", orderController.GetMyOrders)
		customer.GET("/me/reservations", reservationController.GetMyReservations)
		customer.GET("/me/reviews", reviewController.GetMyReviews)
		customer.POST("/reviews", reviewController.SubmitReview)
		customer.POST("/reviews/photos", reviewController.UploadPhoto)
		customer.DELETE("/reviews/:id", reviewController.DeleteReview)
	}

	functions := r.Group("/functions", middlewares.RequireFunctionKey(cfg.Server.FunctionsAPIKey))
	{
		preflight := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
		functions.OPTIONS("/send-booking-confirmation", preflight)
		functions.OPTIONS("/send-cancellation-email", preflight)
		functions.OPTIONS("/create-payment-link", preflight)
		functions.POST("/send-booking-confirmation", functionController.SendBookingConfirmation)
		functions.POST("/send-cancellation-email", functionController.SendCancellationEmail)
		functions.POST("/create-payment-link", functionController.CreatePaymentLink)
	}

	r.GET("/ws", middlewares.WebSocketAuth(svc.Auth), liveController.KDSHandler)

	admin := r.Group("/admin", requireAuth, middlewares.RequireAdmin(svc.Auth), middlewares.AuditLogger())
	{
		admin.GET("/dashboard", adminController.GetDashboardStats)
		admin.GET("/reports/bookings.pdf", adminController.GetBookingsReport)

		admin.POST("/menu", menuController.CreateMenu)
		admin.PATCH("/menu/:id", menuController.UpdateMenu)
		admin.PATCH("/menu/:id/availability", menuController.ToggleAvailability)
		admin.POST("/menu/:id/image", menuController.UploadImage)
		admin.DELETE("/menu/:id", menuController.DeleteMenu)

		admin.POST("/tables", tableController.CreateTable)
		admin.PATCH("/tables/:id", tableController.UpdateTable)
		admin.PATCH("/tables/:id/availability", tableController.ToggleAvailability)
		admin.DELETE("/tables/:id", tableController.DeleteTable)

		admin.GET("/orders", orderController.GetAllOrders)
		admin.GET("/orders/:id", orderController.GetOrderByID)
		admin.PATCH("/orders/:id/status", orderController.UpdateOrderStatus)
		admin.PATCH("/orders/:id/payment-status", orderController.UpdatePaymentStatus)
		admin.POST("/orders/:id/payment-link", orderController.SendPaymentLink)

		admin.GET("/reservations", reservationController.GetAllReservations)
		admin.PATCH("/reservations/:id/status", reservationController.UpdateReservationStatus)
		admin.PATCH("/reservations/:id/payment-status", reservationController.UpdatePaymentStatus)
		admin.POST("/reservations/:id/payment-link", reservationController.SendPaymentLink)

		admin.GET("/reviews", reviewController.GetAllReviews)
		admin.PATCH("/reviews/:id/approve", reviewController.ApproveReview)
		admin.PATCH("/reviews/:id/response", reviewController.RespondToReview)

		admin.GET("/about", contentController.ListAboutSections)
		admin.POST("/about", contentController.CreateAboutSection)
		admin.PATCH("/about/:id", contentController.UpdateAboutSection)
		admin.PATCH("/about/:id/visibility", contentController.ToggleAboutSection)
		admin.POST("/about/:id/image", contentController.UploadAboutImage)
		admin.DELETE("/about/:id", contentController.DeleteAboutSection)

		admin.GET("/gallery", siteController.GetGalleryHero)
		admin.PUT("/gallery", siteController.UpdateGalleryHero)
		admin.POST("/gallery/image", siteController.UploadGalleryHeroImage)

		admin.GET("/legal", contentController.ListLegalDocuments)
		admin.POST("/legal/preview", contentController.Preview)
		admin.PUT("/legal/:doc_type", contentController.UpsertLegalDocument)
		admin.PATCH("/legal/:doc_type/visibility", contentController.ToggleLegalDocument)
		admin.POST("/preview", contentController.Preview)

		admin.GET("/settings", siteController.ListSettings)
		admin.PUT("/settings", siteController.UpsertSettings)

		admin.GET("/users", userController.ListUsers)
		admin.PATCH("/users/:id", userController.UpdateUserRole)

		admin.GET("/notifications", notificationController.GetAllNotifications)
		admin.GET("/payment-links", notificationController.GetPaymentLinks)
	}

	return r
}
