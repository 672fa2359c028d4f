package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/config"
	"umrahtransfer/internal/domain"
	h "umrahtransfer/internal/http/handlers"
	"umrahtransfer/internal/http/middleware"
	"umrahtransfer/internal/metrics"
	"umrahtransfer/internal/utils"
)

func NewRouter(env config.Env, hd *h.Handler, parser middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Metrics(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(env.TrustedProxies); err != nil {
		utils.LogError("", "router", "trusted_proxies", err)
		_ = r.SetTrustedProxies(nil)
	}
	if err := h.RegisterValidators(); err != nil {
		utils.LogError("", "router", "validators", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := middleware.NewRateLimiter(env.RateLimitRPS, env.RateLimitBurst).Middleware()

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)

		// Catalog
		api.GET("/routes", hd.PublicRoutes)
		api.GET("/vehicles", hd.PublicVehicles)
		api.GET("/settings/public", hd.PublicSettings)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("/quote", limiter, hd.Quote)
		bookings.POST("/steps/:step", hd.CheckStep)
		bookings.POST("", limiter, hd.SubmitBooking)
		bookings.POST("/draft", limiter, hd.SaveDraft)
		bookings.GET("/draft/:id", hd.GetDraft)
		bookings.DELETE("/draft/:id", hd.DeleteDraft)
		bookings.GET("/:ref", hd.LookupBooking)
		bookings.POST("/:ref/cancel", limiter, hd.CancelBooking)
		bookings.GET("/:ref/voucher", hd.Voucher)
		bookings.POST("/:ref/checkout", limiter, hd.Checkout)

		// Payments
		api.POST("/payments/stripe/webhook", hd.StripeWebhook)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", limiter, hd.Login)
		auth.GET("/me", middleware.Auth(parser), hd.Me)

		admin := api.Group("/admin", middleware.Auth(parser), middleware.RequireRoles(domain.RoleAdmin, domain.RoleDispatcher))
		mountAdmin(admin, hd)
	}

	h.SetRouter(r)
	return r
}

// mountAdmin registers the back-office API. Dispatchers may read and move
// bookings; everything that changes the catalog is admin only.
func mountAdmin(g *gin.RouterGroup, hd *h.Handler) {
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	g.GET("/endpoints", h.Endpoints)
	g.GET("/live", hd.Live)
	g.GET("/stats", hd.BookingStats)
	g.GET("/drafts", hd.AdminListDrafts)

	bookings := g.Group("/bookings")
	bookings.GET("", hd.AdminListBookings)
	bookings.GET("/export", hd.ExportBookings)
	bookings.GET("/:id", hd.AdminGetBooking)
	bookings.PATCH("/:id/status", hd.UpdateBookingStatus)
	bookings.PATCH("/:id/price", adminOnly, hd.OverrideBookingPrice)

	fleet := g.Group("/fleet")
	fleet.GET("", hd.ListFleet)
	fleet.GET("/:id", hd.GetVehicle)
	fleet.POST("", adminOnly, hd.CreateVehicle)
	fleet.PUT("/:id", adminOnly, hd.UpdateVehicle)
	fleet.DELETE("/:id", adminOnly, hd.DeleteVehicle)

	routes := g.Group("/routes")
	routes.GET("", hd.ListRoutes)
	routes.GET("/:id", hd.GetRoute)
	routes.POST("", adminOnly, hd.CreateRoute)
	routes.PUT("/:id", adminOnly, hd.UpdateRoute)
	routes.DELETE("/:id", adminOnly, hd.DeleteRoute)
	routes.PUT("/:id/fares", adminOnly, hd.SetRouteFares)

	promos := g.Group("/promotions")
	promos.GET("", hd.ListPromotions)
	promos.POST("", adminOnly, hd.CreatePromotion)
	promos.PUT("/:id", adminOnly, hd.UpdatePromotion)
	promos.DELETE("/:id", adminOnly, hd.DeletePromotion)

	g.GET("/settings", hd.GetSettings)
	g.PUT("/settings", adminOnly, hd.UpdateSettings)

	g.POST("/uploads/sign", adminOnly, hd.SignUpload)
}
