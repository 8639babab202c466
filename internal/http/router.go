package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	intconfig "traintrack/internal/config"
	h "traintrack/internal/http/handlers"
	"traintrack/internal/http/middleware"
)

func NewRouter(env intconfig.Env, handler *h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.Metrics(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logrus.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"status":  "error",
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(handler.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/routes", handler.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/logout", requireAuth, handler.Logout)
		auth.GET("/profile", requireAuth, handler.Profile)
		auth.PUT("/profile", requireAuth, handler.UpdateProfile)

		// Trains
		api.GET("/search", handler.SearchTrains)
		api.GET("/trains/:trainNumber", handler.GetTrain)

		// Bookings
		bookings := api.Group("/bookings", requireAuth)
		bookings.POST("", handler.CreateBooking)
		bookings.GET("", handler.ListBookings)
		bookings.GET("/pnr/:pnr", handler.GetBookingByPNR)
		bookings.GET("/:bookingId", handler.GetBooking)
		bookings.GET("/:bookingId/refund", handler.GetRefund)
		bookings.GET("/:bookingId/e-ticket", handler.GetETicket)
		bookings.GET("/:bookingId/invoice", handler.GetInvoice)
		bookings.DELETE("/:bookingId", handler.CancelBooking)

		// Ops
		ops := api.Group("/ops", middleware.RequireOpsKey(env.OpsAPIKey))
		ops.GET("/bookings", handler.OpsBookings)
		ops.GET("/bookings/:bookingId", handler.OpsBooking)
	}

	handler.SetRouter(r)
	return r
}
