package routes

import (
	"net/http"
	"time"

	"servihub/config"
	"servihub/handlers"
	"servihub/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the four sanctioned booking operations:
// decorated reads (resolve + actions), poll state, dispatch, and recheck.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		api.GET("", bh.ListBookings)
		api.GET("/poll", bh.PollState)
		api.DELETE("/watch", bh.StopWatch)
		api.GET("/:id/view", bh.GetBooking)
		api.POST("/:id/actions/:action", bh.DispatchAction)
		api.POST("/:id/recheck", bh.Recheck)
	}
}

// RegisterPreferenceRoutes registers the dashboard layout capability.
func RegisterPreferenceRoutes(r *gin.Engine, ph *handlers.PreferencesHandler) {
	api := r.Group("/api/preferences")
	{
		api.GET("/layout", ph.GetLayout)
		api.PUT("/layout", ph.SaveLayout)
	}
}

// RegisterHealthRoute exposes the periodic dependency health snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, ph *handlers.PreferencesHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.DashboardOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bh)
	RegisterPreferenceRoutes(r, ph)
}
