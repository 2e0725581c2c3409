package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.log))
	r.Use(RequestTimeout(cfg.RequestTimeout))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Content-Type", "X-User", "X-Unit", "X-Role"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.POST("/check-availability", h.CheckAvailability)
		api.POST("/book", h.CreateBooking)
		api.PUT("/book/:id", h.UpdateBooking)
		api.POST("/cancel-booking", h.CancelBooking)
		api.GET("/bookings", h.ListBookings)
		api.GET("/my-bookings", h.MyBookings)
		api.GET("/rooms", h.ListRooms)
		api.PATCH("/rooms/:id/toggle", h.ToggleRoom)
	}

	return r
}
