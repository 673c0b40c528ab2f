package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelbooking/internal/infra/config"
	"hotelbooking/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	AdminUpdate(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
}

type RoomHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Availability(c *gin.Context)
	Rate(c *gin.Context)
	Rating(c *gin.Context)
	Reconcile(c *gin.Context)
	Ledger(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Room           RoomHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without binding a listener.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		bookings := api.Group("/booking")
		bookings.POST("", h.Booking.Create)
		bookings.GET("/me", h.Booking.ListMine)
		bookings.GET("/:id", h.Booking.Get)
		bookings.PUT("/:id", h.Booking.Update)
		bookings.PUT("/:id/cancel", h.Booking.Cancel)
		bookings.PUT("/:id/admin-update", h.Booking.AdminUpdate)
	}
	if h.Room != nil {
		rooms := api.Group("/room")
		rooms.POST("", h.Room.Create)
		rooms.GET("", h.Room.List)
		rooms.GET("/:id", h.Room.Get)
		rooms.GET("/:id/availability", h.Room.Availability)
		rooms.POST("/:id/rating", h.Room.Rate)
		rooms.GET("/:id/rating", h.Room.Rating)
		rooms.POST("/:id/reconcile", h.Room.Reconcile)
		rooms.GET("/:id/ledger", h.Room.Ledger)
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"Idempotency-Key",
			HeaderUserID,
			HeaderUserRole,
			HeaderUserEmail,
			HeaderUserName,
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "development", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
