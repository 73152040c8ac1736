package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"offerbook/internal/infra/config"
	"offerbook/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type BlackoutHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type OfferHTTP interface {
	Search(c *gin.Context)
	Availability(c *gin.Context)
}

type PlaceHTTP interface {
	Search(c *gin.Context)
}

type Handlers struct {
	Reservation ReservationHTTP
	Blackout    BlackoutHTTP
	Offer       OfferHTTP
	Place       PlaceHTTP
	Metrics     gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{Addr: cfg.HTTPAddr, Handler: NewRouter(obsMW, health, h)}
}

// NewRouter builds the routes without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", h.Metrics)
	}

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.GET("/reservations", h.Reservation.List)
		api.GET("/reservations/:id", h.Reservation.Get)
		api.PATCH("/reservations/:id", h.Reservation.Update)
		api.DELETE("/reservations/:id", h.Reservation.Delete)
	}
	if h.Blackout != nil {
		api.POST("/blackouts", h.Blackout.Create)
		api.GET("/blackouts", h.Blackout.List)
		api.PATCH("/blackouts/:id", h.Blackout.Update)
		api.DELETE("/blackouts/:id", h.Blackout.Delete)
	}
	if h.Offer != nil {
		api.GET("/offers", h.Offer.Search)
		api.GET("/offers/:id/availability", h.Offer.Availability)
	}
	if h.Place != nil {
		api.GET("/places", h.Place.Search)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
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
