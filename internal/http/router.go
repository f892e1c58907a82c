// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carrental/internal/http/handlers"
	"carrental/internal/http/middleware"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

type RouterDeps struct {
	Catalog *catalog.Catalog
	Quote   *quote.Engine
	Booking *booking.Service
	Log     *zap.Logger

	BranchMode        bool
	CORSOrigins       []string
	RequestsPerMinute int
	Burst             int
	SessionMaxAge     int
	SecureCookies     bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORS(deps.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(
		middleware.RateLimit(deps.RequestsPerMinute, deps.Burst, log),
		middleware.Session(deps.SessionMaxAge, deps.SecureCookies),
	)

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, deps.BranchMode)
	api.GET("/vehicles", catalogHandler.ListVehicles)
	api.GET("/vehicles/:id", catalogHandler.GetVehicle)
	api.GET("/addons", catalogHandler.ListAddons)
	api.GET("/locations", catalogHandler.ListLocations)

	quoteHandler := handlers.NewQuoteHandler(deps.Quote, deps.Catalog, deps.Booking, deps.BranchMode)
	api.POST("/quotes", quoteHandler.Create)

	bookingHandler := handlers.NewBookingHandler(deps.Booking, deps.Catalog)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings", bookingHandler.List)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	api.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	api.GET("/payment", bookingHandler.Payment)

	return r
}
