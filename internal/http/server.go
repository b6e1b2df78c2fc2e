// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/http/handlers"
	"wayfare/internal/http/middleware"
	gmaps "wayfare/internal/maps"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/recommend"
)

type ServerDeps struct {
	Recommend *recommend.Service
	Itinerary *itinerary.Service
	Places    *gmaps.PlacesService
}

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())

	recommendHandler := handlers.NewRecommendHandler(deps.Recommend)
	r.POST("/api/recommendations", recommendHandler.Create)

	itineraryHandler := handlers.NewItineraryHandler(deps.Itinerary)
	r.POST("/api/itineraries", itineraryHandler.Create)

	placeHandler := handlers.NewPlaceHandler(deps.Places)
	r.GET("/api/places/search", placeHandler.Search)
	r.GET("/api/places/:place_id", placeHandler.Details)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
