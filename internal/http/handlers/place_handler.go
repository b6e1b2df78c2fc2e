// README: Place search and details endpoints.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	gmaps "wayfare/internal/maps"
)

// PlaceDirectory is the provider surface the handler needs.
type PlaceDirectory interface {
	SearchText(ctx context.Context, query, language string) ([]gmaps.Place, error)
	Details(ctx context.Context, placeID, language string) (*gmaps.PlaceDetails, error)
}

type PlaceHandler struct {
	places PlaceDirectory
}

func NewPlaceHandler(places PlaceDirectory) *PlaceHandler {
	return &PlaceHandler{places: places}
}

func (h *PlaceHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, http.StatusBadRequest, "missing query parameter q")
		return
	}

	results, err := h.places.SearchText(c.Request.Context(), query, c.Query("language"))
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"results": results})
}

func (h *PlaceHandler) Details(c *gin.Context) {
	placeID := c.Param("place_id")
	if placeID == "" {
		writeError(c, http.StatusBadRequest, "missing place_id")
		return
	}

	details, err := h.places.Details(c.Request.Context(), placeID, c.Query("language"))
	if err != nil {
		writePipelineError(c, err)
		return
	}
	if details == nil {
		writeError(c, http.StatusNotFound, "place not found")
		return
	}
	writeJSON(c, http.StatusOK, details)
}
