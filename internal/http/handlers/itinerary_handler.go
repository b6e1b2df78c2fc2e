// README: Itinerary endpoint.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/itinerary"
)

// Assembler is the schedule-assembly surface the handler needs.
type Assembler interface {
	Assemble(ctx context.Context, req itinerary.Request) (*itinerary.TravelPlan, error)
}

type ItineraryHandler struct {
	itinerary Assembler
}

func NewItineraryHandler(svc Assembler) *ItineraryHandler {
	return &ItineraryHandler{itinerary: svc}
}

func (h *ItineraryHandler) Create(c *gin.Context) {
	var req itinerary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.itinerary.Assemble(c.Request.Context(), req)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plan)
}
