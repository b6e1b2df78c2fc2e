// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/ai"
	gmaps "wayfare/internal/maps"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/location"
	"wayfare/internal/modules/recommend"
)

const (
	statusSuccess   = "SUCCESS"
	statusAmbiguous = "AMBIGUOUS"
	statusNotFound  = "NOT_FOUND"
)

type errorResponse struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePipelineError maps domain failures onto the three tagged response
// shapes plus plain transport statuses. An ambiguous location is a choice for
// the caller, not a failure, but it still travels on an error status code so
// clients cannot mistake it for a result.
func writePipelineError(c *gin.Context, err error) {
	var ambiguous *location.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		writeJSON(c, http.StatusConflict, gin.H{
			"status":     statusAmbiguous,
			"candidates": ambiguous.Candidates,
		})
	case errors.Is(err, location.ErrNotFound):
		writeJSON(c, http.StatusNotFound, errorResponse{Status: statusNotFound, Error: "location not found"})
	case errors.Is(err, recommend.ErrBadRequest), errors.Is(err, itinerary.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, recommend.ErrStrategyGeneration),
		errors.Is(err, recommend.ErrNoResults),
		errors.Is(err, ai.ErrGeneration),
		errors.Is(err, gmaps.ErrProvider):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
