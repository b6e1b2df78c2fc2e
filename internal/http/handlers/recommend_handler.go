// README: Recommendation endpoint.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/recommend"
)

// Recommender is the recommendation pipeline surface the handler needs.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

type RecommendHandler struct {
	recommend Recommender
}

func NewRecommendHandler(svc Recommender) *RecommendHandler {
	return &RecommendHandler{recommend: svc}
}

type recommendRequest struct {
	Country         string   `json:"country"`
	Region          string   `json:"region"`
	City            string   `json:"city"`
	Hint            string   `json:"hint"`
	DurationDays    int      `json:"duration_days"`
	TravelersCount  int      `json:"travelers_count"`
	BudgetRange     string   `json:"budget_range"`
	TravelStyles    []string `json:"travel_styles"`
	SpecialRequests string   `json:"special_requests"`
	Language        string   `json:"language"`
}

type recommendResponse struct {
	Status                     string                                          `json:"status"`
	CityID                     int64                                           `json:"city_id"`
	MainTheme                  string                                          `json:"main_theme,omitempty"`
	Recommendations            map[recommend.Category][]recommend.CachedPlace `json:"recommendations"`
	PreviouslyRecommendedCount int                                             `json:"previously_recommended_count"`
	NewlyRecommendedCount      int                                             `json:"newly_recommended_count"`
}

func (h *RecommendHandler) Create(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.recommend.Recommend(c.Request.Context(), recommend.Request{
		Country:         req.Country,
		Region:          req.Region,
		City:            req.City,
		Hint:            req.Hint,
		DurationDays:    req.DurationDays,
		TravelersCount:  req.TravelersCount,
		BudgetRange:     req.BudgetRange,
		TravelStyles:    req.TravelStyles,
		SpecialRequests: req.SpecialRequests,
		Language:        req.Language,
	})
	if err != nil {
		writePipelineError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, recommendResponse{
		Status:                     statusSuccess,
		CityID:                     result.CityID,
		MainTheme:                  result.MainTheme,
		Recommendations:            result.Recommendations,
		PreviouslyRecommendedCount: result.PreviouslyRecommendedCount,
		NewlyRecommendedCount:      result.NewlyRecommendedCount,
	})
}
