// README: Response-shape tests for the recommendation and itinerary endpoints.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"wayfare/internal/http/handlers"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/location"
	"wayfare/internal/modules/recommend"
)

type stubRecommender struct {
	result *recommend.Result
	err    error
}

func (s *stubRecommender) Recommend(_ context.Context, _ recommend.Request) (*recommend.Result, error) {
	return s.result, s.err
}

type stubAssembler struct {
	plan *itinerary.TravelPlan
	err  error
}

func (s *stubAssembler) Assemble(_ context.Context, _ itinerary.Request) (*itinerary.TravelPlan, error) {
	return s.plan, s.err
}

func buildTestRouter(rec handlers.Recommender, asm handlers.Assembler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/recommendations", handlers.NewRecommendHandler(rec).Create)
	r.POST("/api/itineraries", handlers.NewItineraryHandler(asm).Create)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func recommendBody() map[string]any {
	return map[string]any{
		"country":         "South Korea",
		"city":            "Seoul",
		"duration_days":   3,
		"travelers_count": 2,
	}
}

func TestRecommendations_Success(t *testing.T) {
	rec := &stubRecommender{result: &recommend.Result{
		CityID:    7,
		MainTheme: "heritage",
		Recommendations: map[recommend.Category][]recommend.CachedPlace{
			recommend.CategorySights: {{PlaceID: "p1", Name: "Palace"}},
		},
		NewlyRecommendedCount: 1,
	}}
	r := buildTestRouter(rec, &stubAssembler{})

	w := doRequest(r, http.MethodPost, "/api/recommendations", recommendBody())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "SUCCESS" {
		t.Errorf("expected SUCCESS, got %v", resp["status"])
	}
	if resp["city_id"] != float64(7) {
		t.Errorf("expected city_id 7, got %v", resp["city_id"])
	}
}

func TestRecommendations_AmbiguousIsTagged(t *testing.T) {
	rec := &stubRecommender{err: &location.AmbiguousError{Candidates: []location.Candidate{
		{PlaceID: "p1", DisplayName: "Gwangju, Gyeonggi-do"},
		{PlaceID: "p2", DisplayName: "Gwangju, Jeollanam-do"},
	}}}
	r := buildTestRouter(rec, &stubAssembler{})

	w := doRequest(r, http.MethodPost, "/api/recommendations", recommendBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var resp struct {
		Status     string               `json:"status"`
		Candidates []location.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "AMBIGUOUS" {
		t.Errorf("expected AMBIGUOUS, got %s", resp.Status)
	}
	if len(resp.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(resp.Candidates))
	}
}

func TestRecommendations_NotFound(t *testing.T) {
	r := buildTestRouter(&stubRecommender{err: location.ErrNotFound}, &stubAssembler{})

	w := doRequest(r, http.MethodPost, "/api/recommendations", recommendBody())
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", resp["status"])
	}
}

func TestRecommendations_BadRequest(t *testing.T) {
	r := buildTestRouter(&stubRecommender{err: recommend.ErrBadRequest}, &stubAssembler{})

	w := doRequest(r, http.MethodPost, "/api/recommendations", recommendBody())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecommendations_PipelineFailureIsBadGateway(t *testing.T) {
	r := buildTestRouter(&stubRecommender{err: recommend.ErrStrategyGeneration}, &stubAssembler{})

	w := doRequest(r, http.MethodPost, "/api/recommendations", recommendBody())
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestItineraries_Success(t *testing.T) {
	asm := &stubAssembler{plan: &itinerary.TravelPlan{
		GeneratedBy: "fallback",
		Days:        []itinerary.DayPlan{{Day: 1}},
	}}
	r := buildTestRouter(&stubRecommender{}, asm)

	w := doRequest(r, http.MethodPost, "/api/itineraries", map[string]any{
		"city":          "Seoul",
		"duration_days": 1,
		"places":        []map[string]any{{"name": "Palace", "category": "sights"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var plan itinerary.TravelPlan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.GeneratedBy != "fallback" || len(plan.Days) != 1 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}
