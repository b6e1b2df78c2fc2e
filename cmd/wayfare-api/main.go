// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wayfare/internal/ai"
	"wayfare/internal/config"
	httptransport "wayfare/internal/http"
	"wayfare/internal/infra"
	gmaps "wayfare/internal/maps"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/location"
	"wayfare/internal/modules/recommend"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	placesSvc, err := gmaps.NewPlacesService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("places init: %v", err)
	}
	geocodeSvc, err := gmaps.NewGeocodeService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("geocode init: %v", err)
	}
	routeSvc, err := gmaps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("directions init: %v", err)
	}

	gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	providers := map[string]ai.Generator{"gemini": gemini}
	if cfg.AI.OpenAIKey != "" {
		providers["openai"] = ai.NewOpenAIProvider(cfg.AI.OpenAIKey)
	}
	generator := ai.NewRouter(providers, cfg.AI.Provider)

	locationStore := location.NewStore(dbPool)
	locationSvc := location.NewService(geocodeSvc, locationStore, redisClient, cfg.Maps.Language)

	recommendStore := recommend.NewStore(dbPool)
	planner := recommend.NewPlanner(generator)
	engine := recommend.NewEngine(placesSvc, recommendStore, cfg.Maps.Language)
	recommendSvc := recommend.NewService(locationSvc, planner, engine, recommendStore, cfg.Recommend.CacheThreshold)

	itinerarySvc := itinerary.NewService(generator, routeSvc)

	router := httptransport.NewRouter(httptransport.ServerDeps{
		Recommend: recommendSvc,
		Itinerary: itinerarySvc,
		Places:    placesSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
