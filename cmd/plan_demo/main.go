// README: Offline demo of the deterministic day-packing scheduler.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"wayfare/internal/ai"
	"wayfare/internal/modules/itinerary"
	"wayfare/internal/modules/recommend"
)

// failingGenerator forces the assembler onto the deterministic path so the
// demo runs without any credentials.
type failingGenerator struct{}

func (failingGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", ai.ErrGeneration
}

func main() {
	svc := itinerary.NewService(failingGenerator{}, nil)

	req := itinerary.Request{
		City:         "Seoul",
		DurationDays: 2,
		Places: []itinerary.Place{
			{Name: "Gyeongbokgung Palace", Category: recommend.CategorySights},
			{Name: "Bukchon Hanok Village", Category: recommend.CategorySights},
			{Name: "N Seoul Tower", Category: recommend.CategorySights},
			{Name: "Han River Cruise", Category: recommend.CategoryActivities},
			{Name: "Gwangjang Market", Category: recommend.CategoryFood},
			{Name: "Myeongdong Kyoja", Category: recommend.CategoryFood},
			{Name: "Tosokchon Samgyetang", Category: recommend.CategoryFood},
			{Name: "Riverside Hotel", Category: recommend.CategoryLodging},
		},
	}

	plan, err := svc.Assemble(context.Background(), req)
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, string(out))
}
