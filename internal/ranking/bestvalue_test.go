package ranking

import (
	"testing"
	"time"

	"github.com/dharmasatrya/blockseats/internal/models"
)

func ticket(id string, price float64, minutes, stops int) models.Ticket {
	dep := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	return models.Ticket{
		ID:    id,
		Stops: stops,
		Segments: []models.Segment{{
			Departure: models.Endpoint{Time: dep},
			Arrival:   models.Endpoint{Time: dep.Add(time.Duration(minutes) * time.Minute)},
		}},
		Classes: []models.FlightClass{{Price: models.Price{Adult: price}}},
	}
}

func TestCalculateScores(t *testing.T) {
	in := []models.Ticket{
		ticket("cheap-slow", 500, 240, 1),
		ticket("pricey-fast", 1000, 120, 0),
	}
	out := CalculateScores(in)

	// cheap-slow: 50*0.5 + 100*0.3 + 15*0.2 = 58
	// pricey-fast: 100*0.5 + 50*0.3 + 0 = 65
	if out[0].BestValueScore != 58 || out[1].BestValueScore != 65 {
		t.Fatalf("scores = %v, %v", out[0].BestValueScore, out[1].BestValueScore)
	}
	if in[0].BestValueScore != 0 {
		t.Fatal("input slice was modified")
	}
}

func TestCalculateScoresEmpty(t *testing.T) {
	if got := CalculateScores(nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
