package ranking

import (
	"math"

	"github.com/dharmasatrya/blockseats/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// CalculateScores returns a copy of tickets with BestValueScore set.
func CalculateScores(tickets []models.Ticket) []models.Ticket {
	if len(tickets) == 0 {
		return tickets
	}

	maxPrice, maxDuration := maxima(tickets)

	result := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		result[i] = t
		result[i].BestValueScore = Score(t, maxPrice, maxDuration)
	}
	return result
}

// Lower score = better value
func Score(t models.Ticket, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if price, ok := t.LowestAdultPrice(); ok && maxPrice > 0 {
		priceScore = (price / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(t.DurationMinutes()) / maxDuration) * 100
	}

	stopsScore := float64(t.Stops) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func maxima(tickets []models.Ticket) (maxPrice, maxDuration float64) {
	for _, t := range tickets {
		if p, ok := t.LowestAdultPrice(); ok && p > maxPrice {
			maxPrice = p
		}
		if d := float64(t.DurationMinutes()); d > maxDuration {
			maxDuration = d
		}
	}
	return maxPrice, maxDuration
}
