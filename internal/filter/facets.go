package filter

import (
	"math"
	"sort"
	"strings"

	"github.com/dharmasatrya/blockseats/internal/models"
)

// DeriveFacets summarises the unfiltered ticket list. It must always be
// given the source list, never a filtered one.
func DeriveFacets(tickets []models.Ticket) models.Facets {
	facets := models.Facets{
		Stops:           []models.FacetOption{},
		Airlines:        []models.FacetOption{},
		LayoverAirports: []models.FacetOption{},
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	stops := map[string]int{}
	airlines := map[string]*models.FacetOption{}
	layovers := map[string]*models.FacetOption{}

	for _, t := range tickets {
		for _, c := range t.Classes {
			lo = math.Min(lo, c.Price.Adult)
			hi = math.Max(hi, c.Price.Adult)
		}

		stops[StopBucket(t.Stops)]++

		if carrier := t.Carrier(); carrier.Code != "" {
			tally(airlines, strings.ToUpper(carrier.Code), carrier.Name)
		}

		seen := map[string]bool{}
		for _, l := range t.Layovers() {
			code := strings.ToUpper(l.Airport)
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			tally(layovers, code, l.City)
		}
	}

	if !math.IsInf(lo, 1) {
		facets.PriceRange = models.PriceRange{Min: lo, Max: hi}
	}

	for _, bucket := range []string{StopsDirect, StopsOne, StopsMany} {
		if n := stops[bucket]; n > 0 {
			facets.Stops = append(facets.Stops, models.FacetOption{Value: bucket, Label: stopLabel(bucket), Count: n})
		}
	}
	facets.Airlines = sortedOptions(airlines)
	facets.LayoverAirports = sortedOptions(layovers)

	return facets
}

func tally(into map[string]*models.FacetOption, value, label string) {
	opt, ok := into[value]
	if !ok {
		if label == "" {
			label = value
		}
		opt = &models.FacetOption{Value: value, Label: label}
		into[value] = opt
	}
	opt.Count++
}

func sortedOptions(m map[string]*models.FacetOption) []models.FacetOption {
	out := make([]models.FacetOption, 0, len(m))
	for _, opt := range m {
		out = append(out, *opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
