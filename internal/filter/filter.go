package filter

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/ranking"
)

const (
	StopsDirect = "0"
	StopsOne    = "1"
	StopsMany   = "2+"
)

// StopBucket maps a stop count onto the facet value it is counted under.
func StopBucket(stops int) string {
	switch {
	case stops <= 0:
		return StopsDirect
	case stops == 1:
		return StopsOne
	}
	return StopsMany
}

// ParseStopBucket reads a stop facet value leniently. An unescaped
// "2+" in a query string arrives as "2 ", so "2" and "2plus" are
// accepted for the many-stops bucket as well.
func ParseStopBucket(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "direct":
		return StopsDirect, true
	case "1":
		return StopsOne, true
	case "2", "2+", "2plus":
		return StopsMany, true
	}
	return "", false
}

// StopSet builds a stop-bucket set, dropping values that name no bucket.
func StopSet(values ...string) Set {
	s := Set{}
	for _, v := range values {
		if bucket, ok := ParseStopBucket(v); ok {
			s[bucket] = struct{}{}
		}
	}
	return s
}

// Set is a string set. The zero value is an empty set; an empty set
// places no constraint on a filter. Airline and airport codes are
// stored upper-case.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	return NewSet(s.Values()...)
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Selected is one copy of the sidebar filter (draft or applied).
type Selected struct {
	DepartureStops    Set               `json:"departureStops"`
	ReturnStops       Set               `json:"returnStops"`
	PreferredAirlines Set               `json:"preferredAirlines"`
	LayoverAirports   Set               `json:"layoverAirports"`
	Price             models.PriceRange `json:"price"`
}

func (s Selected) Clone() Selected {
	return Selected{
		DepartureStops:    s.DepartureStops.Clone(),
		ReturnStops:       s.ReturnStops.Clone(),
		PreferredAirlines: s.PreferredAirlines.Clone(),
		LayoverAirports:   s.LayoverAirports.Clone(),
		Price:             s.Price,
	}
}

func (s Selected) Equal(o Selected) bool {
	return s.DepartureStops.Equal(o.DepartureStops) &&
		s.ReturnStops.Equal(o.ReturnStops) &&
		s.PreferredAirlines.Equal(o.PreferredAirlines) &&
		s.LayoverAirports.Equal(o.LayoverAirports) &&
		s.Price == o.Price
}

func (s Selected) stops(leg models.Leg) Set {
	if leg == models.LegReturn {
		return s.ReturnStops
	}
	return s.DepartureStops
}

// Apply returns the tickets of one leg that pass every predicate. It
// never modifies its input.
func Apply(tickets []models.Ticket, sel Selected, leg models.Leg) []models.Ticket {
	result := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if Matches(t, sel, leg) {
			result = append(result, t)
		}
	}
	return result
}

func Matches(t models.Ticket, sel Selected, leg models.Leg) bool {
	if stops := sel.stops(leg); len(stops) > 0 && !stops.Has(StopBucket(t.Stops)) {
		return false
	}

	if len(sel.PreferredAirlines) > 0 && !sel.PreferredAirlines.Has(strings.ToUpper(t.Carrier().Code)) {
		return false
	}

	if len(sel.LayoverAirports) > 0 {
		found := false
		for _, l := range t.Layovers() {
			if sel.LayoverAirports.Has(strings.ToUpper(l.Airport)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !sel.Price.IsZero() {
		price, ok := t.LowestAdultPrice()
		if !ok || !sel.Price.Contains(price) {
			return false
		}
	}

	return true
}

// Sort returns a sorted copy. Unknown modes sort by price ascending.
func Sort(tickets []models.Ticket, sortBy, sortOrder string) []models.Ticket {
	if len(tickets) == 0 {
		return tickets
	}

	sorted := make([]models.Ticket, len(tickets))
	copy(sorted, tickets)

	by := strings.ToLower(sortBy)
	if by == "best_value" {
		sorted = ranking.CalculateScores(sorted)
	}
	ascending := strings.ToLower(sortOrder) != "desc"

	var key func(models.Ticket) float64
	switch by {
	case "duration":
		key = func(t models.Ticket) float64 { return float64(t.DurationMinutes()) }
	case "departure":
		key = func(t models.Ticket) float64 { return float64(t.DepartureTime().Unix()) }
	case "arrival":
		key = func(t models.Ticket) float64 { return float64(t.ArrivalTime().Unix()) }
	case "stops":
		key = func(t models.Ticket) float64 { return float64(t.Stops) }
	case "best_value":
		key = func(t models.Ticket) float64 { return t.BestValueScore }
	case "price":
		key = lowestPrice
	default:
		key, ascending = lowestPrice, true
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return key(sorted[i]) < key(sorted[j])
		}
		return key(sorted[i]) > key(sorted[j])
	})
	return sorted
}

func lowestPrice(t models.Ticket) float64 {
	p, _ := t.LowestAdultPrice()
	return p
}

func stopLabel(bucket string) string {
	switch bucket {
	case StopsDirect:
		return "Direct"
	case StopsOne:
		return "1 stop"
	}
	return "2+ stops"
}
