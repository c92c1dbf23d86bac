// Package searchstate keeps the flight search query in step with the
// page URL.
package searchstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/timezone"
)

const (
	KeyItinerary   = "itinerary"
	KeyFlightDate  = "flightDate"
	KeyReturnDate  = "returnDate"
	KeyTravelClass = "travelClass"
	KeyAdults      = "adults"
	KeyChildren    = "children"
	KeyInfants     = "infants"
)

// locationKeys names the query keys for one side of the trip. The
// airport code lives under the bare prefix ("from", "to").
type locationKeys struct {
	code, id, city, country, airport string
}

var (
	fromKeys = locationKeys{"from", "fromId", "fromCity", "fromCountry", "fromAirport"}
	toKeys   = locationKeys{"to", "toId", "toCity", "toCountry", "toAirport"}
)

// ParseFromURLParams decodes a search from query parameters. Missing or
// malformed values fall back to defaults; malformed dates become nil.
func ParseFromURLParams(params url.Values) models.SearchState {
	state := models.DefaultSearchState()

	if it, ok := models.ParseItinerary(params.Get(KeyItinerary)); ok {
		state.Itinerary = it
	}
	if tc, ok := models.ParseTravelClass(params.Get(KeyTravelClass)); ok {
		state.TravelClass = tc
	}

	state.Departure = parseLocation(params, fromKeys)
	state.Arrival = parseLocation(params, toKeys)

	state.FlightDate = parseDate(params.Get(KeyFlightDate))
	if state.IsRoundTrip() {
		state.ReturnDate = parseDate(params.Get(KeyReturnDate))
	}

	state.Passengers.Adults = parseCount(params.Get(KeyAdults), 1, 1)
	state.Passengers.Children = parseCount(params.Get(KeyChildren), 0, 0)
	state.Passengers.Infants = parseCount(params.Get(KeyInfants), 0, 0)

	return state
}

// ToURLParams is the inverse of ParseFromURLParams. One-way searches
// never carry a returnDate.
func ToURLParams(state models.SearchState) url.Values {
	params := url.Values{}

	itinerary := state.Itinerary
	if itinerary == "" {
		itinerary = models.ItineraryOneWay
	}
	params.Set(KeyItinerary, string(itinerary))

	writeLocation(params, fromKeys, state.Departure)
	writeLocation(params, toKeys, state.Arrival)

	if state.FlightDate != nil {
		params.Set(KeyFlightDate, *state.FlightDate)
	}
	if itinerary == models.ItineraryRoundTrip && state.ReturnDate != nil {
		params.Set(KeyReturnDate, *state.ReturnDate)
	}

	if state.TravelClass != "" {
		params.Set(KeyTravelClass, string(state.TravelClass))
	}
	params.Set(KeyAdults, strconv.Itoa(state.Passengers.Adults))
	params.Set(KeyChildren, strconv.Itoa(state.Passengers.Children))
	params.Set(KeyInfants, strconv.Itoa(state.Passengers.Infants))

	return params
}

func Encode(state models.SearchState) string {
	return ToURLParams(state).Encode()
}

// UpdateURLParams returns path with its query replaced by the encoded
// state, so the next page can rebuild the search without a round trip.
func UpdateURLParams(path string, state models.SearchState) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return path + "?" + Encode(state)
}

func parseLocation(params url.Values, keys locationKeys) models.Location {
	return models.Location{
		ID:          strings.TrimSpace(params.Get(keys.id)),
		AirportCode: strings.TrimSpace(params.Get(keys.code)),
		City:        strings.TrimSpace(params.Get(keys.city)),
		Country:     strings.TrimSpace(params.Get(keys.country)),
		Airport:     strings.TrimSpace(params.Get(keys.airport)),
	}
}

func writeLocation(params url.Values, keys locationKeys, loc models.Location) {
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set(keys.code, loc.AirportCode)
	set(keys.id, loc.ID)
	set(keys.city, loc.City)
	set(keys.country, loc.Country)
	set(keys.airport, loc.Airport)
}

func parseDate(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return timezone.NormalizeDate(s)
}

func parseCount(s string, fallback, min int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min || n > models.MaxPassengers {
		return fallback
	}
	return n
}
