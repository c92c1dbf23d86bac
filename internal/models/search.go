package models

import "strings"

type Itinerary string

const (
	ItineraryOneWay    Itinerary = "one-way"
	ItineraryRoundTrip Itinerary = "round-trip"
)

// ParseItinerary accepts the canonical values plus the spellings the
// portal has historically written into URLs ("round trip", "oneway").
func ParseItinerary(s string) (Itinerary, bool) {
	switch normalizeToken(s) {
	case "one-way", "oneway":
		return ItineraryOneWay, true
	case "round-trip", "roundtrip", "return":
		return ItineraryRoundTrip, true
	}
	return "", false
}

type TravelClass string

const (
	ClassEconomy        TravelClass = "economy"
	ClassPremiumEconomy TravelClass = "premium-economy"
	ClassBusiness       TravelClass = "business"
	ClassFirst          TravelClass = "first"
)

func ParseTravelClass(s string) (TravelClass, bool) {
	switch normalizeToken(s) {
	case "economy":
		return ClassEconomy, true
	case "premium-economy", "premiumeconomy", "premium":
		return ClassPremiumEconomy, true
	case "business":
		return ClassBusiness, true
	case "first":
		return ClassFirst, true
	}
	return "", false
}

func (c TravelClass) Valid() bool {
	parsed, ok := ParseTravelClass(string(c))
	return ok && parsed == c
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.Join(strings.Fields(s), "-")
}

type Location struct {
	ID          string `json:"id"`
	AirportCode string `json:"airportCode"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Airport     string `json:"airport"`
}

func (l Location) IsZero() bool {
	return l == Location{}
}

const MaxPassengers = 9

type Passengers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (p Passengers) Total() int {
	return p.Adults + p.Children + p.Infants
}

// SearchState is the canonical flight search query. Dates are ISO
// calendar dates (2006-01-02); nil means unset.
type SearchState struct {
	Itinerary   Itinerary   `json:"itinerary"`
	Departure   Location    `json:"departure"`
	Arrival     Location    `json:"arrival"`
	FlightDate  *string     `json:"flightDate"`
	ReturnDate  *string     `json:"returnDate"`
	TravelClass TravelClass `json:"travelClass"`
	Passengers  Passengers  `json:"passengers"`
}

func DefaultSearchState() SearchState {
	return SearchState{
		Itinerary:   ItineraryOneWay,
		TravelClass: ClassEconomy,
		Passengers:  Passengers{Adults: 1},
	}
}

func (s SearchState) IsRoundTrip() bool {
	return s.Itinerary == ItineraryRoundTrip
}

// Clone returns a copy that shares no pointers with s.
func (s SearchState) Clone() SearchState {
	out := s
	out.FlightDate = cloneString(s.FlightDate)
	out.ReturnDate = cloneString(s.ReturnDate)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// StringPtr is a small helper for building optional dates.
func StringPtr(s string) *string {
	return &s
}
