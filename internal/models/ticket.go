package models

import (
	"math"
	"time"
)

type Leg int

const (
	LegDeparture Leg = iota
	LegReturn
)

func (l Leg) String() string {
	if l == LegReturn {
		return "return"
	}
	return "departure"
}

func ParseLeg(s string) (Leg, bool) {
	switch s {
	case "departure", "":
		return LegDeparture, true
	case "return":
		return LegReturn, true
	}
	return LegDeparture, false
}

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Endpoint struct {
	Airport string    `json:"airport"`
	City    string    `json:"city"`
	Time    time.Time `json:"time"`
}

type Segment struct {
	Carrier      Airline  `json:"carrier"`
	FlightNumber string   `json:"flightNumber"`
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
}

type Price struct {
	Adult    float64 `json:"adult"`
	Child    float64 `json:"child"`
	Infant   float64 `json:"infant"`
	Tax      float64 `json:"tax"`
	Currency string  `json:"currency"`
}

type Baggage struct {
	CabinKg   float64 `json:"cabinKg"`
	CheckedKg float64 `json:"checkedKg"`
}

type ExtraOffer struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type FlightClass struct {
	Type        TravelClass  `json:"type"`
	Price       Price        `json:"price"`
	ExtraOffers []ExtraOffer `json:"extraOffers,omitempty"`
	Baggage     Baggage      `json:"baggage"`
}

// Ticket is a read-only snapshot from the backend.
type Ticket struct {
	ID             string        `json:"id"`
	Segments       []Segment     `json:"segments"`
	Stops          int           `json:"stops"`
	Classes        []FlightClass `json:"flightClasses"`
	BestValueScore float64       `json:"bestValueScore,omitempty"`
}

func (t Ticket) ItemID() string {
	return t.ID
}

// Carrier is the marketing carrier of the first segment.
func (t Ticket) Carrier() Airline {
	if len(t.Segments) == 0 {
		return Airline{}
	}
	return t.Segments[0].Carrier
}

// Layovers lists the connection airports: every segment arrival but the last.
func (t Ticket) Layovers() []Endpoint {
	if len(t.Segments) < 2 {
		return nil
	}
	out := make([]Endpoint, 0, len(t.Segments)-1)
	for _, s := range t.Segments[:len(t.Segments)-1] {
		out = append(out, s.Arrival)
	}
	return out
}

func (t Ticket) LowestAdultPrice() (float64, bool) {
	lowest := math.Inf(1)
	for _, c := range t.Classes {
		if c.Price.Adult < lowest {
			lowest = c.Price.Adult
		}
	}
	if math.IsInf(lowest, 1) {
		return 0, false
	}
	return lowest, true
}

func (t Ticket) DepartureTime() time.Time {
	if len(t.Segments) == 0 {
		return time.Time{}
	}
	return t.Segments[0].Departure.Time
}

func (t Ticket) ArrivalTime() time.Time {
	if len(t.Segments) == 0 {
		return time.Time{}
	}
	return t.Segments[len(t.Segments)-1].Arrival.Time
}

func (t Ticket) DurationMinutes() int {
	dep, arr := t.DepartureTime(), t.ArrivalTime()
	if dep.IsZero() || arr.IsZero() || arr.Before(dep) {
		return 0
	}
	return int(arr.Sub(dep).Minutes())
}

type TicketResults struct {
	Departure []Ticket `json:"departure"`
	Return    []Ticket `json:"return"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r PriceRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

func (r PriceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Facets struct {
	PriceRange      PriceRange    `json:"priceRange"`
	Stops           []FacetOption `json:"stopsOptions"`
	Airlines        []FacetOption `json:"airlineOptions"`
	LayoverAirports []FacetOption `json:"layoverAirportOptions"`
}
