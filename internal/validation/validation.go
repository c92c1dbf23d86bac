// Package validation checks a search before it may be submitted. Every
// rule runs independently so the caller gets all errors at once.
package validation

import (
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/blockseats/internal/clock"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/timezone"
)

type Field string

const (
	FieldDeparture   Field = "departure"
	FieldArrival     Field = "arrival"
	FieldFlightDate  Field = "flightDate"
	FieldReturnDate  Field = "returnDate"
	FieldTravelClass Field = "travelClass"
	FieldPassengers  Field = "passengers"
)

type Kind string

const (
	KindRequired              Kind = "required"
	KindSameAirport           Kind = "same_airport"
	KindDateInPast            Kind = "date_in_past"
	KindInvalidDate           Kind = "invalid_date"
	KindReturnBeforeDeparture Kind = "return_before_departure"
	KindPassengerLimit        Kind = "passenger_limit"
	KindAdultRequired         Kind = "adult_required"
	KindInvalidClass          Kind = "invalid_class"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Message
}

type ErrorMap map[Field]Error

func (m ErrorMap) Empty() bool {
	return len(m) == 0
}

func (m ErrorMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

func (m ErrorMap) Kind(f Field) Kind {
	return m[f].Kind
}

// Merge copies o into m. Existing entries in m win.
func (m ErrorMap) Merge(o ErrorMap) ErrorMap {
	for f, e := range o {
		if _, ok := m[f]; !ok {
			m[f] = e
		}
	}
	return m
}

func (m ErrorMap) Fields() []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Messages flattens the map for JSON responses.
func (m ErrorMap) Messages() map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for f, e := range m {
		out[string(f)] = e.Message
	}
	return out
}

func (m ErrorMap) set(f Field, k Kind, msg string) {
	m[f] = Error{Kind: k, Message: msg}
}

// Validate evaluates every rule against state. "Today" is taken in the
// departure airport's zone.
func Validate(state models.SearchState, now time.Time) ErrorMap {
	errs := ErrorMap{}

	from := strings.TrimSpace(state.Departure.AirportCode)
	to := strings.TrimSpace(state.Arrival.AirportCode)
	if from == "" {
		errs.set(FieldDeparture, KindRequired, "Departure airport is required")
	}
	if to == "" {
		errs.set(FieldArrival, KindRequired, "Arrival airport is required")
	}
	if from != "" && strings.EqualFold(from, to) {
		errs.set(FieldArrival, KindSameAirport, "Departure and arrival airports must be different")
	}

	today := timezone.Today(from, now)
	var flight time.Time
	flightOK := false
	switch {
	case state.FlightDate == nil || strings.TrimSpace(*state.FlightDate) == "":
		errs.set(FieldFlightDate, KindRequired, "Flight date is required")
	default:
		d, err := timezone.ParseDate(*state.FlightDate)
		if err != nil {
			errs.set(FieldFlightDate, KindInvalidDate, "Flight date is not a valid date")
			break
		}
		flight, flightOK = d, true
		if d.Before(today) {
			errs.set(FieldFlightDate, KindDateInPast, "Flight date cannot be in the past")
		}
	}

	if state.IsRoundTrip() {
		switch {
		case state.ReturnDate == nil || strings.TrimSpace(*state.ReturnDate) == "":
			errs.set(FieldReturnDate, KindRequired, "Return date is required for round trips")
		default:
			d, err := timezone.ParseDate(*state.ReturnDate)
			switch {
			case err != nil:
				errs.set(FieldReturnDate, KindInvalidDate, "Return date is not a valid date")
			case flightOK && d.Before(flight):
				errs.set(FieldReturnDate, KindReturnBeforeDeparture, "Return date cannot be before the flight date")
			}
		}
	}

	switch {
	case state.TravelClass == "":
		errs.set(FieldTravelClass, KindRequired, "Travel class is required")
	case !state.TravelClass.Valid():
		errs.set(FieldTravelClass, KindInvalidClass, "Travel class is not recognised")
	}

	return errs.Merge(ValidatePassengers(state.Passengers))
}

func ValidatePassengers(p models.Passengers) ErrorMap {
	errs := ErrorMap{}
	switch {
	case p.Adults < 1:
		errs.set(FieldPassengers, KindAdultRequired, "At least one adult is required")
	case p.Children < 0 || p.Infants < 0:
		errs.set(FieldPassengers, KindPassengerLimit, "Passenger counts cannot be negative")
	case p.Total() > models.MaxPassengers:
		errs.set(FieldPassengers, KindPassengerLimit, "A booking can include at most 9 passengers")
	}
	return errs
}

// Validator binds Validate to a clock.
type Validator struct {
	Clock clock.Clock
}

func (v Validator) Validate(state models.SearchState) ErrorMap {
	c := v.Clock
	if c == nil {
		c = clock.Real()
	}
	return Validate(state, c.Now())
}
