package searchstate

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/timezone"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

type Side int

const (
	SideFrom Side = iota
	SideTo
)

// Store owns the search of one page instance. The URL is the source of
// truth on navigation (SyncFromURL); mutators are the source of truth
// during the session and notify subscribers so they can rewrite the URL.
type Store struct {
	mu          sync.Mutex
	state       models.SearchState
	applied     []byte
	subscribers map[int]func(models.SearchState)
	nextID      int
}

func NewStore() *Store {
	s := &Store{subscribers: make(map[int]func(models.SearchState))}
	s.commitLocked(models.DefaultSearchState())
	return s
}

func NewStoreFromURL(params url.Values) *Store {
	s := NewStore()
	s.SyncFromURL(params)
	return s
}

func (s *Store) Snapshot() models.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) URLParams() url.Values {
	return ToURLParams(s.Snapshot())
}

// Subscribe registers fn for every effective change. Changes coming from
// SyncFromURL are not echoed back, which keeps URL->state->URL from looping.
func (s *Store) Subscribe(fn func(models.SearchState)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// SyncFromURL applies the parsed URL when it differs from the state
// last applied. It reports whether the state changed.
func (s *Store) SyncFromURL(params url.Values) bool {
	parsed := ParseFromURLParams(params)
	encoded, err := json.Marshal(parsed)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bytes.Equal(encoded, s.applied) {
		return false
	}
	s.state = parsed
	s.applied = encoded
	return true
}

func (s *Store) SetItinerary(it models.Itinerary) {
	s.update(func(st *models.SearchState) {
		st.Itinerary = it
		if it != models.ItineraryRoundTrip {
			st.ReturnDate = nil
		}
	})
}

func (s *Store) SetTravelClass(tc models.TravelClass) {
	s.update(func(st *models.SearchState) { st.TravelClass = tc })
}

// SetPassengers leaves the state untouched and returns the errors when
// the counts are out of range.
func (s *Store) SetPassengers(p models.Passengers) validation.ErrorMap {
	if errs := validation.ValidatePassengers(p); !errs.Empty() {
		return errs
	}
	s.update(func(st *models.SearchState) { st.Passengers = p })
	return nil
}

// SetLocation refuses a location whose airport matches the other side.
func (s *Store) SetLocation(side Side, loc models.Location) validation.ErrorMap {
	var rejected validation.ErrorMap
	s.update(func(st *models.SearchState) {
		other, field := st.Arrival, validation.FieldDeparture
		if side == SideTo {
			other, field = st.Departure, validation.FieldArrival
		}
		code := strings.TrimSpace(loc.AirportCode)
		if code != "" && strings.EqualFold(code, strings.TrimSpace(other.AirportCode)) {
			rejected = validation.ErrorMap{field: {
				Kind:    validation.KindSameAirport,
				Message: "Departure and arrival airports must be different",
			}}
			return
		}
		if side == SideTo {
			st.Arrival = loc
		} else {
			st.Departure = loc
		}
	})
	return rejected
}

func (s *Store) FlipLocations() {
	s.update(func(st *models.SearchState) {
		st.Departure, st.Arrival = st.Arrival, st.Departure
	})
}

// SetDates normalizes both dates; anything unparseable is stored as nil.
func (s *Store) SetDates(flight, ret *string) {
	s.update(func(st *models.SearchState) {
		st.FlightDate = normalize(flight)
		st.ReturnDate = nil
		if st.IsRoundTrip() {
			st.ReturnDate = normalize(ret)
		}
	})
}

func (s *Store) Replace(state models.SearchState) {
	s.update(func(st *models.SearchState) { *st = state.Clone() })
}

func (s *Store) update(fn func(*models.SearchState)) {
	s.mu.Lock()
	next := s.state.Clone()
	fn(&next)
	if !s.commitLocked(next) {
		s.mu.Unlock()
		return
	}
	snapshot := next.Clone()
	subs := make([]func(models.SearchState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) commitLocked(next models.SearchState) bool {
	encoded, err := json.Marshal(next)
	if err != nil || bytes.Equal(encoded, s.applied) {
		return false
	}
	s.state = next
	s.applied = encoded
	return true
}

func normalize(p *string) *string {
	if p == nil {
		return nil
	}
	return timezone.NormalizeDate(*p)
}
