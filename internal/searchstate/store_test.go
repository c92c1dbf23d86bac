package searchstate

import (
	"testing"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

func TestSyncFromURLSkipsUnchangedState(t *testing.T) {
	s := NewStore()
	notified := 0
	s.Subscribe(func(models.SearchState) { notified++ })

	s.SetLocation(SideFrom, models.Location{AirportCode: "CGK"})
	if notified != 1 {
		t.Fatalf("notified = %d after mutation, want 1", notified)
	}

	// The subscriber would now write the URL; the resulting URL change
	// must not be treated as a new state.
	if s.SyncFromURL(s.URLParams()) {
		t.Fatal("SyncFromURL applied the URL the store itself produced")
	}

	params := s.URLParams()
	params.Set(toKeys.code, "DPS")
	if !s.SyncFromURL(params) {
		t.Fatal("SyncFromURL ignored a real navigation")
	}
	if got := s.Snapshot().Arrival.AirportCode; got != "DPS" {
		t.Fatalf("arrival = %q", got)
	}
	if s.SyncFromURL(params) {
		t.Fatal("second sync of the same URL changed state")
	}
	if notified != 1 {
		t.Fatalf("URL sync notified subscribers (%d)", notified)
	}
}

func TestSetLocationRejectsSameAirport(t *testing.T) {
	s := NewStore()
	s.SetLocation(SideFrom, models.Location{AirportCode: "CGK"})

	errs := s.SetLocation(SideTo, models.Location{AirportCode: "cgk"})
	if errs.Kind(validation.FieldArrival) != validation.KindSameAirport {
		t.Fatalf("errs = %v", errs)
	}
	if got := s.Snapshot().Arrival; !got.IsZero() {
		t.Fatalf("arrival changed to %+v", got)
	}

	if errs := s.SetLocation(SideTo, models.Location{AirportCode: "DPS"}); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestFlipLocations(t *testing.T) {
	s := NewStore()
	s.SetLocation(SideFrom, models.Location{AirportCode: "CGK", City: "Jakarta"})
	s.SetLocation(SideTo, models.Location{AirportCode: "DPS", City: "Denpasar"})

	s.FlipLocations()
	got := s.Snapshot()
	if got.Departure.AirportCode != "DPS" || got.Arrival.AirportCode != "CGK" {
		t.Fatalf("after flip: %s -> %s", got.Departure.AirportCode, got.Arrival.AirportCode)
	}
}

func TestSetItineraryOneWayClearsReturn(t *testing.T) {
	s := NewStore()
	s.SetItinerary(models.ItineraryRoundTrip)
	s.SetDates(models.StringPtr("2026-09-01"), models.StringPtr("2026-09-05T08:00:00+07:00"))

	got := s.Snapshot()
	if got.ReturnDate == nil || *got.ReturnDate != "2026-09-05" {
		t.Fatalf("returnDate = %v", got.ReturnDate)
	}

	s.SetItinerary(models.ItineraryOneWay)
	if got := s.Snapshot(); got.ReturnDate != nil {
		t.Fatalf("returnDate kept after switching to one-way: %q", *got.ReturnDate)
	}
}

func TestSetDatesDropsGarbage(t *testing.T) {
	s := NewStore()
	s.SetDates(models.StringPtr("not a date"), nil)
	if got := s.Snapshot().FlightDate; got != nil {
		t.Fatalf("flightDate = %q", *got)
	}
}

func TestSetPassengers(t *testing.T) {
	s := NewStore()
	if errs := s.SetPassengers(models.Passengers{Adults: 8, Children: 2}); !errs.Has(validation.FieldPassengers) {
		t.Fatalf("10 passengers accepted")
	}
	if got := s.Snapshot().Passengers; got != (models.Passengers{Adults: 1}) {
		t.Fatalf("passengers changed to %+v", got)
	}
	if errs := s.SetPassengers(models.Passengers{Adults: 2, Infants: 1}); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := NewStore()
	s.SetDates(models.StringPtr("2026-09-01"), nil)

	snap := s.Snapshot()
	*snap.FlightDate = "1999-01-01"
	if got := *s.Snapshot().FlightDate; got != "2026-09-01" {
		t.Fatalf("store mutated through snapshot: %s", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.Subscribe(func(models.SearchState) { calls++ })
	s.SetTravelClass(models.ClassBusiness)
	unsubscribe()
	s.SetTravelClass(models.ClassFirst)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
