package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/blockseats/internal/clock"
	"github.com/dharmasatrya/blockseats/internal/dataaccess"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

type stubTickets struct {
	env   models.Envelope[models.TicketResults]
	hit   bool
	calls int
}

func (s *stubTickets) FetchTickets(context.Context, models.SearchState) (models.Envelope[models.TicketResults], bool) {
	s.calls++
	return s.env, s.hit
}

func ticket(id, carrier string, stops int, price float64) models.Ticket {
	dep := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	return models.Ticket{
		ID:    id,
		Stops: stops,
		Segments: []models.Segment{{
			Carrier:   models.Airline{Code: carrier, Name: carrier},
			Departure: models.Endpoint{Airport: "CGK", Time: dep},
			Arrival:   models.Endpoint{Airport: "DPS", Time: dep.Add(2 * time.Hour)},
		}},
		Classes: []models.FlightClass{{Type: models.ClassEconomy, Price: models.Price{Adult: price, Currency: "IDR"}}},
	}
}

func newServer(t *testing.T, tickets TicketSource, admin *AdminHandler) *echo.Echo {
	t.Helper()
	v := validation.Validator{Clock: clock.Fake(time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC))}
	e := echo.New()
	RegisterRoutes(e, NewSearchHandler(tickets, v, nil), admin)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	return v
}

const roundTripQuery = "itinerary=round-trip&from=CGK&to=DPS&flightDate=2026-11-02&returnDate=2026-11-09&adults=1"

func TestSearchStateReportsErrors(t *testing.T) {
	e := newServer(t, &stubTickets{}, nil)
	rec := do(e, http.MethodGet, "/api/v1/search/state?itinerary=round-trip&from=CGK&to=cgk&flightDate=2026-01-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[models.SearchStateResponse](t, rec)
	for _, field := range []string{"arrival", "flightDate", "returnDate"} {
		if resp.Errors[field] == "" {
			t.Errorf("missing %s error in %v", field, resp.Errors)
		}
	}
	if resp.SearchState.Departure.AirportCode != "CGK" {
		t.Fatalf("state = %+v", resp.SearchState)
	}
}

func TestSubmit(t *testing.T) {
	e := newServer(t, &stubTickets{}, nil)

	body := `{"itinerary":"one-way","departure":{"airportCode":"CGK"},"arrival":{"airportCode":"DPS"},
		"flightDate":"2026-11-02T00:00:00Z","returnDate":"2026-11-09","travelClass":"economy",
		"passengers":{"adults":2,"children":0,"infants":0}}`
	rec := do(e, http.MethodPost, "/api/v1/search", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	resp := decode[models.SubmitResponse](t, rec)
	path, query, _ := strings.Cut(resp.Path, "?")
	if path != "/blockseats/list" {
		t.Fatalf("path = %s", resp.Path)
	}
	q, _ := url.ParseQuery(query)
	if q.Get("flightDate") != "2026-11-02" || q.Has("returnDate") || q.Get("adults") != "2" {
		t.Fatalf("query = %s", query)
	}

	rec = do(e, http.MethodPost, "/api/v1/search", `{"itinerary":"one-way","passengers":{"adults":0}}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	errResp := decode[models.ErrorResponse](t, rec)
	for _, field := range []string{"departure", "arrival", "flightDate", "passengers"} {
		if errResp.Fields[field] == "" {
			t.Errorf("missing %s error in %v", field, errResp.Fields)
		}
	}

	if rec := do(e, http.MethodPost, "/api/v1/search", `{"itinerary":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", rec.Code)
	}
}

func TestSubmitNormalisesSpellings(t *testing.T) {
	e := newServer(t, &stubTickets{}, nil)

	body := `{"itinerary":"round trip","departure":{"airportCode":"CGK"},"arrival":{"airportCode":"DPS"},
		"flightDate":"2026-11-02","returnDate":"2026-11-09","travelClass":"premium economy",
		"passengers":{"adults":1}}`
	rec := do(e, http.MethodPost, "/api/v1/search", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	resp := decode[models.SubmitResponse](t, rec)
	_, query, _ := strings.Cut(resp.Path, "?")
	q, _ := url.ParseQuery(query)
	if q.Get("travelClass") != string(models.ClassPremiumEconomy) || q.Get("itinerary") != string(models.ItineraryRoundTrip) {
		t.Fatalf("query = %s", query)
	}
}

func TestListUnescapedManyStops(t *testing.T) {
	src := &stubTickets{
		env: models.OK(models.TicketResults{
			Departure: []models.Ticket{ticket("d1", "GA", 0, 900), ticket("d2", "JT", 2, 500)},
		}),
	}
	e := newServer(t, src, nil)

	rec := do(e, http.MethodGet, "/api/v1/blockseats/list?"+roundTripQuery+"&departureStops=2+", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	resp := decode[models.TicketListResponse](t, rec)
	if len(resp.Departure.Tickets) != 1 || resp.Departure.Tickets[0].ID != "d2" {
		t.Fatalf("departure = %+v", resp.Departure.Tickets)
	}
}

func TestListFiltersAndFacets(t *testing.T) {
	src := &stubTickets{
		hit: true,
		env: models.OK(models.TicketResults{
			Departure: []models.Ticket{ticket("d1", "GA", 0, 900), ticket("d2", "JT", 1, 500), ticket("d3", "GA", 1, 700)},
			Return:    []models.Ticket{ticket("r1", "GA", 0, 800)},
		}),
	}
	e := newServer(t, src, nil)

	rec := do(e, http.MethodGet, "/api/v1/blockseats/list?"+roundTripQuery+"&airlines=GA&sortBy=price&sortOrder=desc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	resp := decode[models.TicketListResponse](t, rec)

	var ids []string
	for _, tk := range resp.Departure.Tickets {
		ids = append(ids, tk.ID)
	}
	if strings.Join(ids, ",") != "d1,d3" {
		t.Fatalf("departure = %v", ids)
	}
	if len(resp.Departure.Facets.Airlines) != 2 || resp.Departure.Facets.PriceRange.Min != 500 {
		t.Fatalf("facets must describe the unfiltered leg: %+v", resp.Departure.Facets)
	}
	if resp.Return == nil || len(resp.Return.Tickets) != 1 {
		t.Fatalf("return = %+v", resp.Return)
	}
	if resp.Metadata.TotalResults != 3 || !resp.Metadata.CacheHit {
		t.Fatalf("metadata = %+v", resp.Metadata)
	}
}

func TestListRejectsInvalidSearch(t *testing.T) {
	src := &stubTickets{}
	e := newServer(t, src, nil)
	rec := do(e, http.MethodGet, "/api/v1/blockseats/list?from=CGK", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if src.calls != 0 {
		t.Fatal("invalid search reached the backend")
	}
}

func TestListBackendFailure(t *testing.T) {
	e := newServer(t, &stubTickets{env: models.Fail[models.TicketResults]("backend down")}, nil)
	rec := do(e, http.MethodGet, "/api/v1/blockseats/list?"+roundTripQuery, "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[models.ErrorResponse](t, rec); resp.Message != "backend down" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCheckout(t *testing.T) {
	e := newServer(t, &stubTickets{}, nil)

	rec := do(e, http.MethodGet, "/api/v1/blockseats/list/d1_r1?"+roundTripQuery, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[models.CheckoutContext](t, rec)
	if resp.SelectedDeparture != "d1" || resp.SelectedReturn == nil || *resp.SelectedReturn != "r1" {
		t.Fatalf("selection = %+v", resp)
	}
	if !strings.HasPrefix(resp.Path, "/blockseats/list/d1_r1?") {
		t.Fatalf("path = %s", resp.Path)
	}

	if rec := do(e, http.MethodGet, "/api/v1/blockseats/list/d1?"+roundTripQuery, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("single id on round trip: status = %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/v1/blockseats/list/d1?itinerary=one-way&from=CGK&to=DPS", "")
	if resp := decode[models.CheckoutContext](t, rec); resp.SelectedDeparture != "d1" || resp.SelectedReturn != nil {
		t.Fatalf("one-way selection = %+v", resp)
	}
}

func TestAdminList(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/admin/ticket-requests" || q.Get("search") != "ann" || q.Get("status") != "pending" || q.Get("limit") != "5" {
			t.Errorf("backend request = %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.OK(models.ListPage[models.TicketRequest]{
			Items:      []models.TicketRequest{{ID: "tr-1", Seats: 2}},
			NextCursor: "next",
		}))
	}))
	defer backend.Close()

	client := dataaccess.NewClient(dataaccess.Config{BaseURL: backend.URL})
	e := newServer(t, &stubTickets{}, NewAdminHandler(client, 5))

	rec := do(e, http.MethodGet, "/api/v1/admin/ticket-requests?search=ann&status=pending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	env := decode[models.Envelope[models.ListPage[models.TicketRequest]]](t, rec)
	if !env.Success || env.Results.NextCursor != "next" || env.Results.Items[0].ID != "tr-1" {
		t.Fatalf("envelope = %+v", env)
	}

	if rec := do(e, http.MethodGet, "/api/v1/admin/invoices", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown resource status = %d", rec.Code)
	}
}

func TestAdminSetUserStatusRequiresStatus(t *testing.T) {
	client := dataaccess.NewClient(dataaccess.Config{BaseURL: "http://127.0.0.1:1"})
	e := newServer(t, &stubTickets{}, NewAdminHandler(client, 0))
	if rec := do(e, http.MethodPatch, "/api/v1/admin/users/u1", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e := newServer(t, &stubTickets{}, nil)
	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
