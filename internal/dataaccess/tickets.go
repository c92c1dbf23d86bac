package dataaccess

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dharmasatrya/blockseats/internal/models"
)

const endpointTickets = "tickets"

// FetchLegTickets loads the tickets for one leg of state. The return
// leg flies arrival to departure on the return date.
func (c *Client) FetchLegTickets(ctx context.Context, state models.SearchState, leg models.Leg) models.Envelope[[]models.Ticket] {
	from, to, date := state.Departure, state.Arrival, state.FlightDate
	if leg == models.LegReturn {
		from, to, date = state.Arrival, state.Departure, state.ReturnDate
	}
	if date == nil || *date == "" {
		return models.Fail[[]models.Ticket](leg.String() + " date is required")
	}
	if from.AirportCode == "" || to.AirportCode == "" {
		return models.Fail[[]models.Ticket]("departure and arrival airports are required")
	}

	q := url.Values{}
	q.Set("from", from.AirportCode)
	q.Set("to", to.AirportCode)
	q.Set("date", *date)
	q.Set("travelClass", string(state.TravelClass))
	q.Set("adults", strconv.Itoa(state.Passengers.Adults))
	q.Set("children", strconv.Itoa(state.Passengers.Children))
	q.Set("infants", strconv.Itoa(state.Passengers.Infants))

	env := call[[]models.Ticket](ctx, c, http.MethodGet, endpointTickets, "/tickets?"+q.Encode(), nil)
	if env.Success && env.Results == nil {
		env.Results = []models.Ticket{}
	}
	return env
}
