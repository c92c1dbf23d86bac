package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/blockseats/internal/filter"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/pairing"
	"github.com/dharmasatrya/blockseats/internal/searchstate"
	"github.com/dharmasatrya/blockseats/internal/timezone"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

const listPath = "/blockseats/list"

// TicketSource is satisfied by *aggregator.Aggregator.
type TicketSource interface {
	FetchTickets(ctx context.Context, state models.SearchState) (models.Envelope[models.TicketResults], bool)
}

type SearchHandler struct {
	tickets   TicketSource
	validator validation.Validator
	logger    *slog.Logger
}

func NewSearchHandler(tickets TicketSource, validator validation.Validator, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{tickets: tickets, validator: validator, logger: logger}
}

// State parses a search query string and reports field errors without
// rejecting the request, so a form can be prefilled from any URL.
func (h *SearchHandler) State(c echo.Context) error {
	state := searchstate.ParseFromURLParams(c.QueryParams())
	errs := h.validator.Validate(state)

	return c.JSON(http.StatusOK, models.SearchStateResponse{
		SearchState: state,
		Errors:      errs.Messages(),
		Query:       searchstate.Encode(state),
	})
}

// Submit validates a search form and returns the results route for it.
func (h *SearchHandler) Submit(c echo.Context) error {
	var state models.SearchState
	if err := c.Bind(&state); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	state = normalizeSubmitted(state)

	if errs := h.validator.Validate(state); !errs.Empty() {
		return validationFailed(c, errs)
	}

	return c.JSON(http.StatusOK, models.SubmitResponse{
		Path: searchstate.UpdateURLParams(listPath, state),
	})
}

func normalizeSubmitted(state models.SearchState) models.SearchState {
	if it, ok := models.ParseItinerary(string(state.Itinerary)); ok {
		state.Itinerary = it
	}
	if class, ok := models.ParseTravelClass(string(state.TravelClass)); ok {
		state.TravelClass = class
	}
	if state.FlightDate != nil {
		state.FlightDate = timezone.NormalizeDate(*state.FlightDate)
	}
	if state.ReturnDate != nil {
		state.ReturnDate = timezone.NormalizeDate(*state.ReturnDate)
	}
	if !state.IsRoundTrip() {
		state.ReturnDate = nil
	}
	return state
}

// List returns both legs of a search. Facets always describe the
// unfiltered leg; tickets are filtered with the applied filter from the
// query string and sorted by sortBy/sortOrder.
func (h *SearchHandler) List(c echo.Context) error {
	startTime := time.Now()
	params := c.QueryParams()

	state := searchstate.ParseFromURLParams(params)
	if errs := h.validator.Validate(state); !errs.Empty() {
		return validationFailed(c, errs)
	}

	env, cacheHit := h.tickets.FetchTickets(c.Request().Context(), state)
	if !env.Success {
		h.logger.Warn("ticket search failed", "message", env.Message)
		status := http.StatusBadGateway
		if len(env.ValidationErrors) > 0 {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, models.ErrorResponse{
			Error:   "search_error",
			Message: env.Message,
			Code:    status,
			Fields:  env.ValidationErrors,
		})
	}

	sel := filter.DecodeSelected(params)
	sortBy, sortOrder := params.Get("sortBy"), params.Get("sortOrder")

	resp := models.TicketListResponse{
		SearchState: state,
		Departure:   legResult(env.Results.Departure, sel, models.LegDeparture, sortBy, sortOrder),
		Message:     env.Message,
	}
	total := len(resp.Departure.Tickets)
	if state.IsRoundTrip() {
		ret := legResult(env.Results.Return, sel, models.LegReturn, sortBy, sortOrder)
		resp.Return = &ret
		total += len(ret.Tickets)
	}
	resp.Metadata = models.SearchMetadata{
		TotalResults: total,
		SearchTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:     cacheHit,
	}

	return c.JSON(http.StatusOK, resp)
}

func legResult(source []models.Ticket, sel filter.Selected, leg models.Leg, sortBy, sortOrder string) models.LegResult {
	visible := filter.Sort(filter.Apply(source, sel, leg), sortBy, sortOrder)
	return models.LegResult{
		Facets:  filter.DeriveFacets(source),
		Tickets: visible,
	}
}

// Checkout resolves a checkout route segment, a ticket id or a combined
// id, back into the selection and search it was booked from.
func (h *SearchHandler) Checkout(c echo.Context) error {
	state := searchstate.ParseFromURLParams(c.QueryParams())
	sel, ok := pairing.ResolveTarget(state.Itinerary, c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_ticket",
			Message: "Checkout needs one ticket per leg of the trip",
			Code:    http.StatusBadRequest,
		})
	}

	path, _ := pairing.BookingPath(state.Itinerary, sel, state)
	resp := models.CheckoutContext{
		SearchState:       state,
		SelectedDeparture: sel.Departure,
		Path:              path,
	}
	if sel.Return != "" {
		resp.SelectedReturn = models.StringPtr(sel.Return)
	}
	return c.JSON(http.StatusOK, resp)
}

func validationFailed(c echo.Context, errs validation.ErrorMap) error {
	return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Please correct the highlighted fields",
		Code:    http.StatusUnprocessableEntity,
		Fields:  errs.Messages(),
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
