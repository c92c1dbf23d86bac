// Package pairing tracks which ticket is chosen for each leg and turns
// a complete pairing into a checkout route.
//
// Reclicking a committed ticket deselects it. Deselecting or replacing
// the departure also drops the return, so a pairing never combines a
// return with a departure it was not chosen against.
package pairing

import (
	"net/url"
	"strings"
	"sync"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/searchstate"
)

const checkoutBase = "/blockseats/list/"

type TicketState string

const (
	StateSelect   TicketState = "select"
	StateSelected TicketState = "selected"
	StateBookNow  TicketState = "book now"
)

type Phase int

const (
	PhaseNone Phase = iota
	PhaseDeparture
	PhaseBoth
)

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSelected
	OutcomeDeselected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeDeselected:
		return "deselected"
	}
	return "ignored"
}

// Selection holds ticket ids; "" means nothing chosen for that leg.
type Selection struct {
	Departure string `json:"selectedDeparture"`
	Return    string `json:"selectedReturn"`
}

// Select is the transition function.
func Select(it models.Itinerary, sel Selection, ticketID string, isReturnLeg bool) (Selection, Outcome) {
	if ticketID == "" {
		return sel, OutcomeIgnored
	}

	if !isReturnLeg {
		if sel.Departure == ticketID {
			return Selection{}, OutcomeDeselected
		}
		return Selection{Departure: ticketID}, OutcomeSelected
	}

	if it != models.ItineraryRoundTrip || sel.Departure == "" {
		return sel, OutcomeIgnored
	}
	if sel.Return == ticketID {
		return Selection{Departure: sel.Departure}, OutcomeDeselected
	}
	return Selection{Departure: sel.Departure, Return: ticketID}, OutcomeSelected
}

func PhaseOf(it models.Itinerary, sel Selection) Phase {
	switch {
	case sel.Departure == "":
		return PhaseNone
	case it == models.ItineraryRoundTrip && sel.Return != "":
		return PhaseBoth
	}
	return PhaseDeparture
}

// Complete reports whether the selection can be booked.
func Complete(it models.Itinerary, sel Selection) bool {
	if it == models.ItineraryRoundTrip {
		return sel.Departure != "" && sel.Return != ""
	}
	return sel.Departure != ""
}

func Label(it models.Itinerary, sel Selection, ticketID string, isReturnLeg bool) TicketState {
	committed := sel.Departure
	if isReturnLeg {
		if it != models.ItineraryRoundTrip {
			return StateSelect
		}
		committed = sel.Return
	}
	switch {
	case ticketID == "" || ticketID != committed:
		return StateSelect
	case Complete(it, sel):
		return StateBookNow
	}
	return StateSelected
}

func CombinedID(sel Selection) (string, bool) {
	if sel.Departure == "" || sel.Return == "" {
		return "", false
	}
	return sel.Departure + "_" + sel.Return, true
}

// ParseCombinedID splits on the first underscore.
func ParseCombinedID(id string) (Selection, bool) {
	dep, ret, ok := strings.Cut(id, "_")
	if !ok || dep == "" || ret == "" {
		return Selection{}, false
	}
	return Selection{Departure: dep, Return: ret}, true
}

// BookingTarget is the route segment for checkout: the ticket id for
// one-way trips, the combined id for round trips.
func BookingTarget(it models.Itinerary, sel Selection) (string, bool) {
	if !Complete(it, sel) {
		return "", false
	}
	if it == models.ItineraryRoundTrip {
		return CombinedID(sel)
	}
	return sel.Departure, true
}

func BookingPath(it models.Itinerary, sel Selection, state models.SearchState) (string, bool) {
	target, ok := BookingTarget(it, sel)
	if !ok {
		return "", false
	}
	return searchstate.UpdateURLParams(checkoutBase+url.PathEscape(target), state), true
}

// ResolveTarget maps a checkout route segment back to a selection.
func ResolveTarget(it models.Itinerary, target string) (Selection, bool) {
	if target == "" {
		return Selection{}, false
	}
	if it == models.ItineraryRoundTrip {
		return ParseCombinedID(target)
	}
	return Selection{Departure: target}, true
}

// Machine applies transitions atomically for one results page.
type Machine struct {
	mu        sync.Mutex
	itinerary models.Itinerary
	sel       Selection
}

func NewMachine(it models.Itinerary) *Machine {
	return &Machine{itinerary: it}
}

func (m *Machine) SelectTicket(ticketID string, isReturnLeg bool) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out Outcome
	m.sel, out = Select(m.itinerary, m.sel, ticketID, isReturnLeg)
	return out
}

func (m *Machine) TicketState(ticketID string, isReturnLeg bool) TicketState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Label(m.itinerary, m.sel, ticketID, isReturnLeg)
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PhaseOf(m.itinerary, m.sel)
}

func (m *Machine) CombinedID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itinerary != models.ItineraryRoundTrip {
		return "", false
	}
	return CombinedID(m.sel)
}

func (m *Machine) BookingPath(state models.SearchState) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return BookingPath(m.itinerary, m.sel, state)
}

func (m *Machine) Snapshot() (models.Itinerary, Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itinerary, m.sel
}

// Reset clears the selection; call it whenever the ticket lists are refetched.
func (m *Machine) Reset(it models.Itinerary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itinerary = it
	m.sel = Selection{}
}
