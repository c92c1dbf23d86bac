package filter

import (
	"math"
	"strings"

	"github.com/dharmasatrya/blockseats/internal/models"
)

// Panel holds the sidebar filter for one results page. Controls edit
// the draft; only Apply changes what the list shows.
type Panel struct {
	limits  models.PriceRange
	draft   Selected
	applied Selected
}

func NewPanel(facets models.Facets) *Panel {
	p := &Panel{limits: facets.PriceRange}
	p.Clear()
	return p
}

func emptySelection(limits models.PriceRange) Selected {
	return Selected{
		DepartureStops:    Set{},
		ReturnStops:       Set{},
		PreferredAirlines: Set{},
		LayoverAirports:   Set{},
		Price:             limits,
	}
}

// Rebase adopts the limits of a new source list. A price range that
// spanned the old limits keeps spanning the new ones; anything
// narrower is clamped.
func (p *Panel) Rebase(facets models.Facets) {
	old := p.limits
	p.limits = facets.PriceRange
	p.draft.Price = rebasePrice(p.draft.Price, old, p.limits)
	p.applied.Price = rebasePrice(p.applied.Price, old, p.limits)
}

func rebasePrice(r, old, limits models.PriceRange) models.PriceRange {
	if r == old {
		return limits
	}
	r.Min = clamp(r.Min, limits.Min, limits.Max)
	r.Max = clamp(r.Max, r.Min, limits.Max)
	return r
}

func (p *Panel) ToggleStop(leg models.Leg, bucket string) {
	toggle(p.draft.stops(leg), bucket)
}

func (p *Panel) ToggleAirline(code string) {
	toggle(p.draft.PreferredAirlines, strings.ToUpper(code))
}

func (p *Panel) ToggleLayover(code string) {
	toggle(p.draft.LayoverAirports, strings.ToUpper(code))
}

func toggle(s Set, v string) {
	if v == "" {
		return
	}
	if s.Has(v) {
		delete(s, v)
		return
	}
	s[v] = struct{}{}
}

// SetPriceMin clamps v to [minLimit, draft max] and returns the stored value.
func (p *Panel) SetPriceMin(v float64) float64 {
	p.draft.Price.Min = clamp(v, p.limits.Min, p.draft.Price.Max)
	return p.draft.Price.Min
}

// SetPriceMax clamps v to [draft min, maxLimit] and returns the stored value.
func (p *Panel) SetPriceMax(v float64) float64 {
	p.draft.Price.Max = clamp(v, p.draft.Price.Min, p.limits.Max)
	return p.draft.Price.Max
}

// SetSlider writes both handles at once; reversed handles are swapped.
func (p *Panel) SetSlider(lo, hi float64) models.PriceRange {
	if lo > hi {
		lo, hi = hi, lo
	}
	p.draft.Price = models.PriceRange{
		Min: clamp(lo, p.limits.Min, p.limits.Max),
		Max: clamp(hi, p.limits.Min, p.limits.Max),
	}
	return p.draft.Price
}

func (p *Panel) Limits() models.PriceRange { return p.limits }
func (p *Panel) Draft() Selected           { return p.draft.Clone() }
func (p *Panel) Applied() Selected         { return p.applied.Clone() }

// Dirty reports unsaved draft edits.
func (p *Panel) Dirty() bool {
	return !p.draft.Equal(p.applied)
}

func (p *Panel) Apply() {
	p.applied = p.draft.Clone()
}

// Clear resets draft and applied to no constraints and the full price range.
func (p *Panel) Clear() {
	p.draft = emptySelection(p.limits)
	p.applied = emptySelection(p.limits)
}

// Discard drops draft edits.
func (p *Panel) Discard() {
	p.draft = p.applied.Clone()
}

func (p *Panel) Visible(tickets []models.Ticket, leg models.Leg) []models.Ticket {
	return Apply(tickets, p.applied, leg)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
