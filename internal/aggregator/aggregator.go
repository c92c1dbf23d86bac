// Package aggregator assembles the departure and return ticket lists
// for one search, consulting the result cache first.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dharmasatrya/blockseats/internal/cache"
	"github.com/dharmasatrya/blockseats/internal/models"
)

// LegFetcher loads the tickets for one leg of a search.
type LegFetcher interface {
	FetchLegTickets(ctx context.Context, state models.SearchState, leg models.Leg) models.Envelope[[]models.Ticket]
}

type Config struct {
	Timeout time.Duration
	Cache   cache.TicketCache
	Logger  *slog.Logger
}

type Aggregator struct {
	fetcher LegFetcher
	timeout time.Duration
	cache   cache.TicketCache
	logger  *slog.Logger
}

func NewAggregator(fetcher LegFetcher, cfg Config) *Aggregator {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNoOpCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Aggregator{
		fetcher: fetcher,
		timeout: cfg.Timeout,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
	}
}

// FetchTickets returns both legs of state. For a round trip the legs are
// fetched concurrently; if only the return leg fails the departure list
// is still returned, with Message explaining the gap. Only complete
// results are cached. cacheHit reports whether the cache answered.
func (a *Aggregator) FetchTickets(ctx context.Context, state models.SearchState) (models.Envelope[models.TicketResults], bool) {
	if cached, ok := a.cache.Get(ctx, state); ok {
		return models.OK(cached), true
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if !state.IsRoundTrip() {
		dep := a.fetcher.FetchLegTickets(ctx, state, models.LegDeparture)
		if !dep.Success {
			return failed(dep), false
		}
		results := models.TicketResults{Departure: nonNil(dep.Results), Return: []models.Ticket{}}
		a.store(ctx, state, results)
		return models.OK(results), false
	}

	type legResult struct {
		leg models.Leg
		env models.Envelope[[]models.Ticket]
	}

	resultCh := make(chan legResult, 2)
	for _, leg := range []models.Leg{models.LegDeparture, models.LegReturn} {
		go func(leg models.Leg) {
			resultCh <- legResult{leg: leg, env: a.fetcher.FetchLegTickets(ctx, state, leg)}
		}(leg)
	}

	var dep, ret models.Envelope[[]models.Ticket]
	for i := 0; i < 2; i++ {
		r := <-resultCh
		if r.leg == models.LegReturn {
			ret = r.env
		} else {
			dep = r.env
		}
	}

	if !dep.Success {
		return failed(dep), false
	}

	results := models.TicketResults{Departure: nonNil(dep.Results), Return: []models.Ticket{}}
	if !ret.Success {
		a.logger.Warn("return leg search failed", "message", ret.Message)
		env := models.OK(results)
		env.Message = "Return flights are unavailable: " + ret.Message
		return env, false
	}

	results.Return = nonNil(ret.Results)
	a.store(ctx, state, results)
	return models.OK(results), false
}

func (a *Aggregator) store(ctx context.Context, state models.SearchState, results models.TicketResults) {
	if err := a.cache.Set(ctx, state, results); err != nil {
		a.logger.Warn("caching ticket results failed", "error", err)
	}
}

func failed(leg models.Envelope[[]models.Ticket]) models.Envelope[models.TicketResults] {
	env := models.Fail[models.TicketResults](leg.Message)
	env.ValidationErrors = leg.ValidationErrors
	return env
}

func nonNil(tickets []models.Ticket) []models.Ticket {
	if tickets == nil {
		return []models.Ticket{}
	}
	return tickets
}
