// Package listctl drives cursor-paginated admin lists: debounced search
// text, immediate reloads on filter or tab changes, scroll-triggered
// page appends, and per-page refresh after item mutations.
//
// A Controller may be called from any goroutine. Fetches run in their
// own goroutines; a response is committed only if no newer LoadInitial
// has started since its request was issued.
package listctl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dharmasatrya/blockseats/internal/clock"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/requestid"
)

const (
	DefaultDebounce = 700 * time.Millisecond
	DefaultPageSize = 20
)

// Item is anything a list can hold. Ids must be unique within a list.
type Item interface {
	ItemID() string
}

// Fetcher loads one page. It reports business failures through the
// envelope and should honour ctx cancellation.
type Fetcher[T any] interface {
	FetchPage(ctx context.Context, q models.ListQuery, cursor string) models.Envelope[models.ListPage[T]]
}

type FetcherFunc[T any] func(ctx context.Context, q models.ListQuery, cursor string) models.Envelope[models.ListPage[T]]

func (f FetcherFunc[T]) FetchPage(ctx context.Context, q models.ListQuery, cursor string) models.Envelope[models.ListPage[T]] {
	return f(ctx, q, cursor)
}

type Options struct {
	Clock    clock.Clock
	Debounce time.Duration
	PageSize int
	Logger   *slog.Logger
}

// State is a point-in-time copy of the list.
type State[T any] struct {
	Query      models.ListQuery `json:"query"`
	Items      []T              `json:"items"`
	NextCursor string           `json:"nextCursor,omitempty"`
	Loading    bool             `json:"loading"`
	HasMore    bool             `json:"hasMore"`
	Message    string           `json:"message,omitempty"`
}

type Controller[T Item] struct {
	fetcher  Fetcher[T]
	clock    clock.Clock
	debounce time.Duration
	pageSize int
	logger   *slog.Logger

	root     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	query   models.ListQuery
	started bool
	items   []T
	origin  map[string]string // item id -> cursor of the page it came from
	cursor  string
	loading bool
	message string
	closed  bool

	gen    uint64
	cancel context.CancelFunc

	timer    *clock.Timer
	timerGen uint64
	pending  models.ListQuery

	subs    map[int]func(State[T])
	nextSub int
}

func New[T Item](fetcher Fetcher[T], opts Options) *Controller[T] {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	root, shutdown := context.WithCancel(context.Background())
	return &Controller[T]{
		fetcher:  fetcher,
		clock:    opts.Clock,
		debounce: opts.Debounce,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
		root:     root,
		shutdown: shutdown,
		origin:   map[string]string{},
		subs:     map[int]func(State[T]){},
	}
}

func (c *Controller[T]) normalize(q models.ListQuery) models.ListQuery {
	q = q.Clone()
	if q.PageSize <= 0 {
		q.PageSize = c.pageSize
	}
	return q
}

// OnQueryChange reacts to a change of the list's inputs. Search text
// edits are debounced; reverting the text to empty, or changing filters
// or tab, loads immediately and drops any pending debounce.
func (c *Controller[T]) OnQueryChange(q models.ListQuery) {
	q = c.normalize(q)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	switch {
	case !c.started || !q.SameScope(c.query):
		c.stopTimerLocked()
		c.mu.Unlock()
		c.LoadInitial(q)
		return
	case q.SearchText == c.query.SearchText:
		c.stopTimerLocked()
		c.mu.Unlock()
		return
	case q.SearchText == "":
		c.stopTimerLocked()
		c.mu.Unlock()
		c.LoadInitial(q)
		return
	}

	c.stopTimerLocked()
	c.pending = q
	token := c.timerGen
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fireDebounce(token) })
	c.mu.Unlock()
}

func (c *Controller[T]) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller[T]) fireDebounce(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.timerGen {
		c.mu.Unlock()
		return
	}
	q := c.pending
	c.timer = nil
	c.mu.Unlock()

	c.LoadInitial(q)
}

// LoadInitial discards the accumulated list and fetches the first page
// of q. Any in-flight request is cancelled and its response ignored.
func (c *Controller[T]) LoadInitial(q models.ListQuery) {
	q = c.normalize(q)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	c.query = q
	c.started = true
	c.items = nil
	c.origin = map[string]string{}
	c.cursor = ""
	c.message = ""
	c.loading = true
	ctx := c.beginLocked()
	gen := c.gen
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
	go c.run(ctx, gen, q, "", true)
}

// LoadMore appends the next page. It does nothing while a load is in
// flight or once the last page has been reached.
func (c *Controller[T]) LoadMore() {
	c.mu.Lock()
	if c.closed || c.loading || !c.started || c.cursor == "" {
		c.mu.Unlock()
		return
	}
	c.loading = true
	ctx := c.beginLocked()
	gen, q, cursor := c.gen, c.query.Clone(), c.cursor
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
	go c.run(ctx, gen, q, cursor, false)
}

// OnSentinelVisible is the intersection callback for the last rendered row.
func (c *Controller[T]) OnSentinelVisible() {
	c.LoadMore()
}

func (c *Controller[T]) beginLocked() context.Context {
	ctx, cancel := context.WithCancel(c.root)
	c.cancel = cancel
	c.wg.Add(1)
	return requestid.With(ctx, requestid.New())
}

func (c *Controller[T]) run(ctx context.Context, gen uint64, q models.ListQuery, cursor string, initial bool) {
	defer c.wg.Done()

	started := c.clock.Now()
	env := c.fetch(ctx, q, cursor)
	log := c.logger.With("request_id", requestid.From(ctx), "cursor", cursor)

	c.mu.Lock()
	if gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		log.Debug("list response superseded")
		return
	}
	c.loading = false
	c.cancel()
	c.cancel = nil

	if !env.Success {
		c.message = env.Message
		if initial {
			c.items = nil
		}
		log.Warn("list page failed", "message", env.Message)
	} else {
		c.message = ""
		added := c.appendLocked(env.Results.Items, cursor)
		c.cursor = env.Results.NextCursor
		log.Debug("list page loaded",
			"received", len(env.Results.Items),
			"added", added,
			"total", len(c.items),
			"took", c.clock.Now().Sub(started))
	}
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify(state)
}

// fetch converts a panicking fetcher into a failed envelope.
func (c *Controller[T]) fetch(ctx context.Context, q models.ListQuery, cursor string) (env models.Envelope[models.ListPage[T]]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("list fetcher panicked", "panic", r, "request_id", requestid.From(ctx))
			env = models.Fail[models.ListPage[T]](fmt.Sprintf("unexpected error: %v", r))
		}
	}()
	return c.fetcher.FetchPage(ctx, q, cursor)
}

// appendLocked adds items whose id is not already in the list and
// returns how many were added.
func (c *Controller[T]) appendLocked(items []T, cursor string) int {
	added := 0
	for _, it := range items {
		id := it.ItemID()
		if _, dup := c.origin[id]; dup {
			continue
		}
		c.origin[id] = cursor
		c.items = append(c.items, it)
		added++
	}
	return added
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller[T]) stateLocked() State[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Query:      c.query.Clone(),
		Items:      items,
		NextCursor: c.cursor,
		Loading:    c.loading,
		HasMore:    c.started && c.cursor != "",
		Message:    c.message,
	}
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn runs on the goroutine that changed the state.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller[T]) notify(state State[T]) {
	c.mu.Lock()
	fns := make([]func(State[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// Wait blocks until no fetch goroutine is running.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Close cancels the debounce timer and any in-flight request. Later
// calls on the controller are no-ops.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.loading = false
	c.stopTimerLocked()
	c.cancel = nil
	c.mu.Unlock()

	c.shutdown()
}
