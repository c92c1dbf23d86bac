package listctl

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dharmasatrya/blockseats/internal/clock"
	"github.com/dharmasatrya/blockseats/internal/models"
)

type row struct {
	ID   string
	Name string
}

func (r row) ItemID() string { return r.ID }

type page struct {
	items []row
	next  string
	delay time.Duration
	fail  string
}

// fakeBackend serves pages keyed by search text, status filter and cursor.
// Delayed pages wait on the fake clock and ignore cancellation, so a
// superseded response still arrives.
type fakeBackend struct {
	clk *clock.FakeClock

	mu        sync.Mutex
	pages     map[string]page
	calls     []string
	cancelled map[string]bool
}

func newBackend(clk *clock.FakeClock) *fakeBackend {
	return &fakeBackend{clk: clk, pages: map[string]page{}, cancelled: map[string]bool{}}
}

func key(q models.ListQuery, cursor string) string {
	return q.SearchText + "|" + q.Filters["status"] + "|" + cursor
}

func (b *fakeBackend) set(k string, p page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[k] = p
}

func (b *fakeBackend) FetchPage(ctx context.Context, q models.ListQuery, cursor string) models.Envelope[models.ListPage[row]] {
	k := key(q, cursor)
	b.mu.Lock()
	b.calls = append(b.calls, k)
	p := b.pages[k]
	b.mu.Unlock()

	if p.delay > 0 {
		<-b.clk.After(p.delay)
	}
	if ctx.Err() != nil {
		b.mu.Lock()
		b.cancelled[k] = true
		b.mu.Unlock()
	}
	if p.fail != "" {
		return models.Fail[models.ListPage[row]](p.fail)
	}
	return models.OK(models.ListPage[row]{Items: p.items, NextCursor: p.next})
}

func (b *fakeBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func rows(ids ...string) []row {
	out := make([]row, len(ids))
	for i, id := range ids {
		out[i] = row{ID: id, Name: "user " + id}
	}
	return out
}

func itemIDs(items []row) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func setup(t *testing.T) (*fakeBackend, *clock.FakeClock, *Controller[row]) {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	b := newBackend(clk)
	c := New[row](b, Options{Clock: clk})
	t.Cleanup(c.Close)
	return b, clk, c
}

func search(text string) models.ListQuery {
	return models.ListQuery{SearchText: text}
}

func TestLoadMoreDeduplicates(t *testing.T) {
	b, _, c := setup(t)
	b.set("||", page{items: rows("1", "2", "3"), next: "p2"})
	b.set("||p2", page{items: rows("3", "4"), next: "p3"})
	b.set("||p3", page{items: rows("4", "5", "1", "5"), next: ""})

	c.LoadInitial(search(""))
	c.Wait()
	for i := 0; i < 4; i++ {
		c.OnSentinelVisible()
		c.Wait()
	}

	st := c.State()
	if got := itemIDs(st.Items); !reflect.DeepEqual(got, []string{"1", "2", "3", "4", "5"}) {
		t.Fatalf("items = %v", got)
	}
	if st.HasMore || st.Loading {
		t.Fatalf("state = %+v, want terminal and idle", st)
	}
	if got := len(b.callLog()); got != 3 {
		t.Fatalf("fetched %d pages, want 3", got)
	}
}

func TestLoadMoreWhileLoadingIsNoop(t *testing.T) {
	b, clk, c := setup(t)
	b.set("||", page{items: rows("1"), next: "p2", delay: 100 * time.Millisecond})

	c.LoadInitial(search(""))
	clk.WaitForTimers(1)
	c.LoadMore()
	if !c.State().Loading {
		t.Fatal("expected loading while the first page is in flight")
	}
	clk.Advance(100 * time.Millisecond)
	c.Wait()

	if got := b.callLog(); len(got) != 1 {
		t.Fatalf("calls = %v", got)
	}
	if st := c.State(); !st.HasMore || st.NextCursor != "p2" {
		t.Fatalf("state = %+v", st)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	b, clk, c := setup(t)
	b.set("foo||", page{items: rows("f1", "f2"), delay: 500 * time.Millisecond})
	b.set("bar||", page{items: rows("b1"), delay: 100 * time.Millisecond})

	c.LoadInitial(search("foo"))
	clk.WaitForTimers(1)
	clk.Advance(100 * time.Millisecond)

	c.LoadInitial(search("bar"))
	clk.WaitForTimers(2)
	clk.Advance(100 * time.Millisecond) // bar resolves at 200ms
	clk.Advance(300 * time.Millisecond) // foo resolves at 500ms
	c.Wait()

	st := c.State()
	if got := itemIDs(st.Items); !reflect.DeepEqual(got, []string{"b1"}) {
		t.Fatalf("items = %v, want bar's results", got)
	}
	if st.Query.SearchText != "bar" || st.Message != "" || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.cancelled["foo||"] {
		t.Fatal("superseded request was not cancelled")
	}
}

func TestSearchTextIsDebounced(t *testing.T) {
	b, clk, c := setup(t)

	c.OnQueryChange(search(""))
	c.Wait()

	c.OnQueryChange(search("a"))
	clk.Advance(300 * time.Millisecond)
	c.OnQueryChange(search("ab"))
	clk.Advance(699 * time.Millisecond)
	if got := b.callLog(); len(got) != 1 {
		t.Fatalf("debounce fired early: %v", got)
	}
	clk.Advance(time.Millisecond)
	c.Wait()

	if got := b.callLog(); !reflect.DeepEqual(got, []string{"||", "ab||"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestClearingSearchTextLoadsImmediately(t *testing.T) {
	b, clk, c := setup(t)

	c.OnQueryChange(search("x"))
	c.Wait()
	c.OnQueryChange(search("xy"))
	c.OnQueryChange(search(""))
	c.Wait()
	clk.Advance(time.Second)
	c.Wait()

	if got := b.callLog(); !reflect.DeepEqual(got, []string{"x||", "||"}) {
		t.Fatalf("calls = %v", got)
	}
	if clk.PendingCount() != 0 {
		t.Fatal("debounce timer still pending")
	}
}

func TestRevertingSearchTextCancelsDebounce(t *testing.T) {
	b, clk, c := setup(t)

	c.OnQueryChange(search(""))
	c.Wait()
	c.OnQueryChange(search("a"))
	c.OnQueryChange(search(""))
	clk.Advance(time.Second)
	c.Wait()

	if got := b.callLog(); !reflect.DeepEqual(got, []string{"||"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestFilterChangeLoadsImmediately(t *testing.T) {
	b, clk, c := setup(t)

	c.OnQueryChange(search(""))
	c.Wait()
	c.OnQueryChange(search("a"))
	c.OnQueryChange(models.ListQuery{SearchText: "a", Filters: map[string]string{"status": "active"}})
	c.Wait()
	clk.Advance(time.Second)
	c.Wait()

	if got := b.callLog(); !reflect.DeepEqual(got, []string{"||", "a|active|"}) {
		t.Fatalf("calls = %v", got)
	}
}

func TestFailureSurfacesMessage(t *testing.T) {
	b, _, c := setup(t)
	b.set("||", page{items: rows("1"), next: "p2"})
	b.set("||p2", page{fail: "backend unavailable"})

	c.LoadInitial(search(""))
	c.Wait()
	c.LoadMore()
	c.Wait()

	st := c.State()
	if st.Message != "backend unavailable" {
		t.Fatalf("message = %q", st.Message)
	}
	if got := itemIDs(st.Items); !reflect.DeepEqual(got, []string{"1"}) || st.NextCursor != "p2" {
		t.Fatalf("failed LoadMore changed the list: %+v", st)
	}

	b.set("||", page{fail: "boom"})
	c.LoadInitial(search(""))
	c.Wait()
	if st := c.State(); len(st.Items) != 0 || st.Message != "boom" || st.HasMore {
		t.Fatalf("failed LoadInitial kept stale data: %+v", st)
	}
}

func TestFetcherPanicBecomesFailure(t *testing.T) {
	c := New[row](FetcherFunc[row](func(context.Context, models.ListQuery, string) models.Envelope[models.ListPage[row]] {
		panic("nil map")
	}), Options{})
	defer c.Close()

	c.LoadInitial(search(""))
	c.Wait()
	if st := c.State(); st.Message != "unexpected error: nil map" || st.Loading {
		t.Fatalf("state = %+v", st)
	}
}

func TestMutationsKeepAccumulatedList(t *testing.T) {
	b, _, c := setup(t)
	b.set("||", page{items: rows("1", "2"), next: "p2"})
	b.set("||p2", page{items: rows("3", "4"), next: ""})

	c.LoadInitial(search(""))
	c.Wait()
	c.LoadMore()
	c.Wait()

	if !c.ReplaceItem(row{ID: "2", Name: "renamed"}) {
		t.Fatal("ReplaceItem missed a loaded id")
	}
	if !c.RemoveItem("1") || c.RemoveItem("1") {
		t.Fatal("RemoveItem should succeed exactly once")
	}

	b.set("||p2", page{items: []row{{ID: "3", Name: "updated"}, {ID: "5", Name: "new"}, {ID: "2", Name: "moved"}}})
	env := c.RefreshItemPage(context.Background(), "4")
	if !env.Success {
		t.Fatalf("refresh failed: %s", env.Message)
	}

	st := c.State()
	want := []row{{ID: "2", Name: "renamed"}, {ID: "3", Name: "updated"}, {ID: "5", Name: "new"}}
	if !reflect.DeepEqual(st.Items, want) {
		t.Fatalf("items = %+v", st.Items)
	}
	if st.HasMore {
		t.Fatal("refresh changed the cursor")
	}
}

func TestSubscribeAndClose(t *testing.T) {
	b, clk, c := setup(t)
	b.set("||", page{items: rows("1"), delay: time.Second})

	var mu sync.Mutex
	var seen []State[row]
	unsubscribe := c.Subscribe(func(s State[row]) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer unsubscribe()

	c.LoadInitial(search(""))
	clk.WaitForTimers(1)
	c.Close()
	clk.Advance(time.Second)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !seen[0].Loading {
		t.Fatalf("notifications = %+v, want only the loading state", seen)
	}
	if st := c.State(); len(st.Items) != 0 {
		t.Fatalf("closed controller committed a response: %+v", st)
	}
	c.LoadInitial(search("again"))
	if got := len(b.callLog()); got != 1 {
		t.Fatalf("LoadInitial after Close fetched: %d calls", got)
	}
}
