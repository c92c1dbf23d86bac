package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dharmasatrya/blockseats/internal/listctl"
	"github.com/dharmasatrya/blockseats/internal/models"
)

// action is an item mutation offered in an interactive list. It returns
// the id it touched and, unless the item was deleted, its new version.
type action[T listctl.Item] struct {
	usage string
	args  int
	run   func(ctx context.Context, args []string) (id string, updated *T, err error)
}

// settleTimeout bounds how long the session waits for a debounced search
// to come back before prompting again.
const settleTimeout = 30 * time.Second

// runSession reads lines from in the way a list screen receives
// keystrokes: plain text replaces the search box (debounced), /more
// scrolls to the sentinel, and /<action> mutates an item and refreshes
// the page it was loaded from.
func runSession[T listctl.Item](ctx context.Context, ctl *listctl.Controller[T], q models.ListQuery, actions map[string]action[T], in io.Reader, out io.Writer, render func(io.Writer, listctl.State[T])) error {
	settle(ctx, ctl, q.SearchText, func() { ctl.OnQueryChange(q) })
	render(out, ctl.State())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		if !strings.HasPrefix(line, "/") {
			q.SearchText = line
			settle(ctx, ctl, line, func() { ctl.OnQueryChange(q) })
			render(out, ctl.State())
			continue
		}

		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			continue
		}
		switch name := fields[0]; name {
		case "quit", "q":
			return nil
		case "more":
			ctl.OnSentinelVisible()
			ctl.Wait()
			render(out, ctl.State())
		case "help":
			fmt.Fprintln(out, "text: search   /more: next page   /quit")
			for n, a := range actions {
				fmt.Fprintf(out, "/%s %s\n", n, a.usage)
			}
		default:
			a, ok := actions[name]
			if !ok {
				fmt.Fprintf(out, "unknown command /%s (try /help)\n", name)
				continue
			}
			if len(fields)-1 != a.args {
				fmt.Fprintf(out, "usage: /%s %s\n", name, a.usage)
				continue
			}
			note, err := mutate(ctx, ctl, a, fields[1:])
			if err != nil {
				fmt.Fprintf(out, "%s failed: %v\n", name, err)
				continue
			}
			render(out, ctl.State())
			if note != "" {
				fmt.Fprintln(out, note)
			}
		}
	}
}

// mutate applies a and reconciles the list with the backend by
// refetching the page the item came from. If that refresh fails the
// local edit stands and the returned note says so.
func mutate[T listctl.Item](ctx context.Context, ctl *listctl.Controller[T], a action[T], args []string) (string, error) {
	id, updated, err := a.run(ctx, args)
	if err != nil {
		return "", err
	}
	if updated != nil {
		ctl.ReplaceItem(*updated)
	}
	env := ctl.RefreshItemPage(ctx, id)
	if env.Success {
		return "", nil
	}
	if updated == nil {
		ctl.RemoveItem(id)
	}
	return "list not refreshed: " + env.Message, nil
}

// settle runs change and blocks until the controller has committed a
// load for text. A debounced change is waited out; a change that leaves
// text already committed returns at once.
func settle[T listctl.Item](ctx context.Context, ctl *listctl.Controller[T], text string, change func()) {
	done := make(chan struct{}, 1)
	unsubscribe := ctl.Subscribe(func(st listctl.State[T]) {
		if st.Query.SearchText == text && !st.Loading {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	change()
	if st := ctl.State(); !st.Loading && st.Query.SearchText == text {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(settleTimeout):
	}
	ctl.Wait()
}
