package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/blockseats/internal/dataaccess"
	"github.com/dharmasatrya/blockseats/internal/listctl"
	"github.com/dharmasatrya/blockseats/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list <users|team-members|ticket-requests|tickets-overview>",
	Short: "Page through an admin list",
	Long: `Page through an admin list.

With --interactive the list stays open: typed text becomes the search
(debounced like the search box), /more loads the next page, and item
actions such as "/status <id> <status>" update a row and refresh the
page it came from.`,
	GroupID: "admin",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource := args[0]
		if !dataaccess.KnownResource(resource) {
			return fmt.Errorf("unknown list %q", resource)
		}

		f := cmd.Flags()
		search, _ := f.GetString("search")
		tab, _ := f.GetString("tab")
		pages, _ := f.GetInt("pages")
		interactive, _ := f.GetBool("interactive")
		filterFlags, _ := f.GetStringArray("filter")

		q := models.ListQuery{SearchText: search, Tab: tab, PageSize: cfg.Search.PageSize}
		if len(filterFlags) > 0 {
			q.Filters = make(map[string]string, len(filterFlags))
			for _, kv := range filterFlags {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid filter %q (expected key=value)", kv)
				}
				q.Filters[k] = v
			}
		}

		run := listRun{ctx: cmd.Context(), resource: resource, query: q, pages: pages, interactive: interactive}
		switch resource {
		case dataaccess.ResourceUsers:
			return runList(run, userActions(), []string{"ID", "NAME", "EMAIL", "ROLE", "STATUS"}, func(u models.User) []string {
				return []string{u.ID, u.Name, u.Email, u.Role, u.Status}
			})
		case dataaccess.ResourceTeamMembers:
			return runList(run, nil, []string{"ID", "NAME", "EMAIL", "ROLE"}, func(m models.TeamMember) []string {
				return []string{m.ID, m.Name, m.Email, m.Role}
			})
		case dataaccess.ResourceTicketRequests:
			return runList(run, ticketRequestActions(), []string{"ID", "TICKET", "REQUESTED BY", "SEATS", "STATUS"}, func(r models.TicketRequest) []string {
				return []string{r.ID, r.TicketID, r.RequestedBy, strconv.Itoa(r.Seats), r.Status}
			})
		default:
			return runList(run, nil, []string{"ID", "AIRLINE", "DEPART", "STOPS"}, func(t models.Ticket) []string {
				return []string{t.ID, t.Carrier().Code, t.DepartureTime().Format("Jan 02 15:04"), strconv.Itoa(t.Stops)}
			})
		}
	},
}

func init() {
	f := listCmd.Flags()
	f.String("search", "", "search text")
	f.String("tab", "", "list tab, e.g. pending")
	f.StringArrayP("filter", "f", nil, "backend filter (key=value, repeatable)")
	f.Int("pages", 0, "stop after this many pages (0 loads every page)")
	f.BoolP("interactive", "i", false, "keep the list open and read searches and actions from stdin")
}

type listRun struct {
	ctx         context.Context
	resource    string
	query       models.ListQuery
	pages       int
	interactive bool
}

func userActions() map[string]action[models.User] {
	return map[string]action[models.User]{
		"status": {
			usage: "<id> <active|suspended>",
			args:  2,
			run: func(ctx context.Context, args []string) (string, *models.User, error) {
				env := client.SetUserStatus(ctx, args[0], args[1])
				if !env.Success {
					return "", nil, errors.New(env.Message)
				}
				return args[0], &env.Results, nil
			},
		},
		"delete": {
			usage: "<id>",
			args:  1,
			run: func(ctx context.Context, args []string) (string, *models.User, error) {
				if env := client.DeleteUser(ctx, args[0]); !env.Success {
					return "", nil, errors.New(env.Message)
				}
				return args[0], nil, nil
			},
		},
	}
}

func ticketRequestActions() map[string]action[models.TicketRequest] {
	return map[string]action[models.TicketRequest]{
		"status": {
			usage: "<id> <approved|rejected>",
			args:  2,
			run: func(ctx context.Context, args []string) (string, *models.TicketRequest, error) {
				env := client.SetTicketRequestStatus(ctx, args[0], args[1])
				if !env.Success {
					return "", nil, errors.New(env.Message)
				}
				return args[0], &env.Results, nil
			},
		},
	}
}

// runList drives a list controller the way a scrolling screen would:
// load the first page, then keep hitting the sentinel until the list
// is exhausted or the --pages limit is reached.
func runList[T listctl.Item](run listRun, actions map[string]action[T], header []string, row func(T) []string) error {
	ctl := listctl.New[T](dataaccess.ListSource[T]{Client: client, Resource: run.resource}, listctl.Options{
		PageSize: cfg.Search.PageSize,
		Debounce: cfg.Search.Debounce,
		Logger:   logger,
	})
	defer ctl.Close()

	render := func(w io.Writer, st listctl.State[T]) {
		printRows(w, st, header, row)
	}
	if run.interactive {
		ctx := run.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		return runSession(ctx, ctl, run.query, actions, os.Stdin, os.Stdout, render)
	}

	ctl.LoadInitial(run.query)
	ctl.Wait()
	for loaded := 1; run.pages <= 0 || loaded < run.pages; loaded++ {
		st := ctl.State()
		if st.Message != "" || !st.HasMore {
			break
		}
		ctl.OnSentinelVisible()
		ctl.Wait()
	}

	st := ctl.State()
	if st.Message != "" && len(st.Items) == 0 {
		return errors.New(st.Message)
	}

	if jsonOutput {
		return printJSON(st)
	}
	render(os.Stdout, st)
	return nil
}

func printRows[T listctl.Item](out io.Writer, st listctl.State[T], header []string, row func(T) []string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, it := range st.Items {
		fmt.Fprintln(w, strings.Join(row(it), "\t"))
	}
	w.Flush()

	if st.Message != "" {
		fmt.Fprintf(out, "Stopped early: %s\n", st.Message)
	}
	if st.HasMore {
		fmt.Fprintf(out, "%d shown, more available (cursor %s)\n", len(st.Items), st.NextCursor)
	}
}
