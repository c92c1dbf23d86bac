package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/blockseats/internal/aggregator"
	"github.com/dharmasatrya/blockseats/internal/filter"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/pairing"
	"github.com/dharmasatrya/blockseats/internal/validation"
	"github.com/dharmasatrya/blockseats/pkg/currency"
)

var ticketsCmd = &cobra.Command{
	Use:     "tickets",
	Short:   "Search block-seat tickets and optionally pick a pair to book",
	GroupID: "search",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := stateFromFlags(cmd)
		if err != nil {
			return err
		}
		if errs := (validation.Validator{}).Validate(state); !errs.Empty() {
			printErrors(errs)
			return errors.New("search is not valid")
		}

		agg := aggregator.NewAggregator(client, aggregator.Config{Timeout: 2 * cfg.Backend.Timeout, Logger: logger})
		env, _ := agg.FetchTickets(context.Background(), state)
		if !env.Success {
			return fmt.Errorf("search failed: %s", env.Message)
		}
		if env.Message != "" {
			fmt.Fprintln(os.Stderr, env.Message)
		}

		f := cmd.Flags()
		airlines, _ := f.GetStringSlice("airline")
		stops, _ := f.GetStringSlice("stops")
		sortBy, _ := f.GetString("sort")
		order, _ := f.GetString("order")
		picks, _ := f.GetStringSlice("pick")

		sel := filter.Selected{
			DepartureStops:    filter.StopSet(stops...),
			ReturnStops:       filter.StopSet(stops...),
			PreferredAirlines: filter.NewSet(upper(airlines)...),
		}
		departure := filter.Sort(filter.Apply(env.Results.Departure, sel, models.LegDeparture), sortBy, order)
		var ret []models.Ticket
		if state.IsRoundTrip() {
			ret = filter.Sort(filter.Apply(env.Results.Return, sel, models.LegReturn), sortBy, order)
		}

		machine := pairing.NewMachine(state.Itinerary)
		for i, id := range picks {
			machine.SelectTicket(id, i > 0)
		}
		path, bookable := machine.BookingPath(state)

		if jsonOutput {
			out := map[string]any{"departure": departure}
			if state.IsRoundTrip() {
				out["return"] = ret
			}
			if bookable {
				out["bookingPath"] = path
			}
			return printJSON(out)
		}

		printTickets("Departure", departure, machine, false)
		if state.IsRoundTrip() {
			fmt.Println()
			printTickets("Return", ret, machine, true)
		}
		if bookable {
			fmt.Printf("\nBook at: %s\n", path)
		}
		return nil
	},
}

func init() {
	f := ticketsCmd.Flags()
	f.StringSlice("airline", nil, "only show these carriers (repeatable)")
	f.StringSlice("stops", nil, "only show these stop buckets: 0, 1, 2+")
	f.String("sort", "price", "sort by price, duration, departure, arrival, stops or best_value")
	f.String("order", "asc", "sort order (asc or desc)")
	f.StringSlice("pick", nil, "ticket ids to select: departure, then return")
}

func printTickets(title string, tickets []models.Ticket, machine *pairing.Machine, isReturn bool) {
	fmt.Printf("%s (%d)\n", title, len(tickets))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAIRLINE\tDEPART\tARRIVE\tSTOPS\tFROM\tSTATE")
	for _, t := range tickets {
		price, currencyCode := "-", ""
		if p, ok := t.LowestAdultPrice(); ok {
			if len(t.Classes) > 0 {
				currencyCode = t.Classes[0].Price.Currency
			}
			price = currency.Format(p, currencyCode)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.ID,
			t.Carrier().Code,
			t.DepartureTime().Format("Jan 02 15:04"),
			t.ArrivalTime().Format("Jan 02 15:04"),
			t.Stops,
			price,
			machine.TicketState(t.ID, isReturn),
		)
	}
	w.Flush()
}

func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}
