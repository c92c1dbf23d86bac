package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/searchstate"
	"github.com/dharmasatrya/blockseats/internal/validation"
)

var urlCmd = &cobra.Command{
	Use:     "url",
	Short:   "Build the results URL for a search",
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
		fmt.Println(searchstate.UpdateURLParams("/blockseats/list", state))
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:     "parse <url-or-query>",
	Short:   "Decode a search URL and report any field errors",
	GroupID: "search",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := queryOf(args[0])
		if err != nil {
			return err
		}
		state := searchstate.ParseFromURLParams(params)
		errs := (validation.Validator{}).Validate(state)

		if jsonOutput {
			return printJSON(models.SearchStateResponse{
				SearchState: state,
				Errors:      errs.Messages(),
				Query:       searchstate.Encode(state),
			})
		}
		printState(state)
		printErrors(errs)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{urlCmd, ticketsCmd} {
		f := cmd.Flags()
		f.String("from", "", "departure airport code")
		f.String("to", "", "arrival airport code")
		f.String("date", "", "flight date (YYYY-MM-DD)")
		f.String("return", "", "return date; makes the search a round trip")
		f.String("class", "economy", "travel class")
		f.Int("adults", 1, "adult passengers")
		f.Int("children", 0, "child passengers")
		f.Int("infants", 0, "infant passengers")
	}
}

func stateFromFlags(cmd *cobra.Command) (models.SearchState, error) {
	f := cmd.Flags()
	from, _ := f.GetString("from")
	to, _ := f.GetString("to")
	date, _ := f.GetString("date")
	ret, _ := f.GetString("return")
	class, _ := f.GetString("class")
	adults, _ := f.GetInt("adults")
	children, _ := f.GetInt("children")
	infants, _ := f.GetInt("infants")

	state := models.DefaultSearchState()
	state.Departure.AirportCode = strings.ToUpper(from)
	state.Arrival.AirportCode = strings.ToUpper(to)
	if date != "" {
		state.FlightDate = models.StringPtr(date)
	}
	if ret != "" {
		state.Itinerary = models.ItineraryRoundTrip
		state.ReturnDate = models.StringPtr(ret)
	}
	tc, ok := models.ParseTravelClass(class)
	if !ok {
		return state, fmt.Errorf("unknown travel class %q", class)
	}
	state.TravelClass = tc
	state.Passengers = models.Passengers{Adults: adults, Children: children, Infants: infants}
	return state, nil
}

// queryOf accepts a full URL, a path with a query, or a bare query string.
func queryOf(s string) (url.Values, error) {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	params, err := url.ParseQuery(s)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	return params, nil
}

func printState(s models.SearchState) {
	fmt.Printf("Itinerary:    %s\n", s.Itinerary)
	fmt.Printf("From:         %s\n", s.Departure.AirportCode)
	fmt.Printf("To:           %s\n", s.Arrival.AirportCode)
	fmt.Printf("Flight date:  %s\n", deref(s.FlightDate))
	if s.IsRoundTrip() {
		fmt.Printf("Return date:  %s\n", deref(s.ReturnDate))
	}
	fmt.Printf("Class:        %s\n", s.TravelClass)
	fmt.Printf("Passengers:   %d adult, %d child, %d infant\n", s.Passengers.Adults, s.Passengers.Children, s.Passengers.Infants)
}

func printErrors(errs validation.ErrorMap) {
	for _, field := range errs.Fields() {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, errs[field].Message)
	}
}

func deref(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
