package timezone

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	WIB  = time.FixedZone("WIB", 7*60*60)  // Jakarta, Surabaya, Medan
	WITA = time.FixedZone("WITA", 8*60*60) // Bali, Makassar, Balikpapan
	WIT  = time.FixedZone("WIT", 9*60*60)  // Papua, Maluku
)

var airportZones = map[string]*time.Location{
	"CGK": WIB, "HLP": WIB, "BDO": WIB, "SUB": WIB, "SRG": WIB,
	"JOG": WIB, "YIA": WIB, "SOC": WIB, "PLM": WIB, "PNK": WIB,
	"BTH": WIB, "PKU": WIB, "PDG": WIB, "KNO": WIB, "BTJ": WIB,
	"TNJ": WIB,

	"DPS": WITA, "LOP": WITA, "UPG": WITA, "BPN": WITA, "MDC": WITA,
	"KDI": WITA, "PLW": WITA, "TRK": WITA,

	"DJJ": WIT, "TIM": WIT, "BIK": WIT, "MKQ": WIT, "SOQ": WIT,
	"AMQ": WIT,
}

// ForAirport returns the local zone of an airport. Unknown codes use WIB,
// the zone the agency operates from.
func ForAirport(code string) *time.Location {
	if loc, ok := airportZones[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return loc
	}
	return WIB
}

// Today is the calendar date at the airport, as UTC midnight so it
// compares directly with ParseDate results.
func Today(airportCode string, now time.Time) time.Time {
	local := now.In(ForAirport(airportCode))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a bare ISO date or an RFC 3339 timestamp and returns
// its calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &time.ParseError{
			Layout:  DateLayout,
			Value:   s,
			Message: ": not an ISO date",
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeDate returns the canonical form of s, or nil when s is not a date.
func NormalizeDate(s string) *string {
	t, err := ParseDate(s)
	if err != nil {
		return nil
	}
	out := t.Format(DateLayout)
	return &out
}
