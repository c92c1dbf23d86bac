package filter

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	keyDepartureStops = "departureStops"
	keyReturnStops    = "returnStops"
	keyAirlines       = "airlines"
	keyLayovers       = "layovers"
	keyPriceMin       = "priceMin"
	keyPriceMax       = "priceMax"
)

// EncodeSelected writes sel as comma-separated query values. Empty sets
// and a zero price range are omitted.
func EncodeSelected(sel Selected) url.Values {
	params := url.Values{}
	writeSet(params, keyDepartureStops, sel.DepartureStops)
	writeSet(params, keyReturnStops, sel.ReturnStops)
	writeSet(params, keyAirlines, sel.PreferredAirlines)
	writeSet(params, keyLayovers, sel.LayoverAirports)
	if !sel.Price.IsZero() {
		params.Set(keyPriceMin, strconv.FormatFloat(sel.Price.Min, 'f', -1, 64))
		params.Set(keyPriceMax, strconv.FormatFloat(sel.Price.Max, 'f', -1, 64))
	}
	return params
}

// DecodeSelected reads the keys EncodeSelected writes. Unknown stop
// values are dropped; a missing or malformed price bound leaves the
// price unconstrained.
func DecodeSelected(params url.Values) Selected {
	sel := Selected{
		DepartureStops:    StopSet(readSet(params, keyDepartureStops, false).Values()...),
		ReturnStops:       StopSet(readSet(params, keyReturnStops, false).Values()...),
		PreferredAirlines: readSet(params, keyAirlines, true),
		LayoverAirports:   readSet(params, keyLayovers, true),
	}
	lo, errLo := strconv.ParseFloat(params.Get(keyPriceMin), 64)
	hi, errHi := strconv.ParseFloat(params.Get(keyPriceMax), 64)
	if errLo == nil && errHi == nil && lo <= hi {
		sel.Price.Min, sel.Price.Max = lo, hi
	}
	return sel
}

func writeSet(params url.Values, key string, s Set) {
	if len(s) > 0 {
		params.Set(key, strings.Join(s.Values(), ","))
	}
}

func readSet(params url.Values, key string, upper bool) Set {
	s := Set{}
	for _, raw := range params[key] {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if upper {
				v = strings.ToUpper(v)
			}
			if v != "" {
				s[v] = struct{}{}
			}
		}
	}
	return s
}
