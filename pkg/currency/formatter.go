// Package currency renders ticket prices for display.
package currency

import (
	"math"
	"strconv"
	"strings"
)

type style struct {
	decimals     int
	thousandsSep string
	decimalSep   string
}

var styles = map[string]style{
	"IDR": {0, ".", ","},
	"USD": {2, ",", "."},
	"SGD": {2, ",", "."},
	"MYR": {2, ",", "."},
	"AUD": {2, ",", "."},
	"JPY": {0, ",", "."},
}

var defaultStyle = style{2, ",", "."}

// Format renders amount prefixed by its ISO currency code. An empty code
// means IDR, the portal's settlement currency.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "IDR"
	}
	st, ok := styles[code]
	if !ok {
		st = defaultStyle
	}

	scale := math.Pow10(st.decimals)
	rounded := math.Round(amount*scale) / scale
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	digits := strconv.FormatFloat(rounded, 'f', st.decimals, 64)
	intPart, frac, _ := strings.Cut(digits, ".")

	result := code + " " + addThousandsSeparator(intPart, st.thousandsSep)
	if frac != "" {
		result += st.decimalSep + frac
	}
	if negative {
		result = "-" + result
	}
	return result
}

func FormatIDR(amount float64) string {
	return Format(amount, "IDR")
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(n + (n-1)/3*len(sep))
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
