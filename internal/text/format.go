package text

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Money formats an amount as US dollars with two decimals and grouping
func Money(v float64) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("$%.2f", v)
}

// Quantity formats a quantity without trailing zeros
func Quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Normalize composes text into NFC so that accented input maps onto the
// single code points the core fonts can encode.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
