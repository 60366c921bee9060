package export

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// FormatINR renders whole rupees with the rupee sign and thousands separators, e.g. ₹150,000.
func FormatINR(rupees int64) string {
	display := money.New(rupees*100, money.INR).Display()
	return strings.TrimSuffix(display, ".00")
}

// FormatINRPlain replaces the rupee sign with "Rs." for renderers limited to Latin-1 fonts.
func FormatINRPlain(rupees int64) string {
	return strings.Replace(FormatINR(rupees), "₹", "Rs.", 1)
}
