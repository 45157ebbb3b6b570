package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix returns the per-year prefix, e.g. "INV-2025-"
func InvoiceNumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// FormatInvoiceNumber renders a sequence as INV-<year>-<seq>, padded to 4 digits
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix(year), seq)
}

// ParseInvoiceSequence extracts the numeric suffix of a number issued in year.
// ok is false for numbers of another year or with a non-numeric suffix.
func ParseInvoiceSequence(number string, year int) (seq int64, ok bool) {
	prefix := InvoiceNumberPrefix(year)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
