// Package invoice formats and parses invoice numbers of the form
// PREFIX/SEQUENCE/FY, for example NH/0052/25-26.
package invoice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMalformedNumber = errors.New("malformed invoice number")

// FiscalYear returns the short fiscal year label ("25-26") for t. The year
// rolls over on the first day of startMonth; months outside 1..12 fall back
// to April.
func FiscalYear(t time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = int(time.April)
	}
	start := t.Year()
	if int(t.Month()) < startMonth {
		start--
	}
	if startMonth == int(time.January) {
		return fmt.Sprintf("%02d", start%100)
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
}

// Format builds an invoice number. width is the zero padding applied to seq.
func Format(prefix string, seq, width int, fiscalYear string) string {
	return fmt.Sprintf("%s/%0*d/%s", prefix, width, seq, fiscalYear)
}

// Parse splits an invoice number back into its parts.
func Parse(number string) (prefix string, seq int, fiscalYear string, err error) {
	parts := strings.Split(number, "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", 0, "", ErrMalformedNumber
	}
	seq, err = strconv.Atoi(parts[1])
	if err != nil || seq <= 0 {
		return "", 0, "", ErrMalformedNumber
	}
	return parts[0], seq, parts[2], nil
}

// ValidPrefix rejects prefixes that would break Parse or LIKE matching.
func ValidPrefix(prefix string) bool {
	return prefix != "" && !strings.ContainsAny(prefix, "/%_ ")
}

// slugSeparator stands in for "/" in slugs. ValidPrefix keeps it out of
// prefixes, and sequences and fiscal years never contain it.
const slugSeparator = "_"

// Slug makes an invoice number safe for file names and URL paths.
func Slug(number string) string {
	return strings.ReplaceAll(number, "/", slugSeparator)
}

// FromSlug reverses Slug. Strings without the separator are returned
// unchanged, so a plain invoice number passes through as well.
func FromSlug(s string) string {
	return strings.ReplaceAll(s, slugSeparator, "/")
}
