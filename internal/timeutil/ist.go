package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Invoice dates,
// fiscal years and expiry checks are all evaluated in IST.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ParseInIST parses a time string and returns it in IST
func ParseInIST(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, IST)
}

// ParseOptionalDate parses a YYYY-MM-DD value; an empty string yields nil.
func ParseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseInIST(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartOfDay returns the start of day (00:00:00) in IST for the given time
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// EndOfDay returns the end of day (23:59:59) in IST for the given time
func EndOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 23, 59, 59, 999999999, IST)
}

// FormatDisplayDate renders a date the way it is printed on invoices; nil
// renders as an empty string.
func FormatDisplayDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(IST).Format(DisplayDateLayout)
}

// Common layouts for IST formatting
const (
	DateLayout        = "2006-01-02"
	DisplayDateLayout = "02.01.2006"
	ExpiryLayout      = "01/06"
	DisplayLayout     = "02.01.2006 03:04 PM"
)
