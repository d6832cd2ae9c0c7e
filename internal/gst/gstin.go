package gst

import (
	"regexp"
	"strings"
)

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	pinPattern   = regexp.MustCompile(`^\d{6}$`)
)

// ValidGSTIN checks the 15 character GSTIN layout.
func ValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}

// ValidPhone accepts 10 digit Indian mobile numbers.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidPinCode accepts 6 digit postal codes.
func ValidPinCode(pin string) bool {
	return pinPattern.MatchString(strings.TrimSpace(pin))
}

// StateCodeFromGSTIN returns the two digit state code a GSTIN starts with,
// or "" when the GSTIN is not well formed.
func StateCodeFromGSTIN(gstin string) string {
	if !ValidGSTIN(gstin) {
		return ""
	}
	return strings.TrimSpace(gstin)[:2]
}

// IsInterState reports whether a sale crosses state lines. An unknown
// customer state is treated as a local sale.
func IsInterState(customerStateCode, companyStateCode string) bool {
	c := strings.TrimSpace(customerStateCode)
	if c == "" || companyStateCode == "" {
		return false
	}
	return c != strings.TrimSpace(companyStateCode)
}
