package gst

import "strings"

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
		"Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells a rupee amount using the Indian numbering system,
// e.g. 152340 -> "One Lakh Fifty Two Thousand Three Hundred Forty Only".
func AmountInWords(n int64) string {
	if n == 0 {
		return "Zero Only"
	}
	if n < 0 {
		return "Minus " + AmountInWords(-n)
	}
	return strings.Join(strings.Fields(spell(n)), " ") + " Only"
}

func spell(n int64) string {
	var b strings.Builder
	if n >= 10000000 {
		b.WriteString(spell(n / 10000000))
		b.WriteString(" Crore ")
		n %= 10000000
	}
	if n >= 100000 {
		b.WriteString(hundreds(n / 100000))
		b.WriteString(" Lakh ")
		n %= 100000
	}
	if n >= 1000 {
		b.WriteString(hundreds(n / 1000))
		b.WriteString(" Thousand ")
		n %= 1000
	}
	if n > 0 {
		b.WriteString(hundreds(n))
	}
	return b.String()
}

// hundreds spells 0 < n < 1000.
func hundreds(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		parts = append(parts, tens[n/10])
		if n%10 > 0 {
			parts = append(parts, ones[n%10])
		}
	case n >= 10:
		parts = append(parts, teens[n-10])
	case n > 0:
		parts = append(parts, ones[n])
	}
	return strings.Join(parts, " ")
}
