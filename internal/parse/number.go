package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var nonPhoneRe = regexp.MustCompile(`\D`)

// Reading parses a stored measurement string into a float. Values written in
// the field commonly use a decimal comma ("7,5"), so both separators are
// accepted. When zeroIsMissing is set, an exact zero is treated as an unset
// sentinel rather than a real measurement (a pH or TDS of 0 is a field that
// was never filled, while a chlorine reading of 0 is a valid result).
func Reading(raw string, zeroIsMissing bool) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if zeroIsMissing && v == 0 {
		return 0, false
	}
	return v, true
}

// Money parses a free-form currency string ("$ 1.250,50", "300", "1,200.00")
// into a float, stripping everything that is not part of the number.
// Unparsable input yields zero.
func Money(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0
	}
	// With both separators present, the last one is the decimal mark.
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Phone normalizes a phone number into the digits-only form wa.me expects.
// A leading "+" and any spacing, dashes or parentheses are dropped.
func Phone(raw string) string {
	return nonPhoneRe.ReplaceAllString(raw, "")
}
