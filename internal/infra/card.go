package infra

import (
	"strconv"
	"strings"
)

// Card brands returned by CardBrand.
const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandDiscover   = "discover"
	BrandDiners     = "diners"
	BrandJCB        = "jcb"
	BrandUnknown    = "unknown"
)

// normalizePAN strips spaces and dashes. It returns "" when anything other
// than digits remains.
func normalizePAN(number string) string {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return ""
		}
	}
	return b.String()
}

// ValidateCard reports whether number is a plausible card number:
// 12 to 19 digits passing the Luhn checksum.
func ValidateCard(number string) bool {
	pan := normalizePAN(number)
	if len(pan) < 12 || len(pan) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// CardBrand identifies the network from the card number prefix (IIN range).
func CardBrand(number string) string {
	pan := normalizePAN(number)
	if len(pan) < 2 {
		return BrandUnknown
	}
	prefix := func(n int) int {
		if len(pan) < n {
			return -1
		}
		v, _ := strconv.Atoi(pan[:n])
		return v
	}
	p2, p3, p4 := prefix(2), prefix(3), prefix(4)
	switch {
	case pan[0] == '4':
		return BrandVisa
	case p2 == 34 || p2 == 37:
		return BrandAmex
	case (p2 >= 51 && p2 <= 55) || (p4 >= 2221 && p4 <= 2720):
		return BrandMastercard
	case p4 == 6011 || p2 == 65 || (p3 >= 644 && p3 <= 649):
		return BrandDiscover
	case (p3 >= 300 && p3 <= 305) || p2 == 36 || p2 == 38:
		return BrandDiners
	case p4 >= 3528 && p4 <= 3589:
		return BrandJCB
	default:
		return BrandUnknown
	}
}

// Last4 returns the last four digits of a card number, or "" if it is too short.
func Last4(number string) string {
	pan := normalizePAN(number)
	if len(pan) < 4 {
		return ""
	}
	return pan[len(pan)-4:]
}
