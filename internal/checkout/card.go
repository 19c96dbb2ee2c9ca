package checkout

import (
	"strings"
	"time"
	"unicode"
)

type CardBrand string

const (
	BrandVisa       CardBrand = "Visa"
	BrandMastercard CardBrand = "Mastercard"
	BrandAmex       CardBrand = "American Express"
	BrandDiscover   CardBrand = "Discover"
	BrandUnknown    CardBrand = "Unknown"
)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCardNumber runs the Luhn checksum over the digits of number.
// Lengths outside 13-19 digits fail outright.
func ValidCardNumber(number string) bool {
	cleaned := digitsOnly(number)
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		d := int(cleaned[i] - '0')
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

// DetectBrand classifies a card number by its prefix.
func DetectBrand(number string) CardBrand {
	c := digitsOnly(number)
	switch {
	case strings.HasPrefix(c, "4"):
		return BrandVisa
	case len(c) >= 2 && (c[0] == '5' && c[1] >= '1' && c[1] <= '5' || c[0] == '2' && c[1] >= '2' && c[1] <= '7'):
		return BrandMastercard
	case strings.HasPrefix(c, "34") || strings.HasPrefix(c, "37"):
		return BrandAmex
	case strings.HasPrefix(c, "6011") || strings.HasPrefix(c, "65"):
		return BrandDiscover
	}
	return BrandUnknown
}

// ValidExpiry accepts "MM/YY" that is this month or later.
func ValidExpiry(expiry string, now time.Time) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, year := 0, 0
	for _, r := range parts[0] {
		if !unicode.IsDigit(r) {
			return false
		}
		month = month*10 + int(r-'0')
	}
	for _, r := range parts[1] {
		if !unicode.IsDigit(r) {
			return false
		}
		year = year*10 + int(r-'0')
	}
	year += 2000
	if month < 1 || month > 12 {
		return false
	}
	if year < now.Year() {
		return false
	}
	if year == now.Year() && month < int(now.Month()) {
		return false
	}
	return true
}

// ValidCVV checks the security code length: 4 digits for American Express,
// 3 for everything else.
func ValidCVV(cvv string, brand CardBrand) bool {
	cleaned := digitsOnly(cvv)
	if brand == BrandAmex {
		return len(cleaned) == 4
	}
	return len(cleaned) == 3
}
