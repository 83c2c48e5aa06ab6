package utils

import "strings"

// Digits strips everything that is not a decimal digit.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCardNumber accepts a 16-digit card number, spaces allowed.
func ValidCardNumber(number string) bool {
	return len(Digits(number)) == 16
}

// ValidExpiry accepts MM/YY with a month between 01 and 12.
func ValidExpiry(expiry string) bool {
	digits := Digits(expiry)
	if len(digits) != 4 {
		return false
	}
	if len(expiry) != 5 || expiry[2] != '/' {
		return false
	}
	month := int(digits[0]-'0')*10 + int(digits[1]-'0')
	return month >= 1 && month <= 12
}

// ValidCVV accepts 3 or 4 digits.
func ValidCVV(cvv string) bool {
	digits := Digits(cvv)
	return digits == cvv && (len(digits) == 3 || len(digits) == 4)
}

// CardLast4 returns the last four digits of a card number for receipts.
func CardLast4(number string) string {
	digits := Digits(number)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
