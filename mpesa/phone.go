package mpesa

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone converts a subscriber number to the 254XXXXXXXXX form the
// Daraja API requires. Non-digits are stripped, a leading "0" is replaced with
// the country code and a bare national number gets the country code prefixed.
func NormalizePhone(phoneNumber string) (string, error) {
	digits := nonDigits.ReplaceAllString(phoneNumber, "")
	if digits == "" {
		return "", &ValidationError{Message: "phone number is required"}
	}

	if strings.HasPrefix(digits, "0") {
		digits = "254" + digits[1:]
	}
	if !strings.HasPrefix(digits, "254") {
		digits = "254" + digits
	}

	if len(digits) != 12 {
		return "", &ValidationError{Message: "invalid phone number format"}
	}

	return digits, nil
}
