package utils

import (
	"regexp"
	"strings"
)

var (
	mobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	pinPattern    = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeMobile strips spaces and dashes from a mobile number.
func NormalizeMobile(mobile string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(mobile))
}

// NormalizeIdentifier treats anything with an @ as an email and the rest as a mobile number.
func NormalizeIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return NormalizeEmail(identifier)
	}
	return NormalizeMobile(identifier)
}

// IsValidMobile reports whether mobile is an optional + followed by 10 to 15 digits.
func IsValidMobile(mobile string) bool {
	return mobilePattern.MatchString(NormalizeMobile(mobile))
}

// IsValidPIN reports whether pin is 4 to 6 digits.
func IsValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}
