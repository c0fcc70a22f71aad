package validation

import (
	"regexp"
	"strings"
)

const (
	MinPlusOnes = 1
	MaxPlusOnes = 11
)

var codeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// ValidateCode reports whether the input has the shape of a verification
// code. Shape failures never reach the code store.
func ValidateCode(code string) bool {
	return codeRegex.MatchString(strings.TrimSpace(code))
}

// ValidatePlusOnes checks the party-size bounds.
func ValidatePlusOnes(plusOnes int) bool {
	return plusOnes >= MinPlusOnes && plusOnes <= MaxPlusOnes
}

// ValidateName validates a display name.
func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) > 0 && len(name) <= 100
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
