// Package phone canonicalizes phone numbers to E.164.
package phone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidNumber is returned for input that cannot be reduced to a valid
// E.164 number under the active policy.
var ErrInvalidNumber = errors.New("invalid phone number")

// Normalizer parses raw phone input into canonical +<countrycode><digits>
// form. The permissive fallback widens acceptance to bare national digit
// strings and should stay disabled unless the operator opts in.
type Normalizer struct {
	defaultRegion string
	permissive    bool
}

func NewNormalizer(defaultRegion string, permissive bool) *Normalizer {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Normalizer{defaultRegion: defaultRegion, permissive: permissive}
}

// Normalize returns the E.164 form of raw or ErrInvalidNumber. The output is
// idempotent: feeding a normalized number back in yields the same string.
func (n *Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidNumber
	}

	// Strict parse against the default region first, then region-agnostic
	// for inputs that already carry a country-code prefix.
	if num, err := phonenumbers.Parse(raw, n.defaultRegion); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}
	if num, err := phonenumbers.Parse(raw, ""); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}

	if n.permissive {
		if normalized, ok := n.normalizeDigits(raw); ok {
			return normalized, nil
		}
	}
	return "", ErrInvalidNumber
}

// normalizeDigits accepts bare 10-digit national numbers and 11-digit
// numbers already carrying the region's country code.
func (n *Normalizer) normalizeDigits(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	stripped := digits.String()
	countryCode := strconv.Itoa(int(phonenumbers.GetCountryCodeForRegion(n.defaultRegion)))

	switch {
	case len(stripped) == 10:
		return fmt.Sprintf("+%s%s", countryCode, stripped), true
	case len(stripped) == 11 && strings.HasPrefix(stripped, countryCode):
		return "+" + stripped, true
	default:
		return "", false
	}
}
