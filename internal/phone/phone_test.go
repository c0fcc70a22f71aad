package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStrict(t *testing.T) {
	n := NewNormalizer("US", false)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"national format", "(650) 253-0000", "+16502530000"},
		{"e164 passthrough", "+16502530000", "+16502530000"},
		{"foreign with country code", "+44 20 7031 3000", "+442070313000"},
		{"spaces and dashes", "650-253-0000", "+16502530000"},
		{"leading country code", "1-650-253-0000", "+16502530000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	n := NewNormalizer("US", false)

	for _, in := range []string{"", "hello", "123", "+", "999"} {
		_, err := n.Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidNumber, "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer("US", true)

	inputs := []string{"+16502530000", "(650) 253-0000", "1-650-253-0000"}
	for _, in := range inputs {
		first, err := n.Normalize(in)
		require.NoError(t, err)
		second, err := n.Normalize(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestPermissiveFallback(t *testing.T) {
	strict := NewNormalizer("US", false)
	permissive := NewNormalizer("US", true)

	// An impossible area code fails strict validation; permissive mode
	// still accepts any bare 10-digit sequence. That widening is the whole
	// point of the flag, and why it defaults off.
	raw := "(055) 123-4567"

	_, err := strict.Normalize(raw)
	assert.ErrorIs(t, err, ErrInvalidNumber)

	got, err := permissive.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "+10551234567", got)

	// 11 digits already carrying the country-code digit.
	got, err = permissive.Normalize("1 055 123 4567")
	require.NoError(t, err)
	assert.Equal(t, "+10551234567", got)

	// Wrong length still rejects even in permissive mode.
	_, err = permissive.Normalize("12345")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}
