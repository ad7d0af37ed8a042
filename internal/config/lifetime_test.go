package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLifetime_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "30s", want: 30 * time.Second},
		{in: "15m", want: 15 * time.Minute},
		{in: "12h", want: 12 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "0s", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLifetime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLifetime_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "unitless", in: "15"},
		{name: "unknown unit", in: "15x"},
		{name: "empty", in: ""},
		{name: "unit only", in: "m"},
		{name: "fractional", in: "1.5h"},
		{name: "negative", in: "-5m"},
		{name: "spaces", in: "15 m"},
		{name: "unit first", in: "m15"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseLifetime(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDurationFormat)
		})
	}
}

func TestParseLifetime_ComputesExpiryFromInstant(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d, err := ParseLifetime("15m")
	require.NoError(t, err)
	assert.Equal(t, base.Add(15*time.Minute), base.Add(d))
}
