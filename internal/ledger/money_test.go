package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1 234,56", "1234.56"},
		{"1 234,56", "1234.56"}, // non-breaking space from copy-paste
		{"1234.56", "1234.56"},
		{"0,50", "0.5"},
		{"  250 000  ", "250000"},
		{"-12,30", "-12.3"},
		{"", "0"},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, "input %q", c.in)
		assert.True(t, got.Equal(amount(c.want)), "input %q: got %s, want %s", c.in, got, c.want)
	}

	_, err := ParseAmount("douze")
	assert.ErrorIs(t, err, ErrMalformedAmount)
	_, err = ParseAmount("12,34,56")
	assert.ErrorIs(t, err, ErrMalformedAmount)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1 234,56", FormatAmount(amount("1234.56")))
	assert.Equal(t, "250 000,00", FormatAmount(amount("250000")))
	assert.Equal(t, "0,50", FormatAmount(amount("0.5")))
	assert.Equal(t, "12,00", FormatAmount(amount("12")))
	assert.Equal(t, "-1 234,56", FormatAmount(amount("-1234.56")))
	assert.Equal(t, "1 000 000,00", FormatAmount(amount("1000000")))
}

func TestParseAmountFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"1 234,56", "999,99", "12 000 000,05"} {
		d, err := ParseAmount(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatAmount(d))
	}
}

func TestParseFlexibleDate(t *testing.T) {
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"15/03/24", "15/03/2024", "15-03-24", "15-03-2024"} {
		got, err := ParseFlexibleDate(s)
		require.NoError(t, err, "input %q", s)
		require.NotNil(t, got)
		assert.True(t, got.Equal(want), "input %q: got %s", s, got)
	}

	got, err := ParseFlexibleDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseFlexibleDate("2024-03-15")
	assert.ErrorIs(t, err, ErrMalformedDate)
	_, err = ParseFlexibleDate("hier")
	assert.ErrorIs(t, err, ErrMalformedDate)
}

func TestParseDay(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "07": 7, "31": 31, "": 0, " 15 ": 15} {
		got, err := ParseDay(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"0", "32", "-1", "trois"} {
		_, err := ParseDay(in)
		assert.ErrorIs(t, err, ErrInvalidDay, "input %q", in)
	}
}
