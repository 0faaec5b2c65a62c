package timeslot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		min  int
	}{
		{name: "12h lower case with space", in: "6:30 am", want: "6:30 AM", min: 390},
		{name: "24h zero padded", in: "06:30", want: "6:30 AM", min: 390},
		{name: "24h with seconds", in: "18:00:00", want: "6:00 PM", min: 1080},
		{name: "hour only pm", in: "7pm", want: "7:00 PM", min: 1140},
		{name: "midnight 12am", in: "12am", want: "12:00 AM", min: 0},
		{name: "noon 12pm", in: "12:00 PM", want: "12:00 PM", min: 720},
		{name: "12:30 am", in: "12:30 AM", want: "12:30 AM", min: 30},
		{name: "mixed case suffix", in: "11:30 Pm", want: "11:30 PM", min: 1410},
		{name: "surrounding whitespace", in: "  9:00AM ", want: "9:00 AM", min: 540},
		{name: "24h midnight", in: "00:00", want: "12:00 AM", min: 0},
		{name: "24h last minute", in: "23:59", want: "11:59 PM", min: 1439},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.String())
			assert.Equal(t, tt.min, s.Minutes())
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "banana", "25:00", "13pm", "0am", "10:60", "10:00:61", "6.30 am", "6:3 am"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTime))
		})
	}
}

func TestNormalizeFallsBackToMidnight(t *testing.T) {
	assert.Equal(t, Slot(0), Normalize("not a time"))
	assert.Equal(t, "12:00 AM", Canonical("not a time"))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, s := range Day() {
		c := s.String()
		assert.Equal(t, c, Canonical(c), "canonical form of %d must be a fixed point", s)
	}
	assert.Equal(t, Canonical("6:30 am"), Canonical("06:30"))
	assert.Equal(t, "6:30 AM", Canonical("06:30"))
}

func TestNormalizeSet(t *testing.T) {
	got := NormalizeSet([]string{"6:30 am", "06:30", "7:00 AM"})
	assert.Equal(t, []string{"6:30 AM", "7:00 AM"}, Strings(got))

	got = NormalizeSet([]string{"18:00", "9am", "1:00 AM", "09:00"})
	assert.Equal(t, []string{"1:00 AM", "9:00 AM", "6:00 PM"}, Strings(got))

	assert.Empty(t, NormalizeSet(nil))
}

func TestNext(t *testing.T) {
	n, ok := Next(Normalize("6:30 AM"))
	require.True(t, ok)
	assert.Equal(t, "7:00 AM", n.String())

	n, ok = Next(Normalize("11:30 AM"))
	require.True(t, ok)
	assert.Equal(t, "12:00 PM", n.String())

	_, ok = Next(Normalize("11:30 PM"))
	assert.False(t, ok, "last slot of the day has no successor")

	_, ok = Next(Normalize("6:15 AM"))
	assert.False(t, ok, "off-grid slots are not part of the universe")

	_, ok = Next(Slot(-30))
	assert.False(t, ok)
}

func TestDay(t *testing.T) {
	d := Day()
	require.Len(t, d, 48)
	assert.Equal(t, "12:00 AM", d[0].String())
	assert.Equal(t, "11:30 PM", d[47].String())
	for i := 1; i < len(d); i++ {
		n, ok := Next(d[i-1])
		require.True(t, ok)
		assert.Equal(t, d[i], n)
	}
}
