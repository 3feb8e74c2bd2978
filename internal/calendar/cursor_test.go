package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursorWrapsYear(t *testing.T) {
	assert.Equal(t, Cursor{Year: 2025, Month: time.December}, Cursor{Year: 2026, Month: time.January}.Prev())
	assert.Equal(t, Cursor{Year: 2027, Month: time.January}, Cursor{Year: 2026, Month: time.December}.Next())
	assert.Equal(t, Cursor{Year: 2026, Month: time.May}, Cursor{Year: 2026, Month: time.April}.Next())
}

func TestCursorPrevNextRoundTrip(t *testing.T) {
	for year := 1999; year <= 2001; year++ {
		for m := time.January; m <= time.December; m++ {
			c := Cursor{Year: year, Month: m}
			assert.Equal(t, c, c.Prev().Next(), "from %s", c)
			assert.Equal(t, c, c.Next().Prev(), "from %s", c)
		}
	}
}

func TestCursorDaysInMonth(t *testing.T) {
	tests := []struct {
		c    Cursor
		want int
	}{
		{Cursor{2024, time.February}, 29},
		{Cursor{2026, time.February}, 28},
		{Cursor{1900, time.February}, 28},
		{Cursor{2000, time.February}, 29},
		{Cursor{2026, time.April}, 30},
		{Cursor{2026, time.December}, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.DaysInMonth(), tt.c.String())
	}
}

func TestCursorString(t *testing.T) {
	assert.Equal(t, "October, 2026", Cursor{2026, time.October}.String())
}
