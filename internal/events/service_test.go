package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	date := time.Date(2026, time.October, 20, 13, 45, 0, 0, time.UTC)
	in, err := Normalize(Input{Title: " Lab ", Description: " bring goggles ", Date: date, Time: "1:05 pm"})
	require.NoError(t, err)
	assert.Equal(t, "Lab", in.Title)
	assert.Equal(t, "bring goggles", in.Description)
	assert.Equal(t, "01:05 PM", in.Time)
	assert.Equal(t, time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC), in.Date)
}

func TestNormalizeRejects(t *testing.T) {
	date := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	for _, in := range []Input{
		{Title: "", Date: date, Time: "01:00 PM"},
		{Title: "Lab", Time: "01:00 PM"},
		{Title: "Lab", Date: date, Time: "13:00"},
		{Title: "Lab", Date: date, Time: ""},
	} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidEvent, "%+v", in)
	}
}

func TestEventCalendar(t *testing.T) {
	row := Event{ID: 12, Title: "Lab", Description: "goggles", CourseName: "CHEM 1",
		Date: time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC), Time: "01:00 PM"}
	ev := row.Calendar()
	assert.Equal(t, "12", ev.ID)
	assert.Equal(t, "goggles", ev.Desc)
	assert.Equal(t, "CHEM 1", ev.CourseName)
}
