package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar/internal/calendar"
)

func TestExportRoundTrip(t *testing.T) {
	day := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		{ID: "1", Date: day, Title: "Midterm", CourseName: "PSYC 101", Time: "04:00 PM", Desc: "Chapters 1-5"},
		{ID: "2", Date: day, Title: "Reading", Time: "whenever"},
	}

	out := Export("Coursework", events, stamp)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "X-WR-CALNAME:Coursework")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	assert.Equal(t, "1@calendar", parsed[0].Id())
	assert.Equal(t, "Midterm", parsed[0].GetProperty(ical.ComponentPropertySummary).Value)
	start, err := parsed[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, time.October, 20, 16, 0, 0, 0, time.UTC)))

	allDay, err := parsed[1].GetAllDayStartAt()
	require.NoError(t, err)
	assert.Equal(t, 20, allDay.Day())
}
