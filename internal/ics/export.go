package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"calendar/internal/calendar"
)

// DefaultDuration is assigned to timed events, which carry no end time.
const DefaultDuration = time.Hour

// Export renders events as an iCalendar feed. Events whose time does not
// parse become all-day entries.
func Export(name string, events []calendar.Event, stamp time.Time) string {
	cal := ical.NewCalendarFor("calendar")
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		vev := cal.AddEvent(ev.ID + "@calendar")
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Title)
		if ev.Desc != "" {
			vev.SetDescription(ev.Desc)
		}
		if c := strings.TrimSpace(ev.CourseName); c != "" {
			vev.AddCategory(c)
		}

		if start, ok := ev.Start(); ok {
			vev.SetStartAt(start)
			vev.SetEndAt(start.Add(DefaultDuration))
		} else {
			vev.SetAllDayStartAt(ev.Date)
			vev.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		}
	}
	return cal.Serialize()
}
