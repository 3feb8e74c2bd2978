package calendar

import (
	"fmt"
	"time"
)

// Cursor is the month currently shown by the grid.
type Cursor struct {
	Year  int
	Month time.Month
}

func CursorFor(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month. Year and month are derived together from
// the receiver so the two can never drift apart.
func (c Cursor) Prev() Cursor {
	if c.Month == time.January {
		return Cursor{Year: c.Year - 1, Month: time.December}
	}
	return Cursor{Year: c.Year, Month: c.Month - 1}
}

func (c Cursor) Next() Cursor {
	if c.Month == time.December {
		return Cursor{Year: c.Year + 1, Month: time.January}
	}
	return Cursor{Year: c.Year, Month: c.Month + 1}
}

// First is day 1 of the month at midnight in loc.
func (c Cursor) First(loc *time.Location) time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, loc)
}

// DaysInMonth is the day number of the month's last day.
func (c Cursor) DaysInMonth() int {
	// day 0 of the next month is the last day of this one
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s, %d", c.Month, c.Year)
}
