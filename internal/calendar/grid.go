package calendar

import (
	"slices"
	"time"
)

// Weekdays are the grid's column labels, Sunday first.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MaxDayColors caps the category markers drawn in one day cell.
const MaxDayColors = 4

type Cell struct {
	Day      int
	Date     time.Time
	Today    bool
	Selected bool
	Colors   []string
}

// Month is the projection of one cursor onto the grid: LeadingBlanks empty
// cells followed by one cell per day.
type Month struct {
	Cursor        Cursor
	Weekdays      []string
	LeadingBlanks int
	Cells         []Cell
}

func (m Month) DaysInMonth() int { return len(m.Cells) }

// Title is the grid heading, e.g. "October, 2026".
func (m Month) Title() string { return m.Cursor.String() }

// Rows splits the month into weeks. Blank cells have Day == 0.
func (m Month) Rows() [][]Cell {
	all := make([]Cell, m.LeadingBlanks, m.LeadingBlanks+len(m.Cells))
	all = append(all, m.Cells...)

	var rows [][]Cell
	for len(all) > 0 {
		n := min(len(Weekdays), len(all))
		rows = append(rows, all[:n])
		all = all[n:]
	}
	return rows
}

// Project lays out the month under c. now decides "today" and the location
// days are computed in; selected may be zero.
func Project(c Cursor, events []Event, palette *Palette, selected, now time.Time) Month {
	loc := now.Location()
	first := c.First(loc)
	days := c.DaysInMonth()

	m := Month{
		Cursor:        c,
		Weekdays:      Weekdays,
		LeadingBlanks: int(first.Weekday()),
		Cells:         make([]Cell, days),
	}

	for i := range m.Cells {
		date := first.AddDate(0, 0, i)
		m.Cells[i] = Cell{
			Day:      i + 1,
			Date:     date,
			Today:    SameDay(date, now),
			Selected: !selected.IsZero() && SameDay(date, selected),
		}
	}

	for _, ev := range events {
		d := ev.Date.In(loc)
		if d.Year() != c.Year || d.Month() != c.Month {
			continue
		}
		color := palette.Color(ev.CourseName)
		if color == "" {
			continue
		}
		cell := &m.Cells[d.Day()-1]
		if len(cell.Colors) >= MaxDayColors || slices.Contains(cell.Colors, color) {
			continue
		}
		cell.Colors = append(cell.Colors, color)
	}
	return m
}

// SidebarItem is one row of the event list next to the grid.
type SidebarItem struct {
	Event Event
	Color string
}

// Sidebar lists every event chronologically with its category colour.
func Sidebar(events []Event, palette *Palette) []SidebarItem {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	SortChronological(sorted)

	out := make([]SidebarItem, 0, len(sorted))
	for _, ev := range sorted {
		out = append(out, SidebarItem{Event: ev, Color: palette.Color(ev.CourseName)})
	}
	return out
}
