package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectLayoutEveryMonth(t *testing.T) {
	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	p := NewPalette(nil)

	for year := 2023; year <= 2027; year++ {
		for m := time.January; m <= time.December; m++ {
			c := Cursor{Year: year, Month: m}
			month := Project(c, nil, p, time.Time{}, now)

			first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, int(first.Weekday()), month.LeadingBlanks, c.String())
			assert.Equal(t, c.DaysInMonth(), month.DaysInMonth(), c.String())
			assert.Equal(t, c.String(), month.Title())

			total := 0
			for _, row := range month.Rows() {
				total += len(row)
			}
			assert.Equal(t, month.LeadingBlanks+month.DaysInMonth(), total, c.String())
		}
	}
}

func TestProjectTodayAndSelected(t *testing.T) {
	now := time.Date(2026, time.October, 16, 23, 59, 0, 0, time.UTC)
	selected := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	month := Project(CursorFor(now), nil, NewPalette(nil), selected, now)

	for _, cell := range month.Cells {
		assert.Equal(t, cell.Day == 16, cell.Today, "day %d", cell.Day)
		assert.Equal(t, cell.Day == 20, cell.Selected, "day %d", cell.Day)
	}

	other := Project(CursorFor(now).Next(), nil, NewPalette(nil), selected, now)
	for _, cell := range other.Cells {
		assert.False(t, cell.Today)
		assert.False(t, cell.Selected)
	}
}

func TestProjectColorsDistinctAndCapped(t *testing.T) {
	now := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, time.October, 5, 0, 0, 0, 0, time.UTC)
	p := NewPalette([]string{"a", "b", "c", "d", "e", "f"})

	events := []Event{
		{ID: "1", Date: day, CourseName: "COMP 101"},
		{ID: "2", Date: day, CourseName: "COMP 101"},
		{ID: "3", Date: day, CourseName: "HIST 200"},
		{ID: "4", Date: day, CourseName: ""},
		{ID: "5", Date: day, CourseName: "MATH 1"},
		{ID: "6", Date: day, CourseName: "PHYS 2"},
		{ID: "7", Date: day, CourseName: "ART 3"},
		{ID: "8", Date: day.AddDate(0, 1, 0), CourseName: "NEXT MONTH"},
	}
	month := Project(CursorFor(now), events, p, time.Time{}, now)

	cell := month.Cells[4]
	require.Equal(t, 5, cell.Day)
	assert.Equal(t, []string{"a", "b", "c", "d"}, cell.Colors)
	for _, c := range month.Cells {
		if c.Day != 5 {
			assert.Empty(t, c.Colors, "day %d", c.Day)
		}
	}
}

func TestPaletteStableAndCycling(t *testing.T) {
	p := NewPalette([]string{"red", "green"})

	assert.Equal(t, "", p.Color(""))
	assert.Equal(t, "", p.Color("   "))
	assert.Equal(t, "red", p.Color("COMP 101"))
	assert.Equal(t, "green", p.Color("HIST 200"))
	assert.Equal(t, "red", p.Color("MATH 1"))
	assert.Equal(t, "red", p.Color("COMP 101"))
	assert.Equal(t, "green", p.Color("HIST 200"))
	assert.Equal(t, 3, p.Len())
}

func TestSidebarChronological(t *testing.T) {
	d1 := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "late", Date: d2, Time: "09:00 AM"},
		{ID: "pm", Date: d1, Time: "01:30 PM"},
		{ID: "noon", Date: d1, Time: "12:00 PM"},
		{ID: "midnight", Date: d1, Time: "12:00 AM", CourseName: "COMP 101"},
	}
	items := Sidebar(events, NewPalette(nil))

	var ids []string
	for _, it := range items {
		ids = append(ids, it.Event.ID)
	}
	assert.Equal(t, []string{"midnight", "noon", "pm", "late"}, ids)
	assert.Equal(t, DefaultColors[0], items[0].Color)
	assert.Equal(t, "", items[1].Color)
}
