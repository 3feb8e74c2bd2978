package calendar

import (
	"fmt"
	"strings"
)

// DefaultTime is used for events that arrive without a time of day.
const DefaultTime = "12:00 AM"

// FormatTime renders editor fields as "HH:MM AM|PM", zero-padding both parts.
func FormatTime(hours, minutes, ampm string) string {
	if ampm == "" {
		ampm = "AM"
	}
	return fmt.Sprintf("%s:%s %s", padLeft(hours), padLeft(minutes), ampm)
}

// SplitTime is the inverse of FormatTime. A missing AM/PM token reads as AM.
func SplitTime(s string) (hours, minutes, ampm string) {
	clock, marker, _ := strings.Cut(strings.TrimSpace(s), " ")
	hours, minutes, _ = strings.Cut(clock, ":")
	ampm = strings.TrimSpace(marker)
	if ampm == "" {
		ampm = "AM"
	}
	return hours, minutes, ampm
}

func padLeft(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

// clockField reads one or two ASCII digits. Signs, spaces and extra leading
// zeros are refused so the padded form stays HH:MM.
func clockField(s string) (int, bool) {
	if len(s) < 1 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// minutesOfDay converts "hh:mm AM|PM" to minutes after midnight, or -1.
func minutesOfDay(s string) int {
	h, m, ampm := SplitTime(s)
	hh, ok := clockField(h)
	if !ok || hh < 1 || hh > 12 {
		return -1
	}
	mm, ok := clockField(m)
	if !ok || mm > 59 {
		return -1
	}
	hh %= 12
	switch strings.ToUpper(ampm) {
	case "AM":
	case "PM":
		hh += 12
	default:
		return -1
	}
	return hh*60 + mm
}

// ValidTime reports whether s reads as "hh:mm AM|PM" with a 1-12 hour.
func ValidTime(s string) bool {
	return minutesOfDay(s) >= 0
}

// NormalizeTime re-pads a valid time string, e.g. "9:05 pm" -> "09:05 PM".
func NormalizeTime(s string) (string, bool) {
	if !ValidTime(s) {
		return "", false
	}
	h, m, ampm := SplitTime(s)
	return FormatTime(h, m, strings.ToUpper(ampm)), true
}
