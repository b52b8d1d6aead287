package utils

import "time"

// DateLayout is the calendar-day format used for task rows and streak labels.
const DateLayout = "2006-01-02"

// Clock returns the current time; handlers take one so tests can pin the date.
type Clock func() time.Time

// DateKey formats t as a calendar day in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// DayIndex picks the entry of a list of length n for the day of t: day-of-month mod n.
// Day-of-month is 1-based, so the first entry is used on days that are multiples of n.
func DayIndex(t time.Time, loc *time.Location, n int) int {
	if n <= 0 {
		return -1
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Day() % n
}

// LastNDays returns the n calendar days ending with the day of t, oldest first.
func LastNDays(t time.Time, loc *time.Location, n int) []string {
	if loc != nil {
		t = t.In(loc)
	}
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		// AddDate keeps wall-clock semantics across DST changes.
		days = append(days, t.AddDate(0, 0, -i).Format(DateLayout))
	}
	return days
}
