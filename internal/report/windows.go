package report

import "time"

// Window is a half-open reporting period [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayWindow is the calendar day containing t.
func DayWindow(t time.Time) Window {
	start := midnight(t)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow is the Sunday-aligned week containing t.
func WeekWindow(t time.Time) Window {
	start := midnight(t)
	start = start.AddDate(0, 0, -int(start.Weekday()))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow is the calendar month containing t.
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// QuarterWindow is the calendar quarter containing t.
func QuarterWindow(t time.Time) Window {
	first := time.Month((int(t.Month())-1)/3*3 + 1)
	start := time.Date(t.Year(), first, 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 3, 0)}
}

// YearWindow is the calendar year containing t.
func YearWindow(t time.Time) Window {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(1, 0, 0)}
}

// Previous is the window of equal length immediately before w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
}

// WindowOf is the calendar window of type t containing at. Unknown types
// yield the zero window.
func WindowOf(t Type, at time.Time) Window {
	switch t {
	case TypeDaily:
		return DayWindow(at)
	case TypeWeekly:
		return WeekWindow(at)
	case TypeMonthly:
		return MonthWindow(at)
	case TypeQuarterly:
		return QuarterWindow(at)
	case TypeAnnual:
		return YearWindow(at)
	}
	return Window{}
}
