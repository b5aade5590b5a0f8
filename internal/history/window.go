package history

import "time"

// Window selects the time range of plays included in a filtered view.
type Window string

const (
	WindowAll       Window = "all"
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowWeek      Window = "week"
	WindowMonth     Window = "month"
)

// Windows lists every supported window in display order.
func Windows() []Window {
	return []Window{WindowAll, WindowToday, WindowYesterday, WindowWeek, WindowMonth}
}

// ParseWindow maps a user-supplied name to a [Window].
// Unknown names fall back to [WindowAll].
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowToday, WindowYesterday, WindowWeek, WindowMonth:
		return Window(s)
	default:
		return WindowAll
	}
}

// Label returns the window's display name.
func (w Window) Label() string {
	switch w {
	case WindowToday:
		return "Today"
	case WindowYesterday:
		return "Yesterday"
	case WindowWeek:
		return "Last 7 Days"
	case WindowMonth:
		return "Last 30 Days"
	default:
		return "All"
	}
}

// Apply derives the subset of s that falls inside the window, evaluated
// against now. Day boundaries are local midnight in now's location;
// week and month are rolling windows anchored to start-of-today, not
// calendar weeks or months.
//
// The result preserves the Set's ordering. It is recomputed on every
// call and never cached.
func (w Window) Apply(s Set, now time.Time) []PlayRecord {
	if w == WindowAll || w == "" {
		return append([]PlayRecord(nil), s...)
	}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var include func(t time.Time) bool
	switch w {
	case WindowToday:
		include = func(t time.Time) bool { return !t.Before(startOfToday) }
	case WindowYesterday:
		startOfYesterday := startOfToday.AddDate(0, 0, -1)
		include = func(t time.Time) bool { return !t.Before(startOfYesterday) && t.Before(startOfToday) }
	case WindowWeek:
		weekAgo := startOfToday.AddDate(0, 0, -7)
		include = func(t time.Time) bool { return !t.Before(weekAgo) }
	case WindowMonth:
		monthAgo := startOfToday.AddDate(0, 0, -30)
		include = func(t time.Time) bool { return !t.Before(monthAgo) }
	default:
		return append([]PlayRecord(nil), s...)
	}

	view := make([]PlayRecord, 0, len(s))
	for _, rec := range s {
		if include(rec.PlayedAt) {
			view = append(view, rec)
		}
	}

	return view
}
