// Package ledger holds the pure pieces of the finance core: calendar window
// computation over an injected clock, and category sums over record slices.
// Nothing in here touches the database; handlers translate the results into
// gorm predicates.
package ledger

import "time"

// Window names a calendar-aligned filter over a record's created timestamp.
// The windows are deliberately cumulative: each one is a superset of the
// narrower one (this_month ⊂ last_month ⊂ this_year ⊂ all_time). "last_month"
// therefore means "the previous month AND the current one", and "this_year"
// additionally swallows last_month even when that reaches into the previous
// calendar year (a January "last month" is December).
type Window string

const (
	ThisMonth Window = "this_month"
	LastMonth Window = "last_month"
	ThisYear  Window = "this_year"
	AllTime   Window = "all_time"
)

// ParseWindow maps a raw filter value to a Window. Unrecognized values are
// not an error: they degrade to AllTime, matching the permissive behavior of
// the list-filter entry point.
func ParseWindow(s string) Window {
	switch Window(s) {
	case ThisMonth, LastMonth, ThisYear:
		return Window(s)
	default:
		return AllTime
	}
}

// Range returns the half-open [start, end) interval a record's created time
// must fall in to qualify for the window, relative to now. Membership is a
// calendar year+month test, not a rolling span. The month windows end at the
// first instant of the month after now; this_year runs to the end of the
// whole calendar year, so a record dated later in the current year (backdated
// imports produce those) still qualifies. bounded is false for AllTime, in
// which case start and end are zero and no predicate should be applied.
func (w Window) Range(now time.Time) (start, end time.Time, bounded bool) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = monthStart.AddDate(0, 1, 0)

	switch w {
	case ThisMonth:
		start = monthStart
	case LastMonth:
		start = monthStart.AddDate(0, -1, 0)
	case ThisYear:
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		prevMonthStart := monthStart.AddDate(0, -1, 0)
		// In January the cumulative last_month window starts before the
		// year does; the wider bound wins to keep the nesting intact.
		start = yearStart
		if prevMonthStart.Before(yearStart) {
			start = prevMonthStart
		}
		end = yearStart.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Contains reports whether a created timestamp falls inside the window
// relative to now. AllTime contains everything.
func (w Window) Contains(created, now time.Time) bool {
	start, end, bounded := w.Range(now)
	if !bounded {
		return true
	}
	return !created.Before(start) && created.Before(end)
}
