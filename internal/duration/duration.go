// Package duration keeps the two representations of a ban's span consistent:
// an explicit (start, end) date range and a calendar (years, months, days)
// duration. Only the date range is persisted; the duration is always derived.
package duration

import (
	"time"

	"github.com/bandesk/bandesk/internal/apperr"
)

// FieldEndingDate is the field name reported when the date invariant fails.
const FieldEndingDate = "endingDate"

// Duration is a calendar-aware span decomposition.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// IsZero reports whether the duration has no extent.
func (d Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0 && d.Days == 0
}

// Validate checks the minimum-span invariant: end must be strictly after
// start by at least one calendar day. Violations are ValidationErrors naming
// endingDate.
func Validate(start, end time.Time) error {
	if !truncate(end).After(truncate(start)) {
		return apperr.Validation(FieldEndingDate, "ending date must be at least one day after the starting date")
	}

	return nil
}

// Derive decomposes the range between start and end into calendar years,
// months and days. Each component is floored at zero. The range itself must
// satisfy Validate.
func Derive(start, end time.Time) (Duration, error) {
	if err := Validate(start, end); err != nil {
		return Duration{}, err
	}

	start, end = truncate(start), truncate(end)

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day()

	// borrow whole months while the day component is negative; a single
	// borrow is not always enough when start sits at the end of a long month
	borrowMonth := end.Month()
	for days < 0 {
		borrowMonth--
		days += daysInMonth(end.Year(), borrowMonth)
		months--
	}

	if months < 0 {
		years--
		months += 12
	}

	if years < 0 {
		years = 0
	}

	return Duration{Years: years, Months: months, Days: days}, nil
}

// EndDate adds the duration to start and returns the resulting end date. A
// zero or negative duration cannot produce a valid range and is rejected with
// a ValidationError naming endingDate, leaving the caller's previous end date
// untouched.
func EndDate(start time.Time, d Duration) (time.Time, error) {
	end := truncate(start).AddDate(d.Years, d.Months, d.Days)

	if err := Validate(start, end); err != nil {
		return time.Time{}, err
	}

	return end, nil
}

// truncate drops the time-of-day portion; the synchronizer works on whole
// calendar days.
func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInMonth returns the number of days of the given month; day 0 of the
// following month normalizes to its last day. Out-of-range months normalize
// across year boundaries, leap years included.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
