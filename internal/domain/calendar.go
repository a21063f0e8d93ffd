package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date layout used for every block and milestone date.
const DateLayout = "2006-01-02"

// ViewMode is the time granularity of one timeline cell.
type ViewMode string

// ViewMode values.
const (
	ModeDay   ViewMode = "day"
	ModeWeek  ViewMode = "week"
	ModeMonth ViewMode = "month"
	ModeYear  ViewMode = "year"
)

const secondsPerDay = 24 * 60 * 60

var validModes = []ViewMode{ModeDay, ModeWeek, ModeMonth, ModeYear}

// ViewModes returns all supported view modes from finest to coarsest.
func ViewModes() []ViewMode {
	return append([]ViewMode(nil), validModes...)
}

// ParseViewMode normalizes raw into a supported view mode.
func ParseViewMode(raw string) (ViewMode, error) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	for _, m := range validModes {
		if m == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// Valid reports whether m is a supported view mode.
func (m ViewMode) Valid() bool {
	_, err := ParseViewMode(string(m))
	return err == nil
}

// ParseDate parses an ISO calendar date. Timestamps with a time part are
// accepted and truncated to their calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// MustParseDate parses raw and panics on failure. Intended for constants and tests.
func MustParseDate(raw string) time.Time {
	t, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddUnits moves t by n units of mode. Month and year steps clamp to the last
// day of the target month instead of overflowing into the next one.
func AddUnits(t time.Time, n int, mode ViewMode) time.Time {
	switch mode {
	case ModeWeek:
		return t.AddDate(0, 0, 7*n)
	case ModeMonth:
		return addMonths(t, n)
	case ModeYear:
		return addMonths(t, 12*n)
	default:
		return t.AddDate(0, 0, n)
	}
}

// AddDateUnits is AddUnits over ISO date strings.
func AddDateUnits(date string, n int, mode ViewMode) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(AddUnits(t, n, mode)), nil
}

// DiffUnits returns the number of whole mode units from b to a (a - b),
// truncated toward zero.
func DiffUnits(a, b time.Time, mode ViewMode) int {
	switch mode {
	case ModeWeek:
		return diffDays(a, b) / 7
	case ModeMonth:
		return diffMonths(a, b)
	case ModeYear:
		return diffMonths(a, b) / 12
	default:
		return diffDays(a, b)
	}
}

// DiffDateUnits is DiffUnits over ISO date strings.
func DiffDateUnits(a, b string, mode ViewMode) (int, error) {
	at, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	bt, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	return DiffUnits(at, bt, mode), nil
}

// diffDays counts whole calendar days on Unix seconds, which stay exact
// where time.Duration would saturate at about 292 years.
func diffDays(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ua.Unix() - ub.Unix()) / secondsPerDay)
}

func diffMonths(a, b time.Time) int {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	anchor := addMonths(b, months)
	switch {
	case months > 0 && a.Before(anchor):
		months--
	case months < 0 && a.After(anchor):
		months++
	}
	return months
}

func addMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := min(t.Day(), daysIn(year, month))
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
