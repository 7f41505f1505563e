package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = NewError(KindValidation, "INVALID_DATE", "invalid date format, use YYYY-MM-DD")

// DateRange is a half-open interval of calendar days: Start is the check-in
// day, End the check-out day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// NewDateRange normalizes both bounds to whole days. It does not validate
// ordering; see Valid.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Valid reports whether the range covers at least one night.
func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}

func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps uses half-open semantics, so back-to-back stays do not collide.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Covers reports whether day falls within [Start, End].
func (r DateRange) Covers(day time.Time) bool {
	day = Day(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
