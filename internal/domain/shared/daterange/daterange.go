package daterange

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
)

// DateRange represents a half-open interval [Start, End)
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.End.IsZero() || dr.Start.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

// Overlaps reports whether two already validated ranges share at least one instant.
// Ranges that only touch at a boundary do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

// Overlaps is the checked form of DateRange.Overlaps.
func Overlaps(a, b DateRange) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	if err := b.Validate(); err != nil {
		return false, err
	}
	return a.Overlaps(b), nil
}

func (dr DateRange) Contains(other DateRange) bool {
	return !other.Start.Before(dr.Start) && !other.End.After(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(dr.Start) && t.Before(dr.End)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.End.Equal(other.Start) || dr.Start.Equal(other.End)
}

// BeforeToday reports whether t falls on a calendar day (UTC) earlier than now.
func BeforeToday(t, now time.Time) bool {
	return truncateDay(t).Before(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortByStart orders ranges by start, then end.
func SortByStart(ranges []DateRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start.Equal(ranges[j].Start) {
			return ranges[i].End.Before(ranges[j].End)
		}
		return ranges[i].Start.Before(ranges[j].Start)
	})
}
