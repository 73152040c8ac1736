package support

import (
	"time"

	"offerbook/internal/app/validation"
	"offerbook/internal/domain/shared/daterange"
)

const (
	fieldStart = "startDate"
	fieldEnd   = "endDate"
)

// ResolveDates merges the requested dates with current (nil on creation) and
// validates the result. A date may lie in the past only if it is unchanged.
func ResolveDates(current *daterange.DateRange, start, end *time.Time, now time.Time) (daterange.DateRange, error) {
	var fields []validation.FieldError
	var merged daterange.DateRange
	if current != nil {
		merged = *current
	}

	if start != nil {
		s := start.UTC()
		if (current == nil || !s.Equal(current.Start)) && daterange.BeforeToday(s, now) {
			fields = append(fields, validation.FieldError{Field: fieldStart, Message: "cannot be in the past"})
		}
		merged.Start = s
	} else if current == nil {
		fields = append(fields, validation.FieldError{Field: fieldStart, Message: "is required"})
	}
	if end != nil {
		e := end.UTC()
		if (current == nil || !e.Equal(current.End)) && daterange.BeforeToday(e, now) {
			fields = append(fields, validation.FieldError{Field: fieldEnd, Message: "cannot be in the past"})
		}
		merged.End = e
	} else if current == nil {
		fields = append(fields, validation.FieldError{Field: fieldEnd, Message: "is required"})
	}
	if len(fields) > 0 {
		return daterange.DateRange{}, &validation.Error{Fields: fields}
	}

	if err := merged.Validate(); err != nil {
		return daterange.DateRange{}, &validation.Error{Fields: []validation.FieldError{
			{Field: fieldStart, Message: "must be before the end date"},
			{Field: fieldEnd, Message: "must be after the start date"},
		}}
	}
	return merged, nil
}
