package dto

import (
	"time"

	domainavailability "offerbook/internal/domain/availability"
)

type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Conflict struct {
	Kind   string      `json:"kind"`
	Ranges []DateRange `json:"ranges"`
}

type Availability struct {
	Available bool                            `json:"available"`
	Conflicts []Conflict                      `json:"conflicts,omitempty"`
	Errors    []domainavailability.FieldError `json:"errors,omitempty"`
}

func MapAvailability(conflicts []domainavailability.Conflict) Availability {
	out := Availability{Available: len(conflicts) == 0, Errors: domainavailability.FieldErrors(conflicts)}
	for _, c := range conflicts {
		item := Conflict{Kind: string(c.Kind), Ranges: make([]DateRange, 0, len(c.Ranges))}
		for _, r := range c.Ranges {
			item.Ranges = append(item.Ranges, DateRange{StartDate: r.Start, EndDate: r.End})
		}
		out.Conflicts = append(out.Conflicts, item)
	}
	return out
}
