package availability

import (
	"errors"
	"fmt"
	"strings"

	"offerbook/internal/domain/shared/daterange"
)

var ErrSchedulingConflict = errors.New("availability: selected dates are not available")

// UnavailableMessage is repeated on both date fields when a check fails.
const UnavailableMessage = "the selected dates are not available"

type ConflictKind string

const (
	ConflictReservation ConflictKind = "reservation"
	ConflictBlackout    ConflictKind = "blackout"
)

// Conflict lists the existing ranges of one kind that overlap the requested range.
type Conflict struct {
	Kind   ConflictKind
	Ranges []daterange.DateRange
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors renders conflicts as the startDate/endDate pair. No conflicts, no errors.
func FieldErrors(conflicts []Conflict) []FieldError {
	if len(conflicts) == 0 {
		return nil
	}
	return []FieldError{
		{Field: "startDate", Message: UnavailableMessage},
		{Field: "endDate", Message: UnavailableMessage},
	}
}

type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	kinds := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		kinds = append(kinds, fmt.Sprintf("%s(%d)", c.Kind, len(c.Ranges)))
	}
	return fmt.Sprintf("%s: %s", ErrSchedulingConflict.Error(), strings.Join(kinds, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSchedulingConflict
}

func (e *ConflictError) FieldErrors() []FieldError {
	return FieldErrors(e.Conflicts)
}

// AsError returns nil when conflicts is empty.
func AsError(conflicts []Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	return &ConflictError{Conflicts: conflicts}
}
