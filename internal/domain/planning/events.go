package planning

import (
	"time"

	"offerbook/internal/domain/shared/daterange"
)

type BlackoutAdded struct {
	EntryID EntryID
	Scope   string
	Range   daterange.DateRange
	At      time.Time
}

func (e BlackoutAdded) EventName() string     { return "blackout.added" }
func (e BlackoutAdded) AggregateID() string   { return string(e.EntryID) }
func (e BlackoutAdded) OccurredAt() time.Time { return e.At }

type BlackoutUpdated struct {
	EntryID EntryID
	Scope   string
	Range   daterange.DateRange
	At      time.Time
}

func (e BlackoutUpdated) EventName() string     { return "blackout.updated" }
func (e BlackoutUpdated) AggregateID() string   { return string(e.EntryID) }
func (e BlackoutUpdated) OccurredAt() time.Time { return e.At }

type BlackoutRemoved struct {
	EntryID EntryID
	Scope   string
	At      time.Time
}

func (e BlackoutRemoved) EventName() string     { return "blackout.removed" }
func (e BlackoutRemoved) AggregateID() string   { return string(e.EntryID) }
func (e BlackoutRemoved) OccurredAt() time.Time { return e.At }
