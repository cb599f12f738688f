// Package entry holds the time-entry model and the append-only entry store.
package entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UncategorizedID is the persisted marker for entries without a category.
const UncategorizedID = "uncategorized"

// CategoryRef is either a known category id or Uncategorized.
// The zero value is Uncategorized.
type CategoryRef struct {
	id string
}

// Uncategorized is the explicit "no category" reference.
var Uncategorized = CategoryRef{}

// Known references a category by id. An empty id or the uncategorized
// marker yields Uncategorized.
func Known(id string) CategoryRef {
	if id == "" || id == UncategorizedID {
		return Uncategorized
	}
	return CategoryRef{id: id}
}

// ID returns the category id and whether the reference is a known category.
func (c CategoryRef) ID() (string, bool) {
	return c.id, c.id != ""
}

func (c CategoryRef) IsUncategorized() bool { return c.id == "" }

// String returns the persisted form: the id, or UncategorizedID.
func (c CategoryRef) String() string {
	if c.id == "" {
		return UncategorizedID
	}
	return c.id
}

// TimeEntry is one finalized tracked interval. It is immutable once created.
type TimeEntry struct {
	ID              string
	DurationSeconds int64
	Category        CategoryRef
	OccurredAtUTC   time.Time // end of the interval, always UTC
	OriginTimeZone  string
}

var ErrInvalidEntry = errors.New("invalid time entry")

// New builds an entry with a fresh id. occurredAt is normalized to UTC.
func New(durationSeconds int64, category CategoryRef, occurredAt time.Time, originZone string) (TimeEntry, error) {
	e := TimeEntry{
		ID:              NewID(),
		DurationSeconds: durationSeconds,
		Category:        category,
		OccurredAtUTC:   occurredAt.UTC(),
		OriginTimeZone:  originZone,
	}
	if err := e.Validate(); err != nil {
		return TimeEntry{}, err
	}
	return e, nil
}

// NewID returns a globally unique entry id.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the invariants every persisted entry must satisfy.
func (e TimeEntry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidEntry)
	case e.DurationSeconds <= 0:
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidEntry, e.DurationSeconds)
	case e.OccurredAtUTC.IsZero():
		return fmt.Errorf("%w: missing occurrence time", ErrInvalidEntry)
	case e.OccurredAtUTC.Location() != time.UTC:
		return fmt.Errorf("%w: occurrence time is not UTC", ErrInvalidEntry)
	case e.OriginTimeZone == "":
		return fmt.Errorf("%w: missing origin time zone", ErrInvalidEntry)
	}
	return nil
}

// Local returns the occurrence time as wall time in loc.
func (e TimeEntry) Local(loc *time.Location) time.Time {
	return e.OccurredAtUTC.In(loc)
}
