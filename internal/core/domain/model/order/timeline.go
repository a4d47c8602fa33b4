package order

import "time"

// Timeline holds the instant each lifecycle milestone was first reached.
// ClosedAt records REJECTED or CANCELLED. HOLD has no field of its own.
type Timeline struct {
	PlacedAt   *time.Time
	AcceptedAt *time.Time
	StartedAt  *time.Time
	ReadyAt    *time.Time
	ServedAt   *time.Time
	ClosedAt   *time.Time
}

func (t *Timeline) field(s Status) **time.Time {
	switch s {
	case Placed:
		return &t.PlacedAt
	case Accepted:
		return &t.AcceptedAt
	case InProgress:
		return &t.StartedAt
	case Ready:
		return &t.ReadyAt
	case Served:
		return &t.ServedAt
	case Rejected, Cancelled:
		return &t.ClosedAt
	default:
		return nil
	}
}

// stamp sets the field for s unless it is already set.
func (t *Timeline) stamp(s Status, at time.Time) {
	f := t.field(s)
	if f == nil || *f != nil {
		return
	}
	at = at.UTC()
	*f = &at
}

// At returns the stamp for s, or nil.
func (t Timeline) At(s Status) *time.Time {
	f := t.field(s)
	if f == nil {
		return nil
	}
	return *f
}
