package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status is a lifecycle state shared by orders and order items.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Placed
	Accepted
	InProgress
	Ready
	Served
	Rejected
	Cancelled
	Hold
)

var statusNames = map[Status]string{
	Placed:     "PLACED",
	Accepted:   "ACCEPTED",
	InProgress: "IN_PROGRESS",
	Ready:      "READY",
	Served:     "SERVED",
	Rejected:   "REJECTED",
	Cancelled:  "CANCELLED",
	Hold:       "HOLD",
}

// ParseStatus maps the wire name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

// Validate rejects Unknown and out-of-range values, e.g. corrupted rows.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports SERVED, REJECTED and CANCELLED.
func (s Status) IsTerminal() bool {
	return s == Served || s == Rejected || s == Cancelled
}

// IsActive reports statuses that still belong on a queue display.
func (s Status) IsActive() bool {
	return s.Validate() == nil && !s.IsTerminal()
}
