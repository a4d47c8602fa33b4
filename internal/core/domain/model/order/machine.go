package order

import (
	"sort"

	"orderflow/internal/pkg/errs"
)

// Machine is an immutable transition table.
type Machine struct {
	scope string
	table map[Status]map[Status]struct{}
}

func newMachine(scope string, edges map[Status][]Status) Machine {
	table := make(map[Status]map[Status]struct{}, len(edges))
	for from, tos := range edges {
		table[from] = make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			table[from][to] = struct{}{}
		}
	}
	return Machine{scope: scope, table: table}
}

// OrderMachine governs order-level status.
var OrderMachine = newMachine("order", map[Status][]Status{
	Placed:     {Accepted, Rejected, Cancelled, Hold},
	Accepted:   {InProgress, Ready, Hold, Cancelled},
	InProgress: {Ready, Hold, Cancelled},
	Ready:      {Served, Cancelled},
	Hold:       {Accepted, InProgress, Cancelled, Rejected},
})

// ItemMachine governs item-level status. Items are never ACCEPTED or REJECTED.
var ItemMachine = newMachine("item", map[Status][]Status{
	Placed:     {InProgress, Ready, Hold, Cancelled},
	InProgress: {Ready, Hold, Cancelled},
	Hold:       {InProgress, Cancelled},
	Ready:      {Served, Cancelled},
})

// Scope names the entity the machine governs ("order" or "item").
func (m Machine) Scope() string {
	return m.scope
}

// Allows reports whether (from, to) is in the table.
func (m Machine) Allows(from, to Status) bool {
	_, ok := m.table[from][to]
	return ok
}

// Transition returns to when the pair is legal, otherwise an InvalidTransitionError.
func (m Machine) Transition(from, to Status) (Status, error) {
	if !m.Allows(from, to) {
		return Unknown, errs.NewInvalidTransitionError(m.scope, from.String(), to.String())
	}
	return to, nil
}

// Destinations lists the legal targets from a status, ordered by Status value.
func (m Machine) Destinations(from Status) []Status {
	out := make([]Status, 0, len(m.table[from]))
	for to := range m.table[from] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
