// Package order provides the Order aggregate, its OrderItem entities and the
// state machines that drive them.
//
// The package includes:
//   - Status: the shared vocabulary PLACED, ACCEPTED, IN_PROGRESS, READY, SERVED,
//     REJECTED, CANCELLED, HOLD
//   - Machine: a fixed, directional transition table; OrderMachine and ItemMachine
//     are independent and an item transition never rolls up into its order
//   - Timeline: per-destination timestamps, each stamped at most once
//   - LineSnapshot: the immutable name/price/modifier copy taken at admission
//   - StatusChanged: the event emitted for every accepted transition
//
// Key business rules:
//   - A request for a pair absent from the table fails with errs.ErrInvalidTransition
//     and leaves the aggregate untouched
//   - SERVED, REJECTED and CANCELLED are terminal
//   - Snapshots are write-once; later menu edits never reach stored orders
package order
