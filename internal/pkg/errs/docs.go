// Package errs provides standardized error types for the ordering core.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes generic validation errors and the order pipeline taxonomy:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is invalid
//   - ValueIsOutOfRangeError: a value is outside its allowed bounds
//   - ObjectNotFoundError: an order, item or stored record cannot be found
//   - ResourceGoneError: a table/counter/room or menu item is inactive or soft-deleted
//   - InvalidTransitionError: a state change is not in the transition table
//   - BadTokenError: an idempotency token is malformed
//   - BlockedError: a guest source is blocked by the abuse guard
//   - ConflictError: a concurrent writer won the race for the same order or token
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is matches the sentinel
package errs
