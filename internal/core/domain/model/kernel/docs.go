// Package kernel provides the shared value objects of the ordering core.
//
// The package includes:
//   - UUID: identifier for orders, order items, resources and menu entries
//   - TenantID: the slug that scopes every row, lock and channel to one tenant
//   - Source: the guest device or address an order originated from
//   - Money: an exact decimal amount used for price snapshots and line totals
//
// Zero values of every type are invalid and are rejected by Validate, so a
// value object built with a struct literal never leaks into persistence.
package kernel
