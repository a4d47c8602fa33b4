// Package realtime pushes order status changes to connected displays.
//
// The Hub keeps two kinds of subscriptions: resource subscriptions used by
// the WebSocket transport (one table, counter or room) and tenant
// subscriptions used by the SSE transport (the whole kitchen). Each
// subscriber owns a bounded buffer. Broadcast never blocks: a subscriber
// whose buffer is full is dropped and its transport closes the connection.
//
// SSE streams always start with a snapshot. Sequence ids are per tenant and
// per process; a reconnecting client gets a fresh snapshot no matter which
// id it presents.
package realtime
