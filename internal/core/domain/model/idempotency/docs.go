// Package idempotency models the cached outcome of a mutating request
// replayed by token.
//
// A client attaches an opaque token to a mutating request. The first request
// claims the (tenant, route, token) key as pending, runs, and stores the final
// status and body. Any later request with the same key inside the TTL gets
// that stored response back verbatim.
package idempotency
