// Package services provides domain services that work across aggregates of
// the ordering core.
//
// The package includes:
//   - OrderAdmitter: prices and snapshots requested lines against the live catalog
//     and builds a PLACED order
//   - AbuseGuard: counts REJECTED orders per source and blocks abusive sources
//     for a cooldown
package services
