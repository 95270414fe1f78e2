// Package engine implements a Genesis session: the library of discovered
// elements, the board of placed instances, the activity log, and the
// combination flow that ties them to the resolver.
//
// ARCHITECTURE:
//
// Explicit session object:
// All state lives in an Engine built by Open from a Persistence adapter.
// There are no package-level globals; every mutation goes through an
// Engine method and is followed by a save of the blobs it touched.
//
// Combination Flow:
//  1. Combine takes attemptMu, so only one resolution is in flight
//  2. The target instance is looked up; a missing target is stale
//  3. An attempt entry is logged and the resolver is called without
//     holding the state lock
//  4. The target is looked up again; if it was removed meanwhile the
//     result is dropped silently
//  5. On success the result is discovered (deduplicated by name) and
//     spawned below the target; on failure only the log changes
//
// Identity:
// Library membership is keyed by normalized name. A generated element
// whose name is already discovered takes the existing record's identity.
// Board instances are never deduplicated.
package engine
