// Package resolver decides what two elements combine into.
//
// Resolution runs in strict priority order:
//
//  1. Static lookup in the recipe table.
//  2. No capability configured: no reaction.
//  3. Result cache, keyed by the same pair key as the table.
//  4. Generative capability, bounded by a timeout.
//
// A successful or declined generative answer is cached for the life of the
// Resolver. Transport failures (unreachable capability, timeout, payload
// that fails validation) are never cached, so the same pair can be retried
// immediately.
//
// Resolve never returns an error and never panics on capability
// misbehaviour: every path ends in a Result.
package resolver
