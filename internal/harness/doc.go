// Package harness runs scripted Genesis sessions from YAML scenarios.
//
// A scenario drives a real engine over an in-memory store with a fixed
// clock, sequential instance ids and an optional scripted generative
// capability, so every run is deterministic. Each step appends one line to
// a text trace; the final library, board and log are appended after the
// steps. Traces are compared against golden files with goldie:
//
//	go test ./internal/harness -update
//
// regenerates them.
//
// Steps:
//   - spawn: place a discovered (or table) element, optionally naming the
//     instance with "as"
//   - combine: drop an element on a named instance
//   - move, remove: act on a named instance
//   - clear, reset: board and session resets
//   - resolve: call the resolver directly, bypassing the board
//
// Assertions: library_contains, library_size, board_size, log_head,
// capability_calls.
package harness
