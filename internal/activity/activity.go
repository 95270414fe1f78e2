// Package activity holds the bounded, most-recent-first log of what the
// player did and what the resolver answered.
package activity

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCap is the number of entries kept when no cap is given.
const DefaultCap = 50

// Kind classifies an entry.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindInfo, KindSuccess, KindFailure:
		return true
	}
	return false
}

// Entry is one log line.
type Entry struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"type"`
}

// String renders the entry for terminal output.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %-7s %s", e.Timestamp.Format("15:04:05"), e.Kind, e.Text)
}

// Sequencer hands out strictly increasing entry ids.
type Sequencer interface {
	Next() int64
}

// Log is a capped ring of entries, newest first.
//
// Thread-safety: all methods are safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	cap     int
	seq     Sequencer
	now     func() time.Time
	entries []Entry
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates an empty log. A non-positive cap selects DefaultCap.
func New(capacity int, seq Sequencer, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	l := &Log{cap: capacity, seq: seq, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append pushes a new entry to the front, dropping the oldest entries
// beyond the cap.
func (l *Log) Append(text string, kind Kind) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{ID: l.seq.Next(), Text: text, Timestamp: l.now(), Kind: kind}
	l.push(e)
	return e
}

func (l *Log) push(e Entry) {
	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = e
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Head returns the newest entry.
func (l *Log) Head() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Cap returns the maximum number of entries kept.
func (l *Log) Cap() int {
	return l.cap
}

// Reset empties the log and leaves a single info entry with text.
func (l *Log) Reset(text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	e := Entry{ID: l.seq.Next(), Text: text, Timestamp: l.now(), Kind: KindInfo}
	l.push(e)
	return e
}

// Restore replaces the log with saved entries, which must already be
// newest first. Entries beyond the cap are dropped and unknown kinds
// become info.
func (l *Log) Restore(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(entries) > l.cap {
		entries = entries[:l.cap]
	}
	l.entries = make([]Entry, len(entries))
	for i, e := range entries {
		if !e.Kind.Valid() {
			e.Kind = KindInfo
		}
		l.entries[i] = e
	}
}

// MaxID returns the highest entry id, or 0 for an empty slice. Callers
// restoring a log seed their sequencer with it.
func MaxID(entries []Entry) int64 {
	var highest int64
	for _, e := range entries {
		if e.ID > highest {
			highest = e.ID
		}
	}
	return highest
}
