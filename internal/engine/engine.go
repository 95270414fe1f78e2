package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/genesis/internal/activity"
	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/ids"
	"github.com/roach88/genesis/internal/logger"
	"github.com/roach88/genesis/internal/resolver"
)

// Fixed log texts.
const (
	TextInitialized = "系统已初始化。准备合成。"
	TextReset       = "宇宙已重置。"
	TextCleared     = "画布已清空。"
)

// SpawnOffsetY is how far below its target a combination result appears.
const SpawnOffsetY = 120

// Engine owns one player session: library, board, activity log and the
// resolver that combines elements.
//
// Thread-safety model:
//   - Combine(): attempts are serialized end to end by attemptMu, so one
//     resolution is in flight at a time and its library and log mutations
//     are visible before the next attempt starts
//   - all other methods: safe from any goroutine; they take mu only for
//     short critical sections and may run while a resolution is in flight
//   - persistence writes are serialized by saveMu and always write a
//     snapshot taken after the mutation that triggered them
type Engine struct {
	attemptMu sync.Mutex
	mu        sync.Mutex
	saveMu    sync.Mutex

	persist  Persistence
	resolver *resolver.Resolver
	library  *Library
	board    *Board
	log      *activity.Log
	clock    *Clock

	now        func() time.Time
	instanceID ids.Generator
	logCap     int
	logger     *logger.Logger

	processing atomic.Bool
	saveErr    error
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow sets the wall clock used for discovery and log timestamps.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithInstanceIDs sets the generator for board instance ids.
//
// Default: UUIDv7 with an "inst_" prefix.
func WithInstanceIDs(g ids.Generator) Option {
	return func(e *Engine) {
		e.instanceID = g
	}
}

// WithLogCap bounds the activity log.
//
// Default: activity.DefaultCap (50).
func WithLogCap(n int) Option {
	return func(e *Engine) {
		e.logCap = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Open builds an engine from persisted state. A missing library starts
// from the two seed elements, a missing board is empty and a missing log
// holds a single initialization entry.
func Open(ctx context.Context, p Persistence, r *resolver.Resolver, opts ...Option) (*Engine, error) {
	e := &Engine{
		persist:    p,
		resolver:   r,
		now:        time.Now,
		instanceID: ids.UUIDv7Generator{Prefix: "inst_"},
		logCap:     activity.DefaultCap,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	records, found, err := p.LoadLibrary(ctx)
	if err != nil {
		return nil, persistenceError("load library", err)
	}
	if !found || len(records) == 0 {
		records = element.Seeds(e.now())
	}
	e.library = NewLibrary(e.hydrate(records))

	instances, _, err := p.LoadBoard(ctx)
	if err != nil {
		return nil, persistenceError("load board", err)
	}
	e.board = newBoard(e.instanceID)
	e.board.restore(e.hydrateInstances(instances))

	entries, found, err := p.LoadLog(ctx)
	if err != nil {
		return nil, persistenceError("load log", err)
	}
	e.clock = NewClockAt(activity.MaxID(entries))
	e.log = activity.New(e.logCap, e.clock, activity.WithClock(e.now))
	if found && len(entries) > 0 {
		e.log.Restore(entries)
	} else {
		e.log.Append(TextInitialized, activity.KindInfo)
	}

	e.logger.Debug("session opened",
		"library", e.library.Len(),
		"board", e.board.Len(),
		"log", e.log.Len(),
	)
	return e, nil
}

// hydrate fills in eras missing from records saved before eras existed.
func (e *Engine) hydrate(records []element.Record) []element.Record {
	out := make([]element.Record, len(records))
	for i, r := range records {
		if !r.Era.Valid() {
			r.Era = e.resolver.Table().EraOf(r.Name)
		}
		out[i] = r
	}
	return out
}

func (e *Engine) hydrateInstances(instances []element.Instance) []element.Instance {
	out := make([]element.Instance, len(instances))
	for i, inst := range instances {
		if !inst.Era.Valid() {
			inst.Era = e.resolver.Table().EraOf(inst.Name)
		}
		out[i] = inst
	}
	return out
}

// Resolver returns the resolver.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Processing reports whether a combination attempt is in flight.
func (e *Engine) Processing() bool {
	return e.processing.Load()
}

// Library returns a snapshot of the library.
func (e *Engine) Library() *Library {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.library.Clone()
}

// Board returns a snapshot of the board.
func (e *Engine) Board() *Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Clone()
}

// Instance returns one board instance, or an UnknownInstance error.
func (e *Engine) Instance(instanceID string) (element.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.board.Instance(instanceID)
	if !ok {
		return element.Instance{}, &Error{
			Code:    ErrCodeUnknownInstance,
			Message: fmt.Sprintf("no instance %q on the board", instanceID),
		}
	}
	return inst, nil
}

// Log returns the activity log, newest first.
func (e *Engine) Log() []activity.Entry {
	return e.log.Entries()
}

// Discover adds def to the library unless its name is already known. It
// returns the canonical record and whether the library changed.
func (e *Engine) Discover(ctx context.Context, def element.Definition) (element.Record, bool) {
	e.mu.Lock()
	rec, changed := e.library.Discover(def, e.now())
	e.mu.Unlock()
	if changed {
		e.save(ctx, blobLibrary)
	}
	return rec, changed
}

// Spawn places a new instance of def on the board. The instance takes the
// canonical library identity when def's name is already discovered.
func (e *Engine) Spawn(ctx context.Context, def element.Definition, x, y float64) element.Instance {
	e.mu.Lock()
	rec, ok := e.library.Lookup(def.Name)
	if !ok {
		rec = def.Discover(e.now())
	}
	inst := e.board.Spawn(rec, x, y)
	e.mu.Unlock()
	e.save(ctx, blobBoard)
	return inst
}

// SpawnByName places a discovered element on the board. Names that are
// not in the library fail with suggestions.
func (e *Engine) SpawnByName(ctx context.Context, name string, x, y float64) (element.Instance, error) {
	e.mu.Lock()
	rec, ok := e.library.Lookup(name)
	if !ok {
		suggestions := e.library.Suggest(name)
		e.mu.Unlock()
		return element.Instance{}, &Error{
			Code:        ErrCodeUndiscovered,
			Message:     "element has not been discovered",
			Name:        name,
			Suggestions: suggestions,
		}
	}
	inst := e.board.Spawn(rec, x, y)
	e.mu.Unlock()
	e.save(ctx, blobBoard)
	return inst, nil
}

// Move repositions an instance. Stale ids are ignored.
func (e *Engine) Move(ctx context.Context, instanceID string, x, y float64) bool {
	e.mu.Lock()
	moved := e.board.Move(instanceID, x, y)
	e.mu.Unlock()
	if moved {
		e.save(ctx, blobBoard)
	}
	return moved
}

// Remove deletes one instance and reports whether it existed.
func (e *Engine) Remove(ctx context.Context, instanceID string) bool {
	e.mu.Lock()
	removed := e.board.Remove(instanceID)
	e.mu.Unlock()
	if removed {
		e.save(ctx, blobBoard)
	}
	return removed
}

// Clear removes every instance from the board.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	e.board.Clear()
	e.log.Append(TextCleared, activity.KindInfo)
	e.mu.Unlock()
	e.save(ctx, blobBoard|blobLog)
}

// Reset restores the seed library, empties the board and leaves a single
// reset entry in the log. The resolver cache survives a reset.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	e.library = NewLibrary(element.Seeds(e.now()))
	e.board.Clear()
	e.log.Reset(TextReset)
	e.mu.Unlock()
	e.save(ctx, blobAll)
}

// AppendLog pushes an entry onto the activity log.
func (e *Engine) AppendLog(ctx context.Context, text string, kind activity.Kind) activity.Entry {
	entry := e.log.Append(text, kind)
	e.save(ctx, blobLog)
	return entry
}

// Save writes the whole session state and reports the first failure,
// including a failure left over from an earlier automatic save.
func (e *Engine) Save(ctx context.Context) error {
	if err := e.write(ctx, blobAll); err != nil {
		return err
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	e.saveErr = nil
	return nil
}

// LastSaveError returns the error of the most recent failed automatic save.
func (e *Engine) LastSaveError() error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.saveErr
}

// save persists after a mutation. Failures are logged and kept for
// LastSaveError; the in-memory state stays authoritative.
func (e *Engine) save(ctx context.Context, what blob) {
	if err := e.write(ctx, what); err != nil {
		e.logger.Error("auto-save failed", "error", err.Error())
		e.saveMu.Lock()
		e.saveErr = err
		e.saveMu.Unlock()
	}
}

func (e *Engine) write(ctx context.Context, what blob) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	var (
		records   []element.Record
		instances []element.Instance
		entries   []activity.Entry
	)
	if what&blobLibrary != 0 {
		records = e.library.Records()
	}
	if what&blobBoard != 0 {
		instances = e.board.Instances()
	}
	if what&blobLog != 0 {
		entries = e.log.Entries()
	}
	e.mu.Unlock()

	if what&blobLibrary != 0 {
		if err := e.persist.SaveLibrary(ctx, records); err != nil {
			return persistenceError("save library", err)
		}
	}
	if what&blobBoard != 0 {
		if err := e.persist.SaveBoard(ctx, instances); err != nil {
			return persistenceError("save board", err)
		}
	}
	if what&blobLog != 0 {
		if err := e.persist.SaveLog(ctx, entries); err != nil {
			return persistenceError("save log", err)
		}
	}
	return nil
}
