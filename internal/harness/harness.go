package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/engine"
	"github.com/roach88/genesis/internal/ids"
	"github.com/roach88/genesis/internal/recipe"
	"github.com/roach88/genesis/internal/resolver"
	"github.com/roach88/genesis/internal/store"
)

// Epoch is the fixed wall-clock time of every harness run.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one line per step followed by the final state.
	Trace []string `json:"trace"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []string{}, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) tracef(format string, args ...any) {
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}

// scripted answers capability calls from scenario replies.
type scripted struct {
	replies map[string]Reply
	calls   atomic.Int64
}

func newScripted(c *Capability) *scripted {
	s := &scripted{replies: make(map[string]Reply)}
	for _, r := range c.Replies {
		s.replies[recipe.PairKey(r.Pair[0], r.Pair[1])] = r
	}
	return s
}

func (s *scripted) Combine(ctx context.Context, req resolver.Request) (json.RawMessage, error) {
	s.calls.Add(1)
	r, ok := s.replies[recipe.PairKey(req.A.Name, req.B.Name)]
	if !ok {
		return nil, fmt.Errorf("no scripted reply for %s + %s", req.A.Name, req.B.Name)
	}
	if r.Error != "" {
		return nil, errors.New(r.Error)
	}
	return json.RawMessage(r.Response), nil
}

// harness holds one run's engine and instance names.
type harness struct {
	engine     *engine.Engine
	resolver   *resolver.Resolver
	table      *recipe.Table
	capability *scripted
	aliases    map[string]string // alias -> instance id
	names      map[string]string // instance id -> alias
}

// Run executes a scenario and returns the result.
//
// Each run uses a fresh in-memory store, a fixed clock and sequential
// ids, so traces are reproducible. Errors are returned only for
// scenarios that cannot run at all; failed expectations are reported in
// the Result.
func Run(scenario *Scenario) (*Result, error) {
	table, _, err := recipe.Load(scenario.Recipes...)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	h := &harness{
		table:   table,
		aliases: make(map[string]string),
		names:   make(map[string]string),
	}

	opts := []resolver.Option{resolver.WithIDGenerator(ids.NewSequenceGenerator("gen"))}
	if scenario.Capability != nil {
		h.capability = newScripted(scenario.Capability)
		opts = append(opts, resolver.WithCapability(h.capability))
	}
	h.resolver = resolver.New(table, opts...)

	ctx := context.Background()
	h.engine, err = engine.Open(ctx, store.NewMemory(), h.resolver,
		engine.WithNow(func() time.Time { return Epoch }),
		engine.WithInstanceIDs(ids.NewSequenceGenerator("inst")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	h.traceState(result)

	for _, msg := range evaluateAssertions(h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *harness) execute(ctx context.Context, n int, st Step, result *Result) error {
	switch st.Op {
	case OpSpawn:
		def, err := h.definition(st.Name)
		if err != nil {
			return err
		}
		inst := h.engine.Spawn(ctx, def, st.X, st.Y)
		h.name(inst.InstanceID, st.As)
		result.tracef("%02d spawn %s -> %s (%g,%g)", n, inst.Name, h.label(inst.InstanceID), inst.X, inst.Y)

	case OpCombine:
		src, err := h.definition(st.Source)
		if err != nil {
			return err
		}
		attempt := engine.Attempt{
			Source:           src,
			SourceInstanceID: h.instanceID(st.SourceInstance),
			TargetInstanceID: h.instanceID(st.Target),
		}
		out := h.engine.Combine(ctx, attempt)
		line := fmt.Sprintf("%02d combine %s + %s -> %s", n, src.Name, st.Target, out.Status)
		name := ""
		if out.Spawned != nil {
			name = out.Spawned.Name
			h.name(out.Spawned.InstanceID, st.As)
			line += fmt.Sprintf(" %s [%s] at %s (%g,%g)", name, out.Result.Source, h.label(out.Spawned.InstanceID), out.Spawned.X, out.Spawned.Y)
			if out.Discovered {
				line += " new"
			}
			if out.UnlockedEra != "" {
				line += " era=" + string(out.UnlockedEra)
			}
		} else if out.Status == engine.StatusFailed {
			line += fmt.Sprintf(" [%s] %s", out.Result.Source, out.Result.FlavorText)
		}
		result.Trace = append(result.Trace, line)
		h.expect(result, n, st, string(out.Status), name)

	case OpMove:
		ok := h.engine.Move(ctx, h.instanceID(st.Instance), st.X, st.Y)
		result.tracef("%02d move %s (%g,%g) -> %t", n, st.Instance, st.X, st.Y, ok)

	case OpRemove:
		ok := h.engine.Remove(ctx, h.instanceID(st.Instance))
		result.tracef("%02d remove %s -> %t", n, st.Instance, ok)

	case OpClear:
		h.engine.Clear(ctx)
		result.tracef("%02d clear", n)

	case OpReset:
		h.engine.Reset(ctx)
		result.tracef("%02d reset", n)

	case OpResolve:
		a, err := h.definition(st.A)
		if err != nil {
			return err
		}
		b, err := h.definition(st.B)
		if err != nil {
			return err
		}
		res := h.resolver.Resolve(ctx, a, b)
		name := ""
		line := fmt.Sprintf("%02d resolve %s + %s -> %s [%s]", n, a.Name, b.Name, res.Outcome, res.Source)
		if res.Element != nil {
			name = res.Element.Name
			line += " " + name
		}
		line += " " + res.FlavorText
		result.Trace = append(result.Trace, line)
		h.expect(result, n, st, res.Outcome.String(), name)

	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (h *harness) expect(result *Result, n int, st Step, got, name string) {
	if st.Expect != "" && st.Expect != got {
		result.AddError(fmt.Sprintf("step %d: expected %s, got %s", n, st.Expect, got))
	}
	if st.Result != "" && !element.SameName(st.Result, name) {
		result.AddError(fmt.Sprintf("step %d: expected result %s, got %q", n, st.Result, name))
	}
}

// definition finds an element by name in the library, then the table.
func (h *harness) definition(name string) (element.Definition, error) {
	if rec, ok := h.engine.Library().Lookup(name); ok {
		return rec.Definition, nil
	}
	if def, ok := h.table.DefinitionByName(name); ok {
		return def, nil
	}
	return element.Definition{}, fmt.Errorf("unknown element %q", name)
}

func (h *harness) name(instanceID, alias string) {
	if alias == "" {
		return
	}
	h.aliases[alias] = instanceID
	h.names[instanceID] = alias
}

// instanceID maps an alias to its instance id. Unknown aliases pass
// through so scenarios can aim at instances that never existed.
func (h *harness) instanceID(alias string) string {
	if alias == "" {
		return ""
	}
	if id, ok := h.aliases[alias]; ok {
		return id
	}
	return alias
}

func (h *harness) label(instanceID string) string {
	if alias, ok := h.names[instanceID]; ok {
		return alias
	}
	return instanceID
}

func (h *harness) traceState(result *Result) {
	lib := h.engine.Library().Records()
	names := make([]string, len(lib))
	for i, r := range lib {
		names[i] = r.Name
	}
	result.tracef("library %d: %s", len(lib), strings.Join(names, " "))

	board := h.engine.Board().Instances()
	result.tracef("board %d:", len(board))
	for _, inst := range board {
		result.tracef("  %s %s (%g,%g)", h.label(inst.InstanceID), inst.Name, inst.X, inst.Y)
	}

	log := h.engine.Log()
	result.tracef("log %d:", len(log))
	for _, e := range log {
		result.tracef("  %s %s", e.Kind, e.Text)
	}
}

// calls returns the number of capability calls, or 0 without one.
func (h *harness) calls() int64 {
	if h.capability == nil {
		return 0
	}
	return h.capability.calls.Load()
}
