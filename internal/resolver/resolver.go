package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/ids"
	"github.com/roach88/genesis/internal/logger"
	"github.com/roach88/genesis/internal/recipe"
)

// DefaultTimeout bounds a single generative call.
const DefaultTimeout = 20 * time.Second

// Resolver combines element pairs. A Resolver is safe for concurrent use;
// concurrent misses on the same pair share a single capability call.
type Resolver struct {
	table      *recipe.Table
	capability Capability
	cache      *Cache
	flight     singleflight.Group
	idGen      ids.Generator
	timeout    time.Duration
	latency    time.Duration
	log        *logger.Logger

	staticHits      atomic.Int64
	cacheHits       atomic.Int64
	capabilityCalls atomic.Int64
	failures        atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCapability enables the generative path.
func WithCapability(c Capability) Option {
	return func(r *Resolver) {
		r.capability = c
	}
}

// WithTimeout bounds each capability call. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithIDGenerator sets the generator for ids of generated definitions.
func WithIDGenerator(g ids.Generator) Option {
	return func(r *Resolver) {
		r.idGen = g
	}
}

// WithLatency delays every resolution by d, standing in for network time
// when no capability is configured.
func WithLatency(d time.Duration) Option {
	return func(r *Resolver) {
		r.latency = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithCache shares an existing cache.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// New creates a Resolver over table.
func New(table *recipe.Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:   table,
		cache:   NewCache(),
		idGen:   ids.UUIDv7Generator{Prefix: "gen_"},
		timeout: DefaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the static recipe table.
func (r *Resolver) Table() *recipe.Table {
	return r.table
}

// Generative reports whether a capability is configured.
func (r *Resolver) Generative() bool {
	return r.capability != nil
}

// Cache returns the result cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve decides what a and b combine into. The answer depends only on
// the unordered pair of names, so Resolve(a, b) and Resolve(b, a) agree.
func (r *Resolver) Resolve(ctx context.Context, a, b element.Definition) Result {
	key := recipe.PairKey(a.Name, b.Name)
	r.wait(ctx)

	if entry, ok := r.table.LookupKey(key); ok {
		r.staticHits.Add(1)
		def := entry.Result
		flavor := entry.Flavor
		if flavor == "" {
			flavor = FlavorStaticSuccess
		}
		return Result{Outcome: OutcomeSuccess, Element: &def, FlavorText: flavor, Source: SourceStatic}
	}

	if r.capability == nil {
		return noReaction(SourceNone, "")
	}

	if cached, ok := r.cache.Get(key); ok {
		r.cacheHits.Add(1)
		cached.Source = SourceCache
		return cached
	}

	v, err, _ := r.flight.Do(key, func() (any, error) {
		// Another caller may have filled the cache between our miss and
		// winning the flight.
		if cached, ok := r.cache.Get(key); ok {
			r.cacheHits.Add(1)
			cached.Source = SourceCache
			return cached, nil
		}
		res, err := r.generate(ctx, a, b)
		if err != nil {
			return nil, err
		}
		r.cache.Put(key, res)
		return res, nil
	})
	if err != nil {
		r.failures.Add(1)
		r.log.Warn("generative resolution failed",
			"pair", key,
			"error", err.Error(),
		)
		return synthesisError(err)
	}
	return v.(Result).clone()
}

// generate calls the capability once and turns its answer into a Result.
func (r *Resolver) generate(ctx context.Context, a, b element.Definition) (res Result, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = &Error{Kind: KindTransport, Message: "capability panicked", Err: fmt.Errorf("%v", p)}
		}
	}()

	r.capabilityCalls.Add(1)
	raw, err := r.capability.Combine(ctx, Request{
		A:          Ingredient{Name: a.Name, Description: a.Description},
		B:          Ingredient{Name: b.Name, Description: b.Description},
		Preamble:   Preamble(),
		SchemaName: SchemaName,
		Schema:     ResponseSchema(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, &Error{Kind: KindTimeout, Message: fmt.Sprintf("no answer within %s", r.timeout), Err: err}
		}
		return Result{}, &Error{Kind: KindTransport, Message: "capability call failed", Err: err}
	}

	verdict, err := ParseResponse(raw)
	if err != nil {
		return Result{}, err
	}
	if !verdict.Success {
		return noReaction(SourceGenerative, verdict.FlavorText), nil
	}

	c := verdict.Element
	def := element.Definition{
		ID:          r.idGen.Generate(),
		Name:        c.Name,
		Emoji:       c.Emoji,
		Description: c.Description,
		Type:        c.Type,
		Era:         r.eraFor(c.Name, a, b),
	}
	return Result{
		Outcome:    OutcomeSuccess,
		Element:    &def,
		FlavorText: verdict.FlavorText,
		Source:     SourceGenerative,
	}, nil
}

// eraFor places a generated element: the table's era when the name is a
// known result, otherwise the later era of its two inputs.
func (r *Resolver) eraFor(name string, a, b element.Definition) element.Era {
	if def, ok := r.table.DefinitionByName(name); ok && def.Era.Valid() {
		return def.Era
	}
	return element.Later(r.inputEra(a), r.inputEra(b))
}

func (r *Resolver) inputEra(d element.Definition) element.Era {
	if d.Era.Valid() {
		return d.Era
	}
	return r.table.EraOf(d.Name)
}

// wait applies the simulated latency. Cancellation cuts the wait short
// but does not abandon the resolution.
func (r *Resolver) wait(ctx context.Context) {
	if r.latency <= 0 {
		return
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Stats counts resolutions by path.
type Stats struct {
	StaticHits      int64 `json:"staticHits"`
	CacheHits       int64 `json:"cacheHits"`
	CapabilityCalls int64 `json:"capabilityCalls"`
	Failures        int64 `json:"failures"`
	CachedPairs     int   `json:"cachedPairs"`
}

// Stats returns a snapshot of the counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		StaticHits:      r.staticHits.Load(),
		CacheHits:       r.cacheHits.Load(),
		CapabilityCalls: r.capabilityCalls.Load(),
		Failures:        r.failures.Load(),
		CachedPairs:     r.cache.Len(),
	}
}
