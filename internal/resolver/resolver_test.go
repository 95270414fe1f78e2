package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genesis/internal/element"
	"github.com/roach88/genesis/internal/ids"
	"github.com/roach88/genesis/internal/recipe"
)

const schoolOfFish = `{
	"success": true,
	"flavorText": "鱼儿聚集成群。",
	"newElement": {"name": "鱼群", "emoji": "🐟", "description": "成群结队的鱼。", "type": "life"}
}`

func table(t *testing.T) *recipe.Table {
	t.Helper()
	tbl, err := recipe.Default()
	require.NoError(t, err)
	return tbl
}

func def(t *testing.T, tbl *recipe.Table, name string) element.Definition {
	t.Helper()
	d, ok := tbl.DefinitionByName(name)
	require.True(t, ok, "unknown element %s", name)
	return d
}

// scripted returns a capability that answers with payload and counts calls.
func scripted(payload string, calls *atomic.Int64) Capability {
	return CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(payload), nil
	})
}

func TestResolve_StaticHit(t *testing.T) {
	tbl := table(t)
	r := New(tbl)

	res := r.Resolve(context.Background(), element.Spark, element.Void)

	require.True(t, res.Success())
	assert.Equal(t, "能量", res.Element.Name)
	assert.Equal(t, "⚡", res.Element.Emoji)
	assert.Equal(t, element.EraGenesis, res.Element.Era)
	assert.Equal(t, FlavorStaticSuccess, res.FlavorText)
	assert.Equal(t, SourceStatic, res.Source)
	assert.Equal(t, int64(1), r.Stats().StaticHits)
}

func TestResolve_Commutative(t *testing.T) {
	tbl := table(t)
	r := New(tbl)
	ctx := context.Background()

	for _, key := range tbl.Keys() {
		entry, _ := tbl.LookupKey(key)
		a := def(t, tbl, entry.Inputs[0])
		b := def(t, tbl, entry.Inputs[1])

		ab := r.Resolve(ctx, a, b)
		ba := r.Resolve(ctx, b, a)
		require.True(t, ab.Success(), key)
		assert.Equal(t, ab.Element.Name, ba.Element.Name, key)
	}
}

func TestResolve_NoCapabilityMeansNoReaction(t *testing.T) {
	tbl := table(t)
	r := New(tbl)
	fish := def(t, tbl, "鱼")

	res := r.Resolve(context.Background(), fish, fish)

	assert.Equal(t, OutcomeNoReaction, res.Outcome)
	assert.Nil(t, res.Element)
	assert.Equal(t, "这两种物质无法产生反应。", res.FlavorText)
	assert.Equal(t, SourceNone, res.Source)
}

func TestResolve_StaticTableWinsOverCapability(t *testing.T) {
	var calls atomic.Int64
	r := New(table(t), WithCapability(scripted(schoolOfFish, &calls)))

	res := r.Resolve(context.Background(), element.Void, element.Spark)

	require.True(t, res.Success())
	assert.Equal(t, "能量", res.Element.Name)
	assert.Zero(t, calls.Load())
}

func TestResolve_GenerativeSuccessIsCached(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	r := New(tbl,
		WithCapability(scripted(schoolOfFish, &calls)),
		WithIDGenerator(ids.NewFixedGenerator("gen_1")),
	)
	fish := def(t, tbl, "鱼")
	ctx := context.Background()

	first := r.Resolve(ctx, fish, fish)
	require.True(t, first.Success())
	assert.Equal(t, SourceGenerative, first.Source)
	assert.Equal(t, "gen_1", first.Element.ID)
	assert.Equal(t, "鱼群", first.Element.Name)
	assert.Equal(t, element.TypeLife, first.Element.Type)
	assert.Equal(t, element.EraLife, first.Element.Era)
	assert.Equal(t, "鱼儿聚集成群。", first.FlavorText)

	second := r.Resolve(ctx, fish, fish)
	require.True(t, second.Success())
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, *first.Element, *second.Element)

	assert.Equal(t, int64(1), calls.Load())
	stats := r.Stats()
	assert.Equal(t, int64(1), stats.CapabilityCalls)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, 1, stats.CachedPairs)
}

func TestResolve_CachedResultIsNotAliased(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	r := New(tbl, WithCapability(scripted(schoolOfFish, &calls)))
	fish := def(t, tbl, "鱼")

	first := r.Resolve(context.Background(), fish, fish)
	first.Element.Name = "mutated"

	second := r.Resolve(context.Background(), fish, fish)
	assert.Equal(t, "鱼群", second.Element.Name)
}

func TestResolve_DeclineIsCached(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	r := New(tbl, WithCapability(scripted(`{"success": false, "flavorText": "鱼只是看着彼此。", "newElement": null}`, &calls)))
	fish := def(t, tbl, "鱼")

	first := r.Resolve(context.Background(), fish, fish)
	assert.Equal(t, OutcomeNoReaction, first.Outcome)
	assert.Equal(t, "鱼只是看着彼此。", first.FlavorText)
	assert.Equal(t, SourceGenerative, first.Source)

	second := r.Resolve(context.Background(), fish, fish)
	assert.Equal(t, OutcomeNoReaction, second.Outcome)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, int64(1), calls.Load())
}

func TestResolve_TransportFailureIsNotCached(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	fail := true
	capability := CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		calls.Add(1)
		if fail {
			return nil, errors.New("connection refused")
		}
		return json.RawMessage(schoolOfFish), nil
	})
	r := New(tbl, WithCapability(capability))
	fish := def(t, tbl, "鱼")

	res := r.Resolve(context.Background(), fish, fish)
	assert.Equal(t, OutcomeSynthesisError, res.Outcome)
	assert.Equal(t, FlavorSynthesisError, res.FlavorText)
	assert.True(t, IsKind(res.Err, KindTransport))
	assert.Zero(t, r.Cache().Len())

	fail = false
	res = r.Resolve(context.Background(), fish, fish)
	require.True(t, res.Success())
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), r.Stats().Failures)
}

func TestResolve_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `sure! here is the answer`},
		{"success without element", `{"success": true, "flavorText": "x", "newElement": null}`},
		{"missing flavor", `{"success": false, "newElement": null}`},
		{"unknown type", `{"success": true, "flavorText": "x", "newElement": {"name": "n", "emoji": "e", "description": "d", "type": "magic"}}`},
		{"separator in name", `{"success": true, "flavorText": "x", "newElement": {"name": "a+b", "emoji": "e", "description": "d", "type": "life"}}`},
		{"extra field", `{"success": false, "flavorText": "x", "newElement": null, "score": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table(t)
			var calls atomic.Int64
			r := New(tbl, WithCapability(scripted(tt.payload, &calls)))
			fish := def(t, tbl, "鱼")

			res := r.Resolve(context.Background(), fish, fish)

			assert.Equal(t, OutcomeSynthesisError, res.Outcome)
			assert.True(t, IsKind(res.Err, KindMalformed), "got %v", res.Err)
			assert.Zero(t, r.Cache().Len())
		})
	}
}

func TestResolve_Timeout(t *testing.T) {
	tbl := table(t)
	slow := CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := New(tbl, WithCapability(slow), WithTimeout(20*time.Millisecond))
	fish := def(t, tbl, "鱼")

	res := r.Resolve(context.Background(), fish, fish)

	assert.Equal(t, OutcomeSynthesisError, res.Outcome)
	assert.True(t, IsKind(res.Err, KindTimeout), "got %v", res.Err)
}

func TestResolve_PanicBecomesTransportFailure(t *testing.T) {
	tbl := table(t)
	boom := CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		panic("boom")
	})
	r := New(tbl, WithCapability(boom))
	fish := def(t, tbl, "鱼")

	res := r.Resolve(context.Background(), fish, fish)

	assert.Equal(t, OutcomeSynthesisError, res.Outcome)
	assert.True(t, IsKind(res.Err, KindTransport))
}

func TestResolve_ConcurrentMissesShareOneCall(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	release := make(chan struct{})
	capability := CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		calls.Add(1)
		<-release
		return json.RawMessage(schoolOfFish), nil
	})
	r := New(tbl, WithCapability(capability))
	fish := def(t, tbl, "鱼")

	const n = 8
	results := make([]Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), fish, fish)
		}(i)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, res := range results {
		require.True(t, res.Success())
		assert.Equal(t, "鱼群", res.Element.Name)
	}
}

func TestResolve_GeneratedKnownNameKeepsTableEra(t *testing.T) {
	tbl := table(t)
	var calls atomic.Int64
	payload := `{"success": true, "flavorText": "x", "newElement": {"name": "机器人", "emoji": "🤖", "description": "d", "type": "technology"}}`
	r := New(tbl, WithCapability(scripted(payload, &calls)))
	fish := def(t, tbl, "鱼")

	res := r.Resolve(context.Background(), fish, fish)

	require.True(t, res.Success())
	assert.Equal(t, element.EraInformation, res.Element.Era)
}

func TestResolve_RequestCarriesIngredients(t *testing.T) {
	tbl := table(t)
	var got Request
	capability := CapabilityFunc(func(ctx context.Context, req Request) (json.RawMessage, error) {
		got = req
		return json.RawMessage(schoolOfFish), nil
	})
	r := New(tbl, WithCapability(capability))
	fish := def(t, tbl, "鱼")

	r.Resolve(context.Background(), fish, fish)

	assert.Equal(t, "鱼", got.A.Name)
	assert.Equal(t, fish.Description, got.B.Description)
	assert.Equal(t, SchemaName, got.SchemaName)
	assert.NotEmpty(t, got.Preamble)
	assert.Contains(t, got.UserPrompt(), "元素A：鱼")
}

func TestResolve_Latency(t *testing.T) {
	r := New(table(t), WithLatency(30*time.Millisecond))

	start := time.Now()
	res := r.Resolve(context.Background(), element.Spark, element.Void)

	assert.True(t, res.Success())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
