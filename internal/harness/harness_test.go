package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StaticDiscovery(t *testing.T) {
	scenario := &Scenario{
		Name:        "static",
		Description: "one static combination",
		Steps: []Step{
			{Op: OpSpawn, Name: "虚空", As: "v"},
			{Op: OpCombine, Source: "火花", Target: "v", As: "e", Expect: "applied", Result: "能量"},
		},
		Assertions: []Assertion{
			{Type: AssertLibraryContains, Names: []string{"能量"}},
			{Type: AssertBoardSize, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "01 spawn 虚空 -> v (0,0)", result.Trace[0])
	assert.Equal(t, "02 combine 火花 + v -> applied 能量 [static] at e (0,120) new", result.Trace[1])
}

func TestRun_ExpectationMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expects the wrong outcome",
		Steps: []Step{
			{Op: OpSpawn, Name: "虚空", As: "v"},
			{Op: OpCombine, Source: "火花", Target: "v", Expect: "failed", Result: "物质"},
		},
		Assertions: []Assertion{{Type: AssertBoardSize, Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "step 2: expected failed, got applied", result.Errors[0])
	assert.Equal(t, `step 2: expected result 物质, got "能量"`, result.Errors[1])
}

func TestRun_ResultNameIsNormalized(t *testing.T) {
	scenario := &Scenario{
		Name:        "normalized",
		Description: "result names compare after normalization",
		Steps: []Step{
			{Op: OpResolve, A: "火花", B: "虚空", Expect: "success", Result: "  能量 "},
		},
		Assertions: []Assertion{{Type: AssertCapabilityCalls, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnknownElement(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown",
		Description: "spawns an element that exists nowhere",
		Steps:       []Step{{Op: OpSpawn, Name: "独角兽"}},
		Assertions:  []Assertion{{Type: AssertBoardSize, Count: 0}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step 1 (spawn): unknown element "独角兽"`)
}

func TestRun_BadRecipeFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_recipes",
		Description: "recipe file missing",
		Recipes:     []string{"/nonexistent/extra.cue"},
		Steps:       []Step{{Op: OpClear}},
		Assertions:  []Assertion{{Type: AssertBoardSize, Count: 0}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load recipes")
}

func TestRun_UnscriptedPairIsSynthesisError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unscripted",
		Description: "the capability has no reply for the pair",
		Capability:  &Capability{},
		Steps: []Step{
			{Op: OpResolve, A: "鱼", B: "鱼", Expect: "synthesis_error"},
		},
		Assertions: []Assertion{{Type: AssertCapabilityCalls, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "01 resolve 鱼 + 鱼 -> synthesis_error [generative] 合成过程中发生异常，反应未能完成。", result.Trace[0])
}

func TestRun_IsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/generative_cache.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, first.Trace, second.Trace)
}
