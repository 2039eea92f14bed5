package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDotKVHierarchy(t *testing.T) {
	m, err := ParseDotKV("k.a=1,k.b=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"k": map[string]any{"a": int64(1), "b": int64(2)},
	}, m)
}

func TestParseDotKVHierarchicalOverrideScenario(t *testing.T) {
	m, err := ParseDotKV("synth.steps.synth.directive=PerformanceOptimized,impl.strategy=Timing")
	require.NoError(t, err)
	synth := m["synth"].(map[string]any)
	steps := synth["steps"].(map[string]any)
	synthStep := steps["synth"].(map[string]any)
	assert.Equal(t, "PerformanceOptimized", synthStep["directive"])
	impl := m["impl"].(map[string]any)
	assert.Equal(t, "Timing", impl["strategy"])
}

func TestCoerceStringRules(t *testing.T) {
	assert.Equal(t, int64(42), CoerceString("42"))
	assert.Equal(t, 3.14, CoerceString("3.14"))
	assert.Equal(t, true, CoerceString("true"))
	assert.Equal(t, true, CoerceString("Yes"))
	assert.Equal(t, false, CoerceString("no"))
	assert.Equal(t, []any{"a", "b"}, CoerceString("a,b"))
	assert.Equal(t, "hello", CoerceString("hello"))
}

func TestMergeAssociativeOverDisjointKeys(t *testing.T) {
	base := map[string]any{"x": 1}
	a := map[string]any{"y": 2}
	b := map[string]any{"z": 3}
	left := Merge(Merge(base, a), b)
	right := Merge(base, Merge(a, b))
	assert.Equal(t, left, right)
}

func TestMergeOverlayWinsAndRecursesIntoMaps(t *testing.T) {
	base := map[string]any{"synth": map[string]any{"strategy": "Default", "nthreads": int64(1)}}
	overlay := map[string]any{"synth": map[string]any{"strategy": "Timing"}}
	merged := Merge(base, overlay)
	synth := merged["synth"].(map[string]any)
	assert.Equal(t, "Timing", synth["strategy"])
	assert.Equal(t, int64(1), synth["nthreads"])
}

func TestNormalizeEmptyClocksFromClockPeriod(t *testing.T) {
	raw := map[string]any{"clock_period": 5.0}
	norm := Normalize(raw)
	clocks := norm["clocks"].(map[string]any)
	main := clocks["main_clock"].(map[string]any)
	assert.Equal(t, 5.0, main["period"])
}

func TestNormalizeClockPeriodFromSingleClock(t *testing.T) {
	raw := map[string]any{"clocks": map[string]any{"c1": map[string]any{"freq": 100.0}}}
	norm := Normalize(raw)
	assert.Equal(t, 10.0, norm["clock_period"])

	s, verr := FromRaw(norm)
	assert.Nil(t, verr)
	require.NotNil(t, s.Clocks["c1"].Freq)
	assert.Equal(t, 100.0, *s.Clocks["c1"].Freq)
}

func TestNormalizeQuietForcedFalseWhenVerbose(t *testing.T) {
	raw := map[string]any{"verbose": true, "quiet": true}
	norm := Normalize(raw)
	assert.Equal(t, false, norm["quiet"])
}

func TestSingleClockCoherenceClockPeriodWins(t *testing.T) {
	raw := map[string]any{
		"clock_period": 4.0,
		"clocks":       map[string]any{"main_clock": map[string]any{"period": 10.0}},
	}
	norm := Normalize(raw)
	clocks := norm["clocks"].(map[string]any)
	main := clocks["main_clock"].(map[string]any)
	assert.Equal(t, 4.0, main["period"])
}

func TestFromRawCollectsAllFieldErrors(t *testing.T) {
	raw := map[string]any{
		"verbose":         "not-a-bool",
		"timeout_seconds": "not-an-int",
		"lib_paths":       42,
	}
	_, verr := FromRaw(raw)
	require.NotNil(t, verr)
	assert.GreaterOrEqual(t, len(verr.Errors), 3)
}

func TestSettingsJSONRoundTrip(t *testing.T) {
	period := 5.0
	s := FlowSettings{
		Verbose:        true,
		TimeoutSeconds: 120,
		ClockPeriod:    &period,
		Clocks:         map[string]ClockSetting{"main_clock": {Period: &period}},
		LibPaths:       []LibPath{{Path: "/foo"}},
		Extra:          map[string]any{"synth": map[string]any{"strategy": "Timing"}},
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var s2 FlowSettings
	require.NoError(t, json.Unmarshal(data, &s2))
	assert.Equal(t, s.Verbose, s2.Verbose)
	assert.Equal(t, s.TimeoutSeconds, s2.TimeoutSeconds)
	require.NotNil(t, s2.ClockPeriod)
	assert.Equal(t, *s.ClockPeriod, *s2.ClockPeriod)
	assert.Equal(t, s.LibPaths, s2.LibPaths)
}
