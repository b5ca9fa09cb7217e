package compiled

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

func freshCompiled() *entity.CompiledScenario {
	return &entity.CompiledScenario{
		Version:    entity.CompiledFormatVersion,
		SourceHash: "abc",
		CompiledAt: time.Now().UTC(),
		Window:     entity.WindowSize{Width: 410, Height: 898},
		Steps: []entity.CompiledStep{
			{Index: 0, Type: "launch"},
			{Index: 1, Type: "tap", Label: "General", Hints: &entity.StepHints{
				Kind: entity.HintTap,
				Tap:  &entity.TapHint{X: 100, Y: 300, Confidence: 0.92, Strategy: entity.MatchExact},
			}},
		},
	}
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "flows/settings.compiled.json", SidecarPath("flows/settings.yaml"))
	assert.Equal(t, "flows/settings.compiled.json", SidecarPath("flows/settings.yml"))
	assert.Equal(t, "bare.compiled.json", SidecarPath("bare"))
}

func TestStalenessMonotonic(t *testing.T) {
	win := entity.WindowSize{Width: 410, Height: 898}

	tests := []struct {
		name   string
		mutate func(*entity.CompiledScenario, *string, *entity.WindowSize)
		reason string
	}{
		{"fresh", func(*entity.CompiledScenario, *string, *entity.WindowSize) {}, ""},
		{"version", func(c *entity.CompiledScenario, _ *string, _ *entity.WindowSize) {
			c.Version = entity.CompiledFormatVersion + 1
		}, "compiled format version mismatch"},
		{"hash", func(_ *entity.CompiledScenario, h *string, _ *entity.WindowSize) {
			*h = "xyz"
		}, "source file has changed since compilation"},
		{"width", func(_ *entity.CompiledScenario, _ *string, w *entity.WindowSize) {
			w.Width = 390
		}, "device window dimensions have changed"},
		{"height", func(_ *entity.CompiledScenario, _ *string, w *entity.WindowSize) {
			w.Height = 844
		}, "device window dimensions have changed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := freshCompiled()
			hash := "abc"
			w := win
			tt.mutate(c, &hash, &w)

			stale := CheckFreshness(c, hash, w)
			if tt.reason == "" {
				assert.Nil(t, stale)
				return
			}
			require.NotNil(t, stale)
			assert.Equal(t, tt.reason, stale.Reason)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.compiled.json")

	c := freshCompiled()
	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, c.SourceHash, loaded.SourceHash)
	require.Len(t, loaded.Steps, 2)
	require.NotNil(t, loaded.Steps[1].Hints)
	assert.Equal(t, entity.HintTap, loaded.Steps[1].Hints.Kind)
	assert.Equal(t, 100.0, loaded.Steps[1].Hints.Tap.X)
}

func TestSaveIsDiffable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.compiled.json")
	b := filepath.Join(dir, "b.compiled.json")

	c := freshCompiled()
	require.NoError(t, Save(a, c))
	require.NoError(t, Save(b, c))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, string(da), string(db))
}

func TestLoadMissingSidecarIsNotAnError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.compiled.json"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoadRejectsIndexMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.compiled.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1, "sourceHash": "abc",
		"window": {"width": 410, "height": 898},
		"steps": [{"index": 3, "type": "tap"}]
	}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestHashSourceContentBased(t *testing.T) {
	h1 := HashSource([]byte("steps:\n- tap: A\n"))
	h2 := HashSource([]byte("steps:\n- tap: A\n"))
	h3 := HashSource([]byte("steps:\n- tap: B\n"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestRecorderBuild(t *testing.T) {
	scn := entity.Scenario{
		Name: "settings",
		Steps: []entity.SkillStep{
			{Kind: entity.StepLaunch, App: "Settings"},
			{Kind: entity.StepTap, Label: "General"},
			{Kind: entity.StepWaitFor, Label: "About", TimeoutSec: 5},
			{Kind: entity.StepScrollTo, Label: "Legal", Direction: "down", MaxScrolls: 10},
		},
	}

	r := NewRecorder()
	r.RecordPassthrough(0)
	r.RecordTap(1, 120, 310, 0.9, entity.MatchExact)
	r.RecordSleep(2, 1500*time.Millisecond)
	r.RecordScroll(3, 4, "down")

	c := r.Build(scn, "abc", entity.WindowSize{Width: 410, Height: 898}, "portrait")
	require.NoError(t, c.Validate())
	require.Len(t, c.Steps, 4)

	assert.Equal(t, entity.HintPassthrough, c.Steps[0].Hints.Kind)
	assert.Equal(t, entity.MatchExact, c.Steps[1].Hints.Tap.Strategy)
	assert.Equal(t, 1500, c.Steps[2].Hints.Sleep.DelayMs)
	assert.Equal(t, 4, c.Steps[3].Hints.Scroll.Count)
	assert.Equal(t, "down", c.Steps[3].Hints.Scroll.Direction)
}
