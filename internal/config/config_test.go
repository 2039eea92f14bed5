package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProjectTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.v", "module top; endmodule\n")
	path := writeFile(t, dir, "xedaproject.toml", `
[design]
name = "top"

[design.rtl]
top = "top"
sources = ["top.v"]

[flow.yosys_synth]
clock_period = 5.0
`)

	l := NewLoader()
	p, err := l.LoadProject(path)
	require.NoError(t, err)
	require.Len(t, p.Designs, 1)
	assert.Equal(t, "top", p.Designs[0].Name)
	require.Contains(t, p.Flows, "yosys_synth")
	assert.Equal(t, 5.0, p.Flows["yosys_synth"]["clock_period"])
}

func TestLoadProjectYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.v", "module top; endmodule\n")
	path := writeFile(t, dir, "xedaproject.yaml", `
design:
  name: top
  rtl:
    top: top
    sources:
      - top.v
flow:
  yosys_synth:
    clock_period: 5.0
`)

	l := NewLoader()
	p, err := l.LoadProject(path)
	require.NoError(t, err)
	require.Len(t, p.Designs, 1)
	assert.Equal(t, "top", p.Designs[0].Name)
}

func TestLoadProjectJSONMultipleDesigns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.v", "module a; endmodule\n")
	writeFile(t, dir, "b.v", "module b; endmodule\n")
	path := writeFile(t, dir, "xedaproject.json", `{
		"designs": [
			{"name": "a", "rtl": {"top": "a", "sources": ["a.v"]}},
			{"name": "b", "rtl": {"top": "b", "sources": ["b.v"]}}
		],
		"flows": {"yosys_synth": {"clock_period": 10}}
	}`)

	l := NewLoader()
	p, err := l.LoadProject(path)
	require.NoError(t, err)
	require.Len(t, p.Designs, 2)
	assert.Equal(t, "a", p.Designs[0].Name)
	assert.Equal(t, "b", p.Designs[1].Name)
}

func TestLoadProjectRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "xedaproject.ini", "design=top\n")
	l := NewLoader()
	_, err := l.LoadProject(path)
	assert.Error(t, err)
}

func TestLoadDesignFileWithFlowDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.v", "module top; endmodule\n")
	path := writeFile(t, dir, "top.toml", `
name = "top"

[rtl]
top = "top"
sources = ["top.v"]

[flow.yosys_synth]
clock_period = 4.0
`)

	l := NewLoader()
	res, err := l.LoadDesignFile(path)
	require.NoError(t, err)
	assert.Equal(t, "top", res.Design.Name)
	require.Contains(t, res.Flows, "yosys_synth")
	assert.Equal(t, 4.0, res.Flows["yosys_synth"]["clock_period"])
}

func TestFindProjectFilePrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "xedaproject.yaml", "design:\n  name: x\n")
	writeFile(t, dir, "xedaproject.toml", "[design]\nname = \"x\"\n")
	assert.Equal(t, filepath.Join(dir, "xedaproject.toml"), FindProjectFile(dir))
}

func TestFindProjectFileNone(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", FindProjectFile(dir))
}

func TestBuildDesignResolvesSourcesAndClocks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.v", "module top; endmodule\n")

	rec := DesignRecord{
		Name: "top",
		RTL: map[string]any{
			"top":     "top",
			"sources": []any{"top.v"},
			"clocks": map[string]any{
				"clk": map[string]any{"period_ns": 5.0},
			},
		},
		Parameters: map[string]any{
			"WIDTH": int64(8),
		},
	}

	d, err := BuildDesign(rec, dir)
	require.NoError(t, err)
	assert.Equal(t, "top", d.Name)
	require.Len(t, d.RTL.Sources, 1)
	assert.Equal(t, filepath.Join(dir, "top.v"), d.RTL.Sources[0].Path)
	require.Contains(t, d.RTL.Clocks, "clk")
	assert.InDelta(t, 200.0, d.RTL.Clocks["clk"].FreqMHz, 1e-9)
	require.Contains(t, d.Parameters, "WIDTH")
}

func TestBuildDesignRejectsMissingSource(t *testing.T) {
	dir := t.TempDir()
	rec := DesignRecord{
		Name: "top",
		RTL: map[string]any{
			"top":     "top",
			"sources": []any{"missing.v"},
		},
	}
	_, err := BuildDesign(rec, dir)
	assert.Error(t, err)
}
