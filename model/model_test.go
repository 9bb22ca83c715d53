package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/morhenderson/Truss-Me/truss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoBarModel = `{
	"name": "two-bar",
	"nodes": [
		{"x": 0, "y": 0, "z": 0},
		{"x": 1, "y": 0, "z": 0},
		{"x": 2, "y": 0, "z": 0}
	],
	"elements": [
		{"a": 0, "b": 1, "area": 1e-4, "youngs": 2e11},
		{"a": 1, "b": 2, "area": 1e-4, "youngs": 2e11}
	],
	"supports": [
		{"node": 0, "fix": [true, true, true]},
		{"node": 1, "fix": [false, true, true]},
		{"node": 2, "fix": [false, true, true]}
	],
	"loads": [
		{"node": 2, "force": [1000, 0, 0]}
	]
}`

func writeModel(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeModel(t, "two_bar.json", twoBarModel))
	require.NoError(t, err)

	assert.Equal(t, "two-bar", m.Name)
	assert.Len(t, m.Nodes, 3)
	assert.Len(t, m.Elements, 2)
	assert.Len(t, m.Supports, 3)
	assert.Len(t, m.Loads, 1)
	assert.Equal(t, [3]bool{false, true, true}, m.Supports[1].Fix)
}

func TestLoad_NameDefaultsToFile(t *testing.T) {
	body := `{
		"nodes": [{"x": 0, "y": 0, "z": 0}, {"x": 1, "y": 0, "z": 0}],
		"elements": [{"a": 0, "b": 1, "area": 1e-4, "youngs": 2e11}]
	}`
	m, err := Load(writeModel(t, "cantilever.json", body))
	require.NoError(t, err)
	assert.Equal(t, "cantilever", m.Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
	t.Run("BadJSON", func(t *testing.T) {
		_, err := Load(writeModel(t, "broken.json", `{"nodes": [`))
		assert.ErrorContains(t, err, "parse model")
	})
	t.Run("NoNodes", func(t *testing.T) {
		_, err := Load(writeModel(t, "empty.json", `{"nodes": []}`))
		assert.ErrorContains(t, err, "no nodes")
	})
}

func TestValidate_References(t *testing.T) {
	base := Model{
		Nodes:    []Node{{}, {X: 1}},
		Elements: []Element{{A: 0, B: 1, Area: 1e-4, Youngs: 2e11}},
	}

	t.Run("ElementOutOfRange", func(t *testing.T) {
		m := base
		m.Elements = []Element{{A: 0, B: 2, Area: 1e-4, Youngs: 2e11}}
		assert.ErrorContains(t, m.Validate(), "element 0")
	})
	t.Run("SupportOutOfRange", func(t *testing.T) {
		m := base
		m.Supports = []Support{{Node: -1, Fix: [3]bool{true, true, true}}}
		assert.ErrorContains(t, m.Validate(), "support 0")
	})
	t.Run("LoadOutOfRange", func(t *testing.T) {
		m := base
		m.Loads = []NodalLoad{{Node: 5}}
		assert.ErrorContains(t, m.Validate(), "load 0")
		m.Loads = []NodalLoad{{Node: 1}, {Node: 5}}
		assert.ErrorContains(t, m.Validate(), "load 1")
	})
}

func TestBuild_SolvesEndToEnd(t *testing.T) {
	m, err := Load(writeModel(t, "two_bar.json", twoBarModel))
	require.NoError(t, err)

	tr, lc, err := m.Build(truss.Config{})
	require.NoError(t, err)
	assert.Equal(t, 3, tr.NumNodes())
	assert.Equal(t, 2, tr.NumElements())
	assert.Equal(t, "two-bar", lc.Name)

	sol, err := tr.Solve(lc)
	require.NoError(t, err)

	// Two bars in series: each stretches FL/EA = 5e-5 m.
	assert.InDelta(t, 5.e-5, sol.Displacement(1).X, 1.e-12)
	assert.InDelta(t, 1.e-4, sol.Displacement(2).X, 1.e-12)
	assert.InDelta(t, -1000., sol.Reaction(0).X, 1.e-8)
	for _, ax := range sol.Axials {
		assert.InDelta(t, 1.e7, ax.Stress, 1.e-4)
	}
}

func TestBuild_BadElementPropagates(t *testing.T) {
	m := Model{
		Nodes:    []Node{{}, {X: 1}},
		Elements: []Element{{A: 0, B: 1, Area: -1, Youngs: 2e11}},
	}
	require.NoError(t, m.Validate())
	_, _, err := m.Build(truss.Config{})
	assert.ErrorContains(t, err, "element 0")
}

func TestBuild_SelfWeight(t *testing.T) {
	m := Model{
		Name: "hanging",
		Nodes: []Node{
			{},
			{Z: -2},
		},
		Elements:   []Element{{A: 0, B: 1, Area: 1e-4, Youngs: 2e11, Density: 7850}},
		Supports:   []Support{{Node: 0, Fix: [3]bool{true, true, true}}, {Node: 1, Fix: [3]bool{true, true, false}}},
		SelfWeight: true,
	}
	require.NoError(t, m.Validate())

	tr, lc, err := m.Build(truss.Config{})
	require.NoError(t, err)

	// Default gravity points down z; half the bar weight lands per node.
	half := 0.5 * tr.Weight() * 9.81
	assert.InDelta(t, -half, lc.Forces[5], 1.e-10)
	assert.InDelta(t, -half, lc.Forces[2], 1.e-10)

	sol, err := tr.Solve(lc)
	require.NoError(t, err)
	assert.InDelta(t, tr.Weight()*9.81, sol.Reaction(0).Z, 1.e-8)
}

func TestBuild_GravityOverride(t *testing.T) {
	m := Model{
		Name:       "sideways",
		Nodes:      []Node{{}, {X: 1}},
		Elements:   []Element{{A: 0, B: 1, Area: 1e-4, Youngs: 2e11, Density: 7850}},
		SelfWeight: true,
		Gravity:    [3]float64{-9.81, 0, 0},
	}
	tr, lc, err := m.Build(truss.Config{})
	require.NoError(t, err)

	half := 0.5 * tr.Weight() * 9.81
	assert.InDelta(t, -half, lc.Forces[0], 1.e-10)
	assert.InDelta(t, 0., lc.Forces[2], 1.e-12)
}
