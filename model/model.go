// Package model reads truss definitions from JSON files and turns them
// into an assembled truss plus its load case. File handling is a harness
// concern; the core packages never touch the filesystem.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morhenderson/Truss-Me/truss"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is one joint position in meters.
type Node struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Element is one bar between two node indices.
type Element struct {
	A       int     `json:"a"`
	B       int     `json:"b"`
	Area    float64 `json:"area"`    // m²
	Youngs  float64 `json:"youngs"`  // Pa
	Density float64 `json:"density"` // kg/m³, optional
}

// Support fixes node DOFs per axis, true meaning fixed.
type Support struct {
	Node int     `json:"node"`
	Fix  [3]bool `json:"fix"` // x, y, z
}

// NodalLoad applies a force triplet at a node, in newtons.
type NodalLoad struct {
	Node  int        `json:"node"`
	Force [3]float64 `json:"force"`
}

// Model is the JSON schema of one analysis: geometry, supports and loads.
type Model struct {
	Name       string      `json:"name"`
	Nodes      []Node      `json:"nodes"`
	Elements   []Element   `json:"elements"`
	Supports   []Support   `json:"supports"`
	Loads      []NodalLoad `json:"loads"`
	SelfWeight bool        `json:"self_weight"`
	Gravity    [3]float64  `json:"gravity"` // defaults to (0,0,-9.81) with self_weight
}

// Load reads and validates a model file. An empty name defaults to the
// file's base name.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the cross-references the schema cannot express: every
// element, support and load must name a node inside the node list.
func (m *Model) Validate() error {
	if len(m.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	n := len(m.Nodes)
	for i, e := range m.Elements {
		if e.A < 0 || e.A >= n || e.B < 0 || e.B >= n {
			return fmt.Errorf("element %d references node pair (%d, %d) outside [0,%d)", i, e.A, e.B, n)
		}
	}
	for i, s := range m.Supports {
		if s.Node < 0 || s.Node >= n {
			return fmt.Errorf("support %d references node %d outside [0,%d)", i, s.Node, n)
		}
	}
	for i, l := range m.Loads {
		if l.Node < 0 || l.Node >= n {
			return fmt.Errorf("load %d references node %d outside [0,%d)", i, l.Node, n)
		}
	}
	return nil
}

// Build assembles the truss and composes the load case: supports, nodal
// loads, then self-weight when requested.
func (m *Model) Build(cfg truss.Config) (*truss.Truss, truss.LoadCase, error) {
	nodes := make([]r3.Vec, len(m.Nodes))
	for i, p := range m.Nodes {
		nodes[i] = r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	}
	conn := make([][2]int, len(m.Elements))
	areas := make([]float64, len(m.Elements))
	youngs := make([]float64, len(m.Elements))
	densities := make([]float64, len(m.Elements))
	for i, e := range m.Elements {
		conn[i] = [2]int{e.A, e.B}
		areas[i] = e.Area
		youngs[i] = e.Youngs
		densities[i] = e.Density
	}

	tr, err := truss.New(nodes, conn, areas, youngs, densities, cfg)
	if err != nil {
		return nil, truss.LoadCase{}, err
	}

	lc := truss.NewLoadCase(m.Name, len(nodes))
	for _, s := range m.Supports {
		for axis, fixed := range s.Fix {
			if fixed {
				lc.Fix(s.Node, axis)
			}
		}
	}
	for _, l := range m.Loads {
		lc.AddForce(l.Node, r3.Vec{X: l.Force[0], Y: l.Force[1], Z: l.Force[2]})
	}
	if m.SelfWeight {
		g := r3.Vec{X: m.Gravity[0], Y: m.Gravity[1], Z: m.Gravity[2]}
		if g == (r3.Vec{}) {
			g = r3.Vec{Z: -9.81}
		}
		lc.AddForces(tr.SelfWeight(g))
	}
	return tr, lc, nil
}
