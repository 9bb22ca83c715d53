// Package export flattens solved truss state into the plain data views
// consumed by rendering and reporting collaborators. It carries no solver
// logic; everything here is a read-only projection of a Truss and a
// Solution.
package export

import (
	"fmt"

	"github.com/morhenderson/Truss-Me/truss"
	"github.com/morhenderson/Truss-Me/utils"
	"gonum.org/v1/gonum/spatial/r3"
)

// StructureView is the undeformed geometry: ordered node positions and
// ordered element endpoint-index pairs.
type StructureView struct {
	Nodes    []r3.Vec
	Elements [][2]int
}

// DeformedView is the displaced geometry p_i + magnify·u_i together with
// the raw displacement vector that produced it.
type DeformedView struct {
	StructureView
	Displacements []float64 // full DOF vector
	Magnify       float64
}

// StressView is the per-element loading intensity for color mapping.
type StressView struct {
	Stresses []float64 // σ per element, tension positive
	Forces   []float64 // σ·A per element
	Min, Max float64   // stress range, both zero for an empty model
}

// Structure builds the undeformed geometry view.
func Structure(t *truss.Truss) StructureView {
	return StructureView{
		Nodes:    t.Nodes(),
		Elements: t.Conn(),
	}
}

// Deformed builds the displaced geometry view at a magnification factor.
// The solution must belong to the given truss.
func Deformed(t *truss.Truss, sol *truss.Solution, magnify float64) (DeformedView, error) {
	if len(sol.Displacements) != t.NumDOF() {
		return DeformedView{}, fmt.Errorf("solution has %d DOFs for a %d DOF model",
			len(sol.Displacements), t.NumDOF())
	}
	v := DeformedView{
		StructureView: Structure(t),
		Displacements: append([]float64(nil), sol.Displacements...),
		Magnify:       magnify,
	}
	for i := range v.Nodes {
		v.Nodes[i] = r3.Add(v.Nodes[i], r3.Scale(magnify, utils.NodeVec(sol.Displacements, i)))
	}
	return v, nil
}

// Stress builds the per-element stress view with its color-map range.
func Stress(t *truss.Truss, sol *truss.Solution) (StressView, error) {
	if len(sol.Axials) != t.NumElements() {
		return StressView{}, fmt.Errorf("solution has %d element results for %d elements",
			len(sol.Axials), t.NumElements())
	}
	v := StressView{
		Stresses: make([]float64, len(sol.Axials)),
		Forces:   make([]float64, len(sol.Axials)),
	}
	for i, ax := range sol.Axials {
		v.Stresses[i] = ax.Stress
		v.Forces[i] = ax.Force
		if i == 0 || ax.Stress < v.Min {
			v.Min = ax.Stress
		}
		if i == 0 || ax.Stress > v.Max {
			v.Max = ax.Stress
		}
	}
	return v, nil
}
