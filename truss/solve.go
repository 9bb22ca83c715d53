package truss

import (
	"errors"
	"fmt"
	"math"

	"github.com/morhenderson/Truss-Me/element"
	"github.com/morhenderson/Truss-Me/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadCase pairs a support mask with an applied nodal force vector. Both
// run over the full DOF range in [x0, y0, z0, x1, ...] order. Fixed DOFs
// are held at zero displacement; forces applied there never influence the
// solve and are absorbed by the reactions.
type LoadCase struct {
	Name   string
	Free   []bool    // true = free, false = fixed
	Forces []float64 // applied nodal forces
}

// NewLoadCase returns an all-free, zero-force case for a node count.
func NewLoadCase(name string, numNodes int) LoadCase {
	n := utils.NumDOF(numNodes)
	free := make([]bool, n)
	for i := range free {
		free[i] = true
	}
	return LoadCase{Name: name, Free: free, Forces: make([]float64, n)}
}

// FixNode fixes all three DOFs of a node.
func (lc *LoadCase) FixNode(node int) {
	for axis := 0; axis < utils.DOFPerNode; axis++ {
		lc.Free[utils.DOFIndex(node, axis)] = false
	}
}

// Fix fixes a single DOF of a node.
func (lc *LoadCase) Fix(node, axis int) {
	lc.Free[utils.DOFIndex(node, axis)] = false
}

// SetForce replaces the force triplet applied at a node.
func (lc *LoadCase) SetForce(node int, f r3.Vec) {
	utils.SetNodeVec(lc.Forces, node, f)
}

// AddForce accumulates a force triplet at a node.
func (lc *LoadCase) AddForce(node int, f r3.Vec) {
	utils.SetNodeVec(lc.Forces, node, r3.Add(utils.NodeVec(lc.Forces, node), f))
}

// AddForces accumulates a full DOF force vector, e.g. a self-weight load.
func (lc *LoadCase) AddForces(forces []float64) {
	floats.Add(lc.Forces, forces)
}

// Diagnostics carries the non-fatal numerical quality measures of a solve.
type Diagnostics struct {
	Cond        float64  // condition estimate of the reduced system
	Residual    float64  // max out-of-balance |K·u − f| over free DOFs
	Equilibrium float64  // max per-axis resultant of forces plus reactions
	Warnings    []string // empty when clean
}

// Solution holds the complete result of one load case against an assembled
// truss. Displacements are zero at fixed DOFs, reactions zero at free DOFs.
type Solution struct {
	Case          LoadCase
	Displacements []float64
	Reactions     []float64
	Axials        []element.Axial // per element, index-parallel to the model
	Diagnostics   Diagnostics
}

// Displacement returns the displacement triplet of one node.
func (s *Solution) Displacement(node int) r3.Vec {
	return utils.NodeVec(s.Displacements, node)
}

// Reaction returns the reaction triplet of one node.
func (s *Solution) Reaction(node int) r3.Vec {
	return utils.NodeVec(s.Reactions, node)
}

// Solve runs one load case against the assembled stiffness:
// partition the DOFs, reduce to the free set, factorize, back-substitute,
// then recover reactions and per-element axial results. A singular reduced
// system returns a MechanismError and leaves any previous Solution in
// place; ill-conditioning and equilibrium residuals are recorded as
// warnings, not failures.
func (t *Truss) Solve(lc LoadCase) (*Solution, error) {
	n := t.NumDOF()
	if len(lc.Free) != n {
		return nil, fmt.Errorf("%w: free mask has %d entries for %d DOFs", ErrLoadSize, len(lc.Free), n)
	}
	if len(lc.Forces) != n {
		return nil, fmt.Errorf("%w: force vector has %d entries for %d DOFs", ErrLoadSize, len(lc.Forces), n)
	}
	m, err := utils.NewDOFMap(t.NumNodes(), lc.Free)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadSize, err)
	}

	u := make([]float64, n)
	diag := Diagnostics{Cond: 1}

	if m.NumFree() > 0 {
		Kff := m.RestrictSym(t.k)
		var chol mat.Cholesky
		if !chol.Factorize(Kff) {
			return nil, &MechanismError{FreeDOFs: append([]int(nil), m.Free...)}
		}
		diag.Cond = chol.Cond()

		ff := m.GatherFree(lc.Forces)
		var reduced mat.VecDense
		if err := chol.SolveVecTo(&reduced, mat.NewVecDense(len(ff), ff)); err != nil {
			// gonum reports extreme conditioning through a typed error but
			// still produces the solution; anything else is singular
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return nil, &MechanismError{FreeDOFs: append([]int(nil), m.Free...)}
			}
		}
		red := make([]float64, m.NumFree())
		for i := range red {
			red[i] = reduced.AtVec(i)
		}
		if err := m.ScatterFree(red, u); err != nil {
			return nil, err
		}
	}

	// r_X = (K·u)|_X − f_X, so a force applied at a fixed DOF shows up in
	// that DOF's reaction and the per-axis resultant of f+r still vanishes
	var Ku mat.VecDense
	Ku.MulVec(t.k, mat.NewVecDense(n, u))
	reactions := make([]float64, n)
	for _, g := range m.Fixed {
		reactions[g] = Ku.AtVec(g) - lc.Forces[g]
	}

	for _, g := range m.Free {
		if r := math.Abs(Ku.AtVec(g) - lc.Forces[g]); r > diag.Residual {
			diag.Residual = r
		}
	}
	for axis := 0; axis < utils.DOFPerNode; axis++ {
		var sum float64
		for node := 0; node < t.NumNodes(); node++ {
			g := utils.DOFIndex(node, axis)
			sum += lc.Forces[g] + reactions[g]
		}
		if s := math.Abs(sum); s > diag.Equilibrium {
			diag.Equilibrium = s
		}
	}

	fscale := 1 + floats.Norm(lc.Forces, math.Inf(1))
	if diag.Cond > t.cfg.CondLimit {
		diag.Warnings = append(diag.Warnings,
			fmt.Sprintf("condition estimate %.3e exceeds limit %.1e", diag.Cond, t.cfg.CondLimit))
	}
	if diag.Residual > t.cfg.EquilibriumTol*fscale {
		diag.Warnings = append(diag.Warnings,
			fmt.Sprintf("solve residual %.3e exceeds tolerance %.3e", diag.Residual, t.cfg.EquilibriumTol*fscale))
	}
	if diag.Equilibrium > t.cfg.EquilibriumTol*fscale {
		diag.Warnings = append(diag.Warnings,
			fmt.Sprintf("equilibrium residual %.3e exceeds tolerance %.3e", diag.Equilibrium, t.cfg.EquilibriumTol*fscale))
	}

	axials := make([]element.Axial, len(t.bars))
	for i, bar := range t.bars {
		axials[i] = bar.Recover(utils.NodeVec(u, t.conn[i][0]), utils.NodeVec(u, t.conn[i][1]))
	}

	// The recorded case owns its slices, detached from the caller's
	rec := lc
	rec.Free = append([]bool(nil), lc.Free...)
	rec.Forces = append([]float64(nil), lc.Forces...)
	sol := &Solution{
		Case:          rec,
		Displacements: u,
		Reactions:     reactions,
		Axials:        axials,
		Diagnostics:   diag,
	}
	t.last = sol
	return sol, nil
}
