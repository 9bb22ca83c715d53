package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DOFPerNode is the number of translational degrees of freedom per node.
const DOFPerNode = 3

// Axis indices within a node's DOF triplet.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// DOFIndex maps (node, axis) to the flat index in a global DOF vector.
// The ordering is [x0, y0, z0, x1, y1, z1, ...].
func DOFIndex(node, axis int) int {
	return node*DOFPerNode + axis
}

// NodeAxis is the inverse of DOFIndex.
func NodeAxis(dof int) (node, axis int) {
	return dof / DOFPerNode, dof % DOFPerNode
}

// NumDOF returns the global DOF count for a node count.
func NumDOF(numNodes int) int {
	return numNodes * DOFPerNode
}

// NodeVec reads the displacement triplet of one node from a full DOF vector.
func NodeVec(full []float64, node int) r3.Vec {
	i := DOFIndex(node, AxisX)
	return r3.Vec{X: full[i], Y: full[i+1], Z: full[i+2]}
}

// SetNodeVec writes the triplet of one node into a full DOF vector.
func SetNodeVec(full []float64, node int, v r3.Vec) {
	i := DOFIndex(node, AxisX)
	full[i] = v.X
	full[i+1] = v.Y
	full[i+2] = v.Z
}

// DOFMap partitions the flat DOF range of a model into free and fixed sets
// and carries the gather/scatter indices between full and reduced vectors.
type DOFMap struct {
	NumNodes int

	// Partitioned index sets, each ascending in global DOF order
	Free  []int // global indices of free DOFs
	Fixed []int // global indices of fixed DOFs

	toFree []int // global index → position in Free, -1 when fixed
}

// NewDOFMap builds the partition from a per-DOF mask, true meaning free.
// The mask length must be DOFPerNode*numNodes.
func NewDOFMap(numNodes int, free []bool) (*DOFMap, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("invalid node count %d", numNodes)
	}
	n := NumDOF(numNodes)
	if len(free) != n {
		return nil, fmt.Errorf("free mask length %d does not match %d DOFs for %d nodes", len(free), n, numNodes)
	}

	m := &DOFMap{
		NumNodes: numNodes,
		toFree:   make([]int, n),
	}
	for i, f := range free {
		if f {
			m.toFree[i] = len(m.Free)
			m.Free = append(m.Free, i)
		} else {
			m.toFree[i] = -1
			m.Fixed = append(m.Fixed, i)
		}
	}
	return m, nil
}

// NumDOF returns the full DOF count.
func (m *DOFMap) NumDOF() int { return NumDOF(m.NumNodes) }

// NumFree returns the size of the free set.
func (m *DOFMap) NumFree() int { return len(m.Free) }

// NumFixed returns the size of the fixed set.
func (m *DOFMap) NumFixed() int { return len(m.Fixed) }

// IsFree reports whether a global DOF index is in the free set.
func (m *DOFMap) IsFree(dof int) bool {
	return m.toFree[dof] >= 0
}

// GatherFree picks the free entries of a full vector into a reduced vector.
func (m *DOFMap) GatherFree(full []float64) []float64 {
	out := make([]float64, len(m.Free))
	for i, g := range m.Free {
		out[i] = full[g]
	}
	return out
}

// GatherFixed picks the fixed entries of a full vector.
func (m *DOFMap) GatherFixed(full []float64) []float64 {
	out := make([]float64, len(m.Fixed))
	for i, g := range m.Fixed {
		out[i] = full[g]
	}
	return out
}

// ScatterFree places a reduced vector back into the free slots of a full
// vector, leaving fixed slots untouched.
func (m *DOFMap) ScatterFree(reduced, full []float64) error {
	if len(reduced) != len(m.Free) {
		return fmt.Errorf("reduced length %d does not match %d free DOFs", len(reduced), len(m.Free))
	}
	if len(full) != m.NumDOF() {
		return fmt.Errorf("full length %d does not match %d DOFs", len(full), m.NumDOF())
	}
	for i, g := range m.Free {
		full[g] = reduced[i]
	}
	return nil
}

// RestrictSym extracts the free-free block of a symmetric matrix.
func (m *DOFMap) RestrictSym(K *mat.SymDense) *mat.SymDense {
	nf := len(m.Free)
	out := mat.NewSymDense(nf, nil)
	for i := 0; i < nf; i++ {
		for j := i; j < nf; j++ {
			out.SetSym(i, j, K.At(m.Free[i], m.Free[j]))
		}
	}
	return out
}

// Verify checks partition consistency: the free and fixed sets must be
// disjoint, ascending, and together cover every DOF exactly once.
func (m *DOFMap) Verify() error {
	n := m.NumDOF()
	if len(m.Free)+len(m.Fixed) != n {
		return fmt.Errorf("partition size mismatch: %d free + %d fixed != %d DOFs",
			len(m.Free), len(m.Fixed), n)
	}

	seen := make([]bool, n)
	for i, g := range m.Free {
		if g < 0 || g >= n {
			return fmt.Errorf("free index %d out of range [0,%d)", g, n)
		}
		if seen[g] {
			return fmt.Errorf("DOF %d appears twice in partition", g)
		}
		seen[g] = true
		if i > 0 && m.Free[i-1] >= g {
			return fmt.Errorf("free set not ascending at position %d", i)
		}
		if m.toFree[g] != i {
			return fmt.Errorf("reverse map for DOF %d is %d, want %d", g, m.toFree[g], i)
		}
	}
	for i, g := range m.Fixed {
		if g < 0 || g >= n {
			return fmt.Errorf("fixed index %d out of range [0,%d)", g, n)
		}
		if seen[g] {
			return fmt.Errorf("DOF %d appears twice in partition", g)
		}
		seen[g] = true
		if i > 0 && m.Fixed[i-1] >= g {
			return fmt.Errorf("fixed set not ascending at position %d", i)
		}
		if m.toFree[g] != -1 {
			return fmt.Errorf("reverse map for fixed DOF %d is %d, want -1", g, m.toFree[g])
		}
	}
	return nil
}
