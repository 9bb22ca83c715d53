// Package truss assembles pin-jointed 3D truss models and solves them for
// static equilibrium by the direct stiffness method.
package truss

import (
	"fmt"
	"strings"

	"github.com/morhenderson/Truss-Me/element"
	"github.com/morhenderson/Truss-Me/utils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds assembly and solve options. The zero value is usable; zero
// fields take the defaults below.
type Config struct {
	// Workers splits assembly into contiguous element chunks with private
	// accumulators. Values <= 1 assemble sequentially.
	Workers int

	// CondLimit is the condition estimate of the reduced system above which
	// a solve records an ill-conditioning warning. Default 1e12.
	CondLimit float64

	// EquilibriumTol is the relative tolerance on the global equilibrium
	// residual before a solve records a warning. Default 1e-8.
	EquilibriumTol float64
}

const (
	defaultCondLimit      = 1.e12
	defaultEquilibriumTol = 1.e-8
)

func (c Config) withDefaults() Config {
	if c.CondLimit <= 0 {
		c.CondLimit = defaultCondLimit
	}
	if c.EquilibriumTol <= 0 {
		c.EquilibriumTol = defaultEquilibriumTol
	}
	return c
}

// Truss is an assembled model: node positions, bar elements and the global
// stiffness matrix, built once and reused across load cases. A Truss is
// immutable after construction; Solve never modifies it beyond recording
// the latest Solution.
type Truss struct {
	nodes []r3.Vec
	conn  [][2]int
	bars  []*element.Bar

	cfg Config

	k *mat.SymDense // global stiffness, DOFPerNode*len(nodes) square

	last *Solution // latest successful solve, nil before the first
}

// New validates the model definition, constructs every bar and assembles
// the global stiffness. areas, youngs and densities run parallel to conn;
// densities may be nil when self-weight is unused. Element construction
// failures are returned with the element index attached.
func New(nodes []r3.Vec, conn [][2]int, areas, youngs, densities []float64, cfg Config) (*Truss, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrModelSize)
	}
	if len(areas) != len(conn) || len(youngs) != len(conn) {
		return nil, fmt.Errorf("%w: %d elements but %d areas, %d moduli",
			ErrModelSize, len(conn), len(areas), len(youngs))
	}
	if densities != nil && len(densities) != len(conn) {
		return nil, fmt.Errorf("%w: %d elements but %d densities", ErrModelSize, len(conn), len(densities))
	}

	t := &Truss{
		nodes: append([]r3.Vec(nil), nodes...),
		conn:  make([][2]int, len(conn)),
		bars:  make([]*element.Bar, len(conn)),
		cfg:   cfg.withDefaults(),
	}
	for i, c := range conn {
		a, b := c[0], c[1]
		if a < 0 || a >= len(nodes) || b < 0 || b >= len(nodes) {
			return nil, fmt.Errorf("%w: element %d references node pair (%d, %d) outside [0,%d)",
				ErrNodeIndex, i, a, b, len(nodes))
		}
		if a == b {
			return nil, fmt.Errorf("%w: element %d connects node %d to itself", ErrNodeIndex, i, a)
		}
		density := 0.0
		if densities != nil {
			density = densities[i]
		}
		bar, err := element.NewBar(nodes[a], nodes[b], areas[i], youngs[i], density)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		t.conn[i] = [2]int{a, b}
		t.bars[i] = bar
	}

	t.k = assemble(len(t.nodes), t.conn, t.bars, t.cfg.Workers)
	return t, nil
}

// NumNodes returns the node count.
func (t *Truss) NumNodes() int { return len(t.nodes) }

// NumElements returns the bar count.
func (t *Truss) NumElements() int { return len(t.bars) }

// NumDOF returns the global DOF count.
func (t *Truss) NumDOF() int { return utils.NumDOF(len(t.nodes)) }

// Node returns the position of one node.
func (t *Truss) Node(i int) r3.Vec { return t.nodes[i] }

// Nodes returns a copy of the node positions in index order.
func (t *Truss) Nodes() []r3.Vec { return append([]r3.Vec(nil), t.nodes...) }

// Conn returns a copy of the element connectivity in index order.
func (t *Truss) Conn() [][2]int { return append([][2]int(nil), t.conn...) }

// Bar returns one element.
func (t *Truss) Bar(i int) *element.Bar { return t.bars[i] }

// Stiffness returns the assembled global matrix. The returned matrix is
// shared, not a copy.
func (t *Truss) Stiffness() *mat.SymDense { return t.k }

// Solution returns the latest successful solve, or ErrNotSolved before one.
func (t *Truss) Solution() (*Solution, error) {
	if t.last == nil {
		return nil, ErrNotSolved
	}
	return t.last, nil
}

// Weight returns the total of L·A·ρ over all bars.
func (t *Truss) Weight() float64 {
	var w float64
	for _, bar := range t.bars {
		w += bar.Weight()
	}
	return w
}

// SelfWeight builds the nodal load vector of the structure's own weight
// under the acceleration g, lumping half of each bar's L·A·ρ at each
// endpoint.
func (t *Truss) SelfWeight(g r3.Vec) []float64 {
	loads := make([]float64, t.NumDOF())
	for i, bar := range t.bars {
		f := r3.Scale(0.5*bar.Weight(), g)
		for _, n := range t.conn[i] {
			utils.SetNodeVec(loads, n, r3.Add(utils.NodeVec(loads, n), f))
		}
	}
	return loads
}

// String returns a summary of the assembled model.
func (t *Truss) String() string {
	var sb strings.Builder

	sb.WriteString("=== Truss Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Nodes: %d\n", t.NumNodes()))
	sb.WriteString(fmt.Sprintf("  Elements: %d\n", t.NumElements()))
	sb.WriteString(fmt.Sprintf("  Degrees of freedom: %d\n", t.NumDOF()))
	sb.WriteString(fmt.Sprintf("  Weight (L·A·ρ total): %.6g\n", t.Weight()))

	if t.k != nil {
		r, c := t.k.Dims()
		sb.WriteString(fmt.Sprintf("  Stiffness matrix: %d×%d\n", r, c))
	}
	if t.last != nil {
		sb.WriteString(fmt.Sprintf("  Last solve: %d displacements, condition estimate %.3e\n",
			len(t.last.Displacements), t.last.Diagnostics.Cond))
	} else {
		sb.WriteString("  Last solve: none\n")
	}
	return sb.String()
}
