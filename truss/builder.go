package truss

import "gonum.org/v1/gonum/spatial/r3"

// Builder accumulates a model programmatically before assembly. Node and
// Bar return the index just added so connectivity can be wired while the
// geometry is laid down.
type Builder struct {
	nodes     []r3.Vec
	conn      [][2]int
	areas     []float64
	youngs    []float64
	densities []float64
	cfg       Config
}

// NewBuilder returns an empty model builder.
func NewBuilder() *Builder { return &Builder{} }

// Configure sets assembly and solve options for the built truss.
func (b *Builder) Configure(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Node appends a node position and returns its index.
func (b *Builder) Node(x, y, z float64) int {
	b.nodes = append(b.nodes, r3.Vec{X: x, Y: y, Z: z})
	return len(b.nodes) - 1
}

// Bar appends an element between two node indices and returns its element
// index. Validation happens at Build.
func (b *Builder) Bar(from, to int, area, youngs, density float64) int {
	b.conn = append(b.conn, [2]int{from, to})
	b.areas = append(b.areas, area)
	b.youngs = append(b.youngs, youngs)
	b.densities = append(b.densities, density)
	return len(b.conn) - 1
}

// Build validates and assembles the accumulated model.
func (b *Builder) Build() (*Truss, error) {
	return New(b.nodes, b.conn, b.areas, b.youngs, b.densities, b.cfg)
}
