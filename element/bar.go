// Package element provides the axial bar element of a pin-jointed truss.
package element

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeomTol is the relative tolerance below which a bar length is treated as
// zero. The absolute threshold scales with the endpoint magnitudes so models
// far from the origin are judged consistently.
const GeomTol = 1.e-12

// Bar is a two-node axial element. It carries loads only along its own axis
// and contributes a rank-1 stiffness block to the global system.
type Bar struct {
	// Endpoint positions in the global frame, set at construction
	A, B r3.Vec

	// Section and material properties
	Area    float64 // cross-sectional area
	Youngs  float64 // Young's modulus
	Density float64 // mass density, used only for weight and self-weight loads

	// Cached geometry
	length float64 // |B-A|
	dir    r3.Vec  // unit vector from A to B

	k *mat.SymDense // 3×3 stiffness block (EA/L)·(d dᵀ)
}

// Axial is the recovered axial state of a bar under one displacement field.
// Tension is positive.
type Axial struct {
	Strain float64
	Stress float64
	Force  float64
}

// NewBar validates the geometry and properties, caches the unit direction
// and builds the 3×3 stiffness block. It never produces NaN or Inf entries:
// coincident endpoints and non-physical properties fail construction.
func NewBar(a, b r3.Vec, area, youngs, density float64) (*Bar, error) {
	if !(area > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveArea, area)
	}
	if !(youngs > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveModulus, youngs)
	}
	if !(density >= 0) {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeDensity, density)
	}

	span := r3.Sub(b, a)
	length := r3.Norm(span)
	scale := r3.Norm(a)
	if s := r3.Norm(b); s > scale {
		scale = s
	}
	if length <= GeomTol*(1+scale) {
		return nil, fmt.Errorf("%w: endpoints (%v, %v, %v) and (%v, %v, %v)",
			ErrDegenerate, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}

	bar := &Bar{
		A:       a,
		B:       b,
		Area:    area,
		Youngs:  youngs,
		Density: density,
		length:  length,
		dir:     r3.Scale(1/length, span),
	}

	// k = (EA/L) d dᵀ, symmetric positive semidefinite with rank 1
	c := youngs * area / length
	d := [3]float64{bar.dir.X, bar.dir.Y, bar.dir.Z}
	bar.k = mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			bar.k.SetSym(i, j, c*d[i]*d[j])
		}
	}
	return bar, nil
}

// Length returns the bar length |B-A|.
func (b *Bar) Length() float64 { return b.length }

// Direction returns the unit vector from A to B.
func (b *Bar) Direction() r3.Vec { return b.dir }

// Weight returns L·A·ρ.
func (b *Bar) Weight() float64 { return b.length * b.Area * b.Density }

// StiffnessBlock returns the 3×3 block k. The global 6×6 contribution of the
// bar follows the pattern [[k, -k], [-k, k]] over its two node blocks; the
// assembly owns the signs. The returned matrix is shared, not a copy.
func (b *Bar) StiffnessBlock() *mat.SymDense { return b.k }

// Recover computes axial strain, stress and force from the endpoint
// displacements. Rigid-body motion and displacement normal to the axis
// recover to zero.
func (b *Bar) Recover(ua, ub r3.Vec) Axial {
	strain := r3.Dot(b.dir, r3.Sub(ub, ua)) / b.length
	stress := b.Youngs * strain
	return Axial{
		Strain: strain,
		Stress: stress,
		Force:  stress * b.Area,
	}
}
