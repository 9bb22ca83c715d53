package element

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	testArea    = 1.e-4 // m²
	testYoungs  = 2.e11 // Pa
	testDensity = 7850. // kg/m³
)

func TestNewBar_Validation(t *testing.T) {
	origin := r3.Vec{}
	unitX := r3.Vec{X: 1}

	cases := []struct {
		name    string
		a, b    r3.Vec
		area    float64
		youngs  float64
		density float64
		wantErr error
	}{
		{"ZeroArea", origin, unitX, 0, testYoungs, 0, ErrNonPositiveArea},
		{"NegativeArea", origin, unitX, -1e-4, testYoungs, 0, ErrNonPositiveArea},
		{"NaNArea", origin, unitX, math.NaN(), testYoungs, 0, ErrNonPositiveArea},
		{"ZeroModulus", origin, unitX, testArea, 0, 0, ErrNonPositiveModulus},
		{"NegativeModulus", origin, unitX, testArea, -2e11, 0, ErrNonPositiveModulus},
		{"NegativeDensity", origin, unitX, testArea, testYoungs, -1, ErrNegativeDensity},
		{"CoincidentEndpoints", unitX, unitX, testArea, testYoungs, 0, ErrDegenerate},
		{"NearCoincident", origin, r3.Vec{X: 1e-14}, testArea, testYoungs, 0, ErrDegenerate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bar, err := NewBar(tc.a, tc.b, tc.area, tc.youngs, tc.density)
			require.ErrorIs(t, err, tc.wantErr)
			require.Nil(t, bar)
		})
	}

	t.Run("FarFromOrigin", func(t *testing.T) {
		// Same relative separation as NearCoincident, but the threshold
		// scales with the endpoint magnitudes
		a := r3.Vec{X: 1e9, Y: 1e9, Z: 1e9}
		b := r3.Vec{X: 1e9 + 1e-4, Y: 1e9, Z: 1e9}
		_, err := NewBar(a, b, testArea, testYoungs, 0)
		require.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestBar_Geometry(t *testing.T) {
	t.Run("AxisAligned", func(t *testing.T) {
		bar, err := NewBar(r3.Vec{}, r3.Vec{X: 2}, testArea, testYoungs, testDensity)
		require.NoError(t, err)

		assert.InDelta(t, 2.0, bar.Length(), 1e-15)
		assert.InDelta(t, 1.0, bar.Direction().X, 1e-15)
		assert.InDelta(t, 0.0, bar.Direction().Y, 1e-15)
		assert.InDelta(t, 0.0, bar.Direction().Z, 1e-15)
		assert.InDelta(t, 2.0*testArea*testDensity, bar.Weight(), 1e-12)
	})

	t.Run("Diagonal", func(t *testing.T) {
		bar, err := NewBar(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 2, Z: 2}, testArea, testYoungs, 0)
		require.NoError(t, err)

		sqrt3 := math.Sqrt(3)
		assert.InDelta(t, sqrt3, bar.Length(), 1e-14)
		for _, c := range []float64{bar.Direction().X, bar.Direction().Y, bar.Direction().Z} {
			assert.InDelta(t, 1/sqrt3, c, 1e-14)
		}
		assert.Zero(t, bar.Weight())
	})

	t.Run("DirectionSign", func(t *testing.T) {
		bar, err := NewBar(r3.Vec{X: 3}, r3.Vec{}, testArea, testYoungs, 0)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, bar.Direction().X, 1e-15)
	})
}

func TestBar_StiffnessBlock(t *testing.T) {
	t.Run("AxisAligned", func(t *testing.T) {
		// d = e_x, so the block is EA/L in the (x,x) slot and zero elsewhere
		L := 1.0
		bar, err := NewBar(r3.Vec{}, r3.Vec{X: L}, testArea, testYoungs, 0)
		require.NoError(t, err)

		k := bar.StiffnessBlock()
		EAoverL := testYoungs * testArea / L
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == 0 && j == 0 {
					want = EAoverL
				}
				assert.InDeltaf(t, want, k.At(i, j), 1e-6, "k[%d,%d]", i, j)
			}
		}
	})

	t.Run("Diagonal", func(t *testing.T) {
		// d = (1,1,1)/√3, so every entry is (EA/L)/3
		s := 2.0
		bar, err := NewBar(r3.Vec{}, r3.Vec{X: s, Y: s, Z: s}, testArea, testYoungs, 0)
		require.NoError(t, err)

		L := s * math.Sqrt(3)
		want := testYoungs * testArea / L / 3
		k := bar.StiffnessBlock()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDeltaf(t, want, k.At(i, j), want*1e-12, "k[%d,%d]", i, j)
			}
		}
	})

	t.Run("RankOne", func(t *testing.T) {
		// k has a single nonzero eigenvalue EA/L with eigenvector d:
		// k·d = (EA/L)·d, and k annihilates any direction normal to d
		bar, err := NewBar(r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 2}, testArea, testYoungs, 0)
		require.NoError(t, err)

		k := bar.StiffnessBlock()
		d := bar.Direction()
		c := testYoungs * testArea / bar.Length()

		kd := [3]float64{}
		dv := [3]float64{d.X, d.Y, d.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				kd[i] += k.At(i, j) * dv[j]
			}
		}
		for i := 0; i < 3; i++ {
			assert.InDeltaf(t, c*dv[i], kd[i], c*1e-12, "(k d)[%d]", i)
		}

		// normal to d: n = d × e_x is orthogonal to d (d not parallel to e_x here)
		n := r3.Cross(d, r3.Vec{X: 1})
		nv := [3]float64{n.X, n.Y, n.Z}
		for i := 0; i < 3; i++ {
			kn := 0.0
			for j := 0; j < 3; j++ {
				kn += k.At(i, j) * nv[j]
			}
			assert.InDeltaf(t, 0, kn, c*1e-12, "(k n)[%d]", i)
		}
	})
}

func TestBar_Recover(t *testing.T) {
	L := 2.0
	bar, err := NewBar(r3.Vec{}, r3.Vec{Z: L}, testArea, testYoungs, 0)
	require.NoError(t, err)

	t.Run("AxialStretch", func(t *testing.T) {
		delta := 1e-4
		ax := bar.Recover(r3.Vec{}, r3.Vec{Z: delta})
		assert.InEpsilon(t, delta/L, ax.Strain, 1e-12)
		assert.InEpsilon(t, testYoungs*delta/L, ax.Stress, 1e-12)
		assert.InEpsilon(t, testYoungs*testArea*delta/L, ax.Force, 1e-12)
	})

	t.Run("Compression", func(t *testing.T) {
		ax := bar.Recover(r3.Vec{}, r3.Vec{Z: -1e-4})
		assert.Negative(t, ax.Strain)
		assert.Negative(t, ax.Force)
	})

	t.Run("Transverse", func(t *testing.T) {
		ax := bar.Recover(r3.Vec{}, r3.Vec{X: 1e-4, Y: -2e-4})
		assert.Zero(t, ax.Strain)
		assert.Zero(t, ax.Force)
	})

	t.Run("RigidTranslation", func(t *testing.T) {
		tr := r3.Vec{X: 0.3, Y: -0.7, Z: 1.1}
		ax := bar.Recover(tr, tr)
		assert.InDelta(t, 0, ax.Strain, 1e-16)
	})
}

func TestBar_RecoverClosedForm(t *testing.T) {
	// δ = fL/(EA) for a unit-length bar under f = 1000 N gives
	// δ = 5e-5 m, σ = 1e7 Pa, axial force back to 1000 N
	f := 1000.0
	bar, err := NewBar(r3.Vec{}, r3.Vec{X: 1}, testArea, testYoungs, 0)
	require.NoError(t, err)

	delta := f * bar.Length() / (testYoungs * testArea)
	assert.InEpsilon(t, 5e-5, delta, 1e-12)

	ax := bar.Recover(r3.Vec{}, r3.Vec{X: delta})
	assert.InEpsilon(t, 1e7, ax.Stress, 1e-12)
	assert.InEpsilon(t, f, ax.Force, 1e-12)
}
