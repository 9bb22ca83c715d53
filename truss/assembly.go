package truss

import (
	"sync"

	"github.com/morhenderson/Truss-Me/element"
	"github.com/morhenderson/Truss-Me/utils"
	"gonum.org/v1/gonum/mat"
)

// assemble builds the global stiffness by scatter-adding each bar's blocks
// over its node pair. With workers > 1 the element range is cut into
// contiguous chunks, each accumulated into a private matrix and merged in a
// single reduction pass; the result matches sequential assembly up to
// floating-point reassociation.
func assemble(numNodes int, conn [][2]int, bars []*element.Bar, workers int) *mat.SymDense {
	n := utils.NumDOF(numNodes)
	if workers > len(bars) {
		workers = len(bars)
	}
	if workers <= 1 {
		K := mat.NewSymDense(n, nil)
		for i, bar := range bars {
			scatterAdd(K, conn[i][0], conn[i][1], bar.StiffnessBlock())
		}
		return K
	}

	// Contiguous block partition of the element range
	chunk := (len(bars) + workers - 1) / workers
	partials := make([]*mat.SymDense, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(bars) {
			hi = len(bars)
		}
		partials[w] = mat.NewSymDense(n, nil)
		wg.Add(1)
		go func(K *mat.SymDense, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scatterAdd(K, conn[i][0], conn[i][1], bars[i].StiffnessBlock())
			}
		}(partials[w], lo, hi)
	}
	wg.Wait()

	// Merge in worker order so repeated assembly of the same model is
	// deterministic
	K := partials[0]
	for w := 1; w < workers; w++ {
		K.AddSym(K, partials[w])
	}
	return K
}

// scatterAdd accumulates one bar block k into K following the global
// [[k, -k], [-k, k]] pattern over the node blocks (a,a), (a,b), (b,a) and
// (b,b). Only the upper triangle is written; symmetry supplies the rest.
func scatterAdd(K *mat.SymDense, a, b int, k *mat.SymDense) {
	if a > b {
		// k depends on the direction only through d dᵀ, so swapping the
		// endpoints leaves every block unchanged
		a, b = b, a
	}
	ga := utils.DOFIndex(a, utils.AxisX)
	gb := utils.DOFIndex(b, utils.AxisX)
	for i := 0; i < utils.DOFPerNode; i++ {
		for j := 0; j < utils.DOFPerNode; j++ {
			v := k.At(i, j)
			if j >= i {
				K.SetSym(ga+i, ga+j, K.At(ga+i, ga+j)+v)
				K.SetSym(gb+i, gb+j, K.At(gb+i, gb+j)+v)
			}
			// a < b puts the whole (a,b) block in the upper triangle
			K.SetSym(ga+i, gb+j, K.At(ga+i, gb+j)-v)
		}
	}
}
