package mfcc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// dctBasis returns the [n x k] orthonormal DCT-II basis so that
// x (1 x n) * basis yields the first k coefficients.
func dctBasis(n, k int) *mat.Dense {
	basis := mat.NewDense(n, k, nil)
	w0 := math.Sqrt(1 / float64(n))
	wk := math.Sqrt(2 / float64(n))
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			w := wk
			if j == 0 {
				w = w0
			}
			basis.Set(i, j, w*math.Cos(math.Pi*float64(j)*(2*float64(i)+1)/(2*float64(n))))
		}
	}
	return basis
}
