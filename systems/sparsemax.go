// Package systems implements the behavioral and physiological kernels of the
// simulation: sparsemax behavior selection, Holling Type II foraging,
// Newtonian thermal exchange, and SMR bioenergetics.
package systems

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Sparsemax projects a utility vector onto the probability simplex.
// Unlike softmax it assigns exactly zero probability to sufficiently weak
// utilities. The result is renormalized so it sums to 1; when no support
// exists (all utilities equal or the projection degenerates) the result is
// uniform.
func Sparsemax(z []float64) []float64 {
	n := len(z)
	if n == 0 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, z)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	cumsum := make([]float64, n)
	floats.CumSum(cumsum, sorted)

	// Largest k with 1 + k*z_(k) > cumsum_(k).
	k := 0
	for i := 0; i < n; i++ {
		if 1+float64(i+1)*sorted[i] > cumsum[i] {
			k = i + 1
		}
	}
	if k == 0 {
		return uniform(n)
	}

	tau := (cumsum[k-1] - 1) / float64(k)

	p := make([]float64, n)
	for i, v := range z {
		if d := v - tau; d > 0 {
			p[i] = d
		}
	}

	total := floats.Sum(p)
	if total <= 0 {
		return uniform(n)
	}
	floats.Scale(1/total, p)
	return p
}

func uniform(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}
	return p
}
