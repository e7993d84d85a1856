// Package factorize extracts the dominant singular components of a dense
// item-by-term matrix by power iteration with deflation, and turns the right
// singular vectors into a projection from term space into a latent space.
package factorize

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultIterations bounds the power iterations spent on one component.
	DefaultIterations = 50
	// DefaultTolerance is both the convergence threshold on successive
	// right-vector alignment and the smallest accepted singular value.
	DefaultTolerance = 1e-6

	maxRank = 32
	minRank = 4
)

// RandomSource yields values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Options tunes the power iteration.
type Options struct {
	Iterations int
	Tolerance  float64
	Random     RandomSource
}

// Component is one singular triple.
type Component struct {
	Sigma float64
	U     *mat.VecDense
	V     *mat.VecDense
}

// Rank returns the latent dimension requested for a catalog of the given size.
func Rank(items, vocabulary int) int {
	if vocabulary <= 0 {
		return 0
	}
	return min(maxRank, max(minRank, min(items, vocabulary)))
}

// Factorize returns up to rank components of m ordered by decreasing singular
// value. m is not modified. Fewer components are returned when the residual
// degenerates before rank is reached.
func Factorize(m mat.Matrix, rank int, opts Options) []Component {
	rows, cols := m.Dims()
	rank = min(rank, rows, cols)
	if rank <= 0 {
		return nil
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(1)) //nolint:gosec // reproducible start vectors
	}

	residual := mat.DenseCopyOf(m)
	components := make([]Component, 0, rank)

	for len(components) < rank {
		v := randomUnitVector(cols, opts.Random)
		u := mat.NewVecDense(rows, nil)
		uRaw := mat.NewVecDense(rows, nil)
		vRaw := mat.NewVecDense(cols, nil)
		degenerate := false

		for i := 0; i < opts.Iterations; i++ {
			uRaw.MulVec(residual, v)
			uNorm := mat.Norm(uRaw, 2)
			if uNorm == 0 {
				degenerate = true
				break
			}
			u.ScaleVec(1/uNorm, uRaw)

			vRaw.MulVec(residual.T(), u)
			vNorm := mat.Norm(vRaw, 2)
			if vNorm == 0 {
				degenerate = true
				break
			}
			next := mat.NewVecDense(cols, nil)
			next.ScaleVec(1/vNorm, vRaw)

			alignment := mat.Dot(next, v)
			v = next
			if math.Abs(1-math.Abs(alignment)) < opts.Tolerance {
				break
			}
		}
		if degenerate {
			break
		}

		uRaw.MulVec(residual, v)
		sigma := mat.Norm(uRaw, 2)
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < opts.Tolerance {
			break
		}
		u = mat.NewVecDense(rows, nil)
		u.ScaleVec(1/sigma, uRaw)
		components = append(components, Component{Sigma: sigma, U: u, V: v})

		// residual -= sigma * u * v^T
		var outer mat.Dense
		outer.Outer(sigma, u, v)
		residual.Sub(residual, &outer)
	}
	return components
}

func randomUnitVector(n int, rnd RandomSource) *mat.VecDense {
	data := make([]float64, n)
	sum := 0.0
	for i := range data {
		data[i] = rnd.Float64()
		sum += data[i] * data[i]
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		clear(data)
		data[0] = 1
		return mat.NewVecDense(n, data)
	}
	for i := range data {
		data[i] /= norm
	}
	return mat.NewVecDense(n, data)
}
