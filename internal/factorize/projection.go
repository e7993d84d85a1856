package factorize

import (
	"gonum.org/v1/gonum/mat"

	"recommender/internal/embedding/tfidf"
)

// Projection maps term-space vectors into the latent space spanned by the
// right singular vectors of the catalog matrix.
type Projection struct {
	terms int
	dim   int
	// basis is terms x dim, one right singular vector per column. nil when dim is 0.
	basis *mat.Dense
}

// NewProjection stacks the right vectors of components as columns.
func NewProjection(terms int, components []Component) *Projection {
	p := &Projection{terms: terms, dim: len(components)}
	if terms == 0 || len(components) == 0 {
		p.dim = 0
		return p
	}
	p.basis = mat.NewDense(terms, len(components), nil)
	for c, comp := range components {
		p.basis.SetCol(c, comp.V.RawVector().Data)
	}
	return p
}

// Dim returns the latent dimension.
func (p *Projection) Dim() int { return p.dim }

// Terms returns the size of the term space the projection accepts.
func (p *Projection) Terms() int { return p.terms }

// Project maps sparse term weights into latent space. Positions outside the
// term space are skipped.
func (p *Projection) Project(entries []tfidf.Entry) []float64 {
	out := make([]float64, p.dim)
	if p.dim == 0 {
		return out
	}
	for _, e := range entries {
		if e.Position < 0 || e.Position >= p.terms {
			continue
		}
		row := p.basis.RawRowView(e.Position)
		for d := range out {
			out[d] += e.Weight * row[d]
		}
	}
	return out
}

// ProjectRows re-projects every row of m (items x terms) through the basis,
// returning one latent vector per row.
func (p *Projection) ProjectRows(m mat.Matrix) [][]float64 {
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	if p.dim == 0 {
		for i := range out {
			out[i] = []float64{}
		}
		return out
	}
	var latent mat.Dense
	latent.Mul(m, p.basis)
	for i := range out {
		out[i] = mat.Row(nil, i, &latent)
	}
	return out
}
