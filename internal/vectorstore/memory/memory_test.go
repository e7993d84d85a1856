package memory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommender/internal/catalog"
	"recommender/internal/domain"
)

func record(title string, vec ...float64) Record {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	return Record{
		Item:   catalog.Parse(domain.CatalogItem{Title: title}),
		Vector: vec,
		Norm:   math.Sqrt(sum),
	}
}

func TestCosine(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-1, 0, 2}

	self := Cosine(a, math.Sqrt(14), a, math.Sqrt(14))
	assert.InDelta(t, 1, self, 1e-12)

	got := Cosine(a, math.Sqrt(14), b, math.Sqrt(5))
	assert.InDelta(t, 5/(math.Sqrt(14)*math.Sqrt(5)), got, 1e-12)

	opposite := Cosine(a, math.Sqrt(14), []float64{-1, -2, -3}, math.Sqrt(14))
	assert.InDelta(t, -1, opposite, 1e-12)
}

func TestCosine_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{1}, 0, []float64{1}, 1), "zero norm")
	assert.Equal(t, 0.0, Cosine([]float64{1}, 1, []float64{1}, 0), "zero norm")
	assert.Equal(t, 0.0, Cosine([]float64{1, 0}, 1, []float64{1}, 1), "length mismatch")
}

func TestIndex_Lookup(t *testing.T) {
	idx := NewIndex([]Record{record("Nova", 1, 0), record("Quiet Town", 0, 1)})

	assert.Equal(t, 2, idx.Len())

	pos, r, ok := idx.Lookup("  quiet TOWN ")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "Quiet Town", r.Item.Record.Title)
	assert.Same(t, idx.At(1), r)

	_, _, ok = idx.Lookup("nova!")
	assert.False(t, ok)
}

func TestIndex_Search(t *testing.T) {
	idx := NewIndex([]Record{
		record("A", 1, 0),
		record("B", 0, 1),
		record("C", 1, 1),
		record("D", 1, 0),
		record("E", 0, 0),
	})

	matches := idx.Search([]float64{1, 0}, 1, 0, -1)
	require.Len(t, matches, 5)

	titles := make([]string, len(matches))
	for i, m := range matches {
		titles[i] = m.Record.Item.Record.Title
	}
	// A and D tie and keep catalog order; zero-norm E scores 0 like B.
	assert.Equal(t, []string{"A", "D", "C", "B", "E"}, titles)
	assert.InDelta(t, 1/math.Sqrt(2), matches[2].Score, 1e-12)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestIndex_SearchExcludeAndTopK(t *testing.T) {
	idx := NewIndex([]Record{
		record("A", 1, 0),
		record("B", 0.9, 0.1),
		record("C", 0, 1),
	})

	matches := idx.Search(idx.At(0).Vector, idx.At(0).Norm, 1, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Position)
	assert.Equal(t, "B", matches[0].Record.Item.Record.Title)
}

func TestNewIndex_CopiesRecords(t *testing.T) {
	recs := []Record{record("A", 1)}
	idx := NewIndex(recs)
	recs[0].Norm = 99

	assert.Equal(t, 1.0, idx.At(0).Norm)
}
