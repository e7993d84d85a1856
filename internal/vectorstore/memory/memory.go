package memory

import (
	"sort"

	"recommender/internal/catalog"
)

// Record is a catalog item with its combined vector and precomputed norm.
type Record struct {
	Item   catalog.Item
	Vector []float64
	Norm   float64
}

// Match is a record scored against a query.
type Match struct {
	Position int
	Record   *Record
	Score    float64
}

// Index is an immutable in-memory catalog index using brute-force cosine
// similarity. It needs no locking once built.
type Index struct {
	records []Record
	byTitle map[string]int
}

// NewIndex builds the index in catalog order. When two records share a
// normalized title the first one wins the title lookup.
func NewIndex(records []Record) *Index {
	idx := &Index{
		records: make([]Record, len(records)),
		byTitle: make(map[string]int, len(records)),
	}
	copy(idx.records, records)
	for i := range idx.records {
		key := idx.records[i].Item.Key()
		if _, ok := idx.byTitle[key]; !ok {
			idx.byTitle[key] = i
		}
	}
	return idx
}

// Len returns the number of indexed records.
func (s *Index) Len() int { return len(s.records) }

// At returns the record at catalog position i.
func (s *Index) At(i int) *Record { return &s.records[i] }

// Lookup resolves a title ignoring case and surrounding whitespace.
func (s *Index) Lookup(title string) (int, *Record, bool) {
	i, ok := s.byTitle[catalog.NormalizeTitle(title)]
	if !ok {
		return -1, nil, false
	}
	return i, &s.records[i], true
}

// Search scores every record except exclude (use -1 to keep all) and returns
// the topK best in descending order. Ties keep catalog order.
func (s *Index) Search(vector []float64, norm float64, topK, exclude int) []Match {
	matches := make([]Match, 0, len(s.records))
	for i := range s.records {
		if i == exclude {
			continue
		}
		r := &s.records[i]
		matches = append(matches, Match{Position: i, Record: r, Score: Cosine(vector, norm, r.Vector, r.Norm)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}

// Cosine divides the dot product of a and b by the given norms. It returns 0
// when either norm is zero or the lengths differ.
func Cosine(a []float64, normA float64, b []float64, normB float64) float64 {
	if normA == 0 || normB == 0 || len(a) != len(b) {
		return 0
	}
	return dot(a, b) / (normA * normB)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
