package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrEmptyCorpus is returned by Prepare when no documents are supplied.
var ErrEmptyCorpus = errors.New("empty corpus for TF-IDF prepare")

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Entry is one non-zero weight of a sparse term vector.
type Entry struct {
	Position int
	Weight   float64
}

// Vectorizer builds a term vocabulary with smoothed IDF weights and turns
// text into weighted term vectors over that vocabulary.
// It is read-only after Prepare and safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	documents  int
	prepared   bool
}

// NewVectorizer creates an unprepared vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocabulary: make(map[string]int)}
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Tokenize lowercases text and splits it on every run of non-alphanumeric characters.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Prepare builds the vocabulary and IDF values from the provided corpus.
// A corpus without any tokens produces an empty vocabulary.
func (v *Vectorizer) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Stable ordering for vocabulary positions
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.terms = terms
	v.idf = make([]float64, len(terms))
	v.documents = len(corpus)
	N := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+N)/(1+float64(df[term]))) + 1.0
	}
	v.prepared = true
	return nil
}

// Prepared reports whether Prepare has completed.
func (v *Vectorizer) Prepared() bool { return v.prepared }

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Terms returns the vocabulary in position order.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Position returns the vocabulary position of term.
func (v *Vectorizer) Position(term string) (int, bool) {
	idx, ok := v.vocabulary[term]
	return idx, ok
}

// IDF returns the inverse document frequency stored at position.
func (v *Vectorizer) IDF(position int) float64 {
	if position < 0 || position >= len(v.idf) {
		return 0
	}
	return v.idf[position]
}

// Vectorize weights tokens with (1 + ln tf) * idf. Tokens outside the
// vocabulary are ignored. Entries are ordered by position.
func (v *Vectorizer) Vectorize(tokens []string) ([]float64, []Entry) {
	dense := make([]float64, len(v.terms))
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return dense, nil
	}
	entries := make([]Entry, 0, len(counts))
	for idx, count := range counts {
		idf := v.idf[idx]
		if idf == 0 {
			continue
		}
		weight := (1 + math.Log(float64(count))) * idf
		dense[idx] = weight
		entries = append(entries, Entry{Position: idx, Weight: weight})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return dense, entries
}

// VectorizeText tokenizes and vectorizes text in one step.
func (v *Vectorizer) VectorizeText(text string) ([]float64, []Entry) {
	return v.Vectorize(Tokenize(text))
}
