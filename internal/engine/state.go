package engine

import (
	"time"

	"recommender/internal/domain"
	"recommender/internal/embedding/tfidf"
	"recommender/internal/factorize"
	"recommender/internal/features"
	"recommender/internal/vectorstore/memory"
)

// State is the fully built, read-only recommendation index. It is shared by
// every request without locking.
type State struct {
	Vectorizer *tfidf.Vectorizer
	Projection *factorize.Projection
	Composer   *features.Composer
	Index      *memory.Index
	Summary    domain.CatalogSummary

	// RequestedRank is the latent dimension asked of the factorizer and
	// LatentDim the dimension it delivered.
	RequestedRank int
	LatentDim     int
	BuildDuration time.Duration
}

// Reduced reports whether factorization stopped short of the requested rank.
func (s *State) Reduced() bool { return s.LatentDim < s.RequestedRank }

// DefaultSeed is the title of the first catalog item.
func (s *State) DefaultSeed() string { return s.Summary.DefaultSeed }

// CatalogSummary returns a copy of the catalog listing.
func (s *State) CatalogSummary() *domain.CatalogSummary {
	items := make([]domain.SummaryEntry, len(s.Summary.Items))
	copy(items, s.Summary.Items)
	return &domain.CatalogSummary{Items: items, DefaultSeed: s.Summary.DefaultSeed}
}
