package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"recommender/internal/catalog"
	"recommender/internal/domain"
	"recommender/internal/engine"
	"recommender/internal/logging"
	"recommender/internal/metrics"
	"recommender/internal/vectorstore/memory"
)

// DefaultTopK is the number of recommendations returned per query.
const DefaultTopK = 10

// Operation names used in logs and metrics.
const (
	OpCatalog   = "catalog"
	OpHealth    = "health"
	OpRecommend = "recommend"
)

// Resolution modes of a seed.
const (
	ModeDefault  = "default"
	ModeTitle    = "title"
	ModeText     = "text"
	ModeFallback = "fallback"
)

const insightSeparator = " • "

// RecommendService answers catalog, health and recommendation queries on top
// of a shared engine.
type RecommendService struct {
	engine *engine.Engine
	topK   int
	log    zerolog.Logger
}

var _ domain.Recommender = (*RecommendService)(nil)

// NewRecommendService wires the service to eng. A non-positive topK selects
// DefaultTopK.
func NewRecommendService(eng *engine.Engine, topK int, log zerolog.Logger) *RecommendService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RecommendService{
		engine: eng,
		topK:   topK,
		log:    log.With().Str("component", "service").Logger(),
	}
}

// CatalogSummary lists every catalog item. It fails only when initialization failed.
func (s *RecommendService) CatalogSummary(ctx context.Context) (summary *domain.CatalogSummary, err error) {
	start := time.Now()
	defer func() { metrics.RecordRequest(OpCatalog, time.Since(start), err) }()

	st, err := s.engine.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}
	return st.CatalogSummary(), nil
}

// Health never fails; it reports the engine lifecycle state.
func (s *RecommendService) Health(ctx context.Context) domain.Health {
	start := time.Now()
	h := s.engine.Health(ctx)
	metrics.RecordRequest(OpHealth, time.Since(start), nil)
	return h
}

// query is the resolved form of a seed.
type query struct {
	mode       string
	vector     []float64
	norm       float64
	reference  int
	categories []string
	year       *int
}

func (q query) matchedByTitle() bool { return q.reference >= 0 }

// Recommend ranks the catalog against seed. An empty or unrecognized seed
// falls back to the first catalog item. It fails only when initialization failed.
func (s *RecommendService) Recommend(ctx context.Context, seed string) (payload *domain.RecommendationPayload, err error) {
	start := time.Now()
	defer func() { metrics.RecordRequest(OpRecommend, time.Since(start), err) }()

	st, err := s.engine.EnsureReady(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("request_id", logging.RequestIDFromContext(ctx)).Msg("recommend unavailable")
		return nil, err
	}

	trimmed := strings.TrimSpace(seed)
	q := resolve(st, trimmed)
	metrics.RecordResolution(q.mode)

	payload = &domain.RecommendationPayload{
		Seed:            trimmed,
		Recommendations: []domain.Recommendation{},
		Profile:         domain.Profile{Categories: q.categories, Year: q.year},
	}
	if q.matchedByTitle() {
		title := st.Index.At(q.reference).Item.Record.Title
		payload.ReferenceTitle = &title
	}
	if q.vector == nil || q.norm == 0 {
		logging.Ctx(ctx).Debug().Str("mode", q.mode).Msg("query has no usable vector")
		return payload, nil
	}

	for _, m := range st.Index.Search(q.vector, q.norm, s.topK, q.reference) {
		payload.Recommendations = append(payload.Recommendations, recommendation(m, q))
	}
	logging.Ctx(ctx).Debug().
		Str("mode", q.mode).
		Int("results", len(payload.Recommendations)).
		Dur("elapsed", time.Since(start)).
		Msg("recommend")
	return payload, nil
}

// resolve turns a trimmed seed into a query: exact title first, then free
// text, then the first catalog item.
func resolve(st *engine.State, seed string) query {
	if seed == "" {
		return itemQuery(st, 0, ModeDefault)
	}
	if pos, _, ok := st.Index.Lookup(seed); ok {
		return itemQuery(st, pos, ModeTitle)
	}
	_, entries := st.Vectorizer.VectorizeText(seed)
	if len(entries) == 0 {
		return itemQuery(st, 0, ModeFallback)
	}
	latent := st.Projection.Project(entries)
	metadata, categories, year := st.Composer.QueryMetadata(seed)
	vec, norm := st.Composer.Combine(latent, metadata)
	return query{
		mode:       ModeText,
		vector:     vec,
		norm:       norm,
		reference:  -1,
		categories: categories,
		year:       year,
	}
}

func itemQuery(st *engine.State, pos int, mode string) query {
	if st.Index.Len() == 0 {
		return query{mode: mode, reference: -1, categories: []string{}}
	}
	r := st.Index.At(pos)
	return query{
		mode:       mode,
		vector:     r.Vector,
		norm:       r.Norm,
		reference:  pos,
		categories: slices.Clone(r.Item.Categories),
		year:       r.Item.Year,
	}
}

func recommendation(m memory.Match, q query) domain.Recommendation {
	rec := m.Record.Item.Record
	return domain.Recommendation{
		Title:    rec.Title,
		Plot:     rec.Plot,
		Category: rec.Category,
		Year:     m.Record.Item.Year,
		Image:    rec.Image,
		Score:    roundScore(m.Score),
		Insight:  Insight(m.Record.Item, q.categories, q.year, q.matchedByTitle()),
	}
}

// Insight explains why item was recommended for the active categories and year.
func Insight(item catalog.Item, categories []string, year *int, matchedByTitle bool) string {
	var highlights []string

	var shared []string
	for _, c := range item.Categories {
		for _, active := range categories {
			if c == active {
				shared = append(shared, c)
				break
			}
		}
	}
	if len(shared) > 0 {
		highlights = append(highlights, "Shared categories: "+strings.Join(shared, ", "))
	}

	if year != nil && item.Year != nil {
		diff := *item.Year - *year
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			highlights = append(highlights, "Released in the same year")
		case diff == 1:
			highlights = append(highlights, "Released 1 year apart")
		case diff <= 2:
			highlights = append(highlights, fmt.Sprintf("Released %d years apart", diff))
		case diff <= 5:
			highlights = append(highlights, fmt.Sprintf("Within %d years of your reference", diff))
		}
	}

	if len(highlights) == 0 {
		if matchedByTitle {
			return "Semantic twin to your seed title"
		}
		return "Semantic match to your description"
	}
	return strings.Join(highlights, insightSeparator)
}

func roundScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return math.Round(score*1e4) / 1e4
}
