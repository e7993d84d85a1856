// Package engine owns the one-time construction of the recommendation index
// and hands the finished, immutable State to every caller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"recommender/internal/catalog"
	"recommender/internal/domain"
	"recommender/internal/embedding/tfidf"
	"recommender/internal/factorize"
	"recommender/internal/features"
	"recommender/internal/metrics"
	"recommender/internal/vectorstore/memory"
)

// DefaultIterations is the power-iteration budget per latent component.
const DefaultIterations = 60

// ErrInitialization matches every error produced by a failed initialization.
var ErrInitialization = errors.New("recommender initialization failed")

// InitError carries the cause of a failed initialization.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string { return ErrInitialization.Error() + ": " + e.Cause.Error() }

func (e *InitError) Unwrap() []error { return []error{ErrInitialization, e.Cause} }

// Options configures an Engine.
type Options struct {
	Source         domain.CatalogSource
	Iterations     int
	Tolerance      float64
	MetadataWeight float64
	// Seed feeds the factorizer's start vectors when Random is nil.
	Seed   int64
	Random factorize.RandomSource
	Logger zerolog.Logger
}

// Engine builds its State at most once per process. The zero value is not
// usable; call New.
type Engine struct {
	opts Options
	log  zerolog.Logger

	once  sync.Once
	done  chan struct{}
	state *State
	err   error
}

// New returns an engine that has not started initializing.
func New(opts Options) *Engine {
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = factorize.DefaultTolerance
	}
	if opts.MetadataWeight <= 0 {
		opts.MetadataWeight = features.DefaultMetadataWeight
	}
	if opts.Random == nil {
		opts.Random = rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // deterministic factorization
	}
	if opts.Source == nil {
		opts.Source = catalog.SampleSource{}
	}
	return &Engine{
		opts: opts,
		log:  opts.Logger.With().Str("component", "engine").Logger(),
		done: make(chan struct{}),
	}
}

// Start begins initialization in the background if it has not started yet.
func (e *Engine) Start() {
	e.once.Do(func() {
		go e.run()
	})
}

// EnsureReady starts initialization if needed and waits for its outcome.
// Cancelling ctx abandons the wait only; initialization keeps running and
// its outcome is cached for later callers.
func (e *Engine) EnsureReady(ctx context.Context) (*State, error) {
	e.Start()
	select {
	case <-e.done:
		return e.state, e.err
	default:
	}
	select {
	case <-e.done:
		return e.state, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Health attempts EnsureReady and reports the lifecycle state without failing.
func (e *Engine) Health(ctx context.Context) domain.Health {
	_, err := e.EnsureReady(ctx)
	switch {
	case err == nil:
		return domain.Health{Status: domain.HealthReady}
	case errors.Is(err, ErrInitialization):
		return domain.Health{Status: domain.HealthError, Message: err.Error()}
	default:
		return domain.Health{Status: domain.HealthInitializing}
	}
}

func (e *Engine) run() {
	defer close(e.done)
	start := time.Now()
	e.log.Info().Str("source", e.opts.Source.Name()).Msg("initializing recommender")

	state, err := e.buildSafely(context.Background())
	elapsed := time.Since(start)
	metrics.RecordInit(elapsed, err)
	if err != nil {
		e.err = &InitError{Cause: err}
		e.log.Error().Err(err).Dur("elapsed", elapsed).Msg("initialization failed")
		return
	}
	state.BuildDuration = elapsed
	e.state = state
	metrics.SetIndexShape(state.Index.Len(), state.RequestedRank, state.LatentDim)

	event := e.log.Info()
	if state.Reduced() {
		event = e.log.Warn()
	}
	event.Int("items", state.Index.Len()).
		Int("vocabulary", state.Vectorizer.Dimension()).
		Int("requested_rank", state.RequestedRank).
		Int("latent_dim", state.LatentDim).
		Dur("elapsed", elapsed).
		Msg("recommender ready")
}

func (e *Engine) buildSafely(ctx context.Context) (state *State, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = nil, fmt.Errorf("panic during initialization: %v", r)
		}
	}()
	return e.build(ctx)
}

func (e *Engine) build(ctx context.Context) (*State, error) {
	records, err := e.opts.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := catalog.Validate(records); err != nil {
		return nil, err
	}
	items := catalog.ParseAll(records)

	corpus := make([]string, len(items))
	for i, it := range items {
		corpus[i] = it.Text()
	}
	vectorizer := tfidf.NewVectorizer()
	if err := vectorizer.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("vectorize catalog: %w", err)
	}

	vocab := vectorizer.Dimension()
	requested := factorize.Rank(len(items), vocab)
	var (
		components []factorize.Component
		termMatrix *mat.Dense
	)
	if vocab > 0 {
		termMatrix = mat.NewDense(len(items), vocab, nil)
		for i, text := range corpus {
			dense, _ := vectorizer.VectorizeText(text)
			termMatrix.SetRow(i, dense)
		}
		components = factorize.Factorize(termMatrix, requested, factorize.Options{
			Iterations: e.opts.Iterations,
			Tolerance:  e.opts.Tolerance,
			Random:     e.opts.Random,
		})
	} else {
		e.log.Warn().Msg("catalog has no tokens; ranking on metadata only")
	}
	projection := factorize.NewProjection(vocab, components)

	var latent [][]float64
	if termMatrix != nil {
		latent = projection.ProjectRows(termMatrix)
	} else {
		latent = make([][]float64, len(items))
	}

	composer := features.NewComposer(items, e.opts.MetadataWeight)
	indexed := make([]memory.Record, len(items))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range items {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("item %d: %v", i, r)
				}
			}()
			vec, norm := composer.Combine(latent[i], composer.ItemMetadata(items[i]))
			indexed[i] = memory.Record{Item: items[i], Vector: vec, Norm: norm}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compose item vectors: %w", err)
	}

	summary := domain.CatalogSummary{
		Items:       make([]domain.SummaryEntry, len(items)),
		DefaultSeed: items[0].Record.Title,
	}
	for i, it := range items {
		summary.Items[i] = domain.SummaryEntry{Title: it.Record.Title, Category: it.Record.Category, Year: it.Year}
	}

	return &State{
		Vectorizer:    vectorizer,
		Projection:    projection,
		Composer:      composer,
		Index:         memory.NewIndex(indexed),
		Summary:       summary,
		RequestedRank: requested,
		LatentDim:     projection.Dim(),
	}, nil
}
