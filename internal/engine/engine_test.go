package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommender/internal/catalog"
	"recommender/internal/domain"
)

type countingSource struct {
	items []domain.CatalogItem
	loads atomic.Int32
	gate  chan struct{}
	fail  error
}

func (s *countingSource) Name() string { return "test" }

func (s *countingSource) Load(ctx context.Context) ([]domain.CatalogItem, error) {
	s.loads.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.fail != nil {
		return nil, s.fail
	}
	return s.items, nil
}

type panicSource struct{}

func (panicSource) Name() string { return "panic" }

func (panicSource) Load(context.Context) ([]domain.CatalogItem, error) { panic("boom") }

func intPtr(v int) *int { return &v }

func testCatalog() []domain.CatalogItem {
	return []domain.CatalogItem{
		{Title: "Nova", Category: "Sci-Fi, Drama", Year: intPtr(2010), Plot: "A pilot follows a signal beyond the edge of the solar system."},
		{Title: "Quiet Town", Category: "Drama", Year: intPtr(2011), Plot: "A family moves to a quiet town and faces an old secret."},
		{Title: "Laugh Track", Category: "Comedy", Year: intPtr(1999), Plot: "A struggling comedian lands a sitcom role."},
		{Title: "Deep Orbit", Category: "Sci-Fi", Year: intPtr(2015), Plot: "A crew in orbit answers a signal from deep space."},
	}
}

func newEngine(src domain.CatalogSource) *Engine {
	return New(Options{Source: src, Seed: 42, Logger: zerolog.Nop()})
}

func TestEnsureReady_BuildsOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{items: testCatalog()}
	e := newEngine(src)

	const callers = 16
	states := make([]*State, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := e.EnsureReady(context.Background())
			assert.NoError(t, err)
			states[i] = st
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.loads.Load())
	require.NotNil(t, states[0])
	for _, st := range states {
		assert.Same(t, states[0], st)
	}

	st := states[0]
	assert.Equal(t, 4, st.Index.Len())
	assert.Equal(t, "Nova", st.DefaultSeed())
	assert.Equal(t, 4, st.RequestedRank)
	assert.LessOrEqual(t, st.LatentDim, st.RequestedRank)
	assert.Positive(t, st.LatentDim)
	assert.Equal(t, st.LatentDim+st.Composer.Len(), len(st.Index.At(0).Vector))
}

func TestEnsureReady_FailureIsCached(t *testing.T) {
	src := &countingSource{items: nil}
	e := newEngine(src)

	_, err1 := e.EnsureReady(context.Background())
	_, err2 := e.EnsureReady(context.Background())

	require.Error(t, err1)
	assert.ErrorIs(t, err1, ErrInitialization)
	assert.ErrorIs(t, err1, catalog.ErrEmptyCatalog)
	assert.Same(t, err1, err2)
	assert.Equal(t, int32(1), src.loads.Load())

	var initErr *InitError
	require.ErrorAs(t, err1, &initErr)
	assert.ErrorIs(t, initErr.Cause, catalog.ErrEmptyCatalog)

	h := e.Health(context.Background())
	assert.Equal(t, domain.HealthError, h.Status)
	assert.Contains(t, h.Message, "catalog is empty")
}

func TestEnsureReady_MalformedCatalog(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CatalogItem
		want  error
	}{
		{"missing title", []domain.CatalogItem{{Title: " "}}, catalog.ErrInvalidRecord},
		{"bad year", []domain.CatalogItem{{Title: "A", Year: intPtr(12)}}, catalog.ErrInvalidRecord},
		{"duplicate title", []domain.CatalogItem{{Title: "A"}, {Title: "a "}}, catalog.ErrDuplicateTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(catalog.NewStaticSource(tt.items)).EnsureReady(context.Background())
			assert.ErrorIs(t, err, ErrInitialization)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnsureReady_SourceError(t *testing.T) {
	cause := errors.New("disk gone")
	_, err := newEngine(&countingSource{fail: cause}).EnsureReady(context.Background())

	assert.ErrorIs(t, err, ErrInitialization)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestEnsureReady_PanicBecomesError(t *testing.T) {
	_, err := newEngine(panicSource{}).EnsureReady(context.Background())

	assert.ErrorIs(t, err, ErrInitialization)
	assert.Contains(t, err.Error(), "panic during initialization: boom")
}

func TestEnsureReady_CancelledWaitDoesNotAbortInit(t *testing.T) {
	src := &countingSource{items: testCatalog(), gate: make(chan struct{})}
	e := newEngine(src)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.EnsureReady(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	hctx, hcancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer hcancel()
	assert.Equal(t, domain.Health{Status: domain.HealthInitializing}, e.Health(hctx))

	close(src.gate)
	st, err := e.EnsureReady(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, st)
	assert.Equal(t, domain.Health{Status: domain.HealthReady}, e.Health(context.Background()))
	assert.Equal(t, int32(1), src.loads.Load())
}

func TestEnsureReady_EmptyVocabulary(t *testing.T) {
	src := catalog.NewStaticSource([]domain.CatalogItem{
		{Title: "!!!", Year: intPtr(2000)},
		{Title: "???", Year: intPtr(2004)},
	})
	st, err := newEngine(src).EnsureReady(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, st.LatentDim)
	assert.Equal(t, 0, st.RequestedRank)
	assert.False(t, st.Reduced())
	assert.Equal(t, 2, st.Index.Len())
	// Only the year slot remains.
	assert.Equal(t, []float64{0}, st.Index.At(0).Vector)
	assert.InDelta(t, 0.35, st.Index.At(1).Norm, 1e-12)
}

func TestEnsureReady_Deterministic(t *testing.T) {
	a, err := newEngine(catalog.SampleSource{}).EnsureReady(context.Background())
	require.NoError(t, err)
	b, err := newEngine(catalog.SampleSource{}).EnsureReady(context.Background())
	require.NoError(t, err)

	require.Equal(t, a.Index.Len(), b.Index.Len())
	for i := 0; i < a.Index.Len(); i++ {
		assert.Equal(t, a.Index.At(i).Vector, b.Index.At(i).Vector)
	}
	assert.Equal(t, "Orbital Drift", a.DefaultSeed())
}

func TestState_CatalogSummaryIsCopy(t *testing.T) {
	st, err := newEngine(catalog.NewStaticSource(testCatalog())).EnsureReady(context.Background())
	require.NoError(t, err)

	s := st.CatalogSummary()
	require.Len(t, s.Items, 4)
	assert.Equal(t, domain.SummaryEntry{Title: "Nova", Category: "Sci-Fi, Drama", Year: intPtr(2010)}, s.Items[0])
	s.Items[0].Title = "changed"
	assert.Equal(t, "Nova", st.CatalogSummary().Items[0].Title)
}
