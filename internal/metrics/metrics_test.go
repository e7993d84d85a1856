package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues("recommend", OutcomeSuccess))
	errBefore := testutil.ToFloat64(RequestsTotal.WithLabelValues("recommend", OutcomeError))

	RecordRequest("recommend", time.Millisecond, nil)
	RecordRequest("recommend", time.Millisecond, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("recommend", OutcomeSuccess)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("recommend", OutcomeError)))
}

func TestRecordInit(t *testing.T) {
	before := testutil.ToFloat64(InitTotal.WithLabelValues(OutcomeError))
	RecordInit(time.Second, errors.New("bad catalog"))
	assert.Equal(t, before+1, testutil.ToFloat64(InitTotal.WithLabelValues(OutcomeError)))
}

func TestSetIndexShape(t *testing.T) {
	SetIndexShape(15, 15, 12)

	assert.Equal(t, 15.0, testutil.ToFloat64(CatalogItems))
	assert.Equal(t, 15.0, testutil.ToFloat64(RequestedRank))
	assert.Equal(t, 12.0, testutil.ToFloat64(LatentDimensions))
}

func TestRecordResolution(t *testing.T) {
	before := testutil.ToFloat64(QueryResolution.WithLabelValues("title"))
	RecordResolution("title")
	assert.Equal(t, before+1, testutil.ToFloat64(QueryResolution.WithLabelValues("title")))
}
