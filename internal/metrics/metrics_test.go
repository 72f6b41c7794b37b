package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRenderDuration("x", time.Second, true)
	r.IncDiagramResult(ResultSuccess)
	r.ObserveRunDuration(time.Second)
	r.SetPagesGenerated(3)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRenderDuration("alpha-architecture", 150*time.Millisecond, true)
	pr.ObserveRenderDuration("beta-sequence", 20*time.Millisecond, false)
	pr.IncDiagramResult(ResultSuccess)
	pr.IncDiagramResult(ResultSuccess)
	pr.IncDiagramResult(ResultFailed)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.SetPagesGenerated(2)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.diagramResults.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.diagramResults.WithLabelValues("failed")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.pagesGenerated), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRenderDuration("x", time.Second, true)
	pr.IncDiagramResult(ResultFailed)
	pr.ObserveRunDuration(time.Second)
	pr.SetPagesGenerated(1)
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetPagesGenerated(5)

	path := filepath.Join(t.TempDir(), "plantdoc.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plantdoc_pages_generated 5")
}

func TestHTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncDiagramResult(ResultSuccess)

	rec := httptest.NewRecorder()
	pr.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `plantdoc_diagram_results_total{result="success"} 1`))
}
