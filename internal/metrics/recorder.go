package metrics

import "time"

// ResultLabel enumerates per-diagram outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for a generation run.
type Recorder interface {
	ObserveRenderDuration(diagram string, d time.Duration, success bool)
	IncDiagramResult(result ResultLabel)
	ObserveRunDuration(d time.Duration)
	SetPagesGenerated(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncDiagramResult(ResultLabel)                      {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}
func (NoopRecorder) SetPagesGenerated(int)                             {}
