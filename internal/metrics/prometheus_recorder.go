package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "plantdoc"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	renderDuration *prom.HistogramVec
	diagramResults *prom.CounterVec
	runDuration    prom.Histogram
	pagesGenerated prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of individual PlantUML renderer invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"diagram", "result"}),
		diagramResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_results_total",
			Help:      "Diagram outcomes by result",
		}, []string{"result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		pagesGenerated: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_generated",
			Help:      "Pages generated by the last run",
		}),
	}
	reg.MustRegister(pr.renderDuration, pr.diagramResults, pr.runDuration, pr.pagesGenerated)
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(diagram string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := ResultFailed
	if success {
		res = ResultSuccess
	}
	p.renderDuration.WithLabelValues(diagram, string(res)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDiagramResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.diagramResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetPagesGenerated(n int) {
	if p == nil {
		return
	}
	p.pagesGenerated.Set(float64(n))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
// The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
