package metrics

import (
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics/keyword"
	"github.com/VictoriaMetrics/metrics"
	"io"
	"time"
)

const (
	KindString = "string"
	KindInt    = "int"
)

// Meter defines methods for recording application metrics.
type Meter interface {
	IncTotal(path, method, status string)
	IncUpdates(kind string, n uint64)
	IncEstimates(kind string)
	NewResponseTimeTimer(path, method string) *Timer
	FlushResponseTimeTimer(t *Timer)
	SetSketchGeometry(depth, width int, bytes int64)
}

// Metrics implements Meter using VictoriaMetrics metrics.
type Metrics struct{}

// New creates a new Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// IncTotal increments total requests or responses depending on status.
func (m *Metrics) IncTotal(path, method, status string) {
	name := keyword.TotalHttpRequestsMetricName
	if status != "" {
		name = keyword.TotalHttpResponsesMetricName
	}
	buf := make([]byte, 0, 48)

	buf = append(buf, name...)
	buf = append(buf, `{path="`...)
	buf = append(buf, path...)
	buf = append(buf, `",method="`...)
	buf = append(buf, method...)
	buf = append(buf, `"`...)

	if status != "" {
		buf = append(buf, `,status="`...)
		buf = append(buf, status...)
		buf = append(buf, `"`...)
	}
	buf = append(buf, `}`...)

	metrics.GetOrCreateCounter(string(buf)).Inc()
}

// IncUpdates adds n applied updates of the given item kind.
func (m *Metrics) IncUpdates(kind string, n uint64) {
	metrics.GetOrCreateCounter(withKind(keyword.SketchUpdatesMetricName, kind)).Add(int(n))
}

// IncEstimates counts one estimate query of the given item kind.
func (m *Metrics) IncEstimates(kind string) {
	metrics.GetOrCreateCounter(withKind(keyword.SketchEstimatesMetricName, kind)).Inc()
}

// SetSketchGeometry publishes the grid size. It is fixed after construction.
func (m *Metrics) SetSketchGeometry(depth, width int, bytes int64) {
	metrics.GetOrCreateCounter(keyword.SketchDepth).Set(uint64(depth))
	metrics.GetOrCreateCounter(keyword.SketchWidth).Set(uint64(width))
	metrics.GetOrCreateCounter(keyword.SketchMemoryMetricName).Set(uint64(bytes))
}

func withKind(name, kind string) string {
	buf := make([]byte, 0, 48)
	buf = append(buf, name...)
	buf = append(buf, `{kind="`...)
	buf = append(buf, kind...)
	buf = append(buf, `"}`...)
	return string(buf)
}

// Timer tracks start of an operation for timing metrics.
type Timer struct {
	name  string
	start time.Time
}

// NewResponseTimeTimer creates a Timer for measuring response time of given path and method.
func (m *Metrics) NewResponseTimeTimer(path, method string) *Timer {
	buf := make([]byte, 0, 48)

	buf = append(buf, keyword.HttpResponseTimeMsMetricName...)
	buf = append(buf, `{path="`...)
	buf = append(buf, path...)
	buf = append(buf, `",method="`...)
	buf = append(buf, method...)
	buf = append(buf, `"}`...)

	return &Timer{name: string(buf), start: time.Now()}
}

// FlushResponseTimeTimer records the elapsed time since Timer creation into a histogram.
func (m *Metrics) FlushResponseTimeTimer(t *Timer) {
	metrics.GetOrCreateHistogram(t.name).Update(float64(time.Since(t.start).Milliseconds()))
}

// WritePrometheus writes every registered metric in Prometheus text format.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
