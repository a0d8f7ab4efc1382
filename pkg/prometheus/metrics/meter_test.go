package metrics

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.IncUpdates(KindString, 3)
	m.IncUpdates(KindString, 2)
	m.IncEstimates(KindInt)
	m.SetSketchGeometry(3, 100, 2400)
	m.IncTotal("/estimate", "GET", "")
	m.IncTotal("/estimate", "GET", "200")
	m.FlushResponseTimeTimer(m.NewResponseTimeTimer("/estimate", "GET"))

	var buf bytes.Buffer
	WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, `sketch_updates_total{kind="string"} 5`)
	assert.Contains(t, out, `sketch_estimates_total{kind="int"} 1`)
	assert.Contains(t, out, "sketch_depth 3")
	assert.Contains(t, out, "sketch_width 100")
	assert.Contains(t, out, "sketch_memory_bytes 2400")
	assert.Contains(t, out, `http_requests_total{path="/estimate",method="GET"} 1`)
	assert.Contains(t, out, `http_responses_total{path="/estimate",method="GET",status="200"} 1`)
	assert.Contains(t, out, "http_response_duration_ms_count")
}
