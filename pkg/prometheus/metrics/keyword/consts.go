package keyword

const (
	TotalHttpRequestsMetricName  = "http_requests_total"
	TotalHttpResponsesMetricName = "http_responses_total"
	HttpResponseTimeMsMetricName = "http_response_duration_ms"
	SketchUpdatesMetricName      = "sketch_updates_total"
	SketchEstimatesMetricName    = "sketch_estimates_total"
	SketchDepth                  = "sketch_depth"
	SketchWidth                  = "sketch_width"
	SketchMemoryMetricName       = "sketch_memory_bytes"
)
