package middleware

import (
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics"
	"github.com/valyala/fasthttp"
	"strconv"
	"unsafe"
)

var emptyStr = ""

type PrometheusMetrics struct {
	meter metrics.Meter
	codes [600]string
}

func NewPrometheusMetrics(meter metrics.Meter) *PrometheusMetrics {
	codes := [600]string{}
	for code := 0; code < len(codes); code++ {
		codes[code] = strconv.Itoa(code)
	}
	return &PrometheusMetrics{
		meter: meter,
		codes: codes,
	}
}

func (m *PrometheusMetrics) Middleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		pth := ctx.Path()
		method := ctx.Method()

		pathStr := *(*string)(unsafe.Pointer(&pth))
		methodStr := *(*string)(unsafe.Pointer(&method))

		timer := m.meter.NewResponseTimeTimer(pathStr, methodStr)
		m.meter.IncTotal(pathStr, methodStr, emptyStr) // total requests (no status)

		next(ctx)

		status := ctx.Response.StatusCode()
		if status < 0 || status >= len(m.codes) {
			status = 0
		}
		m.meter.IncTotal(pathStr, methodStr, m.codes[status])
		m.meter.FlushResponseTimeTimer(timer)
	}
}
