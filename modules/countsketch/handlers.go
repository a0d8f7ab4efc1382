package countsketch

import (
	"encoding/json"
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics"
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics/middleware"
	"github.com/dustin/go-humanize"
	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"slices"
	"strconv"
	"sync/atomic"
)

const (
	contentTypeJson = "application/json"
	hotKeysLimit    = 10
)

var (
	keyIsRequiredBody   = []byte(`{"error":{"message":"Query parameter 'key' is required."}}`)
	weightIsInvalidBody = []byte(`{"error":{"message":"Query parameter 'weight' must be an integer."}}`)
	keyIsNotIntBody     = []byte(`{"error":{"message":"Query parameter 'key' must be an integer when 'int' is set."}}`)
)

type estimateResponse struct {
	Key      string  `json:"key"`
	Estimate float64 `json:"estimate"`
}

type updateResponse struct {
	Key    string `json:"key"`
	Weight int64  `json:"weight"`
}

type hotKey struct {
	Domain   uint64  `json:"domain"`
	Estimate float64 `json:"estimate"`
}

type statsResponse struct {
	Epsilon  float64  `json:"epsilon"`
	Gamma    float64  `json:"gamma"`
	Depth    int      `json:"depth"`
	Width    int      `json:"width"`
	Counters int      `json:"counters"`
	Bytes    int64    `json:"bytes"`
	Memory   string   `json:"memory"`
	Recent   []hotKey `json:"recent"`
}

// Handler returns the HTTP API wrapped with request metrics.
func (app *App) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.POST("/update", app.handleUpdate)
	r.GET("/estimate", app.handleEstimate)
	r.GET("/stats", app.handleStats)
	r.GET("/metrics", app.handleMetrics)
	return middleware.NewPrometheusMetrics(app.meter).Middleware(r.Handler)
}

// item reads key and the int flag. The returned domain value is what the sketch hashes.
func (app *App) item(ctx *fasthttp.RequestCtx) (key string, domain uint64, kind string, ok bool) {
	args := ctx.QueryArgs()
	key = string(args.Peek("key"))
	if key == "" {
		writeError(ctx, keyIsRequiredBody)
		return "", 0, "", false
	}

	if !args.GetBool("int") {
		return key, app.sketch.Sketch().Domain(key), metrics.KindString, true
	}

	v, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		writeError(ctx, keyIsNotIntBody)
		return "", 0, "", false
	}
	return key, uint64(v), metrics.KindInt, true
}

func (app *App) handleUpdate(ctx *fasthttp.RequestCtx) {
	key, domain, kind, ok := app.item(ctx)
	if !ok {
		return
	}

	weight := int64(1)
	if raw := ctx.QueryArgs().Peek("weight"); len(raw) > 0 {
		w, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			writeError(ctx, weightIsInvalidBody)
			return
		}
		weight = w
	}

	app.sketch.UpdateDomain(domain, weight)
	app.recent.Push(domain)
	app.meter.IncUpdates(kind, 1)
	atomic.AddInt64(&app.updates, 1)

	writeJson(ctx, updateResponse{Key: key, Weight: weight})
}

func (app *App) handleEstimate(ctx *fasthttp.RequestCtx) {
	key, domain, kind, ok := app.item(ctx)
	if !ok {
		return
	}

	estimate := app.sketch.EstimateDomain(domain)
	app.meter.IncEstimates(kind)
	atomic.AddInt64(&app.estimates, 1)

	writeJson(ctx, estimateResponse{Key: key, Estimate: estimate})
}

func (app *App) handleStats(ctx *fasthttp.RequestCtx) {
	sk := app.sketch.Sketch()
	writeJson(ctx, statsResponse{
		Epsilon:  sk.Epsilon(),
		Gamma:    sk.Gamma(),
		Depth:    sk.Depth(),
		Width:    sk.Width(),
		Counters: sk.Counters(),
		Bytes:    sk.Bytes(),
		Memory:   humanize.IBytes(uint64(sk.Bytes())),
		Recent:   app.hotKeys(hotKeysLimit),
	})
}

// hotKeys estimates the distinct recently updated values and returns the top n.
func (app *App) hotKeys(n int) []hotKey {
	snapshot := app.recent.Snapshot()
	seen := make(map[uint64]struct{}, len(snapshot))
	hot := make([]hotKey, 0, len(snapshot))
	for _, domain := range snapshot {
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		hot = append(hot, hotKey{Domain: domain, Estimate: app.sketch.EstimateDomain(domain)})
	}

	slices.SortFunc(hot, func(a, b hotKey) int {
		switch {
		case a.Estimate > b.Estimate:
			return -1
		case a.Estimate < b.Estimate:
			return 1
		default:
			return 0
		}
	})
	if len(hot) > n {
		hot = hot[:n]
	}
	return hot
}

func (app *App) handleMetrics(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; version=0.0.4")
	metrics.WritePrometheus(ctx)
}

func writeJson(ctx *fasthttp.RequestCtx, v any) {
	ctx.SetContentType(contentTypeJson)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		log.Error().Err(err).Msg("[server] failed to encode response")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

func writeError(ctx *fasthttp.RequestCtx, body []byte) {
	ctx.SetContentType(contentTypeJson)
	ctx.SetStatusCode(fasthttp.StatusBadRequest)
	ctx.SetBody(body)
}
