package countsketch

import (
	"context"
	"encoding/json"
	"github.com/Borislavv/go-count-sketch/pkg/config"
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"net"
	"strings"
	"testing"
	"time"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
}

func newTestConfig() *config.Sketch {
	cfg := config.Default()
	seed := uint64(77)
	cfg.Sketch.Env = config.Test
	cfg.Sketch.Epsilon = 0.05
	cfg.Sketch.Gamma = 0.1
	cfg.Sketch.Seed = &seed
	cfg.Sketch.Logs.Level = "error"
	cfg.Sketch.Server.RecentKeys = 16
	return cfg
}

func newTestApp(t *testing.T) *App {
	app, err := New(newTestConfig(), metrics.New())
	require.NoError(t, err)
	return app
}

func call(h fasthttp.RequestHandler, method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	h(ctx)
	return ctx
}

func TestNewSketchFromConfig(t *testing.T) {
	t.Run("fixed seed is reproducible", func(t *testing.T) {
		a, err := NewSketch(newTestConfig())
		require.NoError(t, err)
		b, err := NewSketch(newTestConfig())
		require.NoError(t, err)

		for i := int64(0); i < 100; i++ {
			a.AddInt(i % 7)
			b.AddInt(i % 7)
		}
		for i := int64(0); i < 7; i++ {
			assert.Equal(t, a.EstimateInt(i), b.EstimateInt(i))
		}
	})

	t.Run("explicit seeds and hashes", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Sketch.Seeds = []uint64{1, 2, 3, 4, 5, 6, 7, 8}
		cfg.Sketch.Hash = "xxh3"
		cfg.Sketch.Domain = "xxhash"

		sk, err := NewSketch(cfg)
		require.NoError(t, err)
		sk.Add("k")
		assert.Equal(t, 1.0, sk.EstimateString("k"))
	})

	t.Run("seed list must cover every row", func(t *testing.T) {
		for _, seeds := range [][]uint64{{1}, {1, 2, 3}, {1, 2, 3, 4, 5, 6, 7}, {1, 2, 3, 4, 5, 6, 7, 8, 9}} {
			cfg := newTestConfig()
			cfg.Sketch.Seeds = seeds
			_, err := NewSketch(cfg)
			assert.ErrorIsf(t, err, config.InvalidConfigError, "%d seeds", len(seeds))
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Sketch.Epsilon = 0
		_, err := NewSketch(cfg)
		assert.Error(t, err)

		cfg = newTestConfig()
		cfg.Sketch.MaxCounters = 10
		_, err = NewSketch(cfg)
		assert.Error(t, err)
	})
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := newTestConfig()
	cfg.Sketch.Logs.Level = "loud"
	_, err := New(cfg, metrics.New())
	assert.Error(t, err)
}

func TestHandlerUpdateAndEstimate(t *testing.T) {
	app := newTestApp(t)
	h := app.Handler()

	for i := 0; i < 3; i++ {
		ctx := call(h, fasthttp.MethodPost, "/update?key=alpha")
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	}
	ctx := call(h, fasthttp.MethodPost, "/update?key=alpha&weight=4")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var upd updateResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &upd))
	assert.Equal(t, updateResponse{Key: "alpha", Weight: 4}, upd)

	ctx = call(h, fasthttp.MethodGet, "/estimate?key=alpha")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var est estimateResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &est))
	assert.Equal(t, estimateResponse{Key: "alpha", Estimate: 7}, est)

	call(h, fasthttp.MethodPost, "/update?key=26&int=1&weight=2")
	ctx = call(h, fasthttp.MethodGet, "/estimate?key=26&int=1")
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &est))
	assert.Equal(t, 2.0, est.Estimate)
	assert.Equal(t, 2.0, app.Sketch().EstimateInt(26))
}

func TestHandlerErrors(t *testing.T) {
	h := newTestApp(t).Handler()

	cases := map[string]string{
		"/update":                     "'key' is required",
		"/update?key=a&weight=x":      "'weight' must be an integer",
		"/update?key=abc&int=1":       "must be an integer when 'int' is set",
		"/estimate":                   "'key' is required",
		"/update?key=1&int=1&weight=": "",
	}
	for uri, message := range cases {
		method := fasthttp.MethodPost
		if strings.HasPrefix(uri, "/estimate") {
			method = fasthttp.MethodGet
		}
		ctx := call(h, method, uri)
		if message == "" {
			assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), uri)
			continue
		}
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), uri)
		assert.Contains(t, string(ctx.Response.Body()), message, uri)
	}

	ctx := call(h, fasthttp.MethodGet, "/update?key=a")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestHandlerStatsAndMetrics(t *testing.T) {
	app := newTestApp(t)
	h := app.Handler()

	call(h, fasthttp.MethodPost, "/update?key=hot&weight=50")
	call(h, fasthttp.MethodPost, "/update?key=warm&weight=5")
	call(h, fasthttp.MethodPost, "/update?key=hot")

	ctx := call(h, fasthttp.MethodGet, "/stats")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var stats statsResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &stats))
	assert.Equal(t, 4, stats.Depth)
	assert.Equal(t, 400, stats.Width)
	assert.Equal(t, int64(4*400*8), stats.Bytes)
	assert.Equal(t, humanize.IBytes(4*400*8), stats.Memory)
	require.Len(t, stats.Recent, 2, "duplicates in the ring are collapsed")
	assert.Equal(t, app.Sketch().Sketch().Domain("hot"), stats.Recent[0].Domain)
	assert.Equal(t, 51.0, stats.Recent[0].Estimate)
	assert.Equal(t, 5.0, stats.Recent[1].Estimate)

	ctx = call(h, fasthttp.MethodGet, "/metrics")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "sketch_updates_total")
	assert.Contains(t, string(ctx.Response.Body()), `http_requests_total{path="/stats",method="GET"}`)
}

func TestIngest(t *testing.T) {
	app := newTestApp(t)

	stats, err := app.Ingest(context.Background(), false,
		strings.NewReader("Gianluca\nMarco\nLuca\n"),
		strings.NewReader("Gianluca\nAnna\n"),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Records)
	assert.Equal(t, 2.0, app.Sketch().EstimateString("Gianluca"))

	stats, err = app.Ingest(context.Background(), true, strings.NewReader("26\n131\n742\n26\n26\n12\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Records)
	assert.Equal(t, 3.0, app.Sketch().EstimateInt(26))
}

func TestLogAndResetClearsWindow(t *testing.T) {
	app := newTestApp(t)
	call(app.Handler(), fasthttp.MethodPost, "/update?key=a")
	call(app.Handler(), fasthttp.MethodGet, "/estimate?key=a")

	app.logAndReset(time.Second)
	assert.Zero(t, app.updates)
	assert.Zero(t, app.estimates)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := newTestConfig()
	cfg.Sketch.Server.Addr = freeAddr(t)
	cfg.Sketch.Logs.Stats = true
	cfg.Sketch.Logs.StatsInterval = 10 * time.Millisecond

	app, err := New(cfg, metrics.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	var (
		status int
		body   []byte
	)
	require.Eventually(t, func() bool {
		status, body, err = fasthttp.Get(nil, "http://"+cfg.Sketch.Server.Addr+"/estimate?key=x")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(body), `"estimate":0`)

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func freeAddr(t *testing.T) string {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
