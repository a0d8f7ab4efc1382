// Package countsketch wires a sketch built from config to the ingest pipeline,
// the HTTP API and the periodic stats logger.
package countsketch

import (
	"context"
	"github.com/Borislavv/go-count-sketch/pkg/buffer"
	"github.com/Borislavv/go-count-sketch/pkg/config"
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics"
	"github.com/Borislavv/go-count-sketch/pkg/stream"
	"github.com/rs/zerolog/log"
	"io"
	"sync/atomic"
)

type App struct {
	cfg       *config.Sketch
	sketch    *stream.Guarded
	meter     metrics.Meter
	recent    *buffer.Ring
	updates   int64 // atomic, current stats window
	estimates int64 // atomic, current stats window
}

// New configures logging and builds the sketch described by cfg.
func New(cfg *config.Sketch, meter metrics.Meter) (*App, error) {
	app := &App{cfg: cfg, meter: meter}
	if err := app.configure(); err != nil {
		return nil, err
	}

	sk, err := NewSketch(cfg)
	if err != nil {
		return nil, err
	}

	app.sketch = stream.NewGuarded(sk)
	app.recent = buffer.NewRingBuffer(cfg.Sketch.Server.RecentKeys)
	app.meter.SetSketchGeometry(sk.Depth(), sk.Width(), sk.Bytes())

	return app, nil
}

func (app *App) Sketch() *stream.Guarded {
	return app.sketch
}

// Ingest streams records from readers into the sketch through a single writer.
func (app *App) Ingest(ctx context.Context, ints bool, readers ...io.Reader) (stream.Stats, error) {
	box := app.cfg.Sketch
	stats, err := stream.NewIngestor(app.sketch, box.Ingest.Workers, box.Ingest.Buffer, ints).Ingest(ctx, readers...)

	kind := metrics.KindString
	if ints {
		kind = metrics.KindInt
	}
	app.meter.IncUpdates(kind, uint64(stats.Records))
	atomic.AddInt64(&app.updates, stats.Records)

	if err != nil {
		log.Error().Err(err).Msg("[ingest] stopped")
		return stats, err
	}

	log.Info().Msgf("[ingest] applied %d records (weight %d, skipped %d)", stats.Records, stats.Weight, stats.Skipped)
	return stats, nil
}
