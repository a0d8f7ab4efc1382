package countsketch

import (
	"context"
	"github.com/Borislavv/go-count-sketch/pkg/utils"
	"github.com/rs/zerolog/log"
	"runtime"
	"sync/atomic"
	"time"
)

// runStatsLogger periodically logs update and estimate rates, if enabled.
func (app *App) runStatsLogger(ctx context.Context) {
	if !app.cfg.Sketch.Logs.Stats {
		return
	}

	interval := app.cfg.Sketch.Logs.StatsInterval
	go func() {
		t := utils.NewTicker(ctx, interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t:
				app.logAndReset(interval)
				runtime.Gosched()
			}
		}
	}()
}

// logAndReset prints and resets stat counters for one window.
func (app *App) logAndReset(window time.Duration) {
	var (
		updates   = atomic.SwapInt64(&app.updates, 0)
		estimates = atomic.SwapInt64(&app.estimates, 0)
		secs      = window.Seconds()
	)

	if updates <= 0 && estimates <= 0 {
		return
	}

	logEvent := log.Info()

	if app.cfg.IsProd() {
		logEvent.
			Str("target", "stats").
			Int64("updates", updates).
			Int64("estimates", estimates).
			Str("window", window.String())
	}

	logEvent.Msgf("[stats][%s] %d updates (%.1f/s), %d estimates (%.1f/s)",
		window, updates, float64(updates)/secs, estimates, float64(estimates)/secs)
}
