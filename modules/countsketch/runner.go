package countsketch

import (
	"context"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// Serve runs the HTTP API until ctx is done.
func (app *App) Serve(ctx context.Context) error {
	log.Info().Msg("[server] starting")

	app.runStatsLogger(ctx)

	srv := &fasthttp.Server{
		Handler: app.Handler(),
		Name:    "countsketch",
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Error().Err(err).Msg("[server] failed to shutdown")
		}
	}()

	addr := app.cfg.Sketch.Server.Addr
	log.Info().Msgf("[server] listening on %s", addr)

	if err := srv.ListenAndServe(addr); err != nil {
		log.Error().Err(err).Msg("[server] stopped")
		return err
	}

	log.Info().Msg("[server] has been stopped")
	return nil
}
