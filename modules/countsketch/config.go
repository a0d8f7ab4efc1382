package countsketch

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func (app *App) configure() error {
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(app.cfg.Sketch.Logs.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().Msgf("[config] loaded=%+v", app.cfg.Sketch)

	return nil
}
