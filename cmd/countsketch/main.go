package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"os"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Error().Err(err).Msg("[countsketch] failed")
		os.Exit(1)
	}
}
