package main

import (
	"errors"
	"fmt"
	"github.com/Borislavv/go-count-sketch/pkg/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"io"
	"io/fs"
	"os"
)

type rootOptions struct {
	configPath string
	epsilon    float64
	gamma      float64
	seed       uint64
	hash       string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "countsketch",
		Short:         "Approximate frequency counting over streams with a Count-Sketch",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "yaml config path (default $"+config.EnvConfigPath+")")
	flags.Float64Var(&opts.epsilon, "epsilon", 0, "error bound in (0, 1], overrides config")
	flags.Float64Var(&opts.gamma, "gamma", 0, "failure probability in (0, 1], overrides config")
	flags.Uint64Var(&opts.seed, "seed", 0, "fixed seed for reproducible runs, overrides config")
	flags.StringVar(&opts.hash, "hash", "", "row hash: mix64, murmur3 or xxh3, overrides config")

	root.AddCommand(
		newExampleCmd(opts),
		newIngestCmd(opts),
		newServeCmd(opts),
		newSizeCmd(opts),
	)

	root.SetErrPrefix("countsketch:")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n%s", err, cmd.UsageString())
	})

	return root
}

// load reads config from --config, then $COUNTSKETCH_CONFIG, then defaults,
// and applies flag overrides on top.
func (opts *rootOptions) load(cmd *cobra.Command) (*config.Sketch, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			log.Error().Err(err).Msg("[config] failed to load")
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("epsilon") {
		cfg.Sketch.Epsilon = opts.epsilon
	}
	if flags.Changed("gamma") {
		cfg.Sketch.Gamma = opts.gamma
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Sketch.Seed = &seed
		cfg.Sketch.Seeds = nil
	}
	if flags.Changed("hash") {
		cfg.Sketch.Hash = opts.hash
	}

	return cfg, cfg.Validate()
}
