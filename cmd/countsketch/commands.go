package main

import (
	"context"
	"fmt"
	"github.com/Borislavv/go-count-sketch/modules/countsketch"
	"github.com/Borislavv/go-count-sketch/pkg/prometheus/metrics"
	"github.com/Borislavv/go-count-sketch/pkg/sketch"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func newExampleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Count a few names and numbers and print two frequencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("epsilon") {
				cfg.Sketch.Epsilon = 0.01
			}
			if !cmd.Flags().Changed("gamma") {
				cfg.Sketch.Gamma = 0.1
			}

			counter, err := countsketch.NewSketch(cfg)
			if err != nil {
				return err
			}

			for _, name := range []string{"Gianluca", "Marco", "Luca", "Gianluca", "Anna"} {
				counter.Add(name)
			}
			for _, n := range []int64{26, 131, 742, 26, 26, 12} {
				counter.AddInt(n)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "The frequency of 'Gianluca' is %g\n", counter.EstimateString("Gianluca"))
			fmt.Fprintf(out, "The frequency of '26' is %g\n", counter.EstimateInt(26))
			return nil
		},
	}
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var (
		ints    bool
		queries []string
	)

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Stream records (key or key<TAB>weight per line) from files or stdin, then print estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			app, err := countsketch.New(cfg, metrics.New())
			if err != nil {
				return err
			}

			readers := make([]io.Reader, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				defer f.Close()
				readers = append(readers, f)
			}
			if len(readers) == 0 {
				readers = append(readers, cmd.InOrStdin())
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			stats, err := app.Ingest(ctx, ints, readers...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records=%d weight=%d skipped=%d\n", stats.Records, stats.Weight, stats.Skipped)
			for _, q := range queries {
				if ints {
					v, err := strconv.ParseInt(q, 10, 64)
					if err != nil {
						return fmt.Errorf("query %q is not an integer: %w", q, err)
					}
					fmt.Fprintf(out, "%s\t%g\n", q, app.Sketch().EstimateInt(v))
					continue
				}
				fmt.Fprintf(out, "%s\t%g\n", q, app.Sketch().EstimateString(q))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ints, "int", false, "parse keys as int64")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "key to estimate after ingesting (repeatable)")

	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve update/estimate/stats/metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Sketch.Server.Addr = addr
			}

			app, err := countsketch.New(cfg, metrics.New())
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return app.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config")

	return cmd
}

func newSizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the sketch geometry for epsilon and gamma",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			maxCounters := cfg.Sketch.MaxCounters
			if maxCounters == 0 {
				maxCounters = sketch.DefaultMaxCounters
			}

			depth, width, err := sketch.Dimensions(cfg.Sketch.Epsilon, cfg.Sketch.Gamma, maxCounters)
			if err != nil {
				return err
			}

			counters := depth * width
			fmt.Fprintf(cmd.OutOrStdout(), "epsilon=%g gamma=%g depth=%d width=%d counters=%s memory=%s\n",
				cfg.Sketch.Epsilon, cfg.Sketch.Gamma, depth, width,
				humanize.Comma(int64(counters)), humanize.IBytes(uint64(counters)*8))
			return nil
		},
	}
}
