package countsketch

import (
	"fmt"
	"github.com/Borislavv/go-count-sketch/pkg/config"
	"github.com/Borislavv/go-count-sketch/pkg/hasher"
	"github.com/Borislavv/go-count-sketch/pkg/seed"
	"github.com/Borislavv/go-count-sketch/pkg/sketch"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// NewSketch builds a sketch from cfg. Explicit seeds win over a fixed seed,
// which wins over the non-deterministic default.
func NewSketch(cfg *config.Sketch) (*sketch.CountSketch, error) {
	box := cfg.Sketch

	strong, err := hasher.StrongByName(box.Hash)
	if err != nil {
		return nil, err
	}
	domain, err := hasher.DomainByName(box.Domain)
	if err != nil {
		return nil, err
	}

	opts := []sketch.Option{
		sketch.WithStrongHash(strong),
		sketch.WithDomainHash(domain),
	}

	switch {
	case len(box.Seeds) > 0:
		if err = checkSeeds(box); err != nil {
			return nil, err
		}
		opts = append(opts, sketch.WithSeedSource(seed.NewFixed(box.Seeds...)))
	case box.Seed != nil:
		opts = append(opts, sketch.WithSeedSource(seed.New(*box.Seed)))
	}

	if box.MaxCounters > 0 {
		opts = append(opts, sketch.WithMaxCounters(box.MaxCounters))
	}

	sk, err := sketch.New(box.Epsilon, box.Gamma, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf("[sketch] %dx%d counters (%s), hash=%s, domain=%s",
		sk.Depth(), sk.Width(), humanize.IBytes(uint64(sk.Bytes())), nameOr(box.Hash, hasher.Mix64Name), nameOr(box.Domain, hasher.XXH3Name))

	return sk, nil
}

// checkSeeds requires one bucket and one sign seed per row. A shorter list would
// make seed.Fixed wrap and hand the same seeds to several rows.
func checkSeeds(box config.SketchBox) error {
	maxCounters := box.MaxCounters
	if maxCounters <= 0 {
		maxCounters = sketch.DefaultMaxCounters
	}

	depth, _, err := sketch.Dimensions(box.Epsilon, box.Gamma, maxCounters)
	if err != nil {
		return err
	}
	if len(box.Seeds) != 2*depth {
		return fmt.Errorf("%w: seeds must hold %d values (bucket and sign seed for each of %d rows), got %d",
			config.InvalidConfigError, 2*depth, depth, len(box.Seeds))
	}
	return nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
