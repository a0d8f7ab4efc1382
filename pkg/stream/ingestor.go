package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"io"
	"sync/atomic"
)

const maxLineSize = 1 << 20

// Stats summarizes one Ingest call.
type Stats struct {
	Records int64 // applied records
	Skipped int64 // malformed lines
	Weight  int64 // sum of applied weights
}

// Ingestor fans readers out to parsing goroutines and funnels every record
// into a single writer, so the target never sees concurrent updates.
type Ingestor struct {
	target  Applier
	workers int
	buffer  int
	ints    bool
}

// NewIngestor creates an ingestor. workers bounds concurrent readers, buffer is
// the queue length in front of the writer. With ints keys are parsed as int64.
func NewIngestor(target Applier, workers, buffer int, ints bool) *Ingestor {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Ingestor{target: target, workers: workers, buffer: buffer, ints: ints}
}

// Ingest reads all readers to EOF and applies their records. It stops early on
// ctx cancellation or a read error, after the writer drained what was queued.
func (in *Ingestor) Ingest(ctx context.Context, readers ...io.Reader) (Stats, error) {
	var (
		stats   Stats
		skipped int64
		records = make(chan Record, in.buffer)
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)

		producers, pctx := errgroup.WithContext(gctx)
		producers.SetLimit(in.workers)
		for idx, r := range readers {
			producers.Go(func() error {
				if err := in.scan(pctx, r, records, &skipped); err != nil {
					return fmt.Errorf("reader #%d: %w", idx, err)
				}
				return nil
			})
		}
		return producers.Wait()
	})

	g.Go(func() error {
		for rec := range records {
			in.target.Apply(rec)
			stats.Records++
			stats.Weight += rec.Weight
		}
		return nil
	})

	err := g.Wait()
	stats.Skipped = atomic.LoadInt64(&skipped)

	log.Debug().
		Int64("records", stats.Records).
		Int64("skipped", stats.Skipped).
		Int64("weight", stats.Weight).
		Msg("[ingest] finished")

	return stats, err
}

func (in *Ingestor) scan(ctx context.Context, r io.Reader, out chan<- Record, skipped *int64) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := ParseRecord(scanner.Text(), in.ints)
		if err != nil {
			if !errors.Is(err, EmptyRecordError) {
				atomic.AddInt64(skipped, 1)
				log.Warn().Err(err).Msg("[ingest] skipping line")
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- rec:
		}
	}

	return scanner.Err()
}
