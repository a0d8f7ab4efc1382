package stream

import (
	"context"
	"errors"
	"github.com/Borislavv/go-count-sketch/pkg/mock"
	"github.com/Borislavv/go-count-sketch/pkg/seed"
	"github.com/Borislavv/go-count-sketch/pkg/sketch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"sync"
	"testing"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
}

func newSketch(t testing.TB, s uint64) *sketch.CountSketch {
	sk, err := sketch.New(0.05, 0.1, sketch.WithSeedSource(seed.New(s)))
	require.NoError(t, err)
	return sk
}

func TestParseRecord(t *testing.T) {
	cases := []struct {
		line string
		ints bool
		want Record
		err  error
	}{
		{line: "alpha", want: Record{Key: "alpha", Weight: 1}},
		{line: "  alpha  ", want: Record{Key: "alpha", Weight: 1}},
		{line: "alpha\t5", want: Record{Key: "alpha", Weight: 5}},
		{line: "alpha\t-3", want: Record{Key: "alpha", Weight: -3}},
		{line: "with space\t2", want: Record{Key: "with space", Weight: 2}},
		{line: "26", ints: true, want: Record{Key: "26", Int: 26, IsInt: true, Weight: 1}},
		{line: "-7\t4", ints: true, want: Record{Key: "-7", Int: -7, IsInt: true, Weight: 4}},
		{line: "", err: EmptyRecordError},
		{line: "   ", err: EmptyRecordError},
		{line: "alpha\tmany", err: MalformedRecordError},
		{line: "alpha", ints: true, err: MalformedRecordError},
	}
	for _, c := range cases {
		got, err := ParseRecord(c.line, c.ints)
		if c.err != nil {
			assert.ErrorIsf(t, err, c.err, "line %q", c.line)
			continue
		}
		require.NoErrorf(t, err, "line %q", c.line)
		assert.Equal(t, c.want, got)
	}
}

func TestIngestMatchesSequentialUpdates(t *testing.T) {
	keys := mock.GenerateZipfKeys(seed.New(1), 8_000, 300)
	parts := 4
	chunk := len(keys) / parts

	readers := make([]io.Reader, 0, parts)
	for p := 0; p < parts; p++ {
		readers = append(readers, strings.NewReader(mock.GenerateRecords(keys[p*chunk:(p+1)*chunk], 7)))
	}

	ingested := newSketch(t, 42)
	stats, err := NewIngestor(Direct(ingested), 3, 16, false).Ingest(context.Background(), readers...)
	require.NoError(t, err)
	assert.Equal(t, int64(len(keys)), stats.Records)
	assert.Zero(t, stats.Skipped)

	reference := newSketch(t, 42)
	var weight int64
	for p := 0; p < parts; p++ {
		part := keys[p*chunk : (p+1)*chunk]
		for i, k := range part {
			w := int64(1)
			if i%7 == 0 {
				w = 7
			}
			weight += w
			reference.UpdateString(k, w)
		}
	}
	assert.Equal(t, weight, stats.Weight)

	// updates commute, so arrival order does not matter
	for _, k := range []string{mock.Key(0), mock.Key(1), mock.Key(2), mock.Key(50), "missing"} {
		assert.Equal(t, reference.EstimateString(k), ingested.EstimateString(k), k)
	}
}

func TestIngestIntKeysAndSkips(t *testing.T) {
	sk := newSketch(t, 3)
	input := "26\n131\n\n742\n26\nnot-a-number\n26\t2\n12\n"

	stats, err := NewIngestor(NewGuarded(sk), 1, 0, true).Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Records)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(7), stats.Weight)

	assert.Equal(t, 4.0, sk.EstimateInt(26))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestIngestPropagatesReadErrors(t *testing.T) {
	sk := newSketch(t, 3)
	_, err := NewIngestor(Direct(sk), 2, 4, false).Ingest(
		context.Background(),
		strings.NewReader("a\nb\n"),
		failingReader{},
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk on fire")
	assert.ErrorContains(t, err, "reader #1")
}

func TestIngestHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sk := newSketch(t, 3)
	stats, err := NewIngestor(Direct(sk), 1, 0, false).Ingest(ctx, strings.NewReader("a\nb\nc\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Records)
}

func TestGuardedConcurrentAccess(t *testing.T) {
	g := NewGuarded(newSketch(t, 9))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				g.UpdateString("hot", 1)
				g.UpdateInt(int64(i), 1)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				_ = g.EstimateString("hot")
				_ = g.EstimateDomain(g.Sketch().Domain("hot"))
			}
		}()
	}
	wg.Wait()

	assert.InDelta(t, 4000, g.EstimateString("hot"), 4000*0.05)
}
