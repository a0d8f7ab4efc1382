package stream

import (
	"errors"
	"fmt"
	"github.com/Borislavv/go-count-sketch/pkg/sketch"
	"strconv"
	"strings"
)

var (
	EmptyRecordError     = errors.New("empty record")
	MalformedRecordError = errors.New("malformed record")
)

// Record is one parsed stream line: a key and the weight to add to it.
type Record struct {
	Key    string
	Int    int64
	IsInt  bool
	Weight int64
}

// ParseRecord parses "key" or "key<TAB>weight". With ints the key must be a
// base-10 int64. Surrounding whitespace is ignored.
func ParseRecord(line string, ints bool) (Record, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, EmptyRecordError
	}

	rec := Record{Key: line, Weight: 1}
	if key, weight, found := strings.Cut(line, "\t"); found {
		w, err := strconv.ParseInt(strings.TrimSpace(weight), 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("weight of %q: %w", line, MalformedRecordError)
		}
		rec.Key, rec.Weight = strings.TrimSpace(key), w
	}

	if ints {
		v, err := strconv.ParseInt(rec.Key, 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("int key %q: %w", rec.Key, MalformedRecordError)
		}
		rec.Int, rec.IsInt = v, true
	}

	return rec, nil
}

// ApplyTo adds the record to s.
func (r Record) ApplyTo(s *sketch.CountSketch) {
	if r.IsInt {
		s.UpdateInt(r.Int, r.Weight)
		return
	}
	s.UpdateString(r.Key, r.Weight)
}
