package mock

import (
	"github.com/Borislavv/go-count-sketch/pkg/seed"
	"math/rand/v2"
	"strconv"
)

const (
	zipfS = 1.2 // skew of generated streams
	zipfV = 1.0
)

// Key names the k-th most popular key of a generated stream.
func Key(k uint64) string {
	return "key-" + strconv.FormatUint(k, 10)
}

// GenerateZipfKeys produces a skewed stream of num keys drawn from distinct
// values. key-0 is the most frequent. Used in tests and benchmarks.
func GenerateZipfKeys(src seed.Source, num int, distinct uint64) []string {
	zipf := rand.NewZipf(rand.New(src), zipfS, zipfV, distinct-1)

	list := make([]string, 0, num)
	for i := 0; i < num; i++ {
		list = append(list, Key(zipf.Uint64()))
	}
	return list
}

// Frequencies returns exact counts for a generated stream.
func Frequencies(keys []string) map[string]int64 {
	freq := make(map[string]int64, len(keys)/4)
	for _, k := range keys {
		freq[k]++
	}
	return freq
}
