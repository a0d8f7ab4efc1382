package mock

import (
	"strconv"
	"strings"
)

// GenerateRecords renders keys as ingest lines. Every key whose index is a
// multiple of weightEvery carries an explicit weight of weightEvery instead of
// the implicit 1.
func GenerateRecords(keys []string, weightEvery int) string {
	var b strings.Builder
	for i, k := range keys {
		b.WriteString(k)
		if weightEvery > 0 && i%weightEvery == 0 {
			b.WriteByte('\t')
			b.WriteString(strconv.Itoa(weightEvery))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RecordsTotal is the total weight GenerateRecords emits for key.
func RecordsTotal(keys []string, weightEvery int, key string) int64 {
	var total int64
	for i, k := range keys {
		if k != key {
			continue
		}
		if weightEvery > 0 && i%weightEvery == 0 {
			total += int64(weightEvery)
		} else {
			total++
		}
	}
	return total
}
