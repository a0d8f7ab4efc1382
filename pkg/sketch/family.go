package sketch

import (
	"github.com/Borislavv/go-count-sketch/pkg/hasher"
	"github.com/Borislavv/go-count-sketch/pkg/seed"
)

// family is the seeded hash family: one bucket seed and one sign seed per row.
type family struct {
	hash        hasher.StrongFunc
	bucketSeeds []uint64
	signSeeds   []uint64
	width       uint64
}

// newFamily draws seeds row by row, bucket seed first.
func newFamily(depth, width int, src seed.Source, hash hasher.StrongFunc) *family {
	f := &family{
		hash:        hash,
		bucketSeeds: make([]uint64, depth),
		signSeeds:   make([]uint64, depth),
		width:       uint64(width),
	}
	for i := 0; i < depth; i++ {
		f.bucketSeeds[i] = src.Uint64()
		f.signSeeds[i] = src.Uint64()
	}
	return f
}

func (f *family) bucket(item uint64, row int) uint64 {
	return f.hash(item, f.bucketSeeds[row]) % f.width
}

// sign maps the low hash bit to -1 (0) or +1 (1).
func (f *family) sign(item uint64, row int) int64 {
	return int64(f.hash(item, f.signSeeds[row])&1)*2 - 1
}
