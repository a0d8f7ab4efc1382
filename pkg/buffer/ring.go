package buffer

import "sync/atomic"

// Ring is a lock-free circular buffer of recently seen domain values.
// Older values are overwritten once it wraps.
type Ring struct {
	buffer []slot
	mask   uint64
	pos    uint64 // atomic
}

// slot pairs a value with the 1-based push number that wrote it; 0 while a write is in flight.
type slot struct {
	seq uint64 // atomic
	key uint64 // atomic
}

func NewRingBuffer(size int) *Ring {
	if size <= 0 || size&(size-1) != 0 {
		panic("ring buffer size must be power of 2")
	}
	return &Ring{
		buffer: make([]slot, size),
		mask:   uint64(size - 1),
	}
}

func (r *Ring) Push(key uint64) {
	pos := atomic.AddUint64(&r.pos, 1) - 1
	s := &r.buffer[pos&r.mask]
	atomic.StoreUint64(&s.seq, 0)
	atomic.StoreUint64(&s.key, key)
	atomic.StoreUint64(&s.seq, pos+1)
}

// Snapshot returns the values pushed so far, at most the ring size, oldest first.
// Slots whose push is still in flight, or already overwritten by a newer one, are skipped.
func (r *Ring) Snapshot() []uint64 {
	pos := atomic.LoadUint64(&r.pos)
	size := uint64(len(r.buffer))

	n, start := pos, uint64(0)
	if pos > size {
		n, start = size, pos-size
	}

	buf := make([]uint64, 0, n)
	for i := start; i < pos; i++ {
		s := &r.buffer[i&r.mask]
		if atomic.LoadUint64(&s.seq) != i+1 {
			continue
		}
		key := atomic.LoadUint64(&s.key)
		if atomic.LoadUint64(&s.seq) != i+1 {
			continue
		}
		buf = append(buf, key)
	}
	return buf
}
