// Package hasher holds the hash primitives used by the sketch: seeded 64-bit
// mixers for row hashing and string-to-domain mappers for text keys.
package hasher

import (
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// StrongFunc is a pure seed-parameterized hash over the integer domain.
// Same (value, seed) must always produce the same output.
type StrongFunc func(value, seed uint64) uint64

// DomainFunc maps a text key into the integer domain. Must be deterministic and total.
type DomainFunc func(key string) uint64

const (
	Mix64Name   = "mix64"
	Murmur3Name = "murmur3"
	XXH3Name    = "xxh3"
	XXHashName  = "xxhash"
)

var UnknownHashError = errors.New("unknown hash function")

// Mix64 is an xor-seeded murmur3 fmix64 finalizer.
func Mix64(value, seed uint64) uint64 {
	x := value ^ seed
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Murmur3 hashes the little-endian bytes of value with murmur3 x64.
// The 64-bit seed is folded into murmur3's 32-bit seed.
func Murmur3(value, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return murmur3.Sum64WithSeed(buf[:], uint32(seed)^uint32(seed>>32))
}

// XXH3 hashes the little-endian bytes of value with seeded xxh3.
func XXH3(value, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return xxh3.HashSeed(buf[:], seed)
}

// XXH3String is the default text key mapper.
func XXH3String(key string) uint64 {
	return xxh3.HashString(key)
}

// XXHashString maps text keys with xxhash64.
func XXHashString(key string) uint64 {
	return xxhash.Sum64String(key)
}

// StrongByName resolves a strong hash by its config name. Empty name means Mix64.
func StrongByName(name string) (StrongFunc, error) {
	switch name {
	case "", Mix64Name:
		return Mix64, nil
	case Murmur3Name:
		return Murmur3, nil
	case XXH3Name:
		return XXH3, nil
	default:
		return nil, fmt.Errorf("strong hash %q: %w", name, UnknownHashError)
	}
}

// DomainByName resolves a text key mapper by its config name. Empty name means xxh3.
func DomainByName(name string) (DomainFunc, error) {
	switch name {
	case "", XXH3Name:
		return XXH3String, nil
	case XXHashName:
		return XXHashString, nil
	default:
		return nil, fmt.Errorf("domain hash %q: %w", name, UnknownHashError)
	}
}
