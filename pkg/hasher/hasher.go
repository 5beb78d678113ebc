// Package hasher provides bucket index functions for hashtable.Table.
//
// Every hasher maps a key to an index in [0, Buckets).
package hasher

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"github.com/graph-guard/chaintable/pkg/xxhash"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/constraints"
)

// Names of the hashers resolvable by ByName.
const (
	NameModulo = "modulo"
	NameXXH3   = "xxh3"
	NameXXH64  = "xxh64"
)

// ErrZeroBuckets is the panic value of hashers
// configured with zero buckets.
var ErrZeroBuckets = errors.New("hasher: number of buckets must be greater than zero")

// Interface is implemented by all hashers of this package.
type Interface[K constraints.Unsigned] interface{ Hash(K) uint64 }

// Modulo maps k to k % Buckets.
type Modulo[K constraints.Unsigned] struct {
	Buckets uint64
}

// Hash returns the bucket index of k.
func (h Modulo[K]) Hash(k K) uint64 {
	return reduce(uint64(k), h.Buckets)
}

// XXH3 hashes the 8 little-endian bytes of the key with XXH3-64
// from github.com/zeebo/xxh3 and reduces the result to Buckets.
type XXH3[K constraints.Unsigned] struct {
	Seed    uint64
	Buckets uint64
}

// Hash returns the bucket index of k.
func (h XXH3[K]) Hash(k K) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return reduce(xxh3.HashSeed(b[:], h.Seed), h.Buckets)
}

// XXH64 hashes the little-endian bytes of the key with XXH64
// and reduces the result to Buckets.
// Keys up to 32 bits wide are hashed as 4 bytes, wider keys as 8.
type XXH64[K constraints.Unsigned] struct {
	Seed    uint64
	Buckets uint64
}

// Hash returns the bucket index of k.
func (h XXH64[K]) Hash(k K) uint64 {
	if uint64(^K(0)) <= math.MaxUint32 {
		return reduce(xxhash.Sum64Uint32(h.Seed, uint32(k)), h.Buckets)
	}
	return reduce(xxhash.Sum64Uint64(h.Seed, uint64(k)), h.Buckets)
}

// reduce folds hash into [0, buckets).
// Panics with ErrZeroBuckets if buckets is zero.
func reduce(hash, buckets uint64) uint64 {
	if buckets == 0 {
		panic(ErrZeroBuckets)
	}
	return hash % buckets
}

// Constant maps every key to the same index.
// Useful for forcing all keys into a single chain.
type Constant[K constraints.Unsigned] uint64

// Hash returns the constant index regardless of k.
func (h Constant[K]) Hash(K) uint64 { return uint64(h) }

type bounded[K constraints.Unsigned] struct {
	h       Interface[K]
	buckets uint64
}

func (b bounded[K]) Hash(k K) uint64 { return b.h.Hash(k) % b.buckets }

// Bounded wraps h folding any index it returns into [0, buckets).
// Panics with ErrZeroBuckets if buckets is zero.
func Bounded[K constraints.Unsigned](
	h Interface[K],
	buckets uint64,
) Interface[K] {
	if buckets == 0 {
		panic(ErrZeroBuckets)
	}
	return bounded[K]{h: h, buckets: buckets}
}

// ByName returns the hasher registered under name.
// Returns *ErrorUnknown if there's no such hasher.
func ByName[K constraints.Unsigned](
	name string,
	seed, buckets uint64,
) (Interface[K], error) {
	switch name {
	case NameModulo:
		return Modulo[K]{Buckets: buckets}, nil
	case NameXXH3:
		return XXH3[K]{Seed: seed, Buckets: buckets}, nil
	case NameXXH64:
		return XXH64[K]{Seed: seed, Buckets: buckets}, nil
	}
	return nil, &ErrorUnknown{Name: name}
}

// Names returns the names of all hashers resolvable by ByName.
func Names() []string {
	return []string{NameModulo, NameXXH3, NameXXH64}
}

// ErrorUnknown is returned by ByName for an unregistered hasher name.
type ErrorUnknown struct {
	Name string
}

func (e ErrorUnknown) Error() string {
	var b strings.Builder
	b.WriteString("unknown hasher ")
	b.WriteString(`"` + e.Name + `"`)
	b.WriteString(" (available: ")
	b.WriteString(strings.Join(Names(), ", "))
	b.WriteString(")")
	return b.String()
}
