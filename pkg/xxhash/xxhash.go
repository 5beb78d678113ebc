// Package xxhash provides allocation-free XXH64 hashing of fixed-width
// integer keys.
//
// The output is identical to XXH64 (github.com/pierrec/xxHash) of the
// key's little-endian byte representation.
package xxhash

const (
	prime64_1 = 11400714785074694791
	prime64_2 = 14029467366897019727
	prime64_3 = 1609587929392839161
	prime64_4 = 9650029242287828579
	prime64_5 = 2870177450012600261
)

// Sum64Uint64 returns the XXH64 hash of the 8 little-endian bytes of v.
func Sum64Uint64(seed, v uint64) uint64 {
	h64 := seed + prime64_5 + 8
	h64 ^= rol31(v*prime64_2) * prime64_1
	h64 = rol27(h64)*prime64_1 + prime64_4
	return avalanche(h64)
}

// Sum64Uint32 returns the XXH64 hash of the 4 little-endian bytes of v.
func Sum64Uint32(seed uint64, v uint32) uint64 {
	h64 := seed + prime64_5 + 4
	h64 ^= uint64(v) * prime64_1
	h64 = rol23(h64)*prime64_2 + prime64_3
	return avalanche(h64)
}

func avalanche(h64 uint64) uint64 {
	h64 ^= h64 >> 33
	h64 *= prime64_2
	h64 ^= h64 >> 29
	h64 *= prime64_3
	h64 ^= h64 >> 32
	return h64
}

func rol23(u uint64) uint64 { return u<<23 | u>>41 }
func rol27(u uint64) uint64 { return u<<27 | u>>37 }
func rol31(u uint64) uint64 { return u<<31 | u>>33 }
