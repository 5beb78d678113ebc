// Package hashtable provides a hash table with a fixed number of buckets
// mapping unsigned integer keys to values.
// Collisions are resolved by chaining: each bucket holds a singly linked
// list of entries, the most recently inserted key at its head.
// The table never grows or shrinks its bucket array.
//
// The table tracks the ownership of stored values.
// Values handed back by Insert and Remove belong to the caller again,
// the table never releases them. Values destroyed by the table itself
// (Delete, Reset and Destroy) are passed to the release function
// provided during initialization exactly once.
//
// A Table is not safe for concurrent use.
package hashtable

import (
	"errors"
	"strconv"
	"strings"

	"github.com/graph-guard/chaintable/pkg/hasher"
	"golang.org/x/exp/constraints"
)

// ErrDestroyed is the panic value of operations invoked on
// a table that was already destroyed.
var ErrDestroyed = errors.New("use of destroyed hash table")

// Hasher maps a key to a bucket index.
// The returned index must be lower than the number of buckets,
// see hasher.Bounded for a wrapper enforcing it.
type Hasher[K constraints.Unsigned] interface{ Hash(K) uint64 }

// HashFunc adapts an ordinary function to the Hasher interface.
type HashFunc[K constraints.Unsigned] func(K) uint64

// Hash returns f(k).
func (f HashFunc[K]) Hash(k K) uint64 { return f(k) }

type entry[K constraints.Unsigned, V any] struct {
	key   K
	value V
	next  *entry[K, V]
}

// Table is a fixed-size chained hash table.
type Table[K constraints.Unsigned, V any] struct {
	buckets   []*entry[K, V]
	hasher    Hasher[K]
	release   func(V)
	size      int
	destroyed bool
}

// New creates a new table with numBuckets empty buckets.
// Returns *ErrorConfig if numBuckets is lower than 1.
//
// If hasher is nil, XXH3 from github.com/zeebo/xxh3
// with seed 0 is used.
// release is called for every value destroyed by the table
// and may be nil.
func New[K constraints.Unsigned, V any](
	numBuckets int,
	hasher Hasher[K],
	release func(V),
) (*Table[K, V], error) {
	if numBuckets < 1 {
		return nil, &ErrorConfig{NumBuckets: numBuckets}
	}
	if hasher == nil {
		hasher = defaultHasher[K](numBuckets)
	}
	return &Table[K, V]{
		buckets: make([]*entry[K, V], numBuckets),
		hasher:  hasher,
		release: release,
	}, nil
}

func defaultHasher[K constraints.Unsigned](numBuckets int) Hasher[K] {
	return hasher.XXH3[K]{Buckets: uint64(numBuckets)}
}

// index returns the bucket index of key.
// Panics with *ErrorIndexOutOfRange if the hasher misbehaves.
func (t *Table[K, V]) index(key K) uint64 {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	i := t.hasher.Hash(key)
	if i >= uint64(len(t.buckets)) {
		panic(&ErrorIndexOutOfRange{
			Key:        uint64(key),
			Index:      i,
			NumBuckets: len(t.buckets),
		})
	}
	return i
}

// find returns the bucket index of key and the entry holding it,
// or a nil entry if there's none.
func (t *Table[K, V]) find(key K) (i uint64, e *entry[K, V]) {
	i = t.index(key)
	for e = t.buckets[i]; e != nil; e = e.next {
		if e.key == key {
			return i, e
		}
	}
	return i, nil
}

// Insert associates key with value.
// If key already exists its value is replaced in place and
// (previous, true) is returned. The previous value is owned by
// the caller from now on and isn't released by the table.
// Otherwise a new entry becomes the head of its bucket
// and (zeroValue, false) is returned.
func (t *Table[K, V]) Insert(key K, value V) (previous V, replaced bool) {
	i, e := t.find(key)
	if e != nil {
		previous, e.value = e.value, value
		return previous, true
	}
	t.buckets[i] = &entry[K, V]{key: key, value: value, next: t.buckets[i]}
	t.size++
	return previous, false
}

// Get returns (value, true) if key exists,
// otherwise returns (zeroValue, false).
func (t *Table[K, V]) Get(key K) (value V, ok bool) {
	if _, e := t.find(key); e != nil {
		return e.value, true
	}
	return value, false
}

// Remove detaches the entry of key and returns (value, true).
// Ownership of the value is transferred to the caller.
// Returns (zeroValue, false) and leaves the table untouched
// if key doesn't exist.
func (t *Table[K, V]) Remove(key K) (value V, ok bool) {
	i := t.index(key)
	var prev *entry[K, V]
	for e := t.buckets[i]; e != nil; prev, e = e, e.next {
		if e.key != key {
			continue
		}
		if prev == nil {
			// Head of chain
			t.buckets[i] = e.next
		} else {
			prev.next = e.next
		}
		value = e.value
		*e = entry[K, V]{}
		t.size--
		return value, true
	}
	return value, false
}

// Delete removes the entry of key and releases its value.
// Noop if key doesn't exist.
func (t *Table[K, V]) Delete(key K) {
	if v, ok := t.Remove(key); ok {
		t.releaseValue(v)
	}
}

// Reset removes all entries releasing their values.
// Unlike Destroy the table remains usable.
func (t *Table[K, V]) Reset() {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	t.clear()
}

// Destroy removes all entries releasing their values
// and makes the table unusable. Any further operation
// except Destroy, Destroyed and Len panics with ErrDestroyed.
// Destroying a nil or an already destroyed table is a noop.
func (t *Table[K, V]) Destroy() {
	if t == nil || t.destroyed {
		return
	}
	t.clear()
	t.buckets, t.hasher, t.release = nil, nil, nil
	t.destroyed = true
}

// Destroyed returns true if the table was destroyed.
func (t *Table[K, V]) Destroyed() bool { return t == nil || t.destroyed }

func (t *Table[K, V]) clear() {
	for i := range t.buckets {
		for e := t.buckets[i]; e != nil; {
			next := e.next
			v := e.value
			*e = entry[K, V]{}
			t.releaseValue(v)
			e = next
		}
		t.buckets[i] = nil
	}
	t.size = 0
}

func (t *Table[K, V]) releaseValue(v V) {
	if t.release != nil {
		t.release(v)
	}
}

// Len returns the number of stored key-value pairs.
func (t *Table[K, V]) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// NumBuckets returns the fixed number of buckets.
func (t *Table[K, V]) NumBuckets() int {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	return len(t.buckets)
}

// Visit calls fn for every stored key-value pair in bucket order.
// Returns immediately if fn returns true.
// fn must not modify the table.
func (t *Table[K, V]) Visit(fn func(key K, value V) (stop bool)) {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	for i := range t.buckets {
		for e := t.buckets[i]; e != nil; e = e.next {
			if fn(e.key, e.value) {
				return
			}
		}
	}
}

// VisitAll calls fn for every stored key-value pair in bucket order.
// fn must not modify the table.
func (t *Table[K, V]) VisitAll(fn func(key K, value V)) {
	t.Visit(func(key K, value V) bool {
		fn(key, value)
		return false
	})
}

// ErrorConfig is returned by New for an illegal bucket count.
type ErrorConfig struct {
	NumBuckets int
}

func (e ErrorConfig) Error() string {
	var b strings.Builder
	b.WriteString("illegal number of buckets: ")
	b.WriteString(strconv.Itoa(e.NumBuckets))
	b.WriteString(" (hash table has to contain at least 1 bucket)")
	return b.String()
}

// ErrorIndexOutOfRange is the panic value of operations
// for which the hasher returned an index outside of the bucket array.
type ErrorIndexOutOfRange struct {
	Key        uint64
	Index      uint64
	NumBuckets int
}

func (e ErrorIndexOutOfRange) Error() string {
	var b strings.Builder
	b.WriteString("hasher returned index ")
	b.WriteString(strconv.FormatUint(e.Index, 10))
	b.WriteString(" for key ")
	b.WriteString(strconv.FormatUint(e.Key, 10))
	b.WriteString(" (number of buckets: ")
	b.WriteString(strconv.Itoa(e.NumBuckets))
	b.WriteString(")")
	return b.String()
}
