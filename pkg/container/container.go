// Package container defines the common interface of
// unsigned integer keyed maps used for differential testing
// and benchmarking of hashtable.Table against references.
package container

import "golang.org/x/exp/constraints"

type Mapper[K constraints.Unsigned, V any] interface {
	Insert(K, V) (previous V, replaced bool)
	Get(K) (v V, ok bool)
	Remove(K) (v V, ok bool)
	Delete(K)
	Reset()
	Len() int
	Visit(func(K, V) (stop bool))
}
