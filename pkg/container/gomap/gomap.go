// package gomap provides a container.Mapper implementation
// backed by Go's native map for reference.
package gomap

import "golang.org/x/exp/constraints"

type Gomap[K constraints.Unsigned, V any] struct {
	m       map[K]V
	release func(V)
}

func New[K constraints.Unsigned, V any](
	capacity int,
	release func(V),
) *Gomap[K, V] {
	return &Gomap[K, V]{
		m:       make(map[K]V, capacity),
		release: release,
	}
}

func (m *Gomap[K, V]) Insert(key K, value V) (previous V, replaced bool) {
	previous, replaced = m.m[key]
	m.m[key] = value
	return previous, replaced
}

func (m *Gomap[K, V]) Get(key K) (v V, ok bool) {
	v, ok = m.m[key]
	return v, ok
}

func (m *Gomap[K, V]) Remove(key K) (v V, ok bool) {
	if v, ok = m.m[key]; ok {
		delete(m.m, key)
	}
	return v, ok
}

func (m *Gomap[K, V]) Delete(key K) {
	if v, ok := m.Remove(key); ok && m.release != nil {
		m.release(v)
	}
}

func (m *Gomap[K, V]) Reset() {
	if m.release != nil {
		for _, v := range m.m {
			m.release(v)
		}
	}
	m.m = make(map[K]V)
}

func (m *Gomap[K, V]) Len() int {
	return len(m.m)
}

func (m *Gomap[K, V]) Visit(fn func(K, V) bool) {
	for k, v := range m.m {
		if fn(k, v) {
			break
		}
	}
}
