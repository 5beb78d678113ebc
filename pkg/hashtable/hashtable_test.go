package hashtable_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/graph-guard/chaintable/pkg/hasher"
	"github.com/graph-guard/chaintable/pkg/hashtable"
	"github.com/stretchr/testify/require"
)

type MockHasher[K uint32 | uint64] struct {
	Map map[K]uint64
}

func (h *MockHasher[K]) Hash(k K) uint64 {
	i, ok := h.Map[k]
	if !ok {
		panic(fmt.Errorf("unexpected key: %d", k))
	}
	return i
}

// Value counts how many times the table released it.
type Value struct {
	Name     string
	Released int
}

func release(v *Value) { v.Released++ }

func newTable(
	t *testing.T,
	numBuckets int,
	h hashtable.Hasher[uint32],
) *hashtable.Table[uint32, *Value] {
	tb, err := hashtable.New[uint32, *Value](numBuckets, h, release)
	require.NoError(t, err)
	require.NotNil(t, tb)
	return tb
}

func TestNewIllegalBuckets(t *testing.T) {
	for _, n := range []int{0, -1} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			tb, err := hashtable.New[uint32, string](n, nil, nil)
			require.Nil(t, tb)
			var e *hashtable.ErrorConfig
			require.True(t, errors.As(err, &e))
			require.Equal(t, n, e.NumBuckets)
			require.Equal(t, fmt.Sprintf(
				"illegal number of buckets: %d "+
					"(hash table has to contain at least 1 bucket)", n,
			), err.Error())
		})
	}
}

func TestDefaultHasher(t *testing.T) {
	for _, n := range []int{1, 7, 64} {
		tb, err := hashtable.New[uint64, int](n, nil, nil)
		require.NoError(t, err)
		for k := uint64(0); k < 500; k++ {
			_, replaced := tb.Insert(k, int(k))
			require.False(t, replaced)
		}
		require.Equal(t, 500, tb.Len())
		for k := uint64(0); k < 500; k++ {
			v, ok := tb.Get(k)
			require.True(t, ok)
			require.Equal(t, int(k), v)
		}
	}
}

func TestCollidingKeys(t *testing.T) {
	tb, err := hashtable.New[uint32, string](
		4, hasher.Modulo[uint32]{Buckets: 4}, nil,
	)
	require.NoError(t, err)

	p, replaced := tb.Insert(1, "a")
	require.False(t, replaced)
	require.Zero(t, p)

	// Collides with key 1 in bucket 1
	p, replaced = tb.Insert(5, "b")
	require.False(t, replaced)
	require.Zero(t, p)

	v, ok := tb.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", v)
	v, ok = tb.Get(5)
	require.True(t, ok)
	require.Equal(t, "b", v)

	v, ok = tb.Remove(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = tb.Get(1)
	require.False(t, ok)
	require.Zero(t, v)
	v, ok = tb.Get(5)
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestInsertGet(t *testing.T) {
	tb := newTable(t, 8, hashtable.HashFunc[uint32](func(k uint32) uint64 {
		return uint64(k % 8)
	}))
	values := make([]*Value, 32)
	for i := range values {
		values[i] = &Value{Name: fmt.Sprintf("v%d", i)}
		_, replaced := tb.Insert(uint32(i), values[i])
		require.False(t, replaced)
	}
	require.Equal(t, len(values), tb.Len())
	for i := range values {
		v, ok := tb.Get(uint32(i))
		require.True(t, ok)
		require.Same(t, values[i], v)
		require.Zero(t, v.Released)
	}
}

func TestInsertReplace(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	v1, v2 := &Value{Name: "v1"}, &Value{Name: "v2"}

	_, replaced := tb.Insert(3, v1)
	require.False(t, replaced)

	p, replaced := tb.Insert(3, v2)
	require.True(t, replaced)
	require.Same(t, v1, p)
	require.Equal(t, 1, tb.Len())

	v, ok := tb.Get(3)
	require.True(t, ok)
	require.Same(t, v2, v)

	// The previous value belongs to the caller
	require.Zero(t, v1.Released)
	require.Zero(t, v2.Released)
}

func TestInsertReplaceKeepsPosition(t *testing.T) {
	tb := newTable(t, 1, hasher.Constant[uint32](0))
	for _, k := range []uint32{1, 2, 3} {
		tb.Insert(k, &Value{Name: fmt.Sprintf("%d", k)})
	}
	tb.Insert(2, &Value{Name: "x"})
	require.Equal(t, []string{"3:3", "2:x", "1:1"}, visited(tb))
}

func TestRemove(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	v := &Value{Name: "v"}
	tb.Insert(10, v)

	r, ok := tb.Remove(10)
	require.True(t, ok)
	require.Same(t, v, r)
	require.Zero(t, r.Released)
	require.Zero(t, tb.Len())

	r, ok = tb.Get(10)
	require.False(t, ok)
	require.Nil(t, r)

	// Second removal finds nothing
	r, ok = tb.Remove(10)
	require.False(t, ok)
	require.Nil(t, r)
}

func TestDelete(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	v := &Value{Name: "v"}
	tb.Insert(7, v)

	tb.Delete(7)
	require.Equal(t, 1, v.Released)
	require.Zero(t, tb.Len())
	_, ok := tb.Get(7)
	require.False(t, ok)

	// Noop
	tb.Delete(7)
	require.Equal(t, 1, v.Released)
}

func TestDeleteNilRelease(t *testing.T) {
	tb, err := hashtable.New[uint32, string](2, nil, nil)
	require.NoError(t, err)
	tb.Insert(1, "a")
	tb.Delete(1)
	require.Zero(t, tb.Len())
}

func TestAbsent(t *testing.T) {
	for _, n := range []int{1, 2, 3, 16, 1021} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			tb := newTable(t, n, hasher.Modulo[uint32]{Buckets: uint64(n)})
			for _, k := range []uint32{0, 1, 2, 100, 1<<32 - 1} {
				v, ok := tb.Get(k)
				require.False(t, ok)
				require.Nil(t, v)
				v, ok = tb.Remove(k)
				require.False(t, ok)
				require.Nil(t, v)
			}

			// Same bucket, different key
			tb.Insert(uint32(n), &Value{})
			_, ok := tb.Get(uint32(2 * n))
			require.False(t, ok)
			_, ok = tb.Remove(uint32(2 * n))
			require.False(t, ok)
			require.Equal(t, 1, tb.Len())
		})
	}
}

func TestCollision(t *testing.T) {
	keys := []uint32{10, 20, 30, 40, 50}
	h := &MockHasher[uint32]{Map: map[uint32]uint64{}}
	for _, k := range keys {
		h.Map[k] = 0
	}
	h.Map[99] = 1

	// Every permutation of removal positions: head, middle and tail
	for _, order := range [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 4, 2},
	} {
		t.Run(fmt.Sprintf("%v", order), func(t *testing.T) {
			tb := newTable(t, 2, h)
			values := make(map[uint32]*Value, len(keys))
			for _, k := range keys {
				values[k] = &Value{Name: fmt.Sprintf("%d", k)}
				tb.Insert(k, values[k])
			}
			require.Equal(t, 5, tb.Stats().LongestChain)

			removed := map[uint32]bool{}
			for _, o := range order {
				k := keys[o]
				v, ok := tb.Remove(k)
				require.True(t, ok)
				require.Same(t, values[k], v)
				removed[k] = true

				// Neighbors must remain intact
				for _, k := range keys {
					v, ok := tb.Get(k)
					if removed[k] {
						require.False(t, ok, "key %d", k)
						continue
					}
					require.True(t, ok, "key %d", k)
					require.Same(t, values[k], v)
				}
				require.Equal(t, len(keys)-len(removed), tb.Len())
			}
			_, ok := tb.Get(99)
			require.False(t, ok)
			for _, v := range values {
				require.Zero(t, v.Released)
			}
		})
	}
}

func TestUniqueness(t *testing.T) {
	tb := newTable(t, 1, hasher.Constant[uint32](0))
	for i := 0; i < 10; i++ {
		tb.Insert(42, &Value{Name: fmt.Sprintf("%d", i)})
	}
	require.Equal(t, 1, tb.Len())
	require.Equal(t, []string{"42:9"}, visited(tb))
}

func TestDestroy(t *testing.T) {
	tb := newTable(t, 3, hasher.Modulo[uint32]{Buckets: 3})
	var values []*Value
	for k := uint32(0); k < 20; k++ {
		v := &Value{Name: fmt.Sprintf("%d", k)}
		values = append(values, v)
		tb.Insert(k, v)
	}
	removed, _ := tb.Remove(4)
	tb.Delete(5)

	tb.Destroy()
	require.True(t, tb.Destroyed())
	require.Zero(t, tb.Len())

	for i, v := range values {
		if v == removed {
			require.Zero(t, v.Released, "value %d", i)
			continue
		}
		require.Equal(t, 1, v.Released, "value %d", i)
	}

	// Destroying twice is a noop
	tb.Destroy()
	for i, v := range values {
		if v != removed {
			require.Equal(t, 1, v.Released, "value %d", i)
		}
	}
}

func TestDestroyNil(t *testing.T) {
	var tb *hashtable.Table[uint32, string]
	require.NotPanics(t, tb.Destroy)
	require.True(t, tb.Destroyed())
	require.Zero(t, tb.Len())
}

func TestUseAfterDestroy(t *testing.T) {
	tb := newTable(t, 2, nil)
	tb.Destroy()
	for name, fn := range map[string]func(){
		"Insert":     func() { tb.Insert(1, &Value{}) },
		"Get":        func() { tb.Get(1) },
		"Remove":     func() { tb.Remove(1) },
		"Delete":     func() { tb.Delete(1) },
		"Reset":      func() { tb.Reset() },
		"NumBuckets": func() { tb.NumBuckets() },
		"Visit":      func() { tb.VisitAll(func(uint32, *Value) {}) },
		"Stats":      func() { tb.Stats() },
	} {
		t.Run(name, func(t *testing.T) {
			require.PanicsWithValue(t, hashtable.ErrDestroyed, fn)
		})
	}
}

func TestIndexOutOfRange(t *testing.T) {
	tb := newTable(t, 4, hasher.Constant[uint32](4))
	const msg = "hasher returned index 4 for key 9 (number of buckets: 4)"
	require.PanicsWithError(t, msg, func() { tb.Insert(9, &Value{}) })
	require.PanicsWithError(t, msg, func() { tb.Get(9) })
	require.PanicsWithError(t, msg, func() { tb.Remove(9) })
	require.PanicsWithError(t, msg, func() { tb.Delete(9) })
	require.Zero(t, tb.Len())
}

func TestIndexBounded(t *testing.T) {
	tb := newTable(t, 4, hasher.Bounded[uint32](hasher.Constant[uint32](6), 4))
	v := &Value{}
	tb.Insert(9, v)
	r, ok := tb.Get(9)
	require.True(t, ok)
	require.Same(t, v, r)
	require.Equal(t, 1, tb.Stats().ChainLengths[1])
}

func TestReset(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	values := make([]*Value, 9)
	for i := range values {
		values[i] = &Value{}
		tb.Insert(uint32(i), values[i])
	}
	tb.Reset()
	require.False(t, tb.Destroyed())
	require.Zero(t, tb.Len())
	for i, v := range values {
		require.Equal(t, 1, v.Released)
		_, ok := tb.Get(uint32(i))
		require.False(t, ok)
	}

	// Remains usable
	v := &Value{}
	tb.Insert(1, v)
	r, ok := tb.Get(1)
	require.True(t, ok)
	require.Same(t, v, r)
}

func TestVisit(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	for _, k := range []uint32{1, 5, 9, 2, 0} {
		tb.Insert(k, &Value{Name: fmt.Sprintf("v%d", k)})
	}
	require.Equal(t, []string{
		"0:v0", "9:v9", "5:v5", "1:v1", "2:v2",
	}, visited(tb))

	var keys []uint32
	tb.Visit(func(k uint32, _ *Value) bool {
		keys = append(keys, k)
		return len(keys) == 2
	})
	require.Equal(t, []uint32{0, 9}, keys)
}

func TestStats(t *testing.T) {
	tb := newTable(t, 4, hasher.Modulo[uint32]{Buckets: 4})
	for _, k := range []uint32{1, 5, 9, 2, 6} {
		tb.Insert(k, &Value{})
	}
	s := tb.Stats()
	if d := cmp.Diff(hashtable.Stats{
		Entries:      5,
		Buckets:      4,
		Occupied:     2,
		LongestChain: 3,
		ChainLengths: map[int]int{0: 2, 2: 1, 3: 1},
	}, s); d != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", d)
	}
	require.Equal(t, 1.25, s.LoadFactor())
	require.Equal(t, 4, tb.NumBuckets())

	require.Zero(t, hashtable.Stats{}.LoadFactor())
}

func visited(tb *hashtable.Table[uint32, *Value]) (s []string) {
	tb.VisitAll(func(k uint32, v *Value) {
		s = append(s, fmt.Sprintf("%d:%s", k, v.Name))
	})
	return s
}
