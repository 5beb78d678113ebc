package hashtable

// Stats describes the distribution of entries over buckets.
type Stats struct {
	Entries  int
	Buckets  int
	Occupied int // Number of non-empty buckets

	// LongestChain is the length of the longest chain.
	LongestChain int

	// ChainLengths maps a chain length to the number
	// of buckets holding a chain of that length.
	// Empty buckets are counted under 0.
	ChainLengths map[int]int
}

// LoadFactor returns the ratio of entries to buckets.
func (s Stats) LoadFactor() float64 {
	if s.Buckets < 1 {
		return 0
	}
	return float64(s.Entries) / float64(s.Buckets)
}

// Stats computes the current chain length statistics.
func (t *Table[K, V]) Stats() Stats {
	if t.destroyed {
		panic(ErrDestroyed)
	}
	s := Stats{
		Entries:      t.size,
		Buckets:      len(t.buckets),
		ChainLengths: make(map[int]int),
	}
	for i := range t.buckets {
		l := 0
		for e := t.buckets[i]; e != nil; e = e.next {
			l++
		}
		if l > 0 {
			s.Occupied++
		}
		if l > s.LongestChain {
			s.LongestChain = l
		}
		s.ChainLengths[l]++
	}
	return s
}
