// Package statistics provides operation counters for hash table runs.
// Counters aren't synchronized, the same as the table they describe.
package statistics

import "time"

// Op identifies a counted table operation.
type Op uint8

const (
	_ Op = iota
	OpInsert
	OpGet
	OpRemove
	OpDelete
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpGet:
		return "get"
	case OpRemove:
		return "remove"
	case OpDelete:
		return "delete"
	case OpReset:
		return "reset"
	}
	return ""
}

// Snapshot is a copy of the counters at a point in time.
type Snapshot struct {
	Operations   int64
	Inserts      int64
	Replacements int64 // Inserts that replaced an existing value
	Hits         int64 // Lookups that found their key
	Misses       int64 // Lookups, removals and deletions of absent keys
	Removals     int64
	Deletions    int64
	Resets       int64
	Releases     int64 // Values released by the table

	HighestOpTime time.Duration
	AverageOpTime time.Duration
}

type Counters struct {
	s Snapshot
}

func New() *Counters {
	return &Counters{}
}

// Update records a single operation.
// found reports whether the key existed at the time of the operation.
func (c *Counters) Update(op Op, found bool, opTime time.Duration) {
	c.s.Operations++
	switch op {
	case OpInsert:
		c.s.Inserts++
		if found {
			c.s.Replacements++
		}
	case OpGet:
		if found {
			c.s.Hits++
		} else {
			c.s.Misses++
		}
	case OpRemove:
		if found {
			c.s.Removals++
		} else {
			c.s.Misses++
		}
	case OpDelete:
		if found {
			c.s.Deletions++
		} else {
			c.s.Misses++
		}
	case OpReset:
		c.s.Resets++
	}

	// Highest operation time
	if opTime > c.s.HighestOpTime {
		c.s.HighestOpTime = opTime
	}

	// Average operation time
	c.s.AverageOpTime += (opTime - c.s.AverageOpTime) / time.Duration(c.s.Operations)
}

// Released records n values released by the table.
func (c *Counters) Released(n int) {
	c.s.Releases += int64(n)
}

// Snapshot returns a copy of the current counters.
func (c *Counters) Snapshot() Snapshot { return c.s }
