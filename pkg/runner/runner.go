// Package runner executes parsed scripts against a hash table
// and reports every outcome.
package runner

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/graph-guard/chaintable/pkg/config"
	"github.com/graph-guard/chaintable/pkg/hasher"
	"github.com/graph-guard/chaintable/pkg/hashtable"
	"github.com/graph-guard/chaintable/pkg/script"
	"github.com/graph-guard/chaintable/pkg/statistics"
	"github.com/phuslu/log"
)

// Value is a table value recording how often it was released.
type Value struct {
	Data     string
	released int
}

// Released returns the number of times v was released.
func (v *Value) Released() int { return v.released }

type Runner struct {
	w      io.Writer
	log    log.Logger
	conf   *config.Config
	table  *hashtable.Table[uint32, *Value]
	stats  *statistics.Counters
	values []*Value // Every value ever created
}

// New creates a runner with an empty table configured by conf.
func New(w io.Writer, l log.Logger, conf *config.Config) (*Runner, error) {
	h, err := hasher.ByName[uint32](conf.Hasher, conf.Seed, uint64(conf.Buckets))
	if err != nil {
		return nil, err
	}
	r := &Runner{
		w:     w,
		log:   l,
		conf:  conf,
		stats: statistics.New(),
	}
	if r.table, err = hashtable.New[uint32, *Value](conf.Buckets, h, r.release); err != nil {
		return nil, err
	}
	l.Debug().
		Int("buckets", conf.Buckets).
		Str("hasher", conf.Hasher).
		Uint64("seed", conf.Seed).
		Msg("table created")
	return r, nil
}

// release is called by the table for every value it destroys.
func (r *Runner) release(v *Value) {
	v.released++
	r.stats.Released(1)
	r.log.Trace().
		Str("value", v.Data).
		Int("released", v.released).
		Msg("value released by table")
}

// dispose releases a value whose ownership the table
// transferred back to the runner.
func (r *Runner) dispose(v *Value) {
	v.released++
	r.log.Trace().
		Str("value", v.Data).
		Int("released", v.released).
		Msg("value disposed by owner")
}

// Run executes cmds in order.
func (r *Runner) Run(cmds []script.Command) {
	for i := range cmds {
		r.exec(cmds[i])
	}
}

func (r *Runner) exec(c script.Command) {
	pf := func(format string, a ...any) {
		_, _ = fmt.Fprintf(r.w, format, a...)
		_, _ = r.w.Write([]byte("\n"))
	}
	record := func(op statistics.Op, found bool, start time.Time) {
		d := time.Since(start)
		r.stats.Update(op, found, d)
		r.log.Debug().
			Int("line", c.Line).
			Str("op", op.String()).
			Uint64("key", uint64(c.Key)).
			Bool("found", found).
			Dur("elapsed", d).
			Msg("executed")
	}

	switch c.Op {
	case script.OpInsert:
		v := &Value{Data: c.Value}
		r.values = append(r.values, v)
		start := time.Now()
		prev, replaced := r.table.Insert(c.Key, v)
		record(statistics.OpInsert, replaced, start)
		if replaced {
			pf("insert %d %q: replaced %q", c.Key, c.Value, prev.Data)
			r.dispose(prev)
			return
		}
		pf("insert %d %q: inserted", c.Key, c.Value)

	case script.OpGet:
		start := time.Now()
		v, ok := r.table.Get(c.Key)
		record(statistics.OpGet, ok, start)
		if !ok {
			pf("get %d: not found", c.Key)
			return
		}
		pf("get %d: %q", c.Key, v.Data)

	case script.OpRemove:
		start := time.Now()
		v, ok := r.table.Remove(c.Key)
		record(statistics.OpRemove, ok, start)
		if !ok {
			pf("remove %d: not found", c.Key)
			return
		}
		pf("remove %d: %q", c.Key, v.Data)
		r.dispose(v)

	case script.OpDelete:
		n := r.table.Len()
		start := time.Now()
		r.table.Delete(c.Key)
		found := r.table.Len() < n
		record(statistics.OpDelete, found, start)
		if !found {
			pf("delete %d: not found", c.Key)
			return
		}
		pf("delete %d: deleted", c.Key)

	case script.OpReset:
		n := r.table.Len()
		start := time.Now()
		r.table.Reset()
		record(statistics.OpReset, false, start)
		pf("reset: released %d", n)

	case script.OpLen:
		pf("len: %d", r.table.Len())

	case script.OpStats:
		s := r.table.Stats()
		pf("stats: entries=%d buckets=%d occupied=%d "+
			"longest_chain=%d load_factor=%s",
			s.Entries, s.Buckets, s.Occupied, s.LongestChain,
			strconv.FormatFloat(s.LoadFactor(), 'f', 2, 64))

	case script.OpDump:
		if r.table.Len() < 1 {
			pf("dump: empty")
			return
		}
		r.table.VisitAll(func(k uint32, v *Value) {
			pf("dump: %d %q", k, v.Data)
		})
	}
}

// Close destroys the table and verifies that every value created
// during the run was released exactly once.
// Returns *ErrorLeak otherwise.
func (r *Runner) Close() (statistics.Snapshot, error) {
	live := r.table.Len()
	r.table.Destroy()
	r.log.Debug().
		Int("entries", live).
		Msg("table destroyed")

	var leaked, double []string
	for _, v := range r.values {
		switch {
		case v.released < 1:
			leaked = append(leaked, v.Data)
		case v.released > 1:
			double = append(double, v.Data)
		}
	}
	s := r.stats.Snapshot()
	if leaked != nil || double != nil {
		return s, &ErrorLeak{Leaked: leaked, ReleasedTwice: double}
	}
	return s, nil
}

// WriteSummary writes a human readable summary of s to w.
func WriteSummary(w io.Writer, s statistics.Snapshot) {
	c := humanize.Comma
	for _, l := range [][2]string{
		{"operations", c(s.Operations)},
		{"inserts", c(s.Inserts)},
		{"replacements", c(s.Replacements)},
		{"hits", c(s.Hits)},
		{"misses", c(s.Misses)},
		{"removals", c(s.Removals)},
		{"deletions", c(s.Deletions)},
		{"resets", c(s.Resets)},
		{"released by table", c(s.Releases)},
		{"highest operation time", s.HighestOpTime.String()},
		{"average operation time", s.AverageOpTime.String()},
	} {
		_, _ = fmt.Fprintf(w, "%s: %s\n", l[0], l[1])
	}
}

type ErrorLeak struct {
	Leaked        []string
	ReleasedTwice []string
}

func (e ErrorLeak) Error() string {
	var b strings.Builder
	b.WriteString("value ownership violated:")
	if e.Leaked != nil {
		b.WriteString(" leaked ")
		b.WriteString(strconv.Itoa(len(e.Leaked)))
	}
	if e.ReleasedTwice != nil {
		b.WriteString(" released twice ")
		b.WriteString(strconv.Itoa(len(e.ReleasedTwice)))
	}
	return b.String()
}
