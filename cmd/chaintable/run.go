package main

import (
	"fmt"
	"io"

	"github.com/graph-guard/chaintable/pkg/config"
	"github.com/graph-guard/chaintable/pkg/runner"
	"github.com/graph-guard/chaintable/pkg/script"
	"github.com/phuslu/log"
)

func newLogger(w io.Writer, level string) log.Logger {
	return log.Logger{
		Level:      log.ParseLevel(level),
		TimeField:  "time",
		TimeFormat: "15:04:05",
		Writer:     &log.IOWriter{Writer: w},
	}
}

func run(
	w io.Writer,
	l log.Logger,
	conf *config.Config,
	cmds []script.Command,
) bool {
	r, err := runner.New(w, l, conf)
	if err != nil {
		l.Error().Err(err).Msg("creating hash table")
		fmt.Fprintf(w, "creating hash table: %s\n", err)
		return false
	}

	l.Info().
		Int("operations", len(cmds)).
		Msg("executing script")
	r.Run(cmds)

	s, err := r.Close()
	fmt.Fprintln(w)
	runner.WriteSummary(w, s)
	if err != nil {
		l.Error().Err(err).Msg("closing hash table")
		fmt.Fprintf(w, "closing hash table: %s\n", err)
		return false
	}
	return true
}
