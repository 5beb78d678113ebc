package main

import (
	"fmt"
	"io"
	"os"

	"github.com/graph-guard/chaintable/pkg/cli"
)

func main() {
	os.Exit(runMain(os.Stdout, os.Stdin, os.Args))
}

// runMain parses args, executes the command and returns the exit status.
func runMain(w io.Writer, stdin io.Reader, args []string) int {
	switch c := cli.Parse(w, args).(type) {
	case cli.CommandExec:
		if !exec(w, stdin, c) {
			return 1
		}
	case cli.CommandInvalid:
		return 1
	default:
		if c != nil {
			panic(fmt.Errorf("unexpected command: %#v", c))
		}
	}
	return 0
}

// exec runs c and returns false if the run failed.
func exec(w io.Writer, stdin io.Reader, c cli.CommandExec) bool {
	conf := ReadConfig(w, c)
	if conf == nil {
		return false
	}

	l := newLogger(os.Stderr, conf.LogLevel)

	cmds := ReadScript(w, stdin, c)
	if cmds == nil {
		return false
	}

	return run(w, l, conf, cmds)
}
