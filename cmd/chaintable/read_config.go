package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/graph-guard/chaintable/pkg/cli"
	"github.com/graph-guard/chaintable/pkg/config"
	"github.com/graph-guard/chaintable/pkg/script"
)

// ReadConfig reads the config file if any and applies
// the command line overrides. Returns nil on failure.
func ReadConfig(w io.Writer, c cli.CommandExec) *config.Config {
	conf := config.Default()
	if c.ConfigPath != "" {
		basePath, fileName := basePathAndFileName(c.ConfigPath)
		var err error
		if conf, err = config.Read(os.DirFS(basePath), fileName); err != nil {
			fmt.Fprintf(w, "reading config: %s\n", err)
			return nil
		}
	}
	if c.Buckets != 0 {
		conf.Buckets = c.Buckets
	}
	if c.Hasher != "" {
		conf.Hasher = c.Hasher
	}
	if c.LogLevel != "" {
		conf.LogLevel = c.LogLevel
	}
	return conf
}

// ReadScript parses the script file, or stdin if
// no path was given. Returns nil on failure.
func ReadScript(
	w io.Writer,
	stdin io.Reader,
	c cli.CommandExec,
) []script.Command {
	r := stdin
	if c.ScriptPath != "" {
		f, err := os.Open(c.ScriptPath)
		if err != nil {
			fmt.Fprintf(w, "reading script: %s\n", err)
			return nil
		}
		defer f.Close()
		r = f
	}

	parse := script.ParseText
	if c.JSON {
		parse = script.ParseJSON
	}
	cmds, err := parse(r)
	if err != nil {
		fmt.Fprintf(w, "parsing script: %s\n", err)
		return nil
	}
	if cmds == nil {
		// An empty script is valid
		cmds = []script.Command{}
	}
	return cmds
}

func basePathAndFileName(path string) (basePath, fileName string) {
	return filepath.Dir(path), filepath.Base(path)
}
