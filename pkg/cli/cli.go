package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/graph-guard/chaintable/pkg/config"
	"github.com/graph-guard/chaintable/pkg/hasher"
)

const EnvLogLevel = "CHAINTABLE_LOG_LEVEL"

// Command can be any of:
//
//	CommandExec
//	CommandInvalid
type Command any

// CommandInvalid is returned for a known command with illegal
// flags, arguments or environment variables.
// The problem and the usage are already written out.
type CommandInvalid struct{}

type CommandExec struct {
	// ConfigPath is empty when the default configuration is used.
	ConfigPath string

	// ScriptPath is empty when the script is read from stdin.
	ScriptPath string

	// JSON selects the JSON-lines script format.
	JSON bool

	// Buckets and Hasher override the configuration when set.
	Buckets int
	Hasher  string

	// LogLevel overrides the configured log level when set.
	LogLevel string
}

func Parse(w io.Writer, args []string) (cmd Command) {
	fm := fmt.Sprintf

	executableName := "chaintable"
	if len(args) > 0 {
		executableName = filepath.Base(args[0])
	}

	flags := flag.NewFlagSet("chaintable", flag.ContinueOnError)
	flags.SetOutput(w)
	flags.Usage = func() {
		writeLines(w,
			fm("usage: %s <command> [flags]", executableName),
			"",
			"commands available:",
			" exec - executes a hash table operation script",
			" help - prints the script reference",
		)
	}

	if len(args) < 2 {
		flags.Usage()
		return nil
	}

	switch args[1] {
	case "exec":
		c := CommandExec{}
		c.LogLevel = os.Getenv(EnvLogLevel)

		flags.Usage = func() {
			writeLines(w,
				"",
				fm("usage: %s exec [flags] [<script>]", executableName),
				"",
				"reads the script from stdin if no path is given.",
				"",
				"flags:",
				"-config <path>: defines the configuration file path "+
					"(default: none, built-in defaults)",
				"-json: parses the script as JSON lines",
				"-buckets <n>: overrides the number of buckets",
				fm("-hasher <name>: overrides the hasher (%s)",
					strings.Join(hasher.Names(), ", ")),
				"",
				"environment variables:",
				fm("%s: overrides the log level (%s)",
					EnvLogLevel, strings.Join(config.LogLevels, ", ")),
			)
		}

		flags.StringVar(&c.ConfigPath, "config", "", "")
		flags.BoolVar(&c.JSON, "json", false, "")
		flags.IntVar(&c.Buckets, "buckets", 0, "")
		flags.StringVar(&c.Hasher, "hasher", "", "")
		if err := flags.Parse(args[2:]); err != nil {
			// flags will automatically call .Usage()
			return CommandInvalid{}
		}

		switch flags.NArg() {
		case 0:
		case 1:
			c.ScriptPath = flags.Arg(0)
		default:
			writeLines(w, "too many arguments.")
			flags.Usage()
			return CommandInvalid{}
		}

		if isSet(flags, "buckets") {
			if err := config.ValidateBuckets(c.Buckets); err != nil {
				writeLines(w, fm("illegal -buckets: %s", err))
				flags.Usage()
				return CommandInvalid{}
			}
		}
		if c.Hasher != "" {
			if err := config.ValidateHasher(c.Hasher); err != nil {
				writeLines(w, fm("illegal -hasher: %s", err))
				flags.Usage()
				return CommandInvalid{}
			}
		}
		if c.LogLevel != "" {
			if err := config.ValidateLogLevel(c.LogLevel); err != nil {
				writeLines(w, fm("illegal %s: %s", EnvLogLevel, err))
				flags.Usage()
				return CommandInvalid{}
			}
		}

		cmd = c

	case "help":
		PrintHelp(w)
		return nil

	default:
		flags.Usage()
		return nil
	}
	return cmd
}

func isSet(flags *flag.FlagSet, name string) (set bool) {
	flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func writeLines(w io.Writer, lines ...string) {
	for i := range lines {
		_, _ = w.Write([]byte(lines[i]))
		_, _ = w.Write([]byte("\n"))
	}
}

func PrintHelp(w io.Writer) {
	writeLines(w,
		"script operations (one per line, # starts a comment):",
		" insert <key> <value> - inserts or replaces the value of key",
		" get <key> - prints the value of key",
		" remove <key> - removes key and hands its value back",
		" delete <key> - removes key and releases its value",
		" len - prints the number of entries",
		" stats - prints the chain statistics",
		" dump - prints all entries in bucket order",
		" reset - removes all entries releasing their values",
		"",
		"keys are unsigned 32-bit integers.",
		`JSON lines form (-json): {"op":"insert","key":1,"value":"a"}`,
	)
}
