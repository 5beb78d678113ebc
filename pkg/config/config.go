package config

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/graph-guard/chaintable/pkg/hasher"
	yaml "gopkg.in/yaml.v3"
)

const DefaultBuckets = 64
const DefaultHasher = hasher.NameXXH3
const DefaultLogLevel = "info"

// LogLevels lists all accepted values of log.level.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

type Config struct {
	Buckets  int
	Hasher   string
	Seed     uint64
	LogLevel string
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Buckets:  DefaultBuckets,
		Hasher:   DefaultHasher,
		LogLevel: DefaultLogLevel,
	}
}

type fileConfig struct {
	Buckets *int    `yaml:"buckets"`
	Hasher  *string `yaml:"hasher"`
	Seed    uint64  `yaml:"seed"`
	Log     struct {
		Level *string `yaml:"level"`
	} `yaml:"log"`
}

// Read reads the YAML configuration file at filePath.
func Read(filesystem fs.FS, filePath string) (*Config, error) {
	f, err := filesystem.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	var c fileConfig
	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil {
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Message:  err.Error(),
		}
	}

	conf := Default()

	if c.Buckets == nil {
		return nil, &ErrorMissing{
			FilePath: filePath,
			Feature:  "buckets",
		}
	}
	if err := ValidateBuckets(*c.Buckets); err != nil {
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Feature:  "buckets",
			Message:  err.Error(),
		}
	}
	conf.Buckets = *c.Buckets

	if c.Hasher != nil {
		if err := ValidateHasher(*c.Hasher); err != nil {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "hasher",
				Message:  err.Error(),
			}
		}
		conf.Hasher = *c.Hasher
	}
	conf.Seed = c.Seed

	if c.Log.Level != nil {
		if err := ValidateLogLevel(*c.Log.Level); err != nil {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "log.level",
				Message:  err.Error(),
			}
		}
		conf.LogLevel = *c.Log.Level
	}

	return conf, nil
}

func ValidateBuckets(n int) error {
	if n < 1 {
		return fmt.Errorf("expected at least 1, received %d", n)
	}
	return nil
}

func ValidateHasher(name string) error {
	for _, n := range hasher.Names() {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf(
		"unknown hasher %q, expected any of: %s",
		name, strings.Join(hasher.Names(), ", "),
	)
}

func ValidateLogLevel(level string) error {
	for _, l := range LogLevels {
		if l == level {
			return nil
		}
	}
	return fmt.Errorf(
		"unknown level %q, expected any of: %s",
		level, strings.Join(LogLevels, ", "),
	)
}

type ErrorMissing struct {
	FilePath string
	Feature  string
}

func (e ErrorMissing) Error() string {
	var b strings.Builder
	if e.Feature == "" {
		b.Grow(len("missing ") + len(e.FilePath))
		b.WriteString("missing ")
		b.WriteString(e.FilePath)
		return b.String()
	}
	b.Grow(len("missing ") + len(e.Feature) + len(" in ") + len(e.FilePath))
	b.WriteString("missing ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	return b.String()
}

type ErrorIllegal struct {
	FilePath string
	Feature  string
	Message  string
}

func (e ErrorIllegal) Error() string {
	var b strings.Builder
	b.WriteString("illegal ")
	if e.Feature != "" {
		b.WriteString(e.Feature)
		b.WriteString(" in ")
	}
	b.WriteString(e.FilePath)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
