package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxCallDepth = 1000
	DefaultLogLevel     = "none"
)

var astFormats = map[string]bool{
	"":     true,
	"json": true,
	"text": true,
}

var supportedJournalDrivers = map[string]bool{
	"sqlite3":  true,
	"mysql":    true,
	"postgres": true,
}

type JournalConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// Enabled reports whether runs should be recorded.
func (j JournalConfig) Enabled() bool {
	return j.Driver != ""
}

type Configuration struct {
	Version   string `yaml:"-" toml:"-"`
	BuildDate string `yaml:"-" toml:"-"`
	Commit    string `yaml:"-" toml:"-"`

	LogLevel     string        `yaml:"logLevel" toml:"logLevel"`
	LogFile      string        `yaml:"logFile" toml:"logFile"`
	MaxCallDepth int           `yaml:"maxCallDepth" toml:"maxCallDepth"`
	DebugTokens  bool          `yaml:"debugTokens" toml:"debugTokens"`
	DebugAST     string        `yaml:"debugAst" toml:"debugAst"` // "", "json" or "text"
	Journal      JournalConfig `yaml:"journal" toml:"journal"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:     DefaultLogLevel,
		MaxCallDepth: DefaultMaxCallDepth,
	}
}

// LoadConfiguration reads a YAML file, or a TOML file when path ends in
// .toml, over base. Keys missing from the file keep their value from base;
// unknown keys are rejected.
func LoadConfiguration(path string, base Configuration) (Configuration, error) {
	if path == "" {
		return base, errors.New("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return DecodeTOMLConfiguration(file, base)
	}
	return DecodeConfiguration(file, base)
}

func DecodeConfiguration(r io.Reader, base Configuration) (Configuration, error) {
	cfg := base
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, cfg.Validate()
}

func DecodeTOMLConfiguration(r io.Reader, base Configuration) (Configuration, error) {
	cfg := base
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return base, fmt.Errorf("config: parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

func (c Configuration) Validate() error {
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("config: maxCallDepth must be positive, got %d", c.MaxCallDepth)
	}
	if !astFormats[c.DebugAST] {
		return fmt.Errorf("config: debugAst must be json or text, got %q", c.DebugAST)
	}
	if c.Journal.Enabled() {
		if !supportedJournalDrivers[c.Journal.Driver] {
			return fmt.Errorf("config: unsupported journal driver %q", c.Journal.Driver)
		}
		if c.Journal.DSN == "" {
			return fmt.Errorf("config: journal driver %q needs a dsn", c.Journal.Driver)
		}
	}
	return nil
}

// ParseJournalSpec splits a "driver:dsn" command-line value, for example
// "sqlite3:runs.db", "mysql:user:pw@tcp(localhost:3306)/runs" or
// "postgres:postgres://user@localhost/runs".
func ParseJournalSpec(spec string) (JournalConfig, error) {
	driver, dsn, ok := strings.Cut(spec, ":")
	if !ok || driver == "" || dsn == "" {
		return JournalConfig{}, fmt.Errorf("journal: expected driver:dsn, got %q", spec)
	}
	if !supportedJournalDrivers[driver] {
		return JournalConfig{}, fmt.Errorf("journal: unsupported driver %q", driver)
	}
	return JournalConfig{Driver: driver, DSN: dsn}, nil
}
