// Package config loads pivot settings from TOML files.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sergev/pivot/frontend"
)

// Config is the complete pivot configuration.
type Config struct {
	Parser  ParserConfig  `toml:"parser"`
	REPL    REPLConfig    `toml:"repl"`
	Log     LogConfig     `toml:"log"`
	Codegen CodegenConfig `toml:"codegen"`
}

// ParserConfig selects the front-end strategy.
type ParserConfig struct {
	Strategy string `toml:"strategy"`
}

// REPLConfig holds interactive shell settings.
type REPLConfig struct {
	Prompt       string `toml:"prompt"`
	Continuation string `toml:"continuation"`
	HistoryFile  string `toml:"history_file"`
	Mode         string `toml:"mode"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CodegenConfig holds assembly output settings. An empty Output means
// standard output.
type CodegenConfig struct {
	Output string `toml:"output"`
}

// Shell output modes.
const (
	ModeEval = "eval"
	ModeAST  = "ast"
	ModeTree = "tree"
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Decode reads configuration from r.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads the file named by PIVOT_CONFIG, or the first of the
// default locations that exists. With no file at all the defaults apply.
func LoadDefault() (*Config, error) {
	if path := os.Getenv("PIVOT_CONFIG"); path != "" {
		return Load(path)
	}
	for _, p := range defaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func defaultPaths() []string {
	paths := []string{"./pivot.toml"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pivot", "config.toml"))
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Parser.Strategy == "" {
		c.Parser.Strategy = frontend.Combinator.String()
	}

	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "pivot> "
	}
	if c.REPL.Continuation == "" {
		c.REPL.Continuation = ".... "
	}
	if c.REPL.HistoryFile == "" {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			c.REPL.HistoryFile = filepath.Join(home, ".pivot_history")
		}
	}
	if c.REPL.Mode == "" {
		c.REPL.Mode = ModeEval
	}

	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.REPL.HistoryFile = os.ExpandEnv(c.REPL.HistoryFile)
	c.Codegen.Output = os.ExpandEnv(c.Codegen.Output)
}

// Validate checks that every enumerated setting has a known value.
func (c *Config) Validate() error {
	if _, err := frontend.ParseStrategy(c.Parser.Strategy); err != nil {
		return fmt.Errorf("parser.strategy: %w", err)
	}
	switch c.REPL.Mode {
	case ModeEval, ModeAST, ModeTree:
	default:
		return fmt.Errorf("repl.mode: unknown mode %q", c.REPL.Mode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// Strategy returns the configured parser strategy.
func (c *Config) Strategy() frontend.Strategy {
	s, err := frontend.ParseStrategy(c.Parser.Strategy)
	if err != nil {
		return frontend.Combinator
	}
	return s
}
