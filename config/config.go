// Package config loads the mswasm.toml harness configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/hostcall"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/tag"
)

// Config represents an mswasm.toml file.
type Config struct {
	Memory  Memory  `toml:"memory"`
	Runtime Runtime `toml:"runtime"`
	Log     Log     `toml:"log"`
	Host    Host    `toml:"host"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Memory configures the segment store.
type Memory struct {
	TagStrategy tag.Strategy `toml:"tag-strategy"`
	MaxSegments uint32       `toml:"max-segments"`
}

// Runtime configures instances.
type Runtime struct {
	Globals   int    `toml:"globals"`
	TableSize uint32 `toml:"table-size"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Host configures the WASI environment.
type Host struct {
	Env      map[string]string `toml:"env"`
	Args     []string          `toml:"args"`
	Walltime bool              `toml:"walltime"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Runtime: Runtime{Globals: 2, TableSize: 8},
		Log:     Log{Level: "info"},
	}
}

// Load parses the TOML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, fmt.Sprintf("cannot read %s", path))
	}
	c, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Parse decodes TOML text on top of the defaults. Unknown keys are errors.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse error")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.InvalidData(errors.PhaseConfig, "unknown keys: "+strings.Join(keys, ", "))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Runtime.Globals < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("runtime", "globals").Value(c.Runtime.Globals).Detail("must not be negative").Build()
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").Value(c.Log.Level).Cause(err).Build()
	}
	return nil
}

// RuntimeConfig returns the instance configuration. Logger, host and
// snapshot are left for the caller.
func (c *Config) RuntimeConfig() *runtime.Config {
	return &runtime.Config{
		TagStrategy: c.Memory.TagStrategy,
		MaxSegments: c.Memory.MaxSegments,
		Globals:     c.Runtime.Globals,
		TableSize:   c.Runtime.TableSize,
	}
}

// HostConfig returns the WASI configuration. program becomes Args[0].
func (c *Config) HostConfig(program string, stdin io.Reader, stdout, stderr io.Writer) *hostcall.Config {
	args := append([]string{program}, c.Host.Args...)
	return &hostcall.Config{
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Env:      c.Host.Env,
		Args:     args,
		Walltime: c.Host.Walltime,
	}
}

// NewLogger builds a zap logger from the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
