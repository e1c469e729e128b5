package ods

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures a Reader.
type Config struct {
	// TempDir is the parent of the per-reader staging directory.
	// Unset or unwritable directories fall back to os.TempDir().
	TempDir string `json:"temp_dir" yaml:"temp_dir"`

	// TypedDates is kept for callers that interpret date and time cells
	// themselves. The reader always returns raw cell text.
	TypedDates bool `json:"typed_dates" yaml:"typed_dates"`

	// Logger for debug messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.TempDir == "" || !writableDir(c.TempDir) {
		if c.TempDir != "" {
			c.Logger.Debug("temp dir not writable, using default", "temp_dir", c.TempDir)
		}
		c.TempDir = os.TempDir()
	}
}

// LoadConfig decodes a YAML configuration. Unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile reads a YAML configuration from path.
func LoadConfigFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	return LoadConfig(file)
}

func writableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}

	probe, err := os.CreateTemp(dir, ".ods-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return true
}
