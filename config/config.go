// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads dispatcher tunables from a TOML file: a small
// loader type wrapping go-toml/v2, returning a typed ParseError that
// wraps the underlying decode error for %w-based inspection.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every dispatcher default a deployment may want to
// override.
type Config struct {
	Dispatch struct {
		DefaultTimeout time.Duration `toml:"default_timeout"`
		AppSwitchTimeout time.Duration `toml:"app_switch_timeout"`
		LongTouchThreshold time.Duration `toml:"long_touch_threshold"`
	} `toml:"dispatch"`

	KeyRepeat struct {
		Timeout time.Duration `toml:"timeout"`
		Delay   time.Duration `toml:"delay"`
	} `toml:"key_repeat"`

	Motion struct {
		ThrottleInterval time.Duration `toml:"throttle_interval"`
	} `toml:"motion"`

	Events struct {
		MaxPerSecond float64 `toml:"max_per_second"`
	} `toml:"events"`
}

// Default returns a Config populated with the dispatcher's built-in
// defaults.
func Default() Config {
	var c Config
	c.Dispatch.DefaultTimeout = 5 * time.Second
	c.Dispatch.AppSwitchTimeout = 500 * time.Millisecond
	c.Dispatch.LongTouchThreshold = 300 * time.Millisecond
	c.KeyRepeat.Timeout = 500 * time.Millisecond
	c.KeyRepeat.Delay = 50 * time.Millisecond
	c.Motion.ThrottleInterval = 0
	c.Events.MaxPerSecond = 0
	return c
}

// ParseError is returned when a config file fails to decode; it wraps
// the underlying go-toml error for errors.Is/As-based inspection.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader loads a Config from a TOML file, falling back to Default
// for any field the file does not set.
type Loader struct {
	path string
}

// NewLoader creates a Loader for path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and decodes the configured path. A missing file is not
// an error: Load returns Default() unchanged.
func (l *Loader) Load() (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", l.path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ParseError{Path: l.path, Err: err}
	}
	return cfg, nil
}
