// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Errorf("parseLogLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLogLevelRejectsUnknown(t *testing.T) {
	if _, err := parseLogLevel("verbose"); err == nil {
		t.Fatal("parseLogLevel(\"verbose\") returned nil error")
	}
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs(nil): %v", err)
	}
	if cfg.configPath != "/etc/inputdispatchd/config.toml" {
		t.Errorf("configPath = %q, want the default path", cfg.configPath)
	}
	if cfg.logLevel != slog.LevelInfo {
		t.Errorf("logLevel = %v, want LevelInfo", cfg.logLevel)
	}
}

func TestParseArgsOverrides(t *testing.T) {
	cfg, err := parseArgs([]string{"-config", "/tmp/x.toml", "-log-level", "debug"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.configPath != "/tmp/x.toml" {
		t.Errorf("configPath = %q, want /tmp/x.toml", cfg.configPath)
	}
	if cfg.logLevel != slog.LevelDebug {
		t.Errorf("logLevel = %v, want LevelDebug", cfg.logLevel)
	}
}

func TestParseArgsRejectsBadLogLevel(t *testing.T) {
	if _, err := parseArgs([]string{"-log-level", "bogus"}); err == nil {
		t.Fatal("parseArgs with an invalid --log-level returned nil error")
	}
}
