// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inputcore/dispatch"
	"github.com/inputcore/dispatch/config"
	"github.com/inputcore/dispatch/loop"
)

type cliConfig struct {
	configPath string
	logLevel   slog.Level
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseArgs(args []string) (cliConfig, error) {
	cfg := cliConfig{logLevel: slog.LevelInfo}
	flags := flag.NewFlagSet("inputdispatchd", flag.ContinueOnError)
	var level string
	flags.StringVar(&cfg.configPath, "config", "/etc/inputdispatchd/config.toml", "path to the TOML config file")
	flags.StringVar(&level, "log-level", "info", "debug|info|warning|error")
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	lvl, err := parseLogLevel(level)
	if err != nil {
		return cfg, err
	}
	cfg.logLevel = lvl
	return cfg, nil
}

func run(args []string, stderr *os.File) int {
	cliCfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cliCfg.logLevel}))

	loaded, err := config.NewLoader(cliCfg.configPath).Load()
	if err != nil {
		logger.Error("loading config", "path", cliCfg.configPath, "error", err)
		return 1
	}
	logger.Info("config loaded", "path", cliCfg.configPath)

	poller, err := loop.New()
	if err != nil {
		logger.Error("creating event loop", "error", err)
		return 1
	}
	defer poller.Close()

	pol := newLoggingPolicy(logger, loaded)
	d := dispatch.New(pol, poller)
	d.RefreshPolicyTunables()
	d.SetMotionThrottle(loaded.Motion.ThrottleInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("dispatcher running")
	for {
		select {
		case <-ctx.Done():
			logger.Info("dispatcher stopping")
			return 0
		default:
		}
		wait := d.DispatchOnce()
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				logger.Info("dispatcher stopping")
				return 0
			case <-t.C:
			}
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
