// Package main is the entry point for the snackbard toast daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/snackbar/snackbard.toml)")
	listen := flag.String("listen", "", "Web bridge listen address (overrides web.listen)")
	noDBus := flag.Bool("no-dbus", false, "Do not claim the freedesktop notification service")
	noWeb := flag.Bool("no-web", false, "Do not serve the web bridge")
	verbose := flag.Bool("v", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("snackbard version", version)
		os.Exit(0)
	}

	// Set up structured logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting snackbard", "version", version)

	path := *configPath
	if path == "" {
		path = config.DaemonConfigPath()
	}

	// Load configuration
	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	d := daemon.New(cfg, daemon.Options{
		ConfigPath:  path,
		Version:     version,
		Logger:      logger,
		DisableDBus: *noDBus,
		DisableWeb:  *noWeb,
		Listen:      *listen,
	})

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				reload(d, path, logger)
				continue
			}
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return
		}
	}()

	if err := d.Run(ctx); err != nil {
		logger.Error("snackbard failed", "error", err)
		os.Exit(1)
	}
}

// reload re-reads the config file on SIGHUP. The file watcher normally
// does this; the signal helps when the file lives somewhere it cannot see.
func reload(d *daemon.Daemon, path string, logger *slog.Logger) {
	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		logger.Warn("config reload failed", "error", err)
		return
	}
	logger.Info("reloading config", "path", path)
	d.ApplyConfig(cfg)
}
