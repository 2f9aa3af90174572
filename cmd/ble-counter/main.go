package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/ble-counter/internal/ble"
	"github.com/chaz8081/ble-counter/internal/config"
	"github.com/chaz8081/ble-counter/internal/diag"
	"github.com/chaz8081/ble-counter/internal/session"
)

// haltInterval is how often the halted loop repeats the fatal error.
const haltInterval = 5 * time.Second

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/ble-counter/config.yaml)")
	initConfig := flag.Bool("init-config", false, "write the default config file and exit")
	flag.Parse()

	if *initConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if path == "" {
			fmt.Println("Config already exists at", config.DefaultConfigPath())
			return
		}
		fmt.Println("Wrote default config to", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := ble.NewPeripheral(cfg.Device.AdapterID)
	err = ble.Begin(transport,
		ble.Identity{LocalName: cfg.Device.Name, ServiceUUID: cfg.Service.UUID},
		ble.CharacteristicSpec{UUID: cfg.Service.CharacteristicUUID, Readable: true, Notify: true},
	)
	if err != nil {
		halt(ctx, logger, err)
		os.Exit(1)
	}
	logger.Info("[BLE] advertising", "name", cfg.Device.Name, "service", cfg.Service.UUID)

	opts := session.Options{
		SendInterval:      cfg.Session.SendInterval,
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
		PollDelay:         cfg.Session.PollDelay,
		CounterMax:        cfg.Session.CounterMax,
		Logger:            logger,
	}
	if probe, err := diag.NewProbe(); err != nil {
		logger.Warn("memory diagnostics disabled", "error", err)
	} else {
		opts.Memory = probe
	}

	ctrl := session.New(transport, opts)
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session loop stopped", "error", err)
		os.Exit(1)
	}

	st := ctrl.State()
	logger.Info("Goodbye!", "connections", st.TotalConnections, "value", st.Counter.Value())
}

// halt keeps reporting a fatal bring-up error until the process is
// signalled. There is no recovery; the device needs an external restart.
func halt(ctx context.Context, logger *slog.Logger, err error) {
	ticker := time.NewTicker(haltInterval)
	defer ticker.Stop()
	for {
		logger.Error("[BLE] starting BLE failed, halted", "error", err)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	log.Println("No config file found, using defaults")
	return config.Default(), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== ble-counter ===")
	fmt.Printf("  Name:      %s (%s)\n", cfg.Device.Name, cfg.Device.AdapterID)
	fmt.Printf("  Service:   %s\n", cfg.Service.UUID)
	fmt.Printf("  Value:     %s\n", cfg.Service.CharacteristicUUID)
	fmt.Printf("  Interval:  %s (wraps after %d)\n", cfg.Session.SendInterval, cfg.Session.CounterMax)
	fmt.Printf("  Log:       %s\n", cfg.LogLevel)
	fmt.Println("===================")
}
