// Command energyville runs the headless city-energy simulation.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/energyville/internal/api"
	"github.com/talgya/energyville/internal/config"
	"github.com/talgya/energyville/internal/engine"
	"github.com/talgya/energyville/internal/game"
	"github.com/talgya/energyville/internal/persistence"
)

func main() {
	configPath := flag.String("config", "energyville.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Restore or start fresh ────────────────────────────────────────
	seed := cfg.City.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	session, savedSeed, err := db.Load()
	switch {
	case err == nil:
		seed = savedSeed
		slog.Info("resumed saved game", "city", session.City.Name, "clock", session.City.Clock)
	case errors.Is(err, persistence.ErrNoSave):
		session = game.NewSession(cfg.City.Name, cfg.StartingMoney(), seed,
			engine.ParseSpeed(cfg.Engine.Speed))
		slog.Info("new game started",
			"city", cfg.City.Name,
			"difficulty", cfg.City.Difficulty,
			"money", cfg.StartingMoney(),
			"seed", seed)
		if err := db.Save(session, seed); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	default:
		slog.Error("failed to load saved game", "error", err)
		os.Exit(1)
	}

	// Log bus events; listeners observe only.
	session.AddListener(func(e engine.Event) {
		switch e.Kind {
		case engine.EventWarning:
			slog.Warn(e.Message)
		case engine.EventNewMonth:
			slog.Info("new month", "report", e.Message)
		case engine.EventGameOver:
			slog.Info("game over", "reason", e.Message, "score", e.Score)
		case engine.EventInfo:
			slog.Info(e.Message)
		}
	})

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := cfg.API.AdminKey
	if adminKey == "" {
		adminKey = os.Getenv("ENERGYVILLE_ADMIN_KEY")
	}
	if adminKey == "" {
		slog.Warn("no admin key configured, POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Session:  session,
		DB:       db,
		Seed:     seed,
		Port:     cfg.API.Port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Autosave ──────────────────────────────────────────────────────
	if cfg.Engine.AutosaveMinutes > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.Engine.AutosaveMinutes) * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				if err := db.Save(session, seed); err != nil {
					slog.Error("autosave failed", "error", err)
				}
			}
		}()
	}

	// ── Run ───────────────────────────────────────────────────────────
	session.Start()

	fmt.Printf("%s is live with %d inhabitants.\n",
		session.City.Name, session.Stats().Population)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Simulating... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	session.Stop()

	if err := db.Save(session, seed); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. Game saved.")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
