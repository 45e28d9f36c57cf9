package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bitpixi2/lemonomics/internal/config"
	"github.com/bitpixi2/lemonomics/internal/cycle"
	"github.com/bitpixi2/lemonomics/internal/db"
	"github.com/bitpixi2/lemonomics/internal/profile"

	"github.com/joho/godotenv"
)

// The worker rolls the shared game calendar: when the date changes it warms
// the new daily and weekly cycles and clears everyone's daily power-up usage.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	profiles, err := profile.NewPG(pool)
	if err != nil {
		logger.Error("profile store init failed", "err", err)
		os.Exit(1)
	}
	cycles := cycle.NewService(config.LoadGameConfig(), nil)

	rollDay := func(ctx context.Context) error {
		daily := cycles.Today()
		weekly := cycles.ThisWeek()
		reset, err := profiles.ResetDailyPowerups(ctx, daily.Date)
		if err != nil {
			return err
		}
		logger.Info("day rolled",
			"date", daily.Date,
			"weather", daily.Weather,
			"event", daily.Event,
			"login_bonus", daily.LoginBonus,
			"festival", weekly.Festival,
			"profiles_reset", reset,
		)
		return nil
	}

	if strings.EqualFold(strings.TrimSpace(os.Getenv("LEMONOMICS_WORKER_RUN_ONCE")), "true") {
		if err := rollDay(ctx); err != nil {
			logger.Error("day roll failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.WorkerTickEvery)
	defer ticker.Stop()

	lastDate := ""
	logger.Info("worker started", "tick_every", cfg.WorkerTickEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			date := cycles.TodayDate()
			if date == lastDate {
				continue
			}
			if err := rollDay(ctx); err != nil {
				logger.Error("day roll failed", "err", err)
				continue
			}
			lastDate = date
		}
	}
}
