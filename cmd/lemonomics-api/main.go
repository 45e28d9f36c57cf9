package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitpixi2/lemonomics/internal/api"
	"github.com/bitpixi2/lemonomics/internal/auth"
	"github.com/bitpixi2/lemonomics/internal/config"
	"github.com/bitpixi2/lemonomics/internal/cycle"
	"github.com/bitpixi2/lemonomics/internal/db"
	"github.com/bitpixi2/lemonomics/internal/profile"
	"github.com/bitpixi2/lemonomics/internal/receipt"
	"github.com/bitpixi2/lemonomics/internal/sim"

	"github.com/joho/godotenv"
)

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

	identity := auth.NewIdentityClient(cfg.IdentityURL, cfg.IdentityAPIKey)
	verifier := receipt.NewHTTPVerifier(cfg.PaymentsURL, cfg.PaymentsAPIKey)

	gameCfg := config.LoadGameConfig()
	engine, err := sim.NewEngine(gameCfg, verifier, logger)
	if err != nil {
		logger.Error("engine init failed", "err", err)
		os.Exit(1)
	}
	validator, err := sim.NewValidator(engine)
	if err != nil {
		logger.Error("validator init failed", "err", err)
		os.Exit(1)
	}

	profiles, err := profile.NewPG(pool)
	if err != nil {
		logger.Error("profile store init failed", "err", err)
		os.Exit(1)
	}
	cycles := cycle.NewService(gameCfg, nil)

	server := api.New(cfg, logger, identity, identity, engine, validator, cycles, profiles)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("lemonomics api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
