package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/app"
	"lightbnb/internal/bootstrap"
	"lightbnb/internal/shared"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	file := flag.String("file", cfg.SeedFile, "fixture JSON file")
	flag.Parse()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	log.Info().
		Str("file", *file).
		Int("workers", cfg.SeedWorkers).
		Int("rps", cfg.SeedRPS).
		Msg("seeder starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open fixtures")
	}
	fx, err := app.ParseFixtures(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("parse fixtures")
	}

	repos, closeDB, err := bootstrap.Repositories(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer closeDB()

	cache, closeCache := bootstrap.Cache(ctx, cfg, log.Logger)
	defer closeCache()

	seeder := app.NewSeedService(repos, cache, log.Logger, cfg.SeedWorkers, float64(cfg.SeedRPS))
	rep, err := seeder.Seed(ctx, fx)
	lvl := zerolog.InfoLevel
	if err != nil {
		lvl = zerolog.ErrorLevel
	}
	log.WithLevel(lvl).Err(err).Int("users", rep.Users).Int("properties", rep.Properties).Int("failed", rep.Failed).Msg("seeding completed")
	if err != nil {
		closeCache()
		closeDB()
		os.Exit(1)
	}
}
