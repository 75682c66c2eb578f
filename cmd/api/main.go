package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "lightbnb/internal/adapters/http_server"
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

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeDB, err := bootstrap.Repositories(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer closeDB()

	cache, closeCache := bootstrap.Cache(ctx, cfg, log.Logger)
	defer closeCache()

	q := app.NewQueryService(repos, cache, cfg.CacheTTL(), log.Logger)
	c := app.NewCommandService(repos, cache, log.Logger)

	// http
	srv := server.New(log.Logger)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c, Log: log.Logger})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.DBDriver).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
