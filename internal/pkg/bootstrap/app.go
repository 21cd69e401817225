package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AppCtx is handed to each service so it can register its own routes on the
// shared router.
type AppCtx struct {
	Router chi.Router
}

// AppInfo describes one process: its name, listen address, route
// registration hook and ordered shutdown hook.
type AppInfo struct {
	ServiceName      string
	Addr             string
	RegisterHandlers func(appCtx AppCtx)
	OnShutdown       func(ctx context.Context)
}

// StartService runs the shared lifecycle: logger, HTTP server with health
// and metrics endpoints, signal wait, graceful shutdown. It blocks until
// the process receives SIGINT or SIGTERM.
func StartService(info AppInfo) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", info.ServiceName).Logger()

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Router: router})
	}

	server := &http.Server{Addr: info.Addr, Handler: router}
	go func() {
		log.Info().Str("addr", info.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}
	log.Info().Msg("shut down cleanly")
}
