package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"vanta-site/internal/blob"
	"vanta-site/internal/config"
	"vanta-site/internal/constants"
	fxmodules "vanta-site/internal/fx"
	"vanta-site/internal/middleware"
	"vanta-site/internal/pubsub"
	"vanta-site/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	site *server.Server,
	cfg *config.Config,
	store blob.Store,
	events *pubsub.PubSub,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(c.Handler(site.Routes()))

	// no WriteTimeout: /api/events holds its response open
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			// closing subscriber channels ends open event streams so Shutdown can drain
			if err := events.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing event bus")
			}

			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}

			if cerr := store.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("error closing marketplace store")
			}
			if err != nil {
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
