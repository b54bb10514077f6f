// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/smartsvg/internal/artifacts"
	"github.com/thatcatcamp/smartsvg/internal/config"
	"github.com/thatcatcamp/smartsvg/internal/handlers"
	"github.com/thatcatcamp/smartsvg/internal/logging"
	"github.com/thatcatcamp/smartsvg/internal/middleware"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server operations",
	Long:  "Start the smartsvg HTTP API",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		offline, _ := cmd.Flags().GetBool("offline")
		if err := runServer(logger, offline); err != nil {
			logger.Error().Err(err).Msg("Server terminated with error")
			os.Exit(1)
		}
	},
}

func runServer(logger zerolog.Logger, offline bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openDB()
	if err != nil {
		return err
	}
	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	blocked, err := middleware.ParseCIDRs(config.GetStringSlice("server.blocked_ips"))
	if err != nil {
		return fmt.Errorf("server.blocked_ips: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := newService(logger, reg, offline)

	sweeper := artifacts.NewSweeper(store, database, config.GetDuration("storage.retention"), logging.Component(logger, "sweeper"))
	sweeperDone := sweeper.Start()

	limiter := middleware.NewRateLimiter(config.GetInt("ratelimit.capacity"), config.GetDuration("ratelimit.interval"))
	defer limiter.Stop()

	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestLogger(logging.Component(logger, "http")),
		middleware.Recovery(),
		middleware.SecurityHeadersMiddleware(config.GetBool("server.tls_enabled")),
		middleware.IPFilterMiddleware(blocked),
	)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := handlers.NewAPI(handlers.APIOptions{
		DB:             database,
		Workspace:      handlers.NewWorkspace(database, svc, logging.Component(logger, "coordinator")),
		Store:          store,
		MaxUploadBytes: config.GetInt64("uploads.max_bytes"),
		Logger:         logging.Component(logger, "api"),
	})
	api.Register(r, middleware.RateLimitMiddleware(limiter, http.MethodPost, http.MethodDelete))

	server := &http.Server{
		Addr:    ":" + config.GetString("server.http_port"),
		Handler: r,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", server.Addr).
			Str("base_url", config.GetString("server.base_url")).
			Str("storage", store.Type()).
			Bool("offline", offline).
			Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration("server.shutdown_timeout"))
		defer cancel()

		logger.Info().Msg("Shutting down server")
		sweeper.Stop()
		<-sweeperDone
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func init() {
	serverStartCmd.Flags().Bool("offline", false, "Use the built-in manipulation engine instead of the remote service")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}
