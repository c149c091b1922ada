package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/bizdata-console/internal/application"
	"github.com/bryanwahyu/bizdata-console/internal/application/board"
	"github.com/bryanwahyu/bizdata-console/internal/config"
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
	"github.com/bryanwahyu/bizdata-console/internal/infra/bizapi"
	"github.com/bryanwahyu/bizdata-console/internal/infra/httpserver"
	"github.com/bryanwahyu/bizdata-console/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("config load error")
	}
	log = newLogger(cfg)

	// init remote api client + state
	client := bizapi.NewClient(cfg.API.BaseURL, nil, log)
	store := board.NewStore(application.SystemClock{})
	svc := board.NewService(client, store, log)
	svc.OnSync = middleware.RecordSync

	// initial load, same as opening the page
	startInitialLoad(svc, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	defer limiter.Close()

	handler := httpserver.NewRouter(httpserver.Options{
		Service: svc,
		Log:     log,
		Limiter: limiter,
		Checkers: map[string]middleware.HealthChecker{
			"business_api": &middleware.RemoteAPIHealthChecker{API: client},
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // submit waits for the AI analysis of the remote API
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Str("base_url", client.BaseURL()).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// startInitialLoad fetches the list in the background. The server starts
// listening right away; a failure shows up as a notice on the page.
func startInitialLoad(svc *board.Service, log zerolog.Logger) *application.Task[[]business.Business] {
	task := svc.Refresh(context.Background())
	go func() {
		if res := task.Wait(); res.OK() {
			log.Info().Int("records", len(res.Value)).Msg("initial load done")
		}
	}()
	return task
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Log.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "bizdata-console").Logger()
}
