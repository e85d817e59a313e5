// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/betti-labs/betti/internal/api"
	"github.com/betti-labs/betti/internal/balancer"
	"github.com/betti-labs/betti/internal/config"
	blog "github.com/betti-labs/betti/internal/log"
	"github.com/betti-labs/betti/internal/metrics"
	"github.com/betti-labs/betti/internal/ratelimit"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bettid: %v\n", err)
		os.Exit(1)
	}

	blog.Configure(blog.Config{
		Level:   cfg.LogLevel,
		Service: "bettid",
	})
	logger := blog.WithComponent("daemon")

	bal, err := balancer.New(cfg.BalancerConfig())
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "balancer.invalid_config").
			Msg("refusing to start with an invalid admission policy")
	}
	metrics.MustRegister(bal)

	limiter := ratelimit.New(ratelimit.Config{
		GlobalRate:      rate.Limit(cfg.GlobalRate),
		GlobalBurst:     cfg.GlobalBurst,
		PerIPRate:       rate.Limit(cfg.PerIPRate),
		PerIPBurst:      cfg.PerIPBurst,
		CleanupInterval: cfg.IPCleanup,
	})

	srv := api.New(cfg, bal, limiter, demoWorkload()).HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("event", "server.start").
			Str("listen", cfg.Listen).
			Int("max_parallel_heavy", cfg.MaxParallelHeavy).
			Int("max_parallel_medium", cfg.MaxParallelMedium).
			Msg("bettid listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Str("event", "server.shutdown").Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "server.failed").
			Msg("bettid exited with error")
	}
}

// demoWorkload serves a handful of routes across the three weight classes
// so a fresh install can observe classification and throttling end to end.
func demoWorkload() http.Handler {
	r := chi.NewRouter()
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})
	r.Post("/upload/{name}", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(25 * time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	})
	r.Post("/transcode/{id}", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = fmt.Fprintf(w, "transcoded %s\n", chi.URLParam(r, "id"))
	})
	return r
}
