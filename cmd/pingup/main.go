package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/config"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/httpapi"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/live"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/messages"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/metrics"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/notify"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/workflow"
)

func main() {
	cfgFile := flag.String("config", "", "Path to config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config)")
	poll := flag.Duration("poll-interval", 0, "Scheduler poll interval (overrides config)")
	runOnce := flag.Bool("run-once", false, "run one scheduler pass and exit")
	flag.Parse()

	cfg := config.DefaultConfig()
	// load from file if provided (overrides defaults)
	if *cfgFile != "" {
		c, err := config.LoadConfigFromFile(*cfgFile)
		if err != nil {
			log.Fatalf("failed loading config: %v", err)
		}
		cfg = c
	}

	// apply env var overrides (overrides file/defaults)
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		log.Fatalf("invalid environment configuration: %v", err)
	}

	// CLI flags have highest precedence
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *poll > 0 {
		cfg.PollInterval = *poll
	}

	cleanup := initLogging()
	defer cleanup()

	for _, w := range cfg.Validate() {
		logging.Get().Warn().Str("warning", w).Msg("config validation")
	}

	initMetrics(cfg)

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to open document store")
	}
	defer st.Close()

	registry := live.NewRegistry()
	dispatcher := messages.NewDispatcher(st, st, registry)

	scheduler := workflow.NewScheduler(st, cfg.PollInterval, cfg.RunGracePeriod)
	scheduler.Register(workflow.NewConnectionRequestReminder(st, buildNotifier(cfg), cfg.ReminderDelay))

	if *runOnce {
		logging.Get().Info().Msg("run-once: performing a single scheduler pass")
		scheduler.RunOnce()
		return
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.New(dispatcher, registry, scheduler, cfg.StreamWriteTimeout).Routes(),
	}
	go func() {
		logging.Get().Info().Str("addr", cfg.ListenAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Get().Fatal().Err(err).Msg("http server failed")
		}
	}()
	go scheduler.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	// Graceful shutdown: give up to 5 seconds for in-flight work to complete
	logging.Get().Info().Msg("shutdown signal received, waiting for active operations to complete")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	scheduler.Stop(shutdownCtx)
}

// initLogging initializes log subsystem from env and returns a cleanup func
func initLogging() func() {
	logLevel := os.Getenv("PINGUP_LOG_LEVEL")
	logFile := os.Getenv("PINGUP_LOG_FILE")
	cleanup, err := logging.Init(logFile, logLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return cleanup
}

// initMetrics starts the optional metrics server
func initMetrics(cfg *config.Config) {
	if !cfg.MetricsEnabled {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.PromHandler())
		mux.Handle("/status", metrics.JSONHandler())
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logging.Get().Info().Str("addr", addr).Msg("starting metrics server")
		_ = http.ListenAndServe(addr, mux)
	}()
}

// buildNotifier assembles the configured notification backends
func buildNotifier(cfg *config.Config) *notify.MultiNotifier {
	m := notify.NewMultiNotifier()
	if cfg.EmailHost != "" && cfg.EmailFrom != "" {
		m.Add(&notify.Email{Host: cfg.EmailHost, Port: cfg.EmailPort, User: cfg.EmailUser, Pass: cfg.EmailPass, From: cfg.EmailFrom})
	}
	if cfg.WebhookURL != "" {
		m.Add(&notify.Webhook{URL: cfg.WebhookURL})
	}
	return m
}
