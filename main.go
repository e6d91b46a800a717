package main

import (
	"context"
	"expvar"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zama-stylez/notify-mm-action/internal"
	"github.com/zama-stylez/notify-mm-action/webhook"
)

func main() {
	logger := internal.NewLogger("main")

	serve := flag.Bool("serve", false, "Run as a webhook server instead of a one-shot notification")
	configPath := flag.String("config", "config.yaml", "Path to the serve-mode config file")
	flag.Parse()

	// .env is optional, real env vars win.
	_ = godotenv.Load()

	if *serve {
		if err := runServe(*configPath, logger); err != nil {
			logger.Fatalf("serve: %v", err)
		}
		return
	}

	inputs, err := internal.Environ()
	if err != nil {
		logger.Fatalf("read inputs: %v", err)
	}

	notifier := internal.NewNotifier(nil)
	if err := internal.Run(context.Background(), inputs, notifier, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func runServe(configPath string, logger *log.Logger) error {
	cfg, err := internal.LoadServeConfig(configPath)
	if err != nil {
		return err
	}

	rules, err := internal.NewRuleEngine(cfg.Rules, logger)
	if err != nil {
		return err
	}

	dispatcher, err := internal.NewDispatcher(cfg, internal.NewNotifier(nil), logger)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := dispatcher.Start(ctx); err != nil {
		return err
	}

	handler, err := webhook.NewGitHubHandler(
		cfg.Webhook.Secret,
		cfg.Webhook.ServerURL,
		rules,
		dispatcher,
		internal.NewLogger("github"),
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, handler)
	if cfg.Server.MetricsEnabled {
		mux.Handle(cfg.Server.MetricsPath, expvar.Handler())
	}
	logger.Printf("github webhook enabled on %s", cfg.Webhook.Path)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           internal.RateLimit(mux, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderMS) * time.Millisecond,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-shutdown:
	}

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	return server.Shutdown(sctx)
}
