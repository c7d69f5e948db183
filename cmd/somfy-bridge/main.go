package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	somfy "github.com/caarlos0/somfy-bridge"
	"github.com/cenkalti/backoff/v4"
	logp "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "somfy-bridge",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.Info(
		"somfy-bridge",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "JSON API bridge for Somfy alarm panels",
	)

	cfg, err := loadConfig(env.Options{})
	if err != nil {
		log.Fatal(
			"could not load config",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}
	if cfg.Debug {
		log.SetLevel(logp.DebugLevel)
		somfy.SetLogLevel(logp.DebugLevel)
	}

	log.Info(
		"loaded config",
		"panel", cfg.URL,
		"codes", len(cfg.Codes),
		"config", cfg.File,
		"timeout", cfg.Timeout,
		"read_timeout", cfg.ReadTimeout,
	)

	macAddr, err := somfy.MacAddress(cfg.panelHost())
	if err != nil {
		log.Warn(
			"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
			"err", err,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	ready := waitForPanel(ctx, cfg, macAddr)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           newRouter(executor(cfg.session())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown server", "err", err)
		}
	}()

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}
	cancel()
	<-ready
}

// waitForPanel checks the panel in the background so the API is served
// while the panel is still booting. The channel yields the outcome once.
func waitForPanel(ctx context.Context, cfg Config, macAddr string) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		challenge, err := probe(ctx, cfg)
		if err != nil {
			log.Warn("panel is not reachable yet", "err", err)
		} else {
			log.Info("panel is reachable", "mac", macAddr, "challenge", challenge)
		}
		result <- err
	}()
	return result
}

// executor opens one panel session per call. Sessions are not shared, the
// panel itself reports concurrent logins as "session already open".
func executor(cfg somfy.Config) Executor {
	return func(ctx context.Context, operation string, fn func(p Panel) error) error {
		start := time.Now()
		requestCounter.WithLabelValues(operation).Inc()
		defer func() {
			requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		}()

		err := somfy.Do(ctx, cfg, func(s *somfy.Session) error {
			return fn(s)
		})
		if err != nil {
			requestErrorCounter.WithLabelValues(operation, errorKind(err)).Inc()
		}
		return err
	}
}

// probe waits for the panel login page to be served, giving up after
// PROBE_TIMEOUT. A login page that can't be understood is not retried.
func probe(ctx context.Context, cfg Config) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Second * 5
	bo.MaxElapsedTime = cfg.ProbeTimeout

	var challenge string
	err := backoff.RetryNotify(func() (err error) {
		challenge, err = somfy.Probe(ctx, cfg.session())
		if errors.Is(err, somfy.ErrMalformedLoginPage) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		log.Warn("panel probe failed", "err", err, "retry_in", d)
	})
	return challenge, err
}
