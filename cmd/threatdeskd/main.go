// Command threatdeskd serves read-only threat-intelligence queries over
// HTTP, backed by an embedded SQLite dataset with an optional Redis
// cache on the dashboard aggregate.
package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/threatdesk/threatdesk/cache"
	"github.com/threatdesk/threatdesk/http"
	"github.com/threatdesk/threatdesk/kit/cli"
	"github.com/threatdesk/threatdesk/logger"
	"github.com/threatdesk/threatdesk/sqlite"
	"github.com/threatdesk/threatdesk/threats"
	"github.com/threatdesk/threatdesk/threats/transport"
)

type config struct {
	httpBindAddress string
	sqlitePath      string
	redisAddr       string
	redisPassword   string
	redisDB         int
	logFormat       string
	logLevel        string
	shutdownTimeout time.Duration
}

func main() {
	c := config{}

	prog := &cli.Program{
		Name: "threatdeskd",
		Run:  func() error { return run(c) },
		Opts: []cli.Opt{
			cli.NewOpt(&c.httpBindAddress, "http-bind-address", ":8080", "bind address for the HTTP server"),
			cli.NewOpt(&c.sqlitePath, "sqlite-path", sqlite.DefaultFilename, "path to the threat dataset sqlite file"),
			cli.NewOpt(&c.redisAddr, "redis-addr", "", "redis address for the dashboard cache; empty disables caching"),
			cli.NewOpt(&c.redisPassword, "redis-password", "", "redis password"),
			cli.NewOpt(&c.redisDB, "redis-db", 0, "redis database number"),
			cli.NewOpt(&c.logFormat, "log-format", "auto", "log format: auto, console, logfmt or json"),
			cli.NewOpt(&c.logLevel, "log-level", "info", "minimum log level"),
			cli.NewOpt(&c.shutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests on shutdown"),
		},
	}

	cmd := cli.NewCommand(prog)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c config) error {
	level, err := zapcore.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}

	logConf := logger.NewConfig()
	logConf.Format = c.logFormat
	logConf.Level = level

	log, err := logConf.New(os.Stdout)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.NewSqlStore(c.sqlitePath, log.With(zap.String("service", "sqlite")))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	var provider cache.Provider = cache.NoopProvider{}
	if c.redisAddr != "" {
		redisProvider, err := cache.NewRedisProvider(ctx, cache.RedisConfig{
			Addr:     c.redisAddr,
			Password: c.redisPassword,
			DB:       c.redisDB,
		})
		if err != nil {
			return err
		}
		provider = redisProvider
		log.Info("dashboard cache enabled", zap.String("redis_addr", c.redisAddr))
	} else {
		log.Info("dashboard cache disabled")
	}
	defer provider.Close()

	svc := threats.NewService(log.With(zap.String("service", "threats")), store)
	wrapped := threats.NewCachingService(
		log.With(zap.String("service", "threats-cache")),
		provider,
		threats.NewLoggingService(log.With(zap.String("service", "threats")), svc),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := http.NewAPIHandler(registry, transport.NewThreatHandler(log.With(zap.String("handler", "threats")), wrapped))

	srv := &nethttp.Server{
		Addr:    c.httpBindAddress,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", c.httpBindAddress))
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("grace_period", c.shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
