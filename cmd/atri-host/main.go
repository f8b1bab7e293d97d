// Command atri-host loads plugin images from a directory and runs them
// until interrupted.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AtriKawaii/atri-go/host"
	"github.com/AtriKawaii/atri-go/hostfuncs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "atri-host:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the host configuration file")
	printSchema := flag.Bool("schema", false, "print the configuration JSON schema and exit")
	flag.Parse()

	if *printSchema {
		s, err := host.ConfigSchema()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(s, '\n'))
		return err
	}

	cfg := host.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = host.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	logger, err := zcfg.Build()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	host.SetLogger(logger)

	reg := prometheus.NewRegistry()
	missing := hostfuncs.NewMissingRecorder()
	mgr, err := host.NewManager(
		host.FromConfig(cfg),
		host.WithLogger(logger),
		host.WithRegisterer(reg),
		host.WithLookupMiddleware(missing.Middleware()),
	)
	if err != nil {
		return err
	}

	plugins, err := mgr.LoadDir(cfg.PluginsDir)
	if err != nil {
		logger.Error("some plugins failed to load", zap.Error(err))
	}
	if ids := missing.Missing(); len(ids) > 0 {
		logger.Warn("plugins expect host functions this host does not provide", zap.Uint16s("ids", ids))
	}
	for _, p := range plugins {
		if !cfg.AutoEnable || cfg.IsDisabled(p.Name()) {
			continue
		}
		if err := p.Enable(); err != nil {
			logger.Error("enable plugin", zap.String("plugin", p.Name()), zap.Error(err))
		}
	}

	var srv *http.Server
	if cfg.Metrics.Enabled {
		srv = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("host running", zap.Int("plugins", len(plugins)))
	<-ctx.Done()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return mgr.Close()
}
