package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"forecastio/config"
	v1 "forecastio/internal/controllers/http/v1"
	"forecastio/internal/models"
	"forecastio/internal/repositories"
	"forecastio/internal/services/forecast"
	"forecastio/pkg/httpserver"
	"forecastio/pkg/logger"
	"forecastio/pkg/observe"
)

// @title Forecast.io gateway
// @version 1.0.0
// @description Multi-location current, hourly and weekly forecasts from forecast.io,
// @description plus a key-holding proxy endpoint for browser clients.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Forecast
// @tag.description Forecast operations
// @tag.name Proxy
// @tag.description Provider passthrough
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf, err := config.NewConfig()
	if err != nil {
		logger.NewZapLogger("forecastio", "", os.Stderr).Fatal("cannot load configuration", map[string]any{"err": err.Error()})
	}

	writers := []io.Writer{os.Stdout}
	var hook *observe.SentryHook
	if cnf.Log.SentryDSN != "" {
		hook = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.IsDevelopment(), cnf.Log.SentryDSN)
		writers = append(writers, hook)
	}

	l := logger.NewZapLogger(cnf.App.Name, cnf.App.Env, writers...)
	if err := l.SetLevel(cnf.Log.Level); err != nil {
		l.Warning("invalid log level, keeping debug", map[string]any{"level": cnf.Log.Level})
	}
	if hook != nil {
		hook.SetLogger(logger.NewZapLogger(cnf.App.Name, cnf.App.Env, os.Stdout))
	}

	repo, err := repositories.InitForecastRepository(cnf, l, &http.Client{Timeout: cnf.Forecast.RequestTimeout})
	if err != nil {
		l.Fatal("cannot configure forecast endpoint", map[string]any{"err": err.Error()})
	}

	service := forecast.NewCoordinator(repo, models.StrftimeFormatter{}, l)

	// A proxy-mode server has no key to forward with.
	var proxy v1.RawFetcher
	if !cnf.ProxyMode() {
		proxy = repo
	}

	app := httpserver.InitFiberServer(cnf.App.Name)

	v1.NewRouter(
		app,
		service,
		proxy,
		l,
	)

	go func() {
		if err := app.Listen(":" + cnf.Server.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err.Error()})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":       cnf.Server.Port,
		"repository": repo.Name(),
		"proxy":      proxy != nil,
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cnf.Server.ShutdownTimeout)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		if hook != nil {
			hook.Flush()
		}
		_ = l.Stop()
		cancel()
	}()

	select {
	case <-sigCh:
		l.Info("received shutdown signal")
	case <-ctx.Done():
		l.Info("context cancelled")
	}
}
