// Command preview serves a small HTTP facade over GeoMet for browsing
// layers and map images locally.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/geomet"
	"github.com/NoteboomM/geomet-fetch/internal/httpclient"
	"github.com/NoteboomM/geomet-fetch/internal/logger"
	"github.com/NoteboomM/geomet-fetch/internal/observability"
	"github.com/NoteboomM/geomet-fetch/internal/preview"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "preview",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	creds, err := config.ResolveCredentials(cfg)
	if err != nil {
		appLog.Error("resolve credentials", "err", err)
		return 1
	}

	client, err := geomet.New(appLog, httpclient.NewOutbound(cfg.RequestTimeout, cfg.UserAgent), geomet.Options{
		BaseURL:     cfg.BaseURL,
		Credentials: creds,
		Lang:        cfg.Lang,
	})
	if err != nil {
		appLog.Error("geomet client", "err", err)
		return 1
	}

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting preview",
		"addr", cfg.Addr,
		"version", Version,
		"geomet", cfg.BaseURL,
		"authenticated", client.Authenticated())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := preview.Run(ctx, cfg, appLog, client); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
