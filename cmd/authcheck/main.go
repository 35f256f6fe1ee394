// Command authcheck verifies that configured GeoMet credentials are
// accepted by both the WMS and WCS endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/geomet"
	"github.com/NoteboomM/geomet-fetch/internal/httpclient"
	"github.com/NoteboomM/geomet-fetch/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "authcheck",
	}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	creds, err := config.ResolveCredentials(cfg)
	if err != nil {
		fmt.Println("credentials error:", err)
		return 1
	}
	if creds == nil {
		fmt.Println("no credentials configured; checking anonymous access")
	} else {
		fmt.Printf("checking access for user %s\n", creds.Username)
	}

	client, err := geomet.New(appLog, httpclient.NewOutbound(cfg.RequestTimeout, cfg.UserAgent), geomet.Options{
		BaseURL:     cfg.BaseURL,
		Credentials: creds,
		Lang:        cfg.Lang,
	})
	if err != nil {
		fmt.Println("client error:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := testWMS(ctx, client, cfg.ProbeLayer); err != nil {
		fmt.Println("WMS error:", err)
		return hintOnAuth(err)
	}
	if err := testWCS(ctx, client); err != nil {
		fmt.Println("WCS error:", err)
		return hintOnAuth(err)
	}
	fmt.Println("all checks passed")
	return 0
}

func testWMS(ctx context.Context, client *geomet.Client, probe string) error {
	fmt.Println("WMS capabilities test")

	caps, err := client.WMSCapabilities(ctx, probe)
	if err != nil {
		return err
	}
	fmt.Printf("service: %s (WMS %s)\n", caps.Service.Title, caps.Version)

	layer, ok := caps.FindLayer(probe)
	if !ok {
		return fmt.Errorf("probe layer %q not in capabilities", probe)
	}
	fmt.Printf("layer: %s (%s)\n", layer.Name, layer.Title)
	if dim, ok := layer.Dimension("time"); ok {
		fmt.Printf("time extent: %s\n", dim.Extent)
	}
	return nil
}

func testWCS(ctx context.Context, client *geomet.Client) error {
	fmt.Println("WCS capabilities test")

	caps, err := client.WCSCapabilities(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("service: %s (WCS %s), %d coverages\n", caps.Title, caps.Version, len(caps.Contents))
	return nil
}

func hintOnAuth(err error) int {
	if errors.Is(err, geomet.ErrUnauthorized) {
		fmt.Println("hint: set GEOMET_USERNAME and GEOMET_PASSWORD, or point GEOMET_CREDENTIALS at a credentials file")
	}
	return 1
}
