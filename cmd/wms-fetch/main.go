// Command wms-fetch downloads one rendered map image from MSC GeoMet,
// resolving the layer's time dimensions from the live capabilities.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/NoteboomM/geomet-fetch/internal/artifact"
	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/geomet"
	"github.com/NoteboomM/geomet-fetch/internal/httpclient"
	"github.com/NoteboomM/geomet-fetch/internal/logger"
	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	layerFlag := flag.StringP("layer", "l", "", "layer name, e.g. GDPS.ETA_TT")
	listFlag := flag.Bool("list", false, "list named layers and exit")
	bboxFlag := flag.String("bbox", "-95,35,-50,60", "bounding box minx,miny,maxx,maxy in lon/lat")
	crsFlag := flag.String("crs", ogc.DefaultCRS, "coordinate reference system")
	widthFlag := flag.Int("width", 800, "image width in pixels")
	heightFlag := flag.Int("height", 600, "image height in pixels")
	formatFlag := flag.String("format", ogc.DefaultMapFormat, "image format")
	styleFlag := flag.String("style", "", "style name, server default when empty")
	transparentFlag := flag.Bool("transparent", false, "request a transparent background")
	timeFlag := flag.StringP("time", "t", "", "valid time, newest published when empty")
	refFlag := flag.String("reference-time", "", "model run, newest published when empty")
	rangeFlag := flag.Int("range-index", -1, "published range to pick when a dimension lists several")
	outFlag := flag.StringP("out-dir", "o", "", "output directory, OUTPUT_DIR when empty")
	credsFlag := flag.String("credentials", "", "credentials file, GEOMET_CREDENTIALS when empty")
	anonFlag := flag.Bool("anonymous", false, "skip credentials even when configured")
	levelFlag := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	// .env keeps credentials out of shell history during development
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if *levelFlag != "" {
		cfg.LogLevel = *levelFlag
	}
	if *credsFlag != "" {
		cfg.CredentialsFile = *credsFlag
	}
	if *outFlag != "" {
		cfg.OutputDir = *outFlag
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "wms-fetch",
	}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	var creds *config.Credentials
	if !*anonFlag {
		var err error
		creds, err = config.ResolveCredentials(cfg)
		if err != nil {
			appLog.Error("resolve credentials", "err", err)
			return 1
		}
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *listFlag {
		caps, err := client.WMSCapabilities(ctx, *layerFlag)
		if err != nil {
			appLog.Error("capabilities fetch failed", "err", err)
			return 1
		}
		for _, name := range caps.LayerNames() {
			fmt.Println(name)
		}
		return 0
	}

	if *layerFlag == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "a --layer is required unless --list is given")
		return 2
	}

	bbox, err := model.ParseBBox(*bboxFlag, strings.ToUpper(strings.TrimSpace(*crsFlag)))
	if err != nil {
		appLog.Error("invalid bbox", "err", err)
		return 2
	}

	appLog.Info("fetching map",
		"version", Version,
		"geomet", cfg.BaseURL,
		"layer", *layerFlag,
		"authenticated", client.Authenticated())

	ctx = logger.WithOperation(logger.WithLayer(ctx, *layerFlag), "GetMap")

	sel, err := resolveTimes(ctx, client, *layerFlag, *timeFlag, *refFlag, *rangeFlag)
	if err != nil {
		appLog.Error("resolve times", "err", err)
		return 1
	}
	appLog.Info("times resolved", "time", sel.Time, "reference_time", sel.ReferenceTime)

	payload, err := client.GetMap(ctx, model.MapRequest{
		Layer:         *layerFlag,
		Style:         *styleFlag,
		BBox:          bbox,
		Width:         *widthFlag,
		Height:        *heightFlag,
		Format:        *formatFlag,
		Transparent:   *transparentFlag,
		Time:          sel.Time,
		ReferenceTime: sel.ReferenceTime,
	})
	if err != nil {
		appLog.Error("GetMap failed", "err", err)
		return 1
	}

	name := artifact.Name(*layerFlag, sel.Time, payload.ContentType)
	saved, err := artifact.Save(cfg.OutputDir, name, payload.Data)
	if err != nil {
		appLog.Error("save artifact", "err", err)
		return 1
	}
	logSaved(appLog, saved, payload.Data)

	fmt.Println(saved.Path)
	return 0
}

func resolveTimes(ctx context.Context, client *geomet.Client, layer, explicitTime, explicitRef string, rangeIndex int) (model.LayerSelection, error) {
	if explicitTime != "" && explicitRef != "" {
		return model.LayerSelection{Layer: layer, Time: explicitTime, ReferenceTime: explicitRef}, nil
	}
	dims, err := client.LayerDimensions(ctx, layer)
	if err != nil {
		return model.LayerSelection{}, err
	}
	return geomet.ResolveTimes(layer, dims, explicitTime, explicitRef, rangeIndex)
}

func logSaved(log *slog.Logger, saved artifact.Saved, data []byte) {
	info, err := artifact.DescribeImage(data)
	if err != nil {
		log.Warn("saved payload does not decode as an image",
			"path", saved.Path,
			"bytes", saved.Bytes,
			"digest", saved.Digest,
			"err", err)
		return
	}
	log.Info("map saved",
		"path", saved.Path,
		"bytes", saved.Bytes,
		"digest", saved.Digest,
		"format", info.Format,
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height))
}
