// Command wcs-fetch downloads raw coverage data from MSC GeoMet as
// NetCDF and prints what arrived.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/NoteboomM/geomet-fetch/internal/artifact"
	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/coverage"
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
	coverageFlag := flag.StringP("coverage", "c", "", "coverage id, e.g. GDPS.ETA_TT")
	listFlag := flag.Bool("list", false, "list coverage ids and exit")
	describeFlag := flag.Bool("describe", false, "describe the coverage and exit")
	subsetXFlag := flag.String("subset-x", "", "longitude subset lo,hi")
	subsetYFlag := flag.String("subset-y", "", "latitude subset lo,hi")
	formatFlag := flag.String("format", ogc.DefaultCoverageFormat, "coverage encoding")
	timeFlag := flag.StringP("time", "t", "", "valid time, newest published when empty")
	refFlag := flag.String("reference-time", "", "model run, newest published when empty")
	rangeFlag := flag.Int("range-index", -1, "published range to pick when a dimension lists several")
	outFlag := flag.StringP("out-dir", "o", "", "output directory, OUTPUT_DIR when empty")
	credsFlag := flag.String("credentials", "", "credentials file, GEOMET_CREDENTIALS when empty")
	anonFlag := flag.Bool("anonymous", false, "skip credentials even when configured")
	summaryFlag := flag.Bool("summary", true, "print the NetCDF metadata after download")
	levelFlag := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

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
		Component: "wcs-fetch",
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
		caps, err := client.WCSCapabilities(ctx)
		if err != nil {
			appLog.Error("capabilities fetch failed", "err", err)
			return 1
		}
		for _, id := range caps.CoverageIDs() {
			fmt.Println(id)
		}
		return 0
	}

	if *coverageFlag == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "a --coverage is required unless --list is given")
		return 2
	}

	ctx = logger.WithOperation(logger.WithLayer(ctx, *coverageFlag), "GetCoverage")

	if *describeFlag {
		desc, err := client.DescribeCoverage(ctx, *coverageFlag)
		if err != nil {
			appLog.Error("describe coverage failed", "err", err)
			return 1
		}
		printDescription(desc)
		return 0
	}

	subsets, err := parseSubsets(*subsetXFlag, *subsetYFlag)
	if err != nil {
		appLog.Error("invalid subset", "err", err)
		return 2
	}

	appLog.Info("fetching coverage",
		"version", Version,
		"geomet", cfg.BaseURL,
		"coverage", *coverageFlag,
		"authenticated", client.Authenticated())

	sel, err := resolveTimes(ctx, client, *coverageFlag, *timeFlag, *refFlag, *rangeFlag)
	if err != nil {
		appLog.Error("resolve times", "err", err)
		return 1
	}
	appLog.Info("times resolved", "time", sel.Time, "reference_time", sel.ReferenceTime)

	payload, err := client.GetCoverage(ctx, model.CoverageRequest{
		CoverageID:    *coverageFlag,
		Format:        *formatFlag,
		Subsets:       subsets,
		Time:          sel.Time,
		ReferenceTime: sel.ReferenceTime,
	})
	if err != nil {
		appLog.Error("GetCoverage failed", "err", err)
		return 1
	}

	name := artifact.Name(*coverageFlag, sel.Time, payload.ContentType)
	saved, err := artifact.Save(cfg.OutputDir, name, payload.Data)
	if err != nil {
		appLog.Error("save artifact", "err", err)
		return 1
	}
	appLog.Info("coverage saved", "path", saved.Path, "bytes", saved.Bytes, "digest", saved.Digest)

	if *summaryFlag && strings.HasSuffix(saved.Path, ".nc") {
		if err := printSummary(saved.Path); err != nil {
			appLog.Warn("could not summarize NetCDF", "path", saved.Path, "err", err)
		}
	}

	fmt.Println(saved.Path)
	return 0
}

func parseSubsets(x, y string) ([]model.Subset, error) {
	var subsets []model.Subset
	if strings.TrimSpace(x) != "" {
		s, err := model.ParseSubset("x", x)
		if err != nil {
			return nil, err
		}
		subsets = append(subsets, s)
	}
	if strings.TrimSpace(y) != "" {
		s, err := model.ParseSubset("y", y)
		if err != nil {
			return nil, err
		}
		subsets = append(subsets, s)
	}
	return subsets, nil
}

// resolveTimes reads the time axes from the WMS capabilities; GeoMet
// publishes the same identifiers as WMS layers and WCS coverages, and
// only the WMS side carries the dimension descriptors.
func resolveTimes(ctx context.Context, client *geomet.Client, coverageID, explicitTime, explicitRef string, rangeIndex int) (model.LayerSelection, error) {
	if explicitTime != "" && explicitRef != "" {
		return model.LayerSelection{Layer: coverageID, Time: explicitTime, ReferenceTime: explicitRef}, nil
	}
	dims, err := client.LayerDimensions(ctx, coverageID)
	if err != nil {
		if errors.Is(err, geomet.ErrUnauthorized) {
			return model.LayerSelection{}, err
		}
		// untimed or WCS-only coverages simply take the server default
		return model.LayerSelection{Layer: coverageID, Time: explicitTime, ReferenceTime: explicitRef}, nil
	}
	return geomet.ResolveTimes(coverageID, dims, explicitTime, explicitRef, rangeIndex)
}

func printDescription(desc *ogc.CoverageDescription) {
	id := desc.CoverageID
	if id == "" {
		id = desc.ID
	}
	fmt.Printf("coverage: %s\n", id)
	if desc.Subtype != "" {
		fmt.Printf("subtype: %s\n", desc.Subtype)
	}
	if desc.Native != "" {
		fmt.Printf("native format: %s\n", desc.Native)
	}
	if env, ok := desc.Bounds(); ok {
		fmt.Printf("srs: %s\n", env.SRSName)
		fmt.Printf("axes: %s\n", strings.Join(env.Axes(), ", "))
		fmt.Printf("lower corner: %s\n", env.LowerCorner)
		fmt.Printf("upper corner: %s\n", env.UpperCorner)
		if env.Begin != "" || env.End != "" {
			fmt.Printf("time: %s to %s\n", env.Begin, env.End)
		}
	}
	for _, f := range desc.Fields {
		if f.UOM.Code != "" {
			fmt.Printf("field: %s [%s]\n", f.Name, f.UOM.Code)
			continue
		}
		fmt.Printf("field: %s\n", f.Name)
	}
}

func printSummary(path string) error {
	g, err := coverage.Open(path)
	if err != nil {
		return err
	}
	defer g.Close()

	s, err := coverage.Summarize(g)
	if err != nil {
		return err
	}
	fmt.Print(s.String())
	return nil
}
