// Package geomet is the HTTP client for the MSC GeoMet WMS and WCS
// endpoints, with optional basic auth for licensed layers.
package geomet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/observability"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
)

// ErrUnauthorized marks a 401 or 403 from GeoMet, which on licensed
// layers means missing or rejected credentials.
var ErrUnauthorized = errors.New("geomet: unauthorized")

// Options configure a Client. Credentials may be nil for anonymous
// access to public layers; Lang selects en or fr capability text.
type Options struct {
	BaseURL     string
	Credentials *config.Credentials
	Lang        string
}

type Client struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint *url.URL
	creds    *config.Credentials
	lang     string
	startNow func() time.Time // for tests
}

func New(logger *slog.Logger, client *http.Client, opts Options) (*Client, error) {
	u, err := url.Parse(ogc.Endpoint(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse geomet url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		logger:   logger,
		client:   client,
		endpoint: u,
		creds:    opts.Credentials,
		lang:     opts.Lang,
		startNow: time.Now,
	}, nil
}

// Authenticated reports whether the client sends credentials.
func (c *Client) Authenticated() bool { return c.creds != nil }

// Payload is a fetched response body with its advertised content type.
type Payload struct {
	Data        []byte
	ContentType string
}

func (c *Client) fetch(ctx context.Context, service, operation string, params url.Values) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build request: %w", err)
	}
	u := *c.endpoint
	u.RawQuery = params.Encode()
	req.URL = &u
	req.Host = c.endpoint.Host
	if c.creds != nil {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	start := c.startNow()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.ObserveUpstream(service, operation, 0, time.Since(start).Seconds(), 0)
		return Payload{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 8<<10))
		observability.ObserveUpstream(service, operation, resp.StatusCode, time.Since(start).Seconds(), 0)
		return Payload{}, fmt.Errorf("%w: status %d for %s", ErrUnauthorized, resp.StatusCode, operation)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		observability.ObserveUpstream(service, operation, resp.StatusCode, time.Since(start).Seconds(), 0)
		if svcErr, ok := ogc.ParseException(b); ok {
			return Payload{}, fmt.Errorf("%s %s: %w", service, operation, svcErr)
		}
		return Payload{}, fmt.Errorf("%s %s: upstream status %d: %s", service, operation, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.ObserveUpstream(service, operation, resp.StatusCode, time.Since(start).Seconds(), 0)
		return Payload{}, fmt.Errorf("read body: %w", err)
	}

	dur := time.Since(start)
	observability.ObserveUpstream(service, operation, resp.StatusCode, dur.Seconds(), int64(len(b)))

	ct := resp.Header.Get("Content-Type")

	// MapServer answers many request errors with 200 and an XML
	// exception body, so XML where we did not ask for it gets sniffed
	if strings.Contains(ct, "xml") {
		if svcErr, ok := ogc.ParseException(b); ok {
			return Payload{}, fmt.Errorf("%s %s: %w", service, operation, svcErr)
		}
	}

	c.logger.Debug("geomet fetch done",
		"service", service,
		"operation", operation,
		"status", resp.StatusCode,
		"bytes", len(b),
		"duration", dur.String())

	return Payload{Data: b, ContentType: ct}, nil
}

// WMSCapabilities fetches the capabilities document, scoped to a single
// layer when layer is non-empty.
func (c *Client) WMSCapabilities(ctx context.Context, layer string) (*ogc.WMSCapabilities, error) {
	payload, err := c.fetch(ctx, "wms", "GetCapabilities", ogc.BuildWMSCapabilitiesParams(layer, c.lang))
	if err != nil {
		return nil, err
	}
	return ogc.ParseWMSCapabilities(payload.Data)
}

// Layer fetches the scoped capabilities document and returns the named
// layer node out of it.
func (c *Client) Layer(ctx context.Context, name string) (*ogc.Layer, error) {
	caps, err := c.WMSCapabilities(ctx, name)
	if err != nil {
		return nil, err
	}
	layer, ok := caps.FindLayer(name)
	if !ok {
		return nil, fmt.Errorf("layer %q not present in capabilities", name)
	}
	return layer, nil
}

// LayerDimensions returns the layer's dimensions keyed by their
// lowercased name, typically "time" and "reference_time".
func (c *Client) LayerDimensions(ctx context.Context, name string) (map[string]ogc.Dimension, error) {
	layer, err := c.Layer(ctx, name)
	if err != nil {
		return nil, err
	}
	dims := make(map[string]ogc.Dimension, len(layer.Dimensions))
	for _, d := range layer.Dimensions {
		d.Extent = strings.TrimSpace(d.Extent)
		dims[strings.ToLower(d.Name)] = d
	}
	return dims, nil
}

func (c *Client) GetMap(ctx context.Context, q model.MapRequest) (Payload, error) {
	return c.fetch(ctx, "wms", "GetMap", ogc.BuildGetMapParams(q))
}

func (c *Client) WCSCapabilities(ctx context.Context) (*ogc.WCSCapabilities, error) {
	payload, err := c.fetch(ctx, "wcs", "GetCapabilities", ogc.BuildWCSCapabilitiesParams())
	if err != nil {
		return nil, err
	}
	return ogc.ParseWCSCapabilities(payload.Data)
}

func (c *Client) DescribeCoverage(ctx context.Context, coverageID string) (*ogc.CoverageDescription, error) {
	payload, err := c.fetch(ctx, "wcs", "DescribeCoverage", ogc.BuildDescribeCoverageParams(coverageID))
	if err != nil {
		return nil, err
	}
	descs, err := ogc.ParseCoverageDescriptions(payload.Data)
	if err != nil {
		return nil, err
	}
	if len(descs.Descriptions) == 0 {
		return nil, fmt.Errorf("coverage %q not present in description", coverageID)
	}
	return &descs.Descriptions[0], nil
}

func (c *Client) GetCoverage(ctx context.Context, q model.CoverageRequest) (Payload, error) {
	return c.fetch(ctx, "wcs", "GetCoverage", ogc.BuildGetCoverageParams(q))
}
