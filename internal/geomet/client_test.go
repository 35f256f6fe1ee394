package geomet

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NoteboomM/geomet-fetch/internal/config"
	"github.com/NoteboomM/geomet-fetch/internal/httpclient"
	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
)

func newTestClient(t *testing.T, url string, creds *config.Credentials) *Client {
	t.Helper()
	c, err := New(slog.Default(), httpclient.NewOutbound(5*time.Second, "geomet-fetch-test"), Options{
		BaseURL:     url,
		Credentials: creds,
	})
	if err != nil {
		t.Fatalf("client init: %v", err)
	}
	return c
}

func TestGetMap_SendsBasicAuthAndParams(t *testing.T) {
	var gotUser, gotPass string
	var gotAuthOK bool
	var gotQuery map[string]string

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuthOK = r.BasicAuth()
		gotQuery = map[string]string{
			"request": r.URL.Query().Get("request"),
			"layers":  r.URL.Query().Get("layers"),
			"time":    r.URL.Query().Get("time"),
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, &config.Credentials{Username: "alice", Password: "s3cret"})
	payload, err := c.GetMap(context.Background(), model.MapRequest{
		Layer: "GDPS.ETA_TT",
		BBox:  model.BBox{MinX: -75, MinY: 45, MaxX: -74, MaxY: 46, CRS: "EPSG:4326"},
		Width: 10, Height: 10,
		Time: "2024-01-05T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if !gotAuthOK || gotUser != "alice" || gotPass != "s3cret" {
		t.Fatalf("basic auth = %q/%q ok=%v", gotUser, gotPass, gotAuthOK)
	}
	if gotQuery["request"] != "GetMap" || gotQuery["layers"] != "GDPS.ETA_TT" {
		t.Fatalf("query = %v", gotQuery)
	}
	if gotQuery["time"] != "2024-01-05T12:00:00Z" {
		t.Fatalf("time = %q", gotQuery["time"])
	}
	if payload.ContentType != "image/png" {
		t.Fatalf("content type = %q", payload.ContentType)
	}
	if len(payload.Data) == 0 {
		t.Fatalf("empty payload")
	}
}

func TestGetMap_AnonymousOmitsAuthHeader(t *testing.T) {
	var sawAuth bool
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, sawAuth = r.BasicAuth()
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	if c.Authenticated() {
		t.Fatalf("nil credentials should not report authenticated")
	}
	if _, err := c.GetMap(context.Background(), model.MapRequest{Layer: "GDPS.ETA_TT", Width: 1, Height: 1}); err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if sawAuth {
		t.Fatalf("anonymous request carried an Authorization header")
	}
}

func TestFetch_UnauthorizedIsSentinel(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "credentials required", http.StatusUnauthorized)
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	_, err := c.GetMap(context.Background(), model.MapRequest{Layer: "RADAR_1KM_RSNO", Width: 1, Height: 1})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestFetch_ExceptionBodyOnOK(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=UTF-8")
		_, _ = w.Write([]byte(`<ServiceExceptionReport version="1.3.0">
  <ServiceException code="LayerNotDefined" locator="LAYERS">no such layer</ServiceException>
</ServiceExceptionReport>`))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	_, err := c.GetMap(context.Background(), model.MapRequest{Layer: "NO.SUCH", Width: 1, Height: 1})
	if err == nil {
		t.Fatalf("exception body should surface as error")
	}
	var svcErr *ogc.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want *ogc.ServiceError", err)
	}
	if svcErr.Code != "LayerNotDefined" {
		t.Fatalf("code = %q", svcErr.Code)
	}
}

func TestFetch_HTTPErrorCarriesExcerpt(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mapserver fell over", http.StatusInternalServerError)
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	_, err := c.WCSCapabilities(context.Background())
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	if got := err.Error(); !strings.Contains(got, "upstream status 500") || !strings.Contains(got, "mapserver fell over") {
		t.Fatalf("err = %q", got)
	}
}

func TestLayerDimensions_ScopedRequest(t *testing.T) {
	var gotLayerParam string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLayerParam = r.URL.Query().Get("layer")
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<WMS_Capabilities version="1.3.0">
  <Capability>
    <Layer>
      <Layer>
        <Name>GDPS.ETA_TT</Name>
        <Dimension name="time" units="ISO8601" default="2024-01-05T12:00:00Z">2024-01-01T00:00:00Z/2024-01-10T00:00:00Z/PT3H</Dimension>
        <Dimension name="reference_time" units="ISO8601" default="2024-01-05T00:00:00Z">2024-01-01T00:00:00Z/2024-01-05T00:00:00Z/PT12H</Dimension>
      </Layer>
    </Layer>
  </Capability>
</WMS_Capabilities>`))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	dims, err := c.LayerDimensions(context.Background(), "GDPS.ETA_TT")
	if err != nil {
		t.Fatalf("LayerDimensions: %v", err)
	}
	if gotLayerParam != "GDPS.ETA_TT" {
		t.Fatalf("layer param = %q", gotLayerParam)
	}
	if d := dims["time"]; d.Extent != "2024-01-01T00:00:00Z/2024-01-10T00:00:00Z/PT3H" {
		t.Fatalf("time extent = %q", d.Extent)
	}
	if d := dims["reference_time"]; d.Default != "2024-01-05T00:00:00Z" {
		t.Fatalf("reference default = %q", d.Default)
	}
}

func TestLayer_MissingFromCapabilities(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<WMS_Capabilities version="1.3.0"><Capability><Layer><Title>root</Title></Layer></Capability></WMS_Capabilities>`))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	if _, err := c.Layer(context.Background(), "GONE.LAYER"); err == nil {
		t.Fatalf("missing layer should be an error")
	}
}

func TestGetCoverage_SubsetAndFormatParams(t *testing.T) {
	var gotSubsets []string
	var gotFormat string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubsets = r.URL.Query()["subset"]
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/x-netcdf")
		_, _ = w.Write([]byte("CDF\x01 fake"))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	payload, err := c.GetCoverage(context.Background(), model.CoverageRequest{
		CoverageID: "GDPS.ETA_TT",
		Subsets: []model.Subset{
			{Axis: "x", Lo: -80, Hi: -65},
			{Axis: "y", Lo: 40, Hi: 55},
		},
	})
	if err != nil {
		t.Fatalf("GetCoverage: %v", err)
	}
	if len(gotSubsets) != 2 || gotSubsets[0] != "x(-80,-65)" {
		t.Fatalf("subsets = %v", gotSubsets)
	}
	if gotFormat != "image/netcdf" {
		t.Fatalf("format = %q", gotFormat)
	}
	if payload.ContentType != "application/x-netcdf" {
		t.Fatalf("content type = %q", payload.ContentType)
	}
}

func TestDescribeCoverage_EmptyAnswer(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<CoverageDescriptions></CoverageDescriptions>`))
	}))
	defer up.Close()

	c := newTestClient(t, up.URL, nil)
	if _, err := c.DescribeCoverage(context.Background(), "GONE"); err == nil {
		t.Fatalf("empty description should be an error")
	}
}
