package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/NoteboomM/geomet-fetch/internal/geomet"
	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/observability"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
)

// Fetcher is the upstream surface the handlers need; *geomet.Client
// satisfies it.
type Fetcher interface {
	WMSCapabilities(ctx context.Context, layer string) (*ogc.WMSCapabilities, error)
	GetMap(ctx context.Context, q model.MapRequest) (geomet.Payload, error)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type DimensionInfo struct {
	Units   string `json:"units,omitempty"`
	Default string `json:"default,omitempty"`
	Extent  string `json:"extent,omitempty"`
}

type LayerInfo struct {
	Name       string                   `json:"name"`
	Title      string                   `json:"title,omitempty"`
	Dimensions map[string]DimensionInfo `json:"dimensions,omitempty"`
}

// HandleLayers lists named layers from the upstream capabilities,
// optionally scoped to ?layer= so GeoMet does not send its full
// multi-megabyte catalogue.
func HandleLayers(logger *slog.Logger, f Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		scope := r.URL.Query().Get("layer")
		caps, err := f.WMSCapabilities(r.Context(), scope)
		if err != nil {
			logger.Error("capabilities fetch failed", "err", err)
			http.Error(sw, "upstream error: "+err.Error(), http.StatusBadGateway)
			observability.ObserveHTTP(r.Method, "/layers", sw.code, time.Since(start).Seconds())
			return
		}

		out := make([]LayerInfo, 0)
		for _, l := range collectLayers(caps) {
			info := LayerInfo{Name: l.Name, Title: l.Title}
			for _, d := range l.Dimensions {
				if info.Dimensions == nil {
					info.Dimensions = make(map[string]DimensionInfo)
				}
				info.Dimensions[d.Name] = DimensionInfo{
					Units:   d.Units,
					Default: d.Default,
					Extent:  strings.TrimSpace(d.Extent),
				}
			}
			out = append(out, info)
		}

		sw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(sw).Encode(out)
		observability.ObserveHTTP(r.Method, "/layers", sw.code, time.Since(start).Seconds())
	}
}

func collectLayers(caps *ogc.WMSCapabilities) []ogc.Layer {
	var out []ogc.Layer
	var walk func(l ogc.Layer)
	walk = func(l ogc.Layer) {
		if l.Name != "" {
			out = append(out, l)
		}
		for _, child := range l.Layers {
			walk(child)
		}
	}
	walk(caps.Capability.Layer)
	return out
}

// HandleMap validates the query, fetches the rendered map and relays
// the image bytes as-is.
func HandleMap(logger *slog.Logger, f Fetcher, maxPixels int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		q, err := ParseMapRequest(r, maxPixels)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
			return
		}

		payload, err := f.GetMap(r.Context(), q)
		if err != nil {
			logger.Error("map fetch failed", "layer", q.Layer, "err", err)
			http.Error(sw, "upstream error: "+err.Error(), http.StatusBadGateway)
			observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
			return
		}

		if payload.ContentType != "" {
			sw.Header().Set("Content-Type", payload.ContentType)
		}
		_, _ = sw.Write(payload.Data)
		observability.ObserveHTTP(r.Method, "/map", sw.code, time.Since(start).Seconds())
	}
}
