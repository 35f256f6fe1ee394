// Package preview serves fetched map images to a local browser.
package preview

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
)

// ParseMapRequest validates /map query params before anything reaches
// the upstream client.
func ParseMapRequest(r *http.Request, maxPixels int) (model.MapRequest, error) {
	q := r.URL.Query()

	layer := strings.TrimSpace(q.Get("layer"))
	if layer == "" {
		return model.MapRequest{}, errors.New("missing required parameter: layer")
	}

	rawBBox := strings.TrimSpace(q.Get("bbox"))
	if rawBBox == "" {
		return model.MapRequest{}, errors.New("missing required parameter: bbox")
	}

	crs := strings.ToUpper(strings.TrimSpace(q.Get("crs")))
	if crs == "" {
		crs = ogc.DefaultCRS
	}

	bbox, err := model.ParseBBox(rawBBox, crs)
	if err != nil {
		return model.MapRequest{}, fmt.Errorf("invalid bbox: %w", err)
	}

	width, err := parsePixels(q.Get("width"), defaultWidth, maxPixels)
	if err != nil {
		return model.MapRequest{}, fmt.Errorf("invalid width: %w", err)
	}
	height, err := parsePixels(q.Get("height"), defaultHeight, maxPixels)
	if err != nil {
		return model.MapRequest{}, fmt.Errorf("invalid height: %w", err)
	}

	format := strings.TrimSpace(q.Get("format"))
	switch format {
	case "":
		format = ogc.DefaultMapFormat
	case "image/png", "image/jpeg":
	default:
		return model.MapRequest{}, fmt.Errorf("unsupported format %q (image/png or image/jpeg)", format)
	}

	return model.MapRequest{
		Layer:         layer,
		Style:         strings.TrimSpace(q.Get("style")),
		BBox:          bbox,
		Width:         width,
		Height:        height,
		Format:        format,
		Transparent:   q.Get("transparent") == "true",
		Time:          strings.TrimSpace(q.Get("time")),
		ReferenceTime: strings.TrimSpace(q.Get("reference_time")),
	}, nil
}

func parsePixels(raw string, def, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse int: %w", err)
	}
	if n < 1 {
		return 0, errors.New("must be at least 1")
	}
	if max > 0 && n > max {
		return 0, fmt.Errorf("must be at most %d", max)
	}
	return n, nil
}
