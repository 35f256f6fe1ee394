// Package ogc builds OGC key-value request parameters and decodes the
// XML documents the services answer with. Only the WMS 1.3.0 and
// WCS 2.0.1 subsets GeoMet serves are covered.
package ogc

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/NoteboomM/geomet-fetch/internal/model"
)

const (
	WMSVersion = "1.3.0"
	WCSVersion = "2.0.1"

	DefaultCRS       = "EPSG:4326"
	DefaultMapFormat = "image/png"
)

func Endpoint(base string) string {
	return strings.TrimRight(base, "/")
}

// BuildWMSCapabilitiesParams builds a GetCapabilities query. A non-empty
// layer sets the vendor filter GeoMet honors to return a document scoped
// to that single layer, which is far smaller than the full tree. lang
// selects the en or fr variant of titles and abstracts; empty means the
// server default.
func BuildWMSCapabilitiesParams(layer, lang string) url.Values {
	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", WMSVersion)
	params.Set("request", "GetCapabilities")
	if strings.TrimSpace(layer) != "" {
		params.Set("layer", layer)
	}
	if strings.TrimSpace(lang) != "" {
		params.Set("lang", lang)
	}
	return params
}

func BuildGetMapParams(q model.MapRequest) url.Values {
	params := url.Values{}
	params.Set("service", "WMS")
	params.Set("version", WMSVersion)
	params.Set("request", "GetMap")
	params.Set("layers", q.Layer)
	params.Set("styles", q.Style)
	crs := q.BBox.CRS
	if strings.TrimSpace(crs) == "" {
		crs = DefaultCRS
	}
	// render the box under the same CRS we advertise so the axis
	// order flip stays consistent
	box := q.BBox
	box.CRS = crs
	params.Set("crs", crs)
	params.Set("bbox", box.KVP())
	params.Set("width", strconv.Itoa(q.Width))
	params.Set("height", strconv.Itoa(q.Height))
	format := q.Format
	if strings.TrimSpace(format) == "" {
		format = DefaultMapFormat
	}
	params.Set("format", format)
	if q.Transparent {
		params.Set("transparent", "true")
	}
	if q.Time != "" {
		params.Set("time", q.Time)
	}
	if q.ReferenceTime != "" {
		params.Set("dim_reference_time", q.ReferenceTime)
	}
	return params
}
