package geomet

import (
	"errors"
	"strings"
	"testing"

	"github.com/NoteboomM/geomet-fetch/internal/ogc"
	"github.com/NoteboomM/geomet-fetch/pkg/timedim"
)

func forecastDims() map[string]ogc.Dimension {
	return map[string]ogc.Dimension{
		"time": {
			Name:    "time",
			Units:   "ISO8601",
			Default: "2022-06-22T00:00:00Z",
			Extent:  "2022-06-21T01:00:00Z/2022-06-27T00:00:00Z/PT1H",
		},
		"reference_time": {
			Name:    "reference_time",
			Units:   "ISO8601",
			Default: "2022-06-21T00:00:00Z",
			Extent:  "2022-06-19T12:00:00Z/2022-06-21T00:00:00Z/PT12H",
		},
	}
}

func TestResolveTimes_NewestBoundByDefault(t *testing.T) {
	sel, err := ResolveTimes("GDPS.ETA_TT", forecastDims(), "", "", -1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sel.Layer != "GDPS.ETA_TT" {
		t.Fatalf("layer = %q", sel.Layer)
	}
	if sel.Time != "2022-06-27T00:00:00Z" {
		t.Fatalf("time = %q, want newest bound", sel.Time)
	}
	if sel.ReferenceTime != "2022-06-21T00:00:00Z" {
		t.Fatalf("reference time = %q, want newest bound", sel.ReferenceTime)
	}
}

func TestResolveTimes_ExplicitValuesWin(t *testing.T) {
	sel, err := ResolveTimes("GDPS.ETA_TT", forecastDims(), "2022-06-22T06:00:00Z", "2022-06-20T12:00:00Z", -1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sel.Time != "2022-06-22T06:00:00Z" {
		t.Fatalf("time = %q", sel.Time)
	}
	if sel.ReferenceTime != "2022-06-20T12:00:00Z" {
		t.Fatalf("reference time = %q", sel.ReferenceTime)
	}
}

func TestResolveTimes_UntimedLayerResolvesEmpty(t *testing.T) {
	sel, err := ResolveTimes("STATIC.DEM", map[string]ogc.Dimension{}, "", "", -1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sel.Time != "" || sel.ReferenceTime != "" {
		t.Fatalf("selection = %+v, want empty axes", sel)
	}
}

func TestResolveTimes_MultiRangeDemandsSelection(t *testing.T) {
	dims := forecastDims()
	d := dims["time"]
	d.Extent = "2022-06-01T00:00:00Z/2022-06-10T00:00:00Z/PT1H,2022-06-21T01:00:00Z/2022-06-27T00:00:00Z/PT1H"
	dims["time"] = d

	_, err := ResolveTimes("GDPS.ETA_TT", dims, "", "", -1)
	if !errors.Is(err, timedim.ErrAmbiguousExtent) {
		t.Fatalf("err = %v, want ErrAmbiguousExtent", err)
	}
	// the error lists the candidates so the caller can pick
	if !strings.Contains(err.Error(), "[0]") || !strings.Contains(err.Error(), "[1]") {
		t.Fatalf("error should enumerate ranges: %v", err)
	}

	sel, err := ResolveTimes("GDPS.ETA_TT", dims, "", "", 0)
	if err != nil {
		t.Fatalf("resolve with index: %v", err)
	}
	if sel.Time != "2022-06-10T00:00:00Z" {
		t.Fatalf("time = %q, want end of first range", sel.Time)
	}
}

func TestResolveTimes_MalformedExtentPropagates(t *testing.T) {
	dims := map[string]ogc.Dimension{
		"time": {Name: "time", Extent: "nodashes"},
	}
	_, err := ResolveTimes("BAD.LAYER", dims, "", "", -1)
	if !errors.Is(err, timedim.ErrMalformedDescriptor) {
		t.Fatalf("err = %v, want ErrMalformedDescriptor", err)
	}
}
