// Package model defines the request types shared across the toolkit.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
	CRS        string
}

// ParseBBox reads "minx,miny,maxx,maxy" with x as longitude and y as
// latitude regardless of CRS; KVP applies the wire-order flip later.
func ParseBBox(raw, crs string) (BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BBox{}, errors.New("expected 4 comma-separated values: minx,miny,maxx,maxy")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = f
	}
	minX, minY, maxX, maxY := vals[0], vals[1], vals[2], vals[3]

	if crs == "EPSG:4326" {
		if !(minX >= -180 && minX <= 180 && maxX >= -180 && maxX <= 180) {
			return BBox{}, errors.New("longitude must be in [-180,180]")
		}
		if !(minY >= -90 && minY <= 90 && maxY >= -90 && maxY <= 90) {
			return BBox{}, errors.New("latitude must be in [-90,90]")
		}
	}
	if maxX <= minX || maxY <= minY {
		return BBox{}, errors.New("coordinates must satisfy maxx>minx and maxy>miny")
	}

	return BBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, CRS: crs}, nil
}

// KVP renders the box in the axis order WMS 1.3.0 expects for the box's
// CRS: EPSG:4326 is latitude-first on the wire, everything else keeps the
// x,y order the coordinates were given in.
func (b BBox) KVP() string {
	if b.CRS == "EPSG:4326" {
		return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinY, b.MinX, b.MaxY, b.MaxX)
	}
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// MapRequest holds everything a WMS GetMap call needs. Time and
// ReferenceTime carry the ISO-8601 text resolved from the layer's
// dimension descriptors, passed through untouched.
type MapRequest struct {
	Layer         string
	Style         string
	BBox          BBox
	Width         int
	Height        int
	Format        string
	Transparent   bool
	Time          string
	ReferenceTime string
}

// Subset is one trim of a WCS coverage axis.
type Subset struct {
	Axis   string
	Lo, Hi float64
}

// KVP renders the subset in WCS 2.0.1 key-value form, e.g. "x(-80,-65)".
func (s Subset) KVP() string {
	lo := strconv.FormatFloat(s.Lo, 'f', -1, 64)
	hi := strconv.FormatFloat(s.Hi, 'f', -1, 64)
	return fmt.Sprintf("%s(%s,%s)", s.Axis, lo, hi)
}

// ParseSubset reads "lo,hi" for the named coverage axis.
func ParseSubset(axis, raw string) (Subset, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return Subset{}, fmt.Errorf("axis %s: expected 2 comma-separated values: lo,hi", axis)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Subset{}, fmt.Errorf("axis %s: lo: %w", axis, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Subset{}, fmt.Errorf("axis %s: hi: %w", axis, err)
	}
	if hi <= lo {
		return Subset{}, fmt.Errorf("axis %s: bounds must satisfy hi>lo", axis)
	}
	return Subset{Axis: axis, Lo: lo, Hi: hi}, nil
}

// CoverageRequest holds everything a WCS GetCoverage call needs.
type CoverageRequest struct {
	CoverageID    string
	Format        string
	Subsets       []Subset
	Time          string
	ReferenceTime string
}

// LayerSelection pins one layer to the reference time and valid time
// chosen for a single request. Built immediately before the request and
// discarded after it completes.
type LayerSelection struct {
	Layer         string
	ReferenceTime string
	Time          string
}
