package ogc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// WMSCapabilities is the WMS 1.3.0 GetCapabilities document, trimmed to
// the elements the toolkit reads. GeoMet nests layer groups several
// levels deep, so Layer is recursive.
type WMSCapabilities struct {
	XMLName    xml.Name      `xml:"WMS_Capabilities"`
	Version    string        `xml:"version,attr"`
	Service    WMSService    `xml:"Service"`
	Capability WMSCapability `xml:"Capability"`
}

type WMSService struct {
	Name              string `xml:"Name"`
	Title             string `xml:"Title"`
	Abstract          string `xml:"Abstract"`
	Fees              string `xml:"Fees"`
	AccessConstraints string `xml:"AccessConstraints"`
}

type WMSCapability struct {
	Request WMSRequestInfo `xml:"Request"`
	Layer   Layer          `xml:"Layer"`
}

type WMSRequestInfo struct {
	GetCapabilities OperationFormats `xml:"GetCapabilities"`
	GetMap          OperationFormats `xml:"GetMap"`
}

type OperationFormats struct {
	Formats []string `xml:"Format"`
}

type Layer struct {
	Queryable  string                `xml:"queryable,attr"`
	Name       string                `xml:"Name"`
	Title      string                `xml:"Title"`
	Abstract   string                `xml:"Abstract"`
	CRS        []string              `xml:"CRS"`
	Geographic GeographicBoundingBox `xml:"EX_GeographicBoundingBox"`
	Styles     []Style               `xml:"Style"`
	Dimensions []Dimension           `xml:"Dimension"`
	Layers     []Layer               `xml:"Layer"`
}

type GeographicBoundingBox struct {
	West  float64 `xml:"westBoundLongitude"`
	East  float64 `xml:"eastBoundLongitude"`
	South float64 `xml:"southBoundLatitude"`
	North float64 `xml:"northBoundLatitude"`
}

type Style struct {
	Name  string `xml:"Name"`
	Title string `xml:"Title"`
}

// Dimension is a WMS 1.3.0 dimension element. The extent descriptor is
// the element content, e.g. "2024-01-01T00:00:00Z/2024-01-10T00:00:00Z/PT3H",
// possibly several such ranges joined by commas.
type Dimension struct {
	Name    string `xml:"name,attr"`
	Units   string `xml:"units,attr"`
	Default string `xml:"default,attr"`
	Extent  string `xml:",chardata"`
}

func ParseWMSCapabilities(data []byte) (*WMSCapabilities, error) {
	var caps WMSCapabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("decode WMS capabilities: %w", err)
	}
	return &caps, nil
}

// FindLayer walks the layer tree depth-first and returns the first layer
// whose Name matches. Group layers without a Name are descended into but
// never returned.
func (c *WMSCapabilities) FindLayer(name string) (*Layer, bool) {
	return findLayer(&c.Capability.Layer, name)
}

func findLayer(l *Layer, name string) (*Layer, bool) {
	if l.Name == name {
		return l, true
	}
	for i := range l.Layers {
		if found, ok := findLayer(&l.Layers[i], name); ok {
			return found, true
		}
	}
	return nil, false
}

// LayerNames lists every named layer in document order.
func (c *WMSCapabilities) LayerNames() []string {
	var names []string
	var walk func(l *Layer)
	walk = func(l *Layer) {
		if l.Name != "" {
			names = append(names, l.Name)
		}
		for i := range l.Layers {
			walk(&l.Layers[i])
		}
	}
	walk(&c.Capability.Layer)
	return names
}

// Dimension returns the layer's dimension with the given name attribute.
// WMS 1.3.0 names are lowercase ("time", "reference_time"); the match is
// case-insensitive because some servers emit them capitalized.
func (l *Layer) Dimension(name string) (Dimension, bool) {
	for _, d := range l.Dimensions {
		if strings.EqualFold(d.Name, name) {
			d.Extent = strings.TrimSpace(d.Extent)
			return d, true
		}
	}
	return Dimension{}, false
}
