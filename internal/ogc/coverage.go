package ogc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// WCSCapabilities is the WCS 2.0.1 GetCapabilities document, trimmed to
// the contents section. Namespace prefixes are ignored; encoding/xml
// matches on local names.
type WCSCapabilities struct {
	XMLName  xml.Name       `xml:"Capabilities"`
	Version  string         `xml:"version,attr"`
	Title    string         `xml:"ServiceIdentification>Title"`
	Abstract string         `xml:"ServiceIdentification>Abstract"`
	Contents []CoverageInfo `xml:"Contents>CoverageSummary"`
}

type CoverageInfo struct {
	CoverageID string `xml:"CoverageId"`
	Subtype    string `xml:"CoverageSubtype"`
}

func ParseWCSCapabilities(data []byte) (*WCSCapabilities, error) {
	var caps WCSCapabilities
	if err := xml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("decode WCS capabilities: %w", err)
	}
	return &caps, nil
}

func (c *WCSCapabilities) CoverageIDs() []string {
	ids := make([]string, 0, len(c.Contents))
	for _, s := range c.Contents {
		ids = append(ids, s.CoverageID)
	}
	return ids
}

// CoverageDescriptions is the WCS 2.0.1 DescribeCoverage answer.
type CoverageDescriptions struct {
	XMLName      xml.Name              `xml:"CoverageDescriptions"`
	Descriptions []CoverageDescription `xml:"CoverageDescription"`
}

type CoverageDescription struct {
	ID         string    `xml:"id,attr"`
	CoverageID string    `xml:"CoverageId"`
	BoundedBy  BoundedBy `xml:"boundedBy"`
	Fields     []Field   `xml:"rangeType>DataRecord>field"`
	Native     string    `xml:"ServiceParameters>nativeFormat"`
	Subtype    string    `xml:"ServiceParameters>CoverageSubtype"`
}

// BoundedBy carries either a plain envelope or, when the coverage has a
// time axis, an envelope with a time period. GeoMet emits the latter for
// forecast coverages.
type BoundedBy struct {
	Envelope     *Envelope `xml:"Envelope"`
	TimeEnvelope *Envelope `xml:"EnvelopeWithTimePeriod"`
}

type Envelope struct {
	SRSName     string `xml:"srsName,attr"`
	AxisLabels  string `xml:"axisLabels,attr"`
	UOMLabels   string `xml:"uomLabels,attr"`
	LowerCorner string `xml:"lowerCorner"`
	UpperCorner string `xml:"upperCorner"`
	Begin       string `xml:"beginPosition"`
	End         string `xml:"endPosition"`
}

type Field struct {
	Name string `xml:"name,attr"`
	UOM  UOM    `xml:"Quantity>uom"`
}

type UOM struct {
	Code string `xml:"code,attr"`
}

func ParseCoverageDescriptions(data []byte) (*CoverageDescriptions, error) {
	var descs CoverageDescriptions
	if err := xml.Unmarshal(data, &descs); err != nil {
		return nil, fmt.Errorf("decode coverage descriptions: %w", err)
	}
	return &descs, nil
}

// Bounds returns the envelope regardless of which variant the server
// chose. ok is false when the description carries neither.
func (d CoverageDescription) Bounds() (Envelope, bool) {
	switch {
	case d.BoundedBy.TimeEnvelope != nil:
		return *d.BoundedBy.TimeEnvelope, true
	case d.BoundedBy.Envelope != nil:
		return *d.BoundedBy.Envelope, true
	}
	return Envelope{}, false
}

// Axes splits the envelope's axis labels, e.g. "x y" or "x y time".
func (e Envelope) Axes() []string {
	return strings.Fields(e.AxisLabels)
}
