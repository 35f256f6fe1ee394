package ogc

import (
	"net/url"
	"strings"

	"github.com/NoteboomM/geomet-fetch/internal/model"
)

const DefaultCoverageFormat = "image/netcdf"

func BuildWCSCapabilitiesParams() url.Values {
	params := url.Values{}
	params.Set("service", "WCS")
	params.Set("version", WCSVersion)
	params.Set("request", "GetCapabilities")
	return params
}

func BuildDescribeCoverageParams(coverageID string) url.Values {
	params := url.Values{}
	params.Set("service", "WCS")
	params.Set("version", WCSVersion)
	params.Set("request", "DescribeCoverage")
	params.Set("coverageid", coverageID)
	return params
}

// BuildGetCoverageParams builds a GetCoverage query. Each subset becomes
// its own repeated subset= pair; time and dim_reference_time ride along
// as the vendor parameters GeoMet accepts on coverage requests.
func BuildGetCoverageParams(q model.CoverageRequest) url.Values {
	params := url.Values{}
	params.Set("service", "WCS")
	params.Set("version", WCSVersion)
	params.Set("request", "GetCoverage")
	params.Set("coverageid", q.CoverageID)
	format := q.Format
	if strings.TrimSpace(format) == "" {
		format = DefaultCoverageFormat
	}
	params.Set("format", format)
	for _, s := range q.Subsets {
		params.Add("subset", s.KVP())
	}
	if q.Time != "" {
		params.Set("time", q.Time)
	}
	if q.ReferenceTime != "" {
		params.Set("dim_reference_time", q.ReferenceTime)
	}
	return params
}
