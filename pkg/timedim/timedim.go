// Package timedim parses the time-axis descriptors published in GeoMet
// capability documents. A descriptor is the compact "<start>/<end>/<step>"
// form used for the time and reference_time dimensions.
package timedim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDescriptor reports a descriptor that does not split into
// exactly start, end and step.
var ErrMalformedDescriptor = errors.New("malformed dimension descriptor")

// Range is one published extent of a time axis. Fields are kept as the
// opaque ISO-8601 text the server supplied: the outgoing request expects
// the same textual form, so nothing is normalized or decoded here.
type Range struct {
	Start string
	End   string
	Step  string
}

// String reassembles the original descriptor.
func (r Range) String() string {
	return r.Start + "/" + r.End + "/" + r.Step
}

// Parse splits a "<start>/<end>/<step>" descriptor into its three fields,
// unmodified and in original order. Any separator count other than two is
// ErrMalformedDescriptor; there is no safe bound to substitute, so the
// error propagates instead of truncating or padding.
func Parse(descriptor string) (Range, error) {
	parts := strings.Split(descriptor, "/")
	if len(parts) != 3 {
		return Range{}, fmt.Errorf("%w: %q splits into %d field(s), want 3", ErrMalformedDescriptor, descriptor, len(parts))
	}
	return Range{Start: parts[0], End: parts[1], Step: parts[2]}, nil
}

// ParseExtent parses a dimension extent, a comma-separated list of range
// descriptors. Servers may publish several disjoint ranges for one axis;
// callers get all of them and must choose explicitly.
func ParseExtent(extent string) ([]Range, error) {
	if strings.TrimSpace(extent) == "" {
		return nil, fmt.Errorf("%w: empty extent", ErrMalformedDescriptor)
	}
	var out []Range
	for _, entry := range strings.Split(extent, ",") {
		r, err := Parse(strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ErrAmbiguousExtent reports an extent that published several ranges
// while the caller selected none.
var ErrAmbiguousExtent = errors.New("ambiguous dimension extent")

// Choose picks one range out of an extent's list. index -1 means no
// selection, which is only valid when the list has a single entry; a
// multi-range extent without a selection is reported rather than
// silently collapsed to the first entry.
func Choose(ranges []Range, index int) (Range, error) {
	if len(ranges) == 0 {
		return Range{}, fmt.Errorf("%w: no ranges to choose from", ErrMalformedDescriptor)
	}
	if index < 0 {
		if len(ranges) == 1 {
			return ranges[0], nil
		}
		return Range{}, fmt.Errorf("%w: %d ranges published and none selected", ErrAmbiguousExtent, len(ranges))
	}
	if index >= len(ranges) {
		return Range{}, fmt.Errorf("%w: index %d out of %d ranges", ErrAmbiguousExtent, index, len(ranges))
	}
	return ranges[index], nil
}
