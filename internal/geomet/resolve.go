package geomet

import (
	"fmt"

	"github.com/NoteboomM/geomet-fetch/internal/model"
	"github.com/NoteboomM/geomet-fetch/internal/ogc"
	"github.com/NoteboomM/geomet-fetch/pkg/timedim"
)

// ResolveTimes pins the reference time and valid time for one request.
// An explicit value wins over the published extent; otherwise the chosen
// range's newest bound is used. A dimension the layer does not publish
// resolves to empty, and the request simply omits that axis. rangeIndex
// selects among multiple published ranges, -1 when unselected.
func ResolveTimes(layer string, dims map[string]ogc.Dimension, explicitTime, explicitRef string, rangeIndex int) (model.LayerSelection, error) {
	sel := model.LayerSelection{Layer: layer}

	t, err := resolveAxis(dims, "time", explicitTime, rangeIndex)
	if err != nil {
		return model.LayerSelection{}, fmt.Errorf("layer %s: %w", layer, err)
	}
	sel.Time = t

	ref, err := resolveAxis(dims, "reference_time", explicitRef, rangeIndex)
	if err != nil {
		return model.LayerSelection{}, fmt.Errorf("layer %s: %w", layer, err)
	}
	sel.ReferenceTime = ref

	return sel, nil
}

func resolveAxis(dims map[string]ogc.Dimension, name, explicit string, rangeIndex int) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dim, ok := dims[name]
	if !ok {
		return "", nil
	}
	ranges, err := timedim.ParseExtent(dim.Extent)
	if err != nil {
		return "", fmt.Errorf("dimension %s: %w", name, err)
	}
	chosen, err := timedim.Choose(ranges, rangeIndex)
	if err != nil {
		return "", fmt.Errorf("dimension %s: %w (ranges: %s)", name, err, describeRanges(ranges))
	}
	return chosen.End, nil
}

func describeRanges(ranges []timedim.Range) string {
	out := ""
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("[%d] %s", i, r.String())
	}
	return out
}
