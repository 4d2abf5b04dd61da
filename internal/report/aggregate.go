package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// LayerRow is one display row of the asbestos sample table. Samples without
// layers produce a single row with a nil Layer and LayerIndex 0.
type LayerRow struct {
	Sample     domain.AsbestosSample
	LayerIndex int
	LayerCount int
	Layer      *domain.Layer
}

// ExplodeLayers emits one row per layer in the supplied order. Layer numbering
// is trusted as given.
func ExplodeLayers(samples []domain.AsbestosSample, layersBySample map[int64][]domain.Layer) []LayerRow {
	rows := make([]LayerRow, 0, len(samples))
	for _, s := range samples {
		layers := layersBySample[s.ID]
		if len(layers) == 0 {
			rows = append(rows, LayerRow{Sample: s, LayerIndex: 0, LayerCount: 1})
			continue
		}
		for i := range layers {
			rows = append(rows, LayerRow{
				Sample:     s,
				LayerIndex: i + 1,
				LayerCount: len(layers),
				Layer:      &layers[i],
			})
		}
	}
	return rows
}

func (r LayerRow) Label() string {
	if r.LayerCount > 1 {
		return fmt.Sprintf("%s (%d/%d)", r.Sample.SampleNumber, r.LayerIndex, r.LayerCount)
	}
	return r.Sample.SampleNumber
}

func (r LayerRow) MaterialType() string {
	if r.Layer != nil && r.Layer.MaterialType != "" {
		return r.Layer.MaterialType
	}
	return r.Sample.MaterialType
}

func (r LayerRow) AsbestosType() string {
	if r.Layer != nil && r.Layer.AsbestosType != "" {
		return r.Layer.AsbestosType
	}
	return r.Sample.AsbestosType
}

func (r LayerRow) Percent() *float64 {
	if r.Layer != nil && r.Layer.Percent != nil {
		return r.Layer.Percent
	}
	return r.Sample.AsbestosPercent
}

func (r LayerRow) Notes() string {
	if r.Layer != nil && r.Layer.Notes != "" {
		return r.Layer.Notes
	}
	return r.Sample.Notes
}

// AreaRollup is the per homogeneous area aggregate shown in the area summary.
type AreaRollup struct {
	Count int
	Total float64
}

// RollupByHomogeneousArea folds asbestos samples into per-code rollups.
// Samples without a code are skipped entirely; non-positive or unparsable
// quantities still count the sample but add nothing to the total.
func RollupByHomogeneousArea(samples []domain.AsbestosSample) map[string]AreaRollup {
	rollups := make(map[string]AreaRollup)
	for _, s := range samples {
		code := s.HomogeneousArea
		if code == "" {
			continue
		}
		r := rollups[code]
		r.Count++
		if q, ok := ParseQuantity(s.EstimatedQuantity); ok && q > 0 {
			r.Total += q
		}
		rollups[code] = r
	}
	return rollups
}

// SortHomogeneousAreas returns a copy ordered by code using plain string
// comparison. Ties keep their input order.
func SortHomogeneousAreas(areas []domain.HomogeneousArea) []domain.HomogeneousArea {
	sorted := slices.Clone(areas)
	slices.SortStableFunc(sorted, func(a, b domain.HomogeneousArea) int {
		return strings.Compare(a.Code, b.Code)
	})
	return sorted
}
