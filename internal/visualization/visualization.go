package visualization

import (
	"fmt"
	"math"

	"evaluation-service/internal/models"
	"evaluation-service/internal/uniformity"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Spacing is the field distance in meters between emitters along a lateral
// and between laterals.
type Spacing struct {
	EmitterM float64
	LateralM float64
}

var DefaultSpacing = Spacing{EmitterM: 1, LateralM: 1}

// SpacingFor prefers the spacing stored with the evaluation, then override,
// then DefaultSpacing. Non positive values are ignored.
func SpacingFor(e *models.Evaluation, override Spacing) Spacing {
	sp := DefaultSpacing
	if e.EmitterSpacingM != nil && *e.EmitterSpacingM > 0 {
		sp.EmitterM = *e.EmitterSpacingM
	}
	if e.LateralSpacingM != nil && *e.LateralSpacingM > 0 {
		sp.LateralM = *e.LateralSpacingM
	}
	if override.EmitterM > 0 {
		sp.EmitterM = override.EmitterM
	}
	if override.LateralM > 0 {
		sp.LateralM = override.LateralM
	}
	return sp
}

func (s Spacing) position(row, column int) (x, y float64) {
	return float64(column-1) * s.EmitterM, float64(row-1) * s.LateralM
}

// Surface returns the measured points as an XYZ multipoint where Z is the
// averaged rate in L/h.
func Surface(points []models.EvaluationPoint, sp Spacing) (*geom.MultiPoint, error) {
	mp := geom.NewMultiPoint(geom.XYZ)
	for _, p := range points {
		if !p.Measured || p.AverageRate == nil {
			continue
		}
		x, y := sp.position(p.Row, p.Column)
		if err := mp.Push(geom.NewPointFlat(geom.XYZ, []float64{x, y, *p.AverageRate})); err != nil {
			return nil, fmt.Errorf("failed to add point (%d,%d): %w", p.Row, p.Column, err)
		}
	}
	return mp, nil
}

// FeatureCollection encodes the surface of e as GeoJSON, one Point feature
// per measured point. deviation_pct is the point's absolute deviation from
// the mean rate and status classifies 100 - deviation_pct.
func FeatureCollection(e *models.Evaluation, sp Spacing) (*geojson.FeatureCollection, error) {
	surface, err := Surface(e.Points, sp)
	if err != nil {
		return nil, err
	}

	rows, columns := e.Layout()

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, surface.NumPoints())}
	i := 0
	for _, p := range e.Points {
		if !p.Measured || p.AverageRate == nil {
			continue
		}
		rate := *p.AverageRate
		deviation := 0.0
		if e.MeanRate > 0 {
			deviation = math.Abs(rate-e.MeanRate) / e.MeanRate * 100
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("%d-%d", p.Row, p.Column),
			Geometry: surface.Point(i),
			Properties: map[string]any{
				"row":           p.Row,
				"column":        p.Column,
				"row_label":     uniformity.RowLabel(p.Row, rows),
				"emitter_label": uniformity.EmitterLabel(p.Column, columns),
				"rate_l_h":      rate,
				"deviation_pct": deviation,
				"status":        string(uniformity.Classify(100 - deviation)),
			},
		})
		i++
	}
	if surface.NumPoints() > 0 {
		fc.BBox = surface.Bounds()
	}
	return fc, nil
}
