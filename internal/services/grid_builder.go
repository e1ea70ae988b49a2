package services

import (
	"errors"
	"fmt"

	"evaluation-service/internal/models"
	"evaluation-service/internal/uniformity"
)

// buildGrid normalizes a submitted grid to mL / s samples and validates the
// declared layout.
func buildGrid(in models.GridInput) (uniformity.Grid, error) {
	vUnit, err := uniformity.ParseVolumeUnit(in.VolumeUnit)
	if err != nil {
		return uniformity.Grid{}, fmt.Errorf("badrequest: %w", err)
	}
	tUnit, err := uniformity.ParseTimeUnit(in.TimeUnit)
	if err != nil {
		return uniformity.Grid{}, fmt.Errorf("badrequest: %w", err)
	}
	if in.Rows < 0 || in.Columns < 0 {
		return uniformity.Grid{}, fmt.Errorf("badrequest: rows and columns must not be negative")
	}

	points := make([]uniformity.Point, 0, len(in.Points))
	for _, p := range in.Points {
		if (in.Rows > 0 && p.Row > in.Rows) || (in.Columns > 0 && p.Column > in.Columns) {
			return uniformity.Grid{}, fmt.Errorf("badrequest: point (%d,%d) is outside the %dx%d grid", p.Row, p.Column, in.Rows, in.Columns)
		}
		samples := make([]uniformity.Sample, 0, len(p.Samples))
		for _, s := range p.Samples {
			sample, err := uniformity.NormalizeSample(s.Volume, vUnit, s.Time, tUnit)
			if err != nil {
				return uniformity.Grid{}, fmt.Errorf("badrequest: %w", err)
			}
			samples = append(samples, sample)
		}
		points = append(points, uniformity.Point{
			Coordinate: uniformity.Coordinate{Row: p.Row, Column: p.Column},
			Samples:    samples,
		})
	}

	grid, err := uniformity.NewGrid(points)
	if err != nil {
		if errors.Is(err, uniformity.ErrDuplicatePoint) || errors.Is(err, uniformity.ErrInvalidCoordinate) {
			return uniformity.Grid{}, fmt.Errorf("badrequest: %w", err)
		}
		return uniformity.Grid{}, err
	}
	return grid, nil
}

// layout is the expected grid size used for labels and coverage: the
// declared size, grown to fit the points, never below the 4x4 field default.
func layout(in models.GridInput, g uniformity.Grid) (rows, columns int) {
	rows = max(in.Rows, g.Rows())
	columns = max(in.Columns, g.Columns())
	if in.Rows == 0 {
		rows = max(rows, models.DefaultGridRows)
	}
	if in.Columns == 0 {
		columns = max(columns, models.DefaultGridColumns)
	}
	return rows, columns
}

func toUniformityResponse(eval uniformity.GridEvaluation, rows, columns int) *models.UniformityResponse {
	res := eval.Result
	resp := &models.UniformityResponse{
		CUC:                    res.CUC,
		CUCStatus:              uniformity.Classify(res.CUC),
		CUD:                    res.CUD,
		CUDStatus:              uniformity.Classify(res.CUD),
		MeanRate:               res.Mean,
		StdDev:                 res.StdDev,
		CoefficientOfVariation: res.CoefficientOfVariation,
		MinRate:                res.Min,
		MaxRate:                res.Max,
		LowQuarterMean:         res.LowQuarterMean,
		TotalVolumeML:          eval.TotalVolumeML,
		TotalTimeS:             eval.TotalTimeS,
		MeasuredPoints:         eval.MeasuredPoints,
		UnmeasuredPoints:       eval.UnmeasuredPoints,
		MissingPoints:          eval.MissingPoints(rows, columns),
		Points:                 make([]models.PointRate, 0, len(eval.Points)),
		Excluded:               make([]models.ExcludedSample, 0, len(eval.Excluded)),
	}
	for _, p := range eval.Points {
		resp.Points = append(resp.Points, models.PointRate{
			Row:          p.Row,
			Column:       p.Column,
			RowLabel:     uniformity.RowLabel(p.Row, rows),
			EmitterLabel: uniformity.EmitterLabel(p.Column, columns),
			Rate:         p.Rate,
			Measured:     p.Valid,
			ValidSamples: p.ValidSamples,
			SampleCount:  p.SampleCount,
		})
	}
	for _, ex := range eval.Excluded {
		resp.Excluded = append(resp.Excluded, models.ExcludedSample{
			Row:        ex.Coordinate.Row,
			Column:     ex.Coordinate.Column,
			Repetition: uniformity.RepetitionLabel(ex.Index),
			VolumeML:   ex.Sample.VolumeML,
			TimeS:      ex.Sample.TimeS,
			Reason:     ex.Reason(),
		})
	}
	return resp
}
