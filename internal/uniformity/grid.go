package uniformity

import (
	"fmt"
	"sort"
)

// Coordinate addresses a point: Row is the lateral line, Column the emitter
// along it. Both are 1-based.
type Coordinate struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (c Coordinate) less(o Coordinate) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Column < o.Column
}

// Point is a grid location and the repetitions collected at it.
type Point struct {
	Coordinate
	Samples []Sample `json:"samples"`
}

// Grid is an immutable snapshot of a measurement grid. Build it with NewGrid.
type Grid struct {
	points  []Point
	index   map[Coordinate]int
	rows    int
	columns int
}

// NewGrid validates and copies points into a Grid ordered row-major.
func NewGrid(points []Point) (Grid, error) {
	g := Grid{
		points: make([]Point, 0, len(points)),
		index:  make(map[Coordinate]int, len(points)),
	}
	seen := make(map[Coordinate]struct{}, len(points))
	for _, p := range points {
		if p.Row < 1 || p.Column < 1 {
			return Grid{}, fmt.Errorf("%w: row %d column %d", ErrInvalidCoordinate, p.Row, p.Column)
		}
		if _, ok := seen[p.Coordinate]; ok {
			return Grid{}, fmt.Errorf("%w: row %d column %d", ErrDuplicatePoint, p.Row, p.Column)
		}
		seen[p.Coordinate] = struct{}{}

		samples := make([]Sample, len(p.Samples))
		copy(samples, p.Samples)
		g.points = append(g.points, Point{Coordinate: p.Coordinate, Samples: samples})

		g.rows = max(g.rows, p.Row)
		g.columns = max(g.columns, p.Column)
	}
	sort.Slice(g.points, func(i, j int) bool {
		return g.points[i].less(g.points[j].Coordinate)
	})
	for i, p := range g.points {
		g.index[p.Coordinate] = i
	}
	return g, nil
}

func (g Grid) Len() int { return len(g.points) }

// Rows is the highest row index present.
func (g Grid) Rows() int { return g.rows }

// Columns is the highest emitter index present.
func (g Grid) Columns() int { return g.columns }

// Points returns a copy of the grid points in row-major order.
func (g Grid) Points() []Point {
	out := make([]Point, len(g.points))
	for i, p := range g.points {
		samples := make([]Sample, len(p.Samples))
		copy(samples, p.Samples)
		out[i] = Point{Coordinate: p.Coordinate, Samples: samples}
	}
	return out
}

// Point looks a point up by coordinate.
func (g Grid) Point(c Coordinate) (Point, bool) {
	i, ok := g.index[c]
	if !ok {
		return Point{}, false
	}
	p := g.points[i]
	samples := make([]Sample, len(p.Samples))
	copy(samples, p.Samples)
	return Point{Coordinate: p.Coordinate, Samples: samples}, true
}

// PointEvaluation is the aggregate of one grid point.
type PointEvaluation struct {
	Coordinate
	PointAggregate
	SampleCount int `json:"sample_count"`
}

// GridEvaluation is the outcome of evaluating a whole grid. Totals only sum
// valid samples.
type GridEvaluation struct {
	Points           []PointEvaluation    `json:"points"`
	Excluded         []InvalidSampleError `json:"-"`
	MeasuredPoints   int                  `json:"measured_points"`
	UnmeasuredPoints int                  `json:"unmeasured_points"`
	TotalVolumeML    float64              `json:"total_volume_ml"`
	TotalTimeS       float64              `json:"total_time_s"`
	Result           Result               `json:"result"`
}

// Rates returns the averaged rate of every measured point, row-major.
func (e GridEvaluation) Rates() []float64 {
	rates := make([]float64, 0, e.MeasuredPoints)
	for _, p := range e.Points {
		if p.Valid {
			rates = append(rates, p.Rate)
		}
	}
	return rates
}

// MissingPoints is how many points of a rows x columns layout still have no
// valid measurement.
func (e GridEvaluation) MissingPoints(rows, columns int) int {
	return max(rows*columns-e.MeasuredPoints, 0)
}

// Evaluate aggregates every point of g and computes the uniformity of the
// measured ones. When no point is measured it returns ErrInsufficientData
// together with the per-point detail gathered so far.
func Evaluate(g Grid) (GridEvaluation, error) {
	eval := GridEvaluation{
		Points: make([]PointEvaluation, 0, len(g.points)),
	}
	rates := make([]float64, 0, len(g.points))
	for _, p := range g.points {
		for i, s := range p.Samples {
			if !s.Valid() {
				eval.Excluded = append(eval.Excluded, InvalidSampleError{Coordinate: p.Coordinate, Index: i, Sample: s})
			}
		}
		agg := AggregatePoint(p.Samples)
		eval.Points = append(eval.Points, PointEvaluation{
			Coordinate:     p.Coordinate,
			PointAggregate: agg,
			SampleCount:    len(p.Samples),
		})
		eval.TotalVolumeML += agg.TotalVolumeML
		eval.TotalTimeS += agg.TotalTimeS
		if !agg.Valid {
			eval.UnmeasuredPoints++
			continue
		}
		eval.MeasuredPoints++
		rates = append(rates, agg.Rate)
	}

	res, err := ComputeUniformity(rates)
	if err != nil {
		return eval, err
	}
	eval.Result = res
	return eval, nil
}
