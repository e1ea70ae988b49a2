package models

import (
	"time"

	"evaluation-service/internal/uniformity"

	"github.com/google/uuid"
)

// Evaluation is one uniformity assessment of an irrigated area. Rows are
// written once and never updated except for the archived report key.
type Evaluation struct {
	ID                     uuid.UUID `json:"id" db:"id"`
	AreaID                 uuid.UUID `json:"area_id" db:"area_id"`
	UnitType               UnitType  `json:"unit_type" db:"unit_type"`
	EvaluatorID            string    `json:"evaluator_id" db:"evaluator_id"`
	EvaluatedAt            time.Time `json:"evaluated_at" db:"evaluated_at"`
	IrrigatedAreaHa        *float64  `json:"irrigated_area_ha,omitempty" db:"irrigated_area_ha"`
	EmitterSpacingM        *float64  `json:"emitter_spacing_m,omitempty" db:"emitter_spacing_m"`
	LateralSpacingM        *float64  `json:"lateral_spacing_m,omitempty" db:"lateral_spacing_m"`
	TotalVolumeML          float64   `json:"total_volume_ml" db:"total_volume_ml"`
	TotalTimeS             float64   `json:"total_time_s" db:"total_time_s"`
	CUC                    float64   `json:"cuc" db:"cuc"`
	CUD                    float64   `json:"cud" db:"cud"`
	MeanRate               float64   `json:"mean_rate_l_h" db:"mean_rate_l_h"`
	StdDev                 float64   `json:"std_dev" db:"std_dev"`
	CoefficientOfVariation float64   `json:"coefficient_of_variation" db:"coefficient_of_variation"`
	MinRate                float64   `json:"min_rate_l_h" db:"min_rate_l_h"`
	MaxRate                float64   `json:"max_rate_l_h" db:"max_rate_l_h"`
	GridRows               int       `json:"grid_rows" db:"grid_rows"`
	GridColumns            int       `json:"grid_columns" db:"grid_columns"`
	MeasuredPoints         int       `json:"measured_points" db:"measured_points"`
	TotalPoints            int       `json:"total_points" db:"total_points"`
	Comments               *string   `json:"comments,omitempty" db:"comments"`
	Recommendations        *string   `json:"recommendations,omitempty" db:"recommendations"`
	OfflineStatus          bool      `json:"offline_status" db:"offline_status"`
	ReportObject           *string   `json:"report_object,omitempty" db:"report_object"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`

	CUCStatus uniformity.Status `json:"cuc_status" db:"-"`
	CUDStatus uniformity.Status `json:"cud_status" db:"-"`
	Points    []EvaluationPoint `json:"points,omitempty" db:"-"`
}

// Classify fills the display statuses from the stored coefficients.
func (e *Evaluation) Classify() {
	e.CUCStatus = uniformity.Classify(e.CUC)
	e.CUDStatus = uniformity.Classify(e.CUD)
}

// Layout is the stored grid size, grown to cover any point outside it.
func (e *Evaluation) Layout() (rows, columns int) {
	rows, columns = e.GridRows, e.GridColumns
	for _, p := range e.Points {
		rows = max(rows, p.Row)
		columns = max(columns, p.Column)
	}
	return rows, columns
}

// Grid rebuilds the core grid from the stored raw samples.
func (e *Evaluation) Grid() (uniformity.Grid, error) {
	points := make([]uniformity.Point, 0, len(e.Points))
	for _, p := range e.Points {
		samples := make([]uniformity.Sample, 0, len(p.Samples))
		for _, s := range p.Samples {
			samples = append(samples, uniformity.Sample{VolumeML: s.VolumeML, TimeS: s.TimeS})
		}
		points = append(points, uniformity.Point{
			Coordinate: uniformity.Coordinate{Row: p.Row, Column: p.Column},
			Samples:    samples,
		})
	}
	return uniformity.NewGrid(points)
}

type EvaluationPoint struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	EvaluationID uuid.UUID          `json:"evaluation_id" db:"evaluation_id"`
	Row          int                `json:"row" db:"row_index"`
	Column       int                `json:"column" db:"column_index"`
	AverageRate  *float64           `json:"average_rate_l_h,omitempty" db:"average_rate_l_h"`
	Measured     bool               `json:"measured" db:"measured"`
	Samples      []EvaluationSample `json:"samples,omitempty" db:"-"`
}

// EvaluationSample is a raw repetition as entered, kept for audit and
// recomputation. Rate is null for invalid samples.
type EvaluationSample struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PointID     uuid.UUID `json:"point_id" db:"point_id"`
	Repetition  string    `json:"repetition" db:"repetition"`
	SampleOrder int       `json:"-" db:"sample_order"`
	VolumeML    float64   `json:"volume_ml" db:"volume_ml"`
	TimeS       float64   `json:"time_s" db:"time_s"`
	RateLH      *float64  `json:"rate_l_h,omitempty" db:"rate_l_h"`
	Valid       bool      `json:"valid" db:"valid"`
}
