package models

import (
	"time"

	"evaluation-service/internal/uniformity"
)

type SampleInput struct {
	Volume float64 `json:"volume"`
	Time   float64 `json:"time"`
}

type PointInput struct {
	Row     int           `json:"row"`
	Column  int           `json:"column"`
	Samples []SampleInput `json:"samples"`
}

// GridInput is a committed measurement grid. Volume and time units default
// to mL and seconds; legacy sheets send "L" and "min".
type GridInput struct {
	VolumeUnit string       `json:"volume_unit"`
	TimeUnit   string       `json:"time_unit"`
	Rows       int          `json:"rows"`
	Columns    int          `json:"columns"`
	Points     []PointInput `json:"points"`
}

type PreviewRequest struct {
	GridInput
}

type CreateEvaluationRequest struct {
	GridInput
	AreaID          string     `json:"area_id"`
	UnitType        UnitType   `json:"unit_type"`
	EvaluatedAt     *time.Time `json:"evaluated_at"`
	IrrigatedAreaHa *float64   `json:"irrigated_area_ha"`
	EmitterSpacingM *float64   `json:"emitter_spacing_m"`
	LateralSpacingM *float64   `json:"lateral_spacing_m"`
	Comments        *string    `json:"comments"`
	Recommendations *string    `json:"recommendations"`
	OfflineStatus   bool       `json:"offline_status"`
}

type ExcludedSample struct {
	Row        int     `json:"row"`
	Column     int     `json:"column"`
	Repetition string  `json:"repetition"`
	VolumeML   float64 `json:"volume_ml"`
	TimeS      float64 `json:"time_s"`
	Reason     string  `json:"reason"`
}

type PointRate struct {
	Row          int     `json:"row"`
	Column       int     `json:"column"`
	RowLabel     string  `json:"row_label"`
	EmitterLabel string  `json:"emitter_label"`
	Rate         float64 `json:"rate_l_h"`
	Measured     bool    `json:"measured"`
	ValidSamples int     `json:"valid_samples"`
	SampleCount  int     `json:"sample_count"`
}

// UniformityResponse is the computed record returned by preview and attached
// to stored evaluations.
type UniformityResponse struct {
	CUC                    float64           `json:"cuc"`
	CUCStatus              uniformity.Status `json:"cuc_status"`
	CUD                    float64           `json:"cud"`
	CUDStatus              uniformity.Status `json:"cud_status"`
	MeanRate               float64           `json:"mean_rate_l_h"`
	StdDev                 float64           `json:"std_dev"`
	CoefficientOfVariation float64           `json:"coefficient_of_variation"`
	MinRate                float64           `json:"min_rate_l_h"`
	MaxRate                float64           `json:"max_rate_l_h"`
	LowQuarterMean         float64           `json:"low_quarter_mean_l_h"`
	TotalVolumeML          float64           `json:"total_volume_ml"`
	TotalTimeS             float64           `json:"total_time_s"`
	MeasuredPoints         int               `json:"measured_points"`
	UnmeasuredPoints       int               `json:"unmeasured_points"`
	MissingPoints          int               `json:"missing_points"`
	Points                 []PointRate       `json:"points"`
	Excluded               []ExcludedSample  `json:"excluded_samples"`
}

// RecomputeResponse compares stored coefficients with a fresh computation
// over the stored raw samples.
type RecomputeResponse struct {
	EvaluationID string             `json:"evaluation_id"`
	StoredCUC    float64            `json:"stored_cuc"`
	StoredCUD    float64            `json:"stored_cud"`
	Recomputed   UniformityResponse `json:"recomputed"`
	Consistent   bool               `json:"consistent"`
}
