package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"evaluation-service/internal/models"
	"evaluation-service/shared/modules/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrEvaluationNotFound = errors.New("not_found: evaluation not found")

type IEvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	ListByArea(ctx context.Context, areaID uuid.UUID, limit, page int) ([]models.Evaluation, error)
	CountByArea(ctx context.Context, areaID uuid.UUID) (int, error)
	SetReportObject(ctx context.Context, id uuid.UUID, object string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

type EvaluationRepository struct {
	db *sqlx.DB
}

func NewEvaluationRepository(db *sqlx.DB) IEvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `
	id, area_id, unit_type, evaluator_id, evaluated_at,
	irrigated_area_ha, emitter_spacing_m, lateral_spacing_m,
	total_volume_ml, total_time_s,
	cuc, cud, mean_rate_l_h, std_dev, coefficient_of_variation, min_rate_l_h, max_rate_l_h,
	grid_rows, grid_columns, measured_points, total_points,
	comments, recommendations, offline_status, report_object, created_at`

// ============================================================================
// CREATE OPERATIONS
// ============================================================================

// Create stores an evaluation with its points and raw samples in a single
// transaction. Ids left nil are generated.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == uuid.Nil {
		evaluation.ID = uuid.New()
	}
	evaluation.CreatedAt = time.Now()

	slog.Info("Creating evaluation",
		"id", evaluation.ID,
		"area_id", evaluation.AreaID,
		"points", len(evaluation.Points))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		slog.Error("Failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO evaluations (` + evaluationColumns + `
		) VALUES (
			:id, :area_id, :unit_type, :evaluator_id, :evaluated_at,
			:irrigated_area_ha, :emitter_spacing_m, :lateral_spacing_m,
			:total_volume_ml, :total_time_s,
			:cuc, :cud, :mean_rate_l_h, :std_dev, :coefficient_of_variation, :min_rate_l_h, :max_rate_l_h,
			:grid_rows, :grid_columns, :measured_points, :total_points,
			:comments, :recommendations, :offline_status, :report_object, :created_at
		)`
	if _, err := tx.NamedExecContext(ctx, query, evaluation); err != nil {
		slog.Error("Failed to insert evaluation", "id", evaluation.ID, "error", err)
		if badRequest := constraintError(err); badRequest != nil {
			return badRequest
		}
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	pointQuery := `
		INSERT INTO evaluation_points (
			id, evaluation_id, row_index, column_index, average_rate_l_h, measured
		) VALUES (
			:id, :evaluation_id, :row_index, :column_index, :average_rate_l_h, :measured
		)`
	sampleQuery := `
		INSERT INTO evaluation_samples (
			id, point_id, repetition, sample_order, volume_ml, time_s, rate_l_h, valid
		) VALUES (
			:id, :point_id, :repetition, :sample_order, :volume_ml, :time_s, :rate_l_h, :valid
		)`

	for i := range evaluation.Points {
		point := &evaluation.Points[i]
		if point.ID == uuid.Nil {
			point.ID = uuid.New()
		}
		point.EvaluationID = evaluation.ID

		if _, err := tx.NamedExecContext(ctx, pointQuery, point); err != nil {
			slog.Error("Failed to insert evaluation point",
				"evaluation_id", evaluation.ID,
				"row", point.Row,
				"column", point.Column,
				"error", err)
			if badRequest := constraintError(err); badRequest != nil {
				return badRequest
			}
			return fmt.Errorf("failed to insert point (%d,%d): %w", point.Row, point.Column, err)
		}

		for j := range point.Samples {
			sample := &point.Samples[j]
			if sample.ID == uuid.Nil {
				sample.ID = uuid.New()
			}
			sample.PointID = point.ID
			sample.SampleOrder = j

			if _, err := tx.NamedExecContext(ctx, sampleQuery, sample); err != nil {
				slog.Error("Failed to insert evaluation sample",
					"point_id", point.ID,
					"repetition", sample.Repetition,
					"error", err)
				return fmt.Errorf("failed to insert sample %s at (%d,%d): %w", sample.Repetition, point.Row, point.Column, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("Failed to commit evaluation", "id", evaluation.ID, "error", err)
		return fmt.Errorf("failed to commit evaluation: %w", err)
	}

	slog.Info("Successfully created evaluation", "id", evaluation.ID)
	return nil
}

// constraintError reports Postgres unique and check violations as a
// "badrequest" error, and returns nil for anything else.
func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code.Name() {
	case "unique_violation", "check_violation":
		return fmt.Errorf("badrequest: %s violates %s: %w", pqErr.Table, pqErr.Constraint, err)
	}
	return nil
}

// ============================================================================
// READ OPERATIONS
// ============================================================================

// GetByID loads an evaluation together with its points and samples.
func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	slog.Debug("Retrieving evaluation by ID", "id", id)

	var evaluation models.Evaluation
	err := r.db.GetContext(ctx, &evaluation, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Evaluation not found", "id", id)
			return nil, ErrEvaluationNotFound
		}
		slog.Error("Failed to get evaluation", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	var points []models.EvaluationPoint
	err = r.db.SelectContext(ctx, &points, `
		SELECT id, evaluation_id, row_index, column_index, average_rate_l_h, measured
		FROM evaluation_points
		WHERE evaluation_id = $1
		ORDER BY row_index, column_index`, id)
	if err != nil {
		slog.Error("Failed to get evaluation points", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get evaluation points: %w", err)
	}

	var samples []models.EvaluationSample
	err = r.db.SelectContext(ctx, &samples, `
		SELECT s.id, s.point_id, s.repetition, s.sample_order, s.volume_ml, s.time_s, s.rate_l_h, s.valid
		FROM evaluation_samples s
		JOIN evaluation_points p ON p.id = s.point_id
		WHERE p.evaluation_id = $1
		ORDER BY s.point_id, s.sample_order`, id)
	if err != nil {
		slog.Error("Failed to get evaluation samples", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get evaluation samples: %w", err)
	}

	evaluation.Points = assemblePoints(points, samples)
	evaluation.Classify()

	slog.Debug("Successfully retrieved evaluation",
		"id", id,
		"points", len(points),
		"samples", len(samples))
	return &evaluation, nil
}

// ListByArea returns evaluation summaries (no points) of an area, newest
// first. page starts at 1.
func (r *EvaluationRepository) ListByArea(ctx context.Context, areaID uuid.UUID, limit, page int) ([]models.Evaluation, error) {
	evaluations := []models.Evaluation{}
	query := `SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE area_id = $1
		ORDER BY evaluated_at DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &evaluations, query, areaID, limit, pageOffset(limit, page)); err != nil {
		slog.Error("Failed to list evaluations", "area_id", areaID, "error", err)
		return nil, fmt.Errorf("failed to list evaluations of area %s: %w", areaID, err)
	}

	for i := range evaluations {
		evaluations[i].Classify()
	}
	return evaluations, nil
}

// CountByArea is the number of evaluations of an area across all pages.
func (r *EvaluationRepository) CountByArea(ctx context.Context, areaID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM evaluations WHERE area_id = $1`

	if err := r.db.GetContext(ctx, &count, query, areaID); err != nil {
		return 0, fmt.Errorf("failed to count evaluations of area %s: %w", areaID, err)
	}
	return count, nil
}

// ============================================================================
// UPDATE / DELETE OPERATIONS
// ============================================================================

// SetReportObject records where the report workbook was archived.
func (r *EvaluationRepository) SetReportObject(ctx context.Context, id uuid.UUID, object string) error {
	err := utils.ExecWithCheck(ctx, r.db, `UPDATE evaluations SET report_object = $1 WHERE id = $2`, utils.ExecUpdate, object, id)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return ErrEvaluationNotFound
	}
	return err
}

// Delete removes an evaluation; points and samples cascade.
func (r *EvaluationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := utils.ExecWithCheck(ctx, r.db, `DELETE FROM evaluations WHERE id = $1`, utils.ExecDelete, id)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return ErrEvaluationNotFound
	}
	if err != nil {
		slog.Error("Failed to delete evaluation", "id", id, "error", err)
		return err
	}
	slog.Info("Deleted evaluation", "id", id)
	return nil
}

func (r *EvaluationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func assemblePoints(points []models.EvaluationPoint, samples []models.EvaluationSample) []models.EvaluationPoint {
	byPoint := make(map[uuid.UUID][]models.EvaluationSample, len(points))
	for _, s := range samples {
		byPoint[s.PointID] = append(byPoint[s.PointID], s)
	}
	for i := range points {
		points[i].Samples = byPoint[points[i].ID]
	}
	return points
}

func pageOffset(limit, page int) int {
	return max((page-1)*limit, 0)
}
