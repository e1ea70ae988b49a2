package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"evaluation-service/internal/database/minio"
	"evaluation-service/internal/event"
	"evaluation-service/internal/models"
	"evaluation-service/internal/report"
	"evaluation-service/internal/repository"
	"evaluation-service/internal/uniformity"
	"evaluation-service/internal/visualization"
	"evaluation-service/internal/worker"
	"evaluation-service/shared/modules/utils"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const (
	recomputeTolerance = 1e-6
	maxListLimit       = 100
)

type EventPublisher interface {
	PublishEvaluationEvent(ctx context.Context, event event.EvaluationEvent) error
}

// ReportArchive is the object store holding report workbooks.
type ReportArchive interface {
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	GetBytes(ctx context.Context, bucketName, objectName string) ([]byte, error)
	FileExists(ctx context.Context, bucketName, objectName string) (bool, error)
	DeleteFile(ctx context.Context, bucketName, objectName string) error
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
}

type JobSubmitter interface {
	SubmitJob(ctx context.Context, job worker.Job) error
}

type IEvaluationService interface {
	Preview(req models.PreviewRequest) (*models.UniformityResponse, error)
	CreateEvaluation(ctx context.Context, req models.CreateEvaluationRequest, evaluatorID string) (*models.Evaluation, error)
	GetEvaluationByID(ctx context.Context, id string) (*models.Evaluation, error)
	ListEvaluationsByArea(ctx context.Context, areaID string, limit, page int) ([]models.Evaluation, int, error)
	DeleteEvaluation(ctx context.Context, id, requesterID string) error
	ExportReport(ctx context.Context, id string) ([]byte, string, error)
	ReportURL(ctx context.Context, id string) (string, error)
	Visualization(ctx context.Context, id string, spacing visualization.Spacing) (*geojson.FeatureCollection, error)
	Recompute(ctx context.Context, id string) (*models.RecomputeResponse, error)
}

// EvaluationService runs the uniformity computation for submitted grids and
// manages stored evaluations. cache, publisher, archive and jobs are
// optional; a nil value disables that side effect.
type EvaluationService struct {
	repo            repository.IEvaluationRepository
	cache           repository.IEvaluationCacheRepository
	publisher       EventPublisher
	archive         ReportArchive
	jobs            JobSubmitter
	reportURLExpiry time.Duration
}

func NewEvaluationService(
	repo repository.IEvaluationRepository,
	cache repository.IEvaluationCacheRepository,
	publisher EventPublisher,
	archive ReportArchive,
	jobs JobSubmitter,
	reportURLExpiry time.Duration,
) IEvaluationService {
	return &EvaluationService{
		repo:            repo,
		cache:           cache,
		publisher:       publisher,
		archive:         archive,
		jobs:            jobs,
		reportURLExpiry: reportURLExpiry,
	}
}

// Preview computes the uniformity of a grid without storing anything.
func (s *EvaluationService) Preview(req models.PreviewRequest) (*models.UniformityResponse, error) {
	grid, err := buildGrid(req.GridInput)
	if err != nil {
		return nil, err
	}
	eval, err := uniformity.Evaluate(grid)
	if err != nil {
		return nil, err
	}
	rows, columns := layout(req.GridInput, grid)
	return toUniformityResponse(eval, rows, columns), nil
}

func (s *EvaluationService) CreateEvaluation(ctx context.Context, req models.CreateEvaluationRequest, evaluatorID string) (*models.Evaluation, error) {
	if evaluatorID == "" {
		return nil, fmt.Errorf("unauthorized: missing user id")
	}
	req = utils.TrimAllStringFields(req)

	areaID, err := uuid.Parse(req.AreaID)
	if err != nil {
		return nil, fmt.Errorf("badrequest: invalid area_id")
	}
	if req.UnitType == "" {
		req.UnitType = models.UnitTypeHydraulicSector
	}
	if !req.UnitType.IsValid() {
		return nil, fmt.Errorf("badrequest: unit_type must be %s or %s", models.UnitTypeHydraulicSector, models.UnitTypeCenterPivot)
	}
	for name, v := range map[string]*float64{
		"irrigated_area_ha": req.IrrigatedAreaHa,
		"emitter_spacing_m": req.EmitterSpacingM,
		"lateral_spacing_m": req.LateralSpacingM,
	} {
		if v != nil && !(*v > 0) {
			return nil, fmt.Errorf("badrequest: %s must be greater than 0", name)
		}
	}

	grid, err := buildGrid(req.GridInput)
	if err != nil {
		return nil, err
	}
	eval, err := uniformity.Evaluate(grid)
	if err != nil {
		// nothing is persisted for a grid without a valid measurement
		return nil, err
	}

	evaluatedAt := time.Now()
	if req.EvaluatedAt != nil {
		evaluatedAt = *req.EvaluatedAt
	}

	rows, columns := layout(req.GridInput, grid)
	evaluation := &models.Evaluation{
		ID:                     uuid.New(),
		AreaID:                 areaID,
		UnitType:               req.UnitType,
		EvaluatorID:            evaluatorID,
		EvaluatedAt:            evaluatedAt,
		IrrigatedAreaHa:        req.IrrigatedAreaHa,
		EmitterSpacingM:        req.EmitterSpacingM,
		LateralSpacingM:        req.LateralSpacingM,
		TotalVolumeML:          eval.TotalVolumeML,
		TotalTimeS:             eval.TotalTimeS,
		CUC:                    eval.Result.CUC,
		CUD:                    eval.Result.CUD,
		MeanRate:               eval.Result.Mean,
		StdDev:                 eval.Result.StdDev,
		CoefficientOfVariation: eval.Result.CoefficientOfVariation,
		MinRate:                eval.Result.Min,
		MaxRate:                eval.Result.Max,
		GridRows:               rows,
		GridColumns:            columns,
		MeasuredPoints:         eval.MeasuredPoints,
		TotalPoints:            rows * columns,
		Comments:               emptyToNil(req.Comments),
		Recommendations:        emptyToNil(req.Recommendations),
		OfflineStatus:          req.OfflineStatus,
		Points:                 storedPoints(grid, eval),
	}

	if err := s.repo.Create(ctx, evaluation); err != nil {
		return nil, err
	}
	evaluation.Classify()

	slog.Info("Evaluation created",
		"id", evaluation.ID,
		"area_id", evaluation.AreaID,
		"cuc", evaluation.CUC,
		"cud", evaluation.CUD,
		"excluded_samples", len(eval.Excluded))

	s.cacheEvaluation(ctx, evaluation)
	s.publish(ctx, event.EvaluationCreated, evaluation)
	s.scheduleArchive(ctx, evaluation)
	return evaluation, nil
}

// storedPoints converts the grid and its aggregates into persisted points,
// keeping every raw sample (invalid ones flagged) for audit.
func storedPoints(grid uniformity.Grid, eval uniformity.GridEvaluation) []models.EvaluationPoint {
	gridPoints := grid.Points()
	points := make([]models.EvaluationPoint, 0, len(gridPoints))
	for i, gp := range gridPoints {
		agg := eval.Points[i]
		point := models.EvaluationPoint{
			ID:       uuid.New(),
			Row:      gp.Row,
			Column:   gp.Column,
			Measured: agg.Valid,
			Samples:  make([]models.EvaluationSample, 0, len(gp.Samples)),
		}
		if agg.Valid {
			rate := agg.Rate
			point.AverageRate = &rate
		}
		for j, sample := range gp.Samples {
			stored := models.EvaluationSample{
				ID:          uuid.New(),
				PointID:     point.ID,
				Repetition:  uniformity.RepetitionLabel(j),
				SampleOrder: j,
				VolumeML:    sample.VolumeML,
				TimeS:       sample.TimeS,
				Valid:       sample.Valid(),
			}
			if stored.Valid {
				rate := uniformity.ComputeRate(sample.VolumeML, sample.TimeS)
				stored.RateLH = &rate
			}
			point.Samples = append(point.Samples, stored)
		}
		points = append(points, point)
	}
	return points
}

func (s *EvaluationService) GetEvaluationByID(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluationID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("badrequest: invalid evaluation id")
	}
	return s.getEvaluation(ctx, evaluationID)
}

func (s *EvaluationService) getEvaluation(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.Warn("Evaluation cache read failed", "id", id, "error", err)
		} else if cached != nil {
			cached.Classify()
			return cached, nil
		}
	}

	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheEvaluation(ctx, evaluation)
	return evaluation, nil
}

// ListEvaluationsByArea returns one page of an area's evaluations and the
// total across all pages.
func (s *EvaluationService) ListEvaluationsByArea(ctx context.Context, areaID string, limit, page int) ([]models.Evaluation, int, error) {
	id, err := uuid.Parse(areaID)
	if err != nil {
		return nil, 0, fmt.Errorf("badrequest: invalid area_id")
	}
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, maxListLimit)
	page = max(page, 1)

	evaluations, err := s.repo.ListByArea(ctx, id, limit, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByArea(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return evaluations, total, nil
}

// DeleteEvaluation removes an evaluation. Only its evaluator may delete it.
func (s *EvaluationService) DeleteEvaluation(ctx context.Context, id, requesterID string) error {
	if requesterID == "" {
		return fmt.Errorf("unauthorized: missing user id")
	}
	evaluationID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("badrequest: invalid evaluation id")
	}

	evaluation, err := s.repo.GetByID(ctx, evaluationID)
	if err != nil {
		return err
	}
	if evaluation.EvaluatorID != requesterID {
		return fmt.Errorf("forbidden: only the evaluator can delete this evaluation")
	}

	if err := s.repo.Delete(ctx, evaluationID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, evaluationID); err != nil {
			slog.Warn("Evaluation cache eviction failed", "id", evaluationID, "error", err)
		}
	}
	if s.archive != nil && evaluation.ReportObject != nil {
		if err := s.archive.DeleteFile(ctx, minio.Storage.EvaluationReports, *evaluation.ReportObject); err != nil {
			slog.Warn("Archived report removal failed", "id", evaluationID, "object", *evaluation.ReportObject, "error", err)
		}
	}
	s.publish(ctx, event.EvaluationDeleted, evaluation)
	return nil
}

// ExportReport returns the evaluation workbook and its file name. The
// archived copy is served when there is one; otherwise it is rendered.
func (s *EvaluationService) ExportReport(ctx context.Context, id string) ([]byte, string, error) {
	evaluation, err := s.GetEvaluationByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if s.archive != nil && evaluation.ReportObject != nil {
		data, err := s.archive.GetBytes(ctx, minio.Storage.EvaluationReports, *evaluation.ReportObject)
		if err == nil {
			return data, report.FileName(evaluation), nil
		}
		slog.Warn("Archived report unreadable, rendering a new one", "id", evaluation.ID, "error", err)
	}
	data, err := report.BuildWorkbook(evaluation)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build report: %w", err)
	}
	return data, report.FileName(evaluation), nil
}

// ReportURL returns a temporary link to the archived workbook.
func (s *EvaluationService) ReportURL(ctx context.Context, id string) (string, error) {
	if s.archive == nil {
		return "", fmt.Errorf("report archive is not available")
	}
	evaluation, err := s.GetEvaluationByID(ctx, id)
	if err != nil {
		return "", err
	}
	if evaluation.ReportObject == nil {
		return "", fmt.Errorf("not_found: report has not been archived yet")
	}
	exists, err := s.archive.FileExists(ctx, minio.Storage.EvaluationReports, *evaluation.ReportObject)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("not_found: archived report %s is missing", *evaluation.ReportObject)
	}
	return s.archive.GetPresignedURL(ctx, minio.Storage.EvaluationReports, *evaluation.ReportObject, s.reportURLExpiry)
}

func (s *EvaluationService) Visualization(ctx context.Context, id string, spacing visualization.Spacing) (*geojson.FeatureCollection, error) {
	evaluation, err := s.GetEvaluationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return visualization.FeatureCollection(evaluation, visualization.SpacingFor(evaluation, spacing))
}

// Recompute reruns the computation over the stored raw samples and reports
// whether the stored coefficients still agree.
func (s *EvaluationService) Recompute(ctx context.Context, id string) (*models.RecomputeResponse, error) {
	evaluation, err := s.GetEvaluationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	grid, err := evaluation.Grid()
	if err != nil {
		return nil, fmt.Errorf("stored grid of evaluation %s is invalid: %w", evaluation.ID, err)
	}
	eval, err := uniformity.Evaluate(grid)
	if err != nil {
		return nil, err
	}

	rows, columns := evaluation.Layout()
	recomputed := toUniformityResponse(eval, rows, columns)
	return &models.RecomputeResponse{
		EvaluationID: evaluation.ID.String(),
		StoredCUC:    evaluation.CUC,
		StoredCUD:    evaluation.CUD,
		Recomputed:   *recomputed,
		Consistent: math.Abs(recomputed.CUC-evaluation.CUC) <= recomputeTolerance &&
			math.Abs(recomputed.CUD-evaluation.CUD) <= recomputeTolerance,
	}, nil
}

func (s *EvaluationService) cacheEvaluation(ctx context.Context, evaluation *models.Evaluation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, evaluation); err != nil {
		slog.Warn("Evaluation cache write failed", "id", evaluation.ID, "error", err)
	}
}

func (s *EvaluationService) publish(ctx context.Context, eventType event.EvaluationEventType, evaluation *models.Evaluation) {
	if s.publisher == nil {
		return
	}
	ev := event.EvaluationEvent{
		ID:           uuid.NewString(),
		EventType:    eventType,
		AreaID:       evaluation.AreaID.String(),
		EvaluationID: evaluation.ID.String(),
		EvaluatorID:  evaluation.EvaluatorID,
		CUC:          evaluation.CUC,
		CUD:          evaluation.CUD,
		CUCStatus:    string(uniformity.Classify(evaluation.CUC)),
		CUDStatus:    string(uniformity.Classify(evaluation.CUD)),
		OccurredAt:   time.Now(),
		Additional: map[string]any{
			"unit_type":       evaluation.UnitType,
			"measured_points": evaluation.MeasuredPoints,
		},
	}
	if err := s.publisher.PublishEvaluationEvent(ctx, ev); err != nil {
		slog.Error("Failed to publish evaluation event", "event_type", eventType, "id", evaluation.ID, "error", err)
	}
}

func reportObjectName(evaluation *models.Evaluation) string {
	return fmt.Sprintf("%s/%s.xlsx", evaluation.AreaID, evaluation.ID)
}

// scheduleArchive queues the upload of the evaluation workbook.
func (s *EvaluationService) scheduleArchive(ctx context.Context, evaluation *models.Evaluation) {
	if s.archive == nil || s.jobs == nil {
		return
	}
	snapshot := *evaluation
	err := s.jobs.SubmitJob(ctx, func(ctx context.Context) error {
		return s.archiveReport(ctx, &snapshot)
	})
	if err != nil {
		slog.Warn("Report archive job not scheduled", "id", evaluation.ID, "error", err)
	}
}

func (s *EvaluationService) archiveReport(ctx context.Context, evaluation *models.Evaluation) error {
	data, err := report.BuildWorkbook(evaluation)
	if err != nil {
		return fmt.Errorf("failed to build report for %s: %w", evaluation.ID, err)
	}
	object := reportObjectName(evaluation)
	if err := s.archive.UploadBytes(ctx, minio.Storage.EvaluationReports, object, data, report.ContentType); err != nil {
		return err
	}
	if err := s.repo.SetReportObject(ctx, evaluation.ID, object); err != nil {
		if errors.Is(err, repository.ErrEvaluationNotFound) {
			// deleted while the job was queued
			return s.archive.DeleteFile(ctx, minio.Storage.EvaluationReports, object)
		}
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, evaluation.ID); err != nil {
			slog.Warn("Evaluation cache eviction failed", "id", evaluation.ID, "error", err)
		}
	}
	slog.Info("Report archived", "id", evaluation.ID, "object", object)
	return nil
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
