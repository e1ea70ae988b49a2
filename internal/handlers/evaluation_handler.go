package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"evaluation-service/internal/models"
	"evaluation-service/internal/report"
	"evaluation-service/internal/services"
	"evaluation-service/internal/visualization"
	"evaluation-service/shared/modules/utils"

	"github.com/gin-gonic/gin"
)

type EvaluationHandler struct {
	evaluationService services.IEvaluationService
}

func NewEvaluationHandler(evaluationService services.IEvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		evaluationService: evaluationService,
	}
}

func (h *EvaluationHandler) RegisterRoutes(router *gin.Engine) {
	evaluationGrPub := router.Group("/evaluation/public/api/v1")
	evaluationGrPub.GET("/ping", h.Ping)
	evaluationGrPub.POST("/uniformity/preview", h.PreviewUniformity)

	evaluationGrPro := router.Group("/evaluation/protected/api/v1")
	evaluationGrPro.POST("/evaluations", h.CreateEvaluation)
	evaluationGrPro.GET("/evaluations/:id", h.GetEvaluationByID)
	evaluationGrPro.DELETE("/evaluations/:id", h.DeleteEvaluation)
	evaluationGrPro.GET("/evaluations/:id/report", h.DownloadReport)
	evaluationGrPro.GET("/evaluations/:id/report-url", h.GetReportURL)
	evaluationGrPro.GET("/evaluations/:id/visualization", h.GetVisualization)
	evaluationGrPro.GET("/evaluations/:id/recompute", h.Recompute)
	evaluationGrPro.GET("/areas/:area_id/evaluations", h.ListEvaluationsByArea)
}

func (h *EvaluationHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *EvaluationHandler) respondError(c *gin.Context, err error) {
	errorCode, httpStatus := MapErrorToHTTPStatusExtended(err)
	if httpStatus == http.StatusInternalServerError {
		slog.Error("Evaluation request failed", "path", c.FullPath(), "error", err)
		c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, "Failed to process evaluation request"))
		return
	}
	c.JSON(httpStatus, utils.CreateErrorResponse(errorCode, errorMessage(err)))
}

// ============================================================================
// PUBLIC
// ============================================================================

// PreviewUniformity computes CUC and CUD for a grid without storing it.
func (h *EvaluationHandler) PreviewUniformity(c *gin.Context) {
	var req models.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
		return
	}

	result, err := h.evaluationService.Preview(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}

// ============================================================================
// PROTECTED
// ============================================================================

func (h *EvaluationHandler) CreateEvaluation(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
		return
	}

	var req models.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
		return
	}

	evaluation, err := h.evaluationService.CreateEvaluation(c.Request.Context(), req, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(evaluation))
}

func (h *EvaluationHandler) GetEvaluationByID(c *gin.Context) {
	evaluation, err := h.evaluationService.GetEvaluationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(evaluation))
}

func (h *EvaluationHandler) ListEvaluationsByArea(c *gin.Context) {
	limit, err := utils.GetQueryParamAsInt(c, "limit", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateDetailedErrorResponse("VALIDATION_ERROR", err.Error(), err))
		return
	}
	page, err := utils.GetQueryParamAsInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateDetailedErrorResponse("VALIDATION_ERROR", err.Error(), err))
		return
	}

	evaluations, total, err := h.evaluationService.ListEvaluationsByArea(c.Request.Context(), c.Param("area_id"), limit, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreatePagedSuccessResponse(evaluations, page, limit, total))
}

func (h *EvaluationHandler) DeleteEvaluation(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
		return
	}

	if err := h.evaluationService.DeleteEvaluation(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"id": c.Param("id"), "deleted": true}))
}

// DownloadReport streams the evaluation workbook.
func (h *EvaluationHandler) DownloadReport(c *gin.Context) {
	data, fileName, err := h.evaluationService.ExportReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, report.ContentType, data)
}

func (h *EvaluationHandler) GetReportURL(c *gin.Context) {
	url, err := h.evaluationService.ReportURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"url": url}))
}

// GetVisualization returns the measured points as GeoJSON. emitter_spacing
// and lateral_spacing (meters) override the stored spacing.
func (h *EvaluationHandler) GetVisualization(c *gin.Context) {
	emitterSpacing, err := utils.GetQueryParamAsFloat(c, "emitter_spacing", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateDetailedErrorResponse("VALIDATION_ERROR", err.Error(), err))
		return
	}
	lateralSpacing, err := utils.GetQueryParamAsFloat(c, "lateral_spacing", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateDetailedErrorResponse("VALIDATION_ERROR", err.Error(), err))
		return
	}

	fc, err := h.evaluationService.Visualization(c.Request.Context(), c.Param("id"), visualization.Spacing{
		EmitterM: emitterSpacing,
		LateralM: lateralSpacing,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (h *EvaluationHandler) Recompute(c *gin.Context) {
	result, err := h.evaluationService.Recompute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}
