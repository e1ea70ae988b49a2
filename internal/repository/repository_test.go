package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"evaluation-service/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblePoints(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	points := []models.EvaluationPoint{
		{ID: p1, Row: 1, Column: 1, Measured: true},
		{ID: p2, Row: 1, Column: 2},
	}
	samples := []models.EvaluationSample{
		{PointID: p1, Repetition: "A", SampleOrder: 0, VolumeML: 100, TimeS: 10, Valid: true},
		{PointID: p1, Repetition: "B", SampleOrder: 1, VolumeML: 0, TimeS: 10},
	}

	out := assemblePoints(points, samples)

	require.Len(t, out, 2)
	require.Len(t, out[0].Samples, 2)
	assert.Equal(t, "A", out[0].Samples[0].Repetition)
	assert.Equal(t, "B", out[0].Samples[1].Repetition)
	assert.Empty(t, out[1].Samples)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(10, 1))
	assert.Equal(t, 20, pageOffset(10, 3))
	assert.Equal(t, 0, pageOffset(10, 0))
}

func TestEvaluationKey(t *testing.T) {
	id := uuid.MustParse("6f1c3a3e-2d7b-4a51-9d55-0b1f4c9e8a10")
	assert.Equal(t, "evaluation:6f1c3a3e-2d7b-4a51-9d55-0b1f4c9e8a10", evaluationKey(id))
}

func TestConstraintError(t *testing.T) {
	err := constraintError(fmt.Errorf("insert: %w", &pq.Error{Code: "23514", Table: "evaluations", Constraint: "evaluations_cuc_check"}))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "badrequest: evaluations violates evaluations_cuc_check"))

	err = constraintError(&pq.Error{Code: "23505", Table: "evaluation_points", Constraint: "evaluation_points_evaluation_id_row_index_column_index_key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation_points")

	assert.NoError(t, constraintError(&pq.Error{Code: "08006"}))
	assert.NoError(t, constraintError(errors.New("plain")))
}
