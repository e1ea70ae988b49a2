package report

import (
	"bytes"
	"testing"
	"time"

	"evaluation-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func sampleEvaluation() *models.Evaluation {
	e := &models.Evaluation{
		ID:             uuid.MustParse("0c9a6f2e-5b1d-4f3a-8e7c-1d2b3a4c5d6e"),
		AreaID:         uuid.New(),
		UnitType:       models.UnitTypeHydraulicSector,
		EvaluatorID:    "agronomist-1",
		EvaluatedAt:    time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		CUC:            89.47,
		CUD:            84.21,
		MeanRate:       47.5,
		GridRows:       4,
		GridColumns:    4,
		MeasuredPoints: 4,
		TotalPoints:    16,
		Comments:       ptr("filtro sujo"),
	}
	rates := map[[2]int]float64{{1, 1}: 40, {1, 2}: 45, {2, 1}: 50, {2, 2}: 55}
	for coord, rate := range rates {
		e.Points = append(e.Points, models.EvaluationPoint{
			Row: coord[0], Column: coord[1], Measured: true, AverageRate: ptr(rate),
			Samples: []models.EvaluationSample{{Repetition: "A", VolumeML: rate * 10, TimeS: 36, RateLH: ptr(rate), Valid: true}},
		})
	}
	e.Points = append(e.Points, models.EvaluationPoint{
		Row: 3, Column: 1,
		Samples: []models.EvaluationSample{{Repetition: "A", VolumeML: 100, TimeS: 0}},
	})
	e.Classify()
	return e
}

func TestBuildWorkbook(t *testing.T) {
	data, err := BuildWorkbook(sampleEvaluation())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, GridSheet, SamplesSheet}, f.GetSheetList())

	title, _ := f.GetCellValue(SummarySheet, "A1")
	assert.Equal(t, "Avaliação de Uniformidade de Irrigação", title)

	label, _ := f.GetCellValue(SummarySheet, "A10")
	assert.Equal(t, "CUC (%)", label)
	status, _ := f.GetCellValue(SummarySheet, "C10")
	assert.Equal(t, "Aceitável", status)
	status, _ = f.GetCellValue(SummarySheet, "C11")
	assert.Equal(t, "Aceitável", status)
	measured, _ := f.GetCellValue(SummarySheet, "B17")
	assert.Equal(t, "4 de 16", measured)
	offline, _ := f.GetCellValue(SummarySheet, "B24")
	assert.Equal(t, "Não", offline)

	header, _ := f.GetCellValue(GridSheet, "B1")
	assert.Equal(t, "1º", header)
	header, _ = f.GetCellValue(GridSheet, "C1")
	assert.Equal(t, "1/3", header)
	header, _ = f.GetCellValue(GridSheet, "E1")
	assert.Equal(t, "Últ.", header, "stored layout, not the last collected emitter")
	rowLabel, _ := f.GetCellValue(GridSheet, "A4")
	assert.Equal(t, "2/3", rowLabel)
	rowLabel, _ = f.GetCellValue(GridSheet, "A5")
	assert.Equal(t, "Últ.", rowLabel)
	rate, _ := f.GetCellValue(GridSheet, "C3", excelize.Options{RawCellValue: true})
	assert.Equal(t, "55", rate)
	empty, _ := f.GetCellValue(GridSheet, "B4")
	assert.Empty(t, empty, "unmeasured point stays blank")

	rows, err := f.GetRows(SamplesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 6, "header plus five samples")
	assert.Equal(t, "Válida", rows[0][6])
}

func TestBuildWorkbook_LegacyRowWithoutLayout(t *testing.T) {
	e := sampleEvaluation()
	e.GridRows, e.GridColumns = 0, 0

	data, err := BuildWorkbook(e)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, _ := f.GetCellValue(GridSheet, "C1")
	assert.Equal(t, "1/3", header)
	header, _ = f.GetCellValue(GridSheet, "D1")
	assert.Empty(t, header, "falls back to the points present")
	rowLabel, _ := f.GetCellValue(GridSheet, "A4")
	assert.Equal(t, "2/3", rowLabel)
}

func TestBuildWorkbook_FailsOnGridPastSheetBounds(t *testing.T) {
	e := sampleEvaluation()
	e.GridColumns = excelize.MaxColumns + 1

	_, err := BuildWorkbook(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), GridSheet)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "avaliacao_2025-03-14_0c9a6f2e.xlsx", FileName(sampleEvaluation()))
}
