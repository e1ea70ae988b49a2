package report

import (
	"fmt"
	"time"

	"evaluation-service/internal/models"
	"evaluation-service/internal/uniformity"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Resumo"
	GridSheet    = "Grade"
	SamplesSheet = "Amostras"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FileName is the download and archive name of an evaluation workbook.
func FileName(e *models.Evaluation) string {
	return fmt.Sprintf("avaliacao_%s_%s.xlsx", e.EvaluatedAt.Format("2006-01-02"), e.ID.String()[:8])
}

type styles struct {
	title, header, label, number, border int
	status                               map[uniformity.Status]int
}

// BuildWorkbook renders an evaluation (with its points and samples) into an
// xlsx workbook with a summary, the point grid and the raw samples.
func BuildWorkbook(e *models.Evaluation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook styles: %w", err)
	}

	for _, build := range []struct {
		name string
		fn   func(*excelize.File, string, *models.Evaluation, styles) error
	}{
		{SummarySheet, writeSummary},
		{GridSheet, writeGrid},
		{SamplesSheet, writeSamples},
	} {
		if _, err := f.NewSheet(build.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", build.name, err)
		}
		if err := build.fn(f, build.name, e, st); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", build.name, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	index, err := f.GetSheetIndex(SummarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
	}
	var st styles
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return st, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return st, err
	}
	if st.label, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return st, err
	}
	if st.number, err = f.NewStyle(&excelize.Style{NumFmt: 2, Border: border}); err != nil {
		return st, err
	}
	if st.border, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return st, err
	}

	st.status = make(map[uniformity.Status]int, 3)
	for _, s := range []uniformity.Status{uniformity.StatusGood, uniformity.StatusAcceptable, uniformity.StatusPoor} {
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{s.Color()}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    border,
		})
		if err != nil {
			return st, err
		}
		st.status[s] = id
	}
	return st, nil
}

// sheetWriter keeps the first excelize error of a sheet; every call after a
// failure is a no-op.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) cell(col, row int) string {
	if w.err != nil {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	w.err = err
	return name
}

func (w *sheetWriter) value(cell string, v any) {
	if w.err == nil {
		w.err = w.f.SetCellValue(w.sheet, cell, v)
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, from, to, id)
	}
}

func (w *sheetWriter) width(from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, from, to, width)
	}
}

func writeSummary(f *excelize.File, sheet string, e *models.Evaluation, st styles) error {
	w := &sheetWriter{f: f, sheet: sheet}
	w.value("A1", "Avaliação de Uniformidade de Irrigação")
	w.style("A1", "A1", st.title)
	if w.err == nil {
		w.err = f.SetRowHeight(sheet, 1, 30)
	}
	w.value("A2", fmt.Sprintf("Gerado em: %s", time.Now().Format("2006-01-02 15:04:05")))

	rows := []struct {
		label  string
		value  any
		status uniformity.Status
	}{
		{label: "Avaliação", value: e.ID.String()},
		{label: "Área", value: e.AreaID.String()},
		{label: "Tipo de unidade", value: string(e.UnitType)},
		{label: "Data", value: e.EvaluatedAt.Format("2006-01-02")},
		{label: "Avaliador", value: e.EvaluatorID},
		{label: "Área irrigada (ha)", value: optional(e.IrrigatedAreaHa)},
		{label: "CUC (%)", value: e.CUC, status: uniformity.Classify(e.CUC)},
		{label: "CUD (%)", value: e.CUD, status: uniformity.Classify(e.CUD)},
		{label: "Vazão média (L/h)", value: e.MeanRate},
		{label: "Desvio padrão (L/h)", value: e.StdDev},
		{label: "Coeficiente de variação (%)", value: e.CoefficientOfVariation},
		{label: "Vazão mínima (L/h)", value: e.MinRate},
		{label: "Vazão máxima (L/h)", value: e.MaxRate},
		{label: "Pontos medidos", value: fmt.Sprintf("%d de %d", e.MeasuredPoints, e.TotalPoints)},
		{label: "Volume total (mL)", value: e.TotalVolumeML},
		{label: "Tempo total (s)", value: e.TotalTimeS},
		{label: "Comentários", value: optional(e.Comments)},
		{label: "Recomendações", value: optional(e.Recommendations)},
		{label: "Espaçamento entre emissores (m)", value: optional(e.EmitterSpacingM)},
		{label: "Espaçamento entre laterais (m)", value: optional(e.LateralSpacingM)},
		{label: "Coletada offline", value: yesNo(e.OfflineStatus)},
	}

	for i, row := range rows {
		r := i + 4
		labelCell := w.cell(1, r)
		valueCell := w.cell(2, r)
		w.value(labelCell, row.label)
		w.style(labelCell, labelCell, st.label)
		w.value(valueCell, row.value)
		if _, ok := row.value.(float64); ok {
			w.style(valueCell, valueCell, st.number)
		} else {
			w.style(valueCell, valueCell, st.border)
		}
		if row.status != "" {
			statusCell := w.cell(3, r)
			w.value(statusCell, string(row.status))
			w.style(statusCell, statusCell, st.status[row.status])
		}
	}

	w.width("A", "A", 30)
	w.width("B", "B", 40)
	w.width("C", "C", 14)
	return w.err
}

func writeGrid(f *excelize.File, sheet string, e *models.Evaluation, st styles) error {
	rows, columns := e.Layout()
	w := &sheetWriter{f: f, sheet: sheet}

	w.value("A1", "Linha \\ Emissor")
	w.style("A1", "A1", st.header)
	for c := 1; c <= columns && w.err == nil; c++ {
		cell := w.cell(c+1, 1)
		w.value(cell, uniformity.EmitterLabel(c, columns))
		w.style(cell, cell, st.header)
	}
	for r := 1; r <= rows && w.err == nil; r++ {
		cell := w.cell(1, r+1)
		w.value(cell, uniformity.RowLabel(r, rows))
		w.style(cell, cell, st.label)
		if columns > 0 {
			w.style(w.cell(2, r+1), w.cell(columns+1, r+1), st.number)
		}
	}

	for _, p := range e.Points {
		if !p.Measured || p.AverageRate == nil {
			continue
		}
		w.value(w.cell(p.Column+1, p.Row+1), *p.AverageRate)
	}

	w.width("A", "A", 18)
	return w.err
}

func writeSamples(f *excelize.File, sheet string, e *models.Evaluation, st styles) error {
	w := &sheetWriter{f: f, sheet: sheet}
	headers := []string{"Linha", "Emissor", "Repetição", "Volume (mL)", "Tempo (s)", "Vazão (L/h)", "Válida"}
	for i, h := range headers {
		cell := w.cell(i+1, 1)
		w.value(cell, h)
		w.style(cell, cell, st.header)
	}
	w.width("A", "G", 14)

	r := 2
	for _, p := range e.Points {
		for _, s := range p.Samples {
			values := []any{p.Row, p.Column, s.Repetition, s.VolumeML, s.TimeS, optional(s.RateLH), yesNo(s.Valid)}
			for i, v := range values {
				cell := w.cell(i+1, r)
				w.value(cell, v)
				w.style(cell, cell, st.border)
			}
			r++
		}
	}
	return w.err
}

// optional turns a nil pointer into an empty cell.
func optional[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
