package uniformity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(row, col int, samples ...Sample) Point {
	return Point{Coordinate: Coordinate{Row: row, Column: col}, Samples: samples}
}

// s builds a sample flowing at rate L/h.
func s(rate float64) Sample {
	return Sample{VolumeML: rate * 10, TimeS: 36}
}

func TestNewGrid_RejectsBadCoordinates(t *testing.T) {
	_, err := NewGrid([]Point{point(0, 1, s(10))})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = NewGrid([]Point{point(1, -1, s(10))})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = NewGrid([]Point{point(2, 3, s(10)), point(2, 3, s(11))})
	assert.ErrorIs(t, err, ErrDuplicatePoint)
}

func TestNewGrid_CopiesInputAndSortsRowMajor(t *testing.T) {
	input := []Point{point(2, 1, s(20)), point(1, 2, s(12)), point(1, 1, s(11))}
	g, err := NewGrid(input)
	require.NoError(t, err)

	input[0].Samples[0].VolumeML = -1

	pts := g.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, Coordinate{1, 1}, pts[0].Coordinate)
	assert.Equal(t, Coordinate{1, 2}, pts[1].Coordinate)
	assert.Equal(t, Coordinate{2, 1}, pts[2].Coordinate)
	assert.True(t, pts[2].Samples[0].Valid(), "grid must not alias caller samples")

	pts[0].Samples[0].TimeS = 0
	p, ok := g.Point(Coordinate{1, 1})
	require.True(t, ok)
	assert.True(t, p.Samples[0].Valid(), "Points must return a copy")

	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Columns())
	assert.Equal(t, 3, g.Len())

	_, ok = g.Point(Coordinate{5, 5})
	assert.False(t, ok)
}

func TestEvaluate_FieldExample(t *testing.T) {
	g, err := NewGrid([]Point{
		point(1, 1, s(40)),
		point(1, 2, s(45), Sample{VolumeML: 0, TimeS: 36}),
		point(2, 1, s(50)),
		point(2, 2, s(55)),
		point(3, 1, Sample{VolumeML: 100, TimeS: 0}),
	})
	require.NoError(t, err)

	eval, err := Evaluate(g)
	require.NoError(t, err)

	assert.Equal(t, 4, eval.MeasuredPoints)
	assert.Equal(t, 1, eval.UnmeasuredPoints)
	require.Len(t, eval.Excluded, 2)
	assert.Equal(t, Coordinate{1, 2}, eval.Excluded[0].Coordinate)
	assert.Equal(t, 1, eval.Excluded[0].Index)
	assert.True(t, errors.Is(&eval.Excluded[1], ErrInvalidSample))

	assert.InDelta(t, 89.47, eval.Result.CUC, 0.01)
	assert.InDelta(t, 84.21, eval.Result.CUD, 0.01)
	assert.InDelta(t, (40+45+50+55)*10.0, eval.TotalVolumeML, 1e-9, "totals only count valid samples")
	assert.InDelta(t, 4*36.0, eval.TotalTimeS, 1e-9)
	assert.Equal(t, []float64{40, 45, 50, 55}, roundAll(eval.Rates()))
	assert.Equal(t, 12, eval.MissingPoints(4, 4))
	assert.Equal(t, 0, eval.MissingPoints(2, 2))
}

func TestEvaluate_NoMeasuredPoint(t *testing.T) {
	g, err := NewGrid([]Point{point(1, 1, Sample{}), point(1, 2)})
	require.NoError(t, err)

	eval, err := Evaluate(g)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, 2, eval.UnmeasuredPoints)
	assert.Len(t, eval.Points, 2)

	_, err = Evaluate(Grid{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEvaluate_UnrepresentableRateIsExcluded(t *testing.T) {
	overflow := Sample{VolumeML: 1e300, TimeS: 1e-10}
	underflow := Sample{VolumeML: 1e-300, TimeS: 1e300}
	assert.False(t, overflow.Valid())
	assert.False(t, underflow.Valid())

	g, err := NewGrid([]Point{
		point(1, 1, overflow),
		point(1, 2, Sample{VolumeML: 100, TimeS: 10}),
		point(2, 1, underflow, Sample{VolumeML: 50, TimeS: 10}),
	})
	require.NoError(t, err)

	eval, err := Evaluate(g)
	require.NoError(t, err)
	assert.Equal(t, 2, eval.MeasuredPoints)
	assert.Equal(t, eval.MeasuredPoints, eval.Result.Count)
	assert.Equal(t, 1, eval.UnmeasuredPoints)
	require.Len(t, eval.Excluded, 2)
	assert.Equal(t, Coordinate{1, 1}, eval.Excluded[0].Coordinate)
	assert.Equal(t, "flow rate is out of range", eval.Excluded[0].Reason())
	assert.Equal(t, Coordinate{2, 1}, eval.Excluded[1].Coordinate)
	assert.InDelta(t, 18.0, eval.Points[2].Rate, 1e-9)

	_, err = json.Marshal(eval)
	assert.NoError(t, err)
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(int(v*1e6+0.5)) / 1e6
	}
	return out
}

func TestLabels(t *testing.T) {
	rows := []string{}
	emitters := []string{}
	for i := 1; i <= 4; i++ {
		rows = append(rows, RowLabel(i, 4))
		emitters = append(emitters, EmitterLabel(i, 4))
	}
	assert.Equal(t, []string{"1ª", "1/3", "2/3", "Últ."}, rows)
	assert.Equal(t, []string{"1º", "1/3", "2/3", "Últ."}, emitters)

	// the 2nd and 3rd positions are the thirds whatever the grid size
	assert.Equal(t, "1/3", RowLabel(2, 6))
	assert.Equal(t, "2/3", RowLabel(3, 6))
	assert.Equal(t, "4ª", RowLabel(4, 6))
	assert.Equal(t, "Últ.", RowLabel(6, 6))
	assert.Equal(t, "5ª", RowLabel(5, 10))
	assert.Equal(t, "1/3", EmitterLabel(2, 2))
	assert.Equal(t, "2/3", EmitterLabel(3, 3))
	assert.Equal(t, "1º", EmitterLabel(1, 1))
}

func TestRepetitionLabel(t *testing.T) {
	assert.Equal(t, "A", RepetitionLabel(0))
	assert.Equal(t, "C", RepetitionLabel(2))
	assert.Equal(t, "Z", RepetitionLabel(25))
	assert.Equal(t, "AA", RepetitionLabel(26))
	assert.Equal(t, "AB", RepetitionLabel(27))
	assert.Equal(t, "", RepetitionLabel(-1))
}
