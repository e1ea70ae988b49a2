package uniformity

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when no usable flow measurement remains
// after filtering. Its message is shown to the user as is.
var ErrInsufficientData = errors.New("no valid flow measurement recorded")

var (
	ErrInvalidSample     = errors.New("invalid sample")
	ErrDuplicatePoint    = errors.New("duplicate point coordinate")
	ErrInvalidCoordinate = errors.New("invalid point coordinate")
	ErrUnknownUnit       = errors.New("unknown measurement unit")
)

// InvalidSampleError describes a sample that was excluded from aggregation.
// It is reported alongside the result, it never aborts an evaluation.
type InvalidSampleError struct {
	Coordinate Coordinate
	Index      int
	Sample     Sample
}

func (e *InvalidSampleError) Error() string {
	return fmt.Sprintf("invalid sample %d at row %d column %d: volume=%g mL time=%g s",
		e.Index+1, e.Coordinate.Row, e.Coordinate.Column, e.Sample.VolumeML, e.Sample.TimeS)
}

// Reason says why the sample was excluded.
func (e *InvalidSampleError) Reason() string {
	if e.Sample.quantitiesValid() {
		return "flow rate is out of range"
	}
	return "volume and time must be greater than zero"
}

func (e *InvalidSampleError) Unwrap() error {
	return ErrInvalidSample
}
