package uniformity

import (
	"fmt"
	"math"
	"strings"
)

// mL/s -> L/h
const rateFactor = 3.6

// Sample is one timed collection at a point, in milliliters and seconds.
type Sample struct {
	VolumeML float64 `json:"volume_ml"`
	TimeS    float64 `json:"time_s"`
}

// Valid reports whether both quantities are finite and strictly positive and
// their rate is representable: a ratio that overflows to +Inf or underflows
// to zero cannot take part in the statistics.
func (s Sample) Valid() bool {
	return s.quantitiesValid() && isPositive(ComputeRate(s.VolumeML, s.TimeS))
}

func (s Sample) quantitiesValid() bool {
	return isPositive(s.VolumeML) && isPositive(s.TimeS)
}

// ComputeRate converts a collected volume (mL) over a duration (s) to L/h.
// Callers must exclude invalid samples before calling it.
func ComputeRate(volumeML, timeS float64) float64 {
	return volumeML / timeS * rateFactor
}

type VolumeUnit string

const (
	Milliliter VolumeUnit = "mL"
	Liter      VolumeUnit = "L"
)

type TimeUnit string

const (
	Second TimeUnit = "s"
	Minute TimeUnit = "min"
)

// ParseVolumeUnit accepts the unit names used by field sheets. Empty means mL.
func ParseVolumeUnit(raw string) (VolumeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "ml":
		return Milliliter, nil
	case "l":
		return Liter, nil
	}
	return "", fmt.Errorf("%w: volume %q", ErrUnknownUnit, raw)
}

// ParseTimeUnit accepts s/sec and min. Empty means seconds.
func ParseTimeUnit(raw string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "s", "sec":
		return Second, nil
	case "min":
		return Minute, nil
	}
	return "", fmt.Errorf("%w: time %q", ErrUnknownUnit, raw)
}

// NormalizeSample converts a reading taken in any supported unit pair to the
// canonical milliliter / second sample. Invalid readings are converted too so
// they can still be reported as exclusions.
func NormalizeSample(volume float64, vUnit VolumeUnit, duration float64, tUnit TimeUnit) (Sample, error) {
	s := Sample{VolumeML: volume, TimeS: duration}
	switch vUnit {
	case Milliliter:
	case Liter:
		s.VolumeML = volume * 1000
	default:
		return Sample{}, fmt.Errorf("%w: volume %q", ErrUnknownUnit, vUnit)
	}
	switch tUnit {
	case Second:
	case Minute:
		s.TimeS = duration * 60
	default:
		return Sample{}, fmt.Errorf("%w: time %q", ErrUnknownUnit, tUnit)
	}
	return s, nil
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
