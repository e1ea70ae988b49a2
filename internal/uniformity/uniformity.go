package uniformity

import (
	"math"
	"sort"
)

// lowQuarterFraction selects the low quarter used by CUD.
const lowQuarterFraction = 0.25

// Result holds the area statistics computed from point-average rates (L/h).
// CUC, CUD and CoefficientOfVariation are percentages.
type Result struct {
	CUC                    float64 `json:"cuc"`
	CUD                    float64 `json:"cud"`
	Mean                   float64 `json:"mean"`
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
	Count                  int     `json:"count"`
	LowQuarterCount        int     `json:"low_quarter_count"`
	LowQuarterMean         float64 `json:"low_quarter_mean"`
}

// ComputeUniformity returns CUC (Christiansen) and CUD (low quarter) plus the
// descriptive statistics of rates. Entries that are not finite and positive
// are ignored; when none remain ErrInsufficientData is returned. The input
// slice is never modified.
func ComputeUniformity(rates []float64) (Result, error) {
	values := make([]float64, 0, len(rates))
	for _, r := range rates {
		if isPositive(r) {
			values = append(values, r)
		}
	}
	if len(values) == 0 {
		return Result{}, ErrInsufficientData
	}
	sort.Float64s(values)

	n := len(values)
	q := lowQuarterCount(n)
	res := Result{
		Count:           n,
		Min:             values[0],
		Max:             values[n-1],
		LowQuarterCount: q,
	}

	// a constant set is exact regardless of float rounding in the sums
	if res.Min == res.Max {
		res.Mean = res.Min
		res.LowQuarterMean = res.Min
		res.CUC = 100
		res.CUD = 100
		return res, nil
	}

	res.Mean = mean(values)
	if !(res.Mean > 0) {
		return Result{}, ErrInsufficientData
	}

	var absDev, sqDev float64
	for _, v := range values {
		d := v - res.Mean
		absDev += math.Abs(d)
		sqDev += d * d
	}
	res.CUC = clampPercent((1 - (absDev/float64(n))/res.Mean) * 100)

	res.LowQuarterMean = mean(values[:q])
	res.CUD = clampPercent(res.LowQuarterMean / res.Mean * 100)

	res.StdDev = math.Sqrt(sqDev / float64(n))
	res.CoefficientOfVariation = res.StdDev / res.Mean * 100
	return res, nil
}

// lowQuarterCount is ceil(n/4), never below one.
func lowQuarterCount(n int) int {
	q := int(math.Ceil(float64(n) * lowQuarterFraction))
	if q < 1 {
		q = 1
	}
	return q
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
