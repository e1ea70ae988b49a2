package uniformity

// PointAggregate is the averaged flow of one point. A point with no valid
// sample is unmeasured: Valid is false and Rate is zero.
type PointAggregate struct {
	Rate          float64 `json:"rate"`
	Valid         bool    `json:"valid"`
	ValidSamples  int     `json:"valid_samples"`
	TotalVolumeML float64 `json:"total_volume_ml"`
	TotalTimeS    float64 `json:"total_time_s"`
}

// AggregatePoint averages the rates of the valid samples of a point.
func AggregatePoint(samples []Sample) PointAggregate {
	var agg PointAggregate
	for _, s := range samples {
		if !s.Valid() {
			continue
		}
		agg.ValidSamples++
		// running mean, stays finite for any finite rates
		agg.Rate += (ComputeRate(s.VolumeML, s.TimeS) - agg.Rate) / float64(agg.ValidSamples)
		agg.TotalVolumeML += s.VolumeML
		agg.TotalTimeS += s.TimeS
	}
	agg.Valid = agg.ValidSamples > 0
	return agg
}
