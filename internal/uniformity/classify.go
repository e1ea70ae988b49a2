package uniformity

// Status is the field label shown next to a CUC or CUD percentage.
type Status string

const (
	StatusGood       Status = "Bom"
	StatusAcceptable Status = "Aceitável"
	StatusPoor       Status = "Ruim"
)

const (
	goodThreshold       = 90.0
	acceptableThreshold = 80.0
)

// Classify maps a uniformity percentage to its status. It is total: values
// outside [0, 100] and NaN are classified without error (NaN is Ruim).
func Classify(value float64) Status {
	switch {
	case value >= goodThreshold:
		return StatusGood
	case value >= acceptableThreshold:
		return StatusAcceptable
	default:
		return StatusPoor
	}
}

// Color is the hex fill used for a status in reports and charts.
func (s Status) Color() string {
	switch s {
	case StatusGood:
		return "#C6EFCE"
	case StatusAcceptable:
		return "#FFEB9C"
	default:
		return "#FFC7CE"
	}
}
