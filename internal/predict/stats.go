package predict

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a submitted vector for request logging.
type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes Stats. Empty input yields the zero value.
func Summarize(data []float64) Stats {
	if len(data) == 0 {
		return Stats{}
	}
	return Stats{
		Count: len(data),
		Min:   floats.Min(data),
		Max:   floats.Max(data),
		Mean:  stat.Mean(data, nil),
	}
}
