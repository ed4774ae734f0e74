package service

import "math"

// round2 rounds to 2 decimal places. Applied at the output boundary only;
// intermediate math keeps full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundDays rounds a fractional day count to the nearest whole day
func roundDays(v float64) int {
	return int(math.Round(v))
}

func float64Ptr(v float64) *float64 {
	return &v
}
