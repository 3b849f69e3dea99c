package utils

import "math"

// UnitVector returns x scaled to unit L2 norm as a new slice. A zero vector
// is returned as an unchanged copy.
func UnitVector(x []float32) []float32 {
	out := make([]float32, len(x))
	var sq float64
	for _, v := range x {
		sq += float64(v) * float64(v)
	}
	if sq == 0 {
		copy(out, x)
		return out
	}
	inv := 1 / math.Sqrt(sq)
	for i, v := range x {
		out[i] = float32(float64(v) * inv)
	}
	return out
}
