package vector

import "math"

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2]. Vectors of
// different length, empty or zero vectors, and vectors holding NaN or
// infinite components are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i, x := range a {
		y := float64(b[i])
		dot += float64(x) * y
		na += float64(x) * float64(x)
		nb += y * y
	}
	if na == 0 || nb == 0 || !finite(dot) || !finite(na) || !finite(nb) {
		return 1
	}
	cos := dot / math.Sqrt(na*nb)
	if !finite(cos) {
		return 1
	}
	return 1 - min(1, max(-1, cos))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
