package index

import "math"

// cosine returns dot(a,b) / (|a| * |b|), or 0 when either vector is all zeros.
// a and b must have equal length.
func cosine(a, b []float64) float64 {
	return clampUnit(dot(unit(a), unit(b)))
}

// unit returns v scaled to length 1, or an all-zero vector when v is all zeros.
// v is first divided by its largest magnitude so squaring cannot overflow or underflow.
func unit(v []float64) []float64 {
	out := make([]float64, len(v))

	var peak float64
	for _, x := range v {
		peak = math.Max(peak, math.Abs(x))
	}
	if peak == 0 {
		return out
	}

	var s float64
	for i, x := range v {
		out[i] = x / peak
		s += out[i] * out[i]
	}
	n := math.Sqrt(s)
	for i := range out {
		out[i] /= n
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// clampUnit bounds rounding error of unit-vector dot products to [-1, 1].
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
