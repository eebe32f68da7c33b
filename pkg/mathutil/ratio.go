package mathutil

import "sort"

// SafeDivide returns numerator/denominator, or zero when the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Clamp bounds val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Lerp linearly interpolates between a and b, t=0 yielding a and t=1 yielding b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Point is a sample of a piecewise linear curve.
type Point struct {
	X float64
	Y float64
}

// Interpolate evaluates the piecewise linear curve through points at x.
// Points need not be sorted. Values outside the sampled range are held at the
// nearest endpoint.
func Interpolate(points []Point, x float64) float64 {
	if len(points) == 0 {
		return 0
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	if x <= sorted[0].X {
		return sorted[0].Y
	}
	last := sorted[len(sorted)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(sorted); i++ {
		lo, hi := sorted[i-1], sorted[i]
		if x > hi.X {
			continue
		}
		if hi.X == lo.X {
			return hi.Y
		}
		return Lerp(lo.Y, hi.Y, (x-lo.X)/(hi.X-lo.X))
	}
	return last.Y
}
