package math

import "math"

const Pi = float32(math.Pi)

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// EaseOutCubic maps linear progress in [0,1] to a decelerating curve.
func EaseOutCubic(t float32) float32 {
	t = Clamp(t, 0, 1)
	u := 1 - t
	return 1 - u*u*u
}

// Smoothstep is the Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Wrap maps v into the half-open interval [lo, hi).
func Wrap(v, lo, hi float32) float32 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	r := float32(math.Mod(float64(v-lo), float64(span)))
	if r < 0 {
		r += span
	}
	return lo + r
}

func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }
func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }
