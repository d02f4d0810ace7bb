// Package scinot converts between plain floating-point values and the
// mantissa/exponent form the calculator displays.
package scinot

import "math"

// SignificantDigits is the precision the mantissa is rounded to.
const SignificantDigits = 5

// Normalize splits x into (mantissa, exponent) such that
// mantissa * 10^exponent == x within floating tolerance, with
// 1 <= |mantissa| < 10. Zero maps to (0, 0). Non-finite values pass
// through as the mantissa so callers can detect them and short-circuit
// instead of panicking mid-edit.
func Normalize(x float64) (float64, int) {
	if x == 0 {
		return 0, 0
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x, 0
	}

	exp := int(math.Floor(math.Log10(math.Abs(x))))
	mant := roundMantissa(x / math.Pow(10, float64(exp)))

	// Rounding can push the mantissa up to exactly 10 (e.g. 9.999999).
	if math.Abs(mant) >= 10 {
		mant /= 10
		exp++
	}
	return mant, exp
}

// Denormalize is the inverse of Normalize: mantissa * 10^exponent. The
// exponent is a float64 because an in-progress edit may hold a non-finite
// exponent; non-finite inputs yield non-finite results.
func Denormalize(mantissa, exponent float64) float64 {
	return mantissa * math.Pow(10, exponent)
}

func roundMantissa(m float64) float64 {
	scale := math.Pow(10, SignificantDigits-1)
	return math.Round(m*scale) / scale
}
