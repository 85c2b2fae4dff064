//go:build !nospecfunc
// +build !nospecfunc

package specfunc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Default returns the compiled-in backend.
func Default() Backend {
	return gonumBackend{}
}

type gonumBackend struct{}

func (gonumBackend) Available() bool { return true }

// Ellipkinc reduces phi into [-pi/2, pi/2] and evaluates the Carlson form
// F(phi|m) = sin(phi) RF(cos^2(phi), 1 - m sin^2(phi), 1).
func (gonumBackend) Ellipkinc(phi, m float64) (float64, error) {
	if math.IsNaN(phi) || math.IsNaN(m) || math.IsInf(phi, 0) {
		return 0, fmt.Errorf("ellipkinc(%v, %v): %w", phi, m, ErrDomain)
	}
	if m > 1 {
		return 0, fmt.Errorf("ellipkinc: parameter m=%v > 1: %w", m, ErrDomain)
	}

	n := math.Round(phi / math.Pi)
	r := phi - n*math.Pi
	sin, cos := math.Sincos(r)

	f := sin * mathext.EllipticRF(cos*cos, 1-m*sin*sin, 1)
	if n != 0 {
		f += 2 * n * mathext.EllipticRF(0, 1-m, 1)
	}
	return f, nil
}

// Hyp2f1 maps negative arguments into [0, 1) with the Pfaff transformation
// 2F1(a,b;c;z) = (1-z)^-b 2F1(c-a,b;c;z/(z-1)).
func (gonumBackend) Hyp2f1(a, b, c, z float64) (float64, error) {
	switch {
	case math.IsNaN(z) || math.IsInf(z, 0):
		return 0, fmt.Errorf("hyp2f1: z=%v: %w", z, ErrDomain)
	case z >= 1:
		return 0, fmt.Errorf("hyp2f1: z=%v >= 1: %w", z, ErrDomain)
	case c <= 0 && c == math.Trunc(c):
		return 0, fmt.Errorf("hyp2f1: c=%v is a non-positive integer: %w", c, ErrDomain)
	case z < 0:
		f, err := gaussSeries(c-a, b, c, z/(z-1))
		if err != nil {
			return 0, err
		}
		return math.Pow(1-z, -b) * f, nil
	}
	return gaussSeries(a, b, c, z)
}

// maxSeriesTerms bounds the Gauss series. Arguments closer to 1 than about
// 1e-4 do not converge within it.
const maxSeriesTerms = 1 << 20

// gaussSeries sums 2F1(a,b;c;z) = sum_n (a)_n (b)_n / (c)_n z^n / n! for z in
// [0, 1), stopping once a term no longer changes the sum.
func gaussSeries(a, b, c, z float64) (float64, error) {
	sum, term := 1.0, 1.0
	for n := 0.0; n < maxSeriesTerms; n++ {
		term *= (a + n) * (b + n) / ((c + n) * (n + 1)) * z
		sum += term
		if term == 0 || math.Abs(term) <= 1e-17*math.Abs(sum) {
			return sum, nil
		}
	}
	return 0, fmt.Errorf("hyp2f1(%v, %v, %v, %v): series did not converge: %w", a, b, c, z, ErrDomain)
}
