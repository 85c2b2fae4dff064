// Package specfunc provides the special functions used by the closed form
// cosmological distance solutions.
//
// The functions are served by a Backend. Regular builds compile in a backend
// based on gonum's mathext package; builds tagged with nospecfunc carry no
// backend and every call fails with a MissingDependencyError.
package specfunc

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDependency is returned when no special function backend is available.
	ErrMissingDependency = errors.New("missing special function dependency")
	// ErrDomain is returned for arguments outside the supported domain.
	ErrDomain = errors.New("argument outside of the function domain")
)

// MissingDependencyError is returned by the stand-in backend.
type MissingDependencyError struct {
	Func string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("special function %q unavailable: no backend compiled in", e.Func)
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// Backend evaluates the special functions.
type Backend interface {
	// Ellipkinc is the incomplete elliptic integral of the first kind F(phi|m).
	Ellipkinc(phi, m float64) (float64, error)
	// Hyp2f1 is the Gauss hypergeometric function 2F1(a, b; c; z).
	Hyp2f1(a, b, c, z float64) (float64, error)
	// Available reports whether the functions can actually be evaluated.
	Available() bool
}

type unavailable struct{}

// Unavailable returns the stand-in backend used when no implementation is
// compiled in.
func Unavailable() Backend {
	return unavailable{}
}

func (unavailable) Ellipkinc(phi, m float64) (float64, error) {
	return 0, &MissingDependencyError{Func: "ellipkinc"}
}

func (unavailable) Hyp2f1(a, b, c, z float64) (float64, error) {
	return 0, &MissingDependencyError{Func: "hyp2f1"}
}

func (unavailable) Available() bool { return false }

// Ellipkinc evaluates F(phi|m) with the default backend.
func Ellipkinc(phi, m float64) (float64, error) {
	return Default().Ellipkinc(phi, m)
}

// Hyp2f1 evaluates 2F1(a, b; c; z) with the default backend.
func Hyp2f1(a, b, c, z float64) (float64, error) {
	return Default().Hyp2f1(a, b, c, z)
}
