package cosmology

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRedshift is matched by every *RedshiftError.
	ErrInvalidRedshift = errors.New("invalid redshift")
	// ErrInvalidParameter is matched by every *ParameterError.
	ErrInvalidParameter = errors.New("invalid cosmological parameter")
	// ErrBaryonDensityUnset is returned by the baryon dependent methods when
	// the cosmology was built without Ob0.
	ErrBaryonDensityUnset = errors.New("baryon density not set for this cosmology")
	// ErrUnknownMethod is returned when a redshift method is looked up by an unknown name.
	ErrUnknownMethod = errors.New("unknown redshift method")
	// ErrUnknownRealization is returned for realization names that are not registered.
	ErrUnknownRealization = errors.New("unknown cosmology realization")
)

// RedshiftError reports a redshift outside of the domain of a method.
type RedshiftError struct {
	Method string
	Z      float64
	Reason string
}

func (e *RedshiftError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("invalid redshift: %s", e.Reason)
	}
	return fmt.Sprintf("%s: invalid redshift %v: %s", e.Method, e.Z, e.Reason)
}

func (e *RedshiftError) Is(target error) bool {
	return target == ErrInvalidRedshift
}

// ParameterError reports a constructor parameter that failed validation.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Name, e.Reason)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
