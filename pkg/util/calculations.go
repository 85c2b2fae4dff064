package util

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
)

// nameEncoding keeps hashes lowercase and free of look-alike characters, so
// they can be used as calculation names and cache keys.
var nameEncoding = base32.NewEncoding("bcdfghijklmnpqrstvwxyz0123456789").WithPadding(base32.NoPadding)

// InputHash hashes its inputs into a short name. Only the first 10 bytes of
// the digest are kept.
func InputHash(inputs ...[]byte) string {
	hash := sha256.New()
	for _, s := range inputs {
		hash.Write(s)
	}
	return nameEncoding.EncodeToString(hash.Sum(nil)[:10])
}

// NewCalculation creates a calculation for the given spec with its minimum
// values. The name is derived from the spec, so equal requests share a name.
func NewCalculation(spec v1.CalculationSpec) (*v1.Calculation, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal calculation spec: %w", err)
	}

	calculation := &v1.Calculation{
		TypeMeta:   metav1.TypeMeta{Kind: "Calculation", APIVersion: "vega.io/v1"},
		ObjectMeta: metav1.ObjectMeta{Name: fmt.Sprintf("calc-%s", InputHash(raw))},
		Phase:      v1.CreatedPhase,
		Status:     v1.CalculationStatus{StartTime: metav1.Time{Time: time.Now()}},
		Spec:       spec,
	}
	return calculation, nil
}

// NewCosmology builds the cosmology described by spec.
func NewCosmology(spec v1.CosmologySpec) (cosmology.Cosmology, error) {
	var opts []cosmology.Option
	if spec.Name != "" {
		opts = append(opts, cosmology.WithName(spec.Name))
	}
	if spec.Tcmb0 != nil {
		opts = append(opts, cosmology.WithTcmb0(*spec.Tcmb0))
	}
	if spec.Neff != nil {
		opts = append(opts, cosmology.WithNeff(*spec.Neff))
	}
	if len(spec.MNu) > 0 {
		opts = append(opts, cosmology.WithMNu(spec.MNu...))
	}
	if spec.Ob0 != nil {
		opts = append(opts, cosmology.WithOb0(*spec.Ob0))
	}

	if spec.Realization != "" {
		return cosmology.Realization(spec.Realization, opts...)
	}

	switch spec.Model {
	case cosmology.ModelLambdaCDM:
		return cosmology.NewLambdaCDM(spec.H0, spec.Om0, spec.Ode0, opts...)
	case cosmology.ModelFlatLambdaCDM, "":
		return cosmology.NewFlatLambdaCDM(spec.H0, spec.Om0, opts...)
	}
	return nil, &cosmology.ParameterError{Name: "model", Reason: fmt.Sprintf("unsupported model %q", spec.Model)}
}

// Compute evaluates the calculation spec.
func Compute(spec v1.CalculationSpec) ([]float64, error) {
	if len(spec.Redshifts) == 0 {
		return nil, &cosmology.RedshiftError{Method: spec.Method, Reason: "no redshift given"}
	}
	c, err := NewCosmology(spec.Cosmology)
	if err != nil {
		return nil, err
	}
	return cosmology.Evaluate(c, spec.Method, spec.Redshifts)
}

// ValidateSpec checks everything Compute would reject on its input: the
// cosmology parameters, the method name and the domain of every redshift.
func ValidateSpec(spec v1.CalculationSpec) error {
	c, err := NewCosmology(spec.Cosmology)
	if err != nil {
		return err
	}
	fn, ok := cosmology.RedshiftMethods(c)[spec.Method]
	if !ok {
		return fmt.Errorf("%w: %q", cosmology.ErrUnknownMethod, spec.Method)
	}
	if len(spec.Redshifts) == 0 {
		return &cosmology.RedshiftError{Method: spec.Method, Reason: "no redshift given"}
	}
	for _, z := range spec.Redshifts {
		if _, err := fn(z); err != nil {
			return err
		}
	}
	return nil
}

// IsPermanent reports whether err is caused by the input rather than the
// environment; retrying such a calculation cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, cosmology.ErrInvalidRedshift) ||
		errors.Is(err, cosmology.ErrInvalidParameter) ||
		errors.Is(err, cosmology.ErrUnknownMethod) ||
		errors.Is(err, cosmology.ErrUnknownRealization) ||
		errors.Is(err, cosmology.ErrBaryonDensityUnset)
}
