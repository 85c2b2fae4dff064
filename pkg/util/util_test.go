package util

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
)

func TestInputHash(t *testing.T) {
	a := InputHash([]byte("comoving_distance"), []byte("1"))
	b := InputHash([]byte("comoving_distance"), []byte("1"))
	c := InputHash([]byte("comoving_distance"), []byte("2"))
	if a != b {
		t.Fatalf("expected equal hashes, got %s and %s", a, b)
	}
	if a == c {
		t.Fatalf("expected different hashes, got %s twice", a)
	}
	if len(a) != 16 {
		t.Fatalf("expected a 16 character hash, got %q", a)
	}
}

func float(v float64) *float64 { return &v }

func TestNewCalculation(t *testing.T) {
	spec := v1.CalculationSpec{
		Cosmology: v1.CosmologySpec{Realization: "Planck18"},
		Method:    "comoving_distance",
		Redshifts: []float64{0.5, 1},
	}
	first, err := NewCalculation(spec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCalculation(spec)
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != second.Name || !strings.HasPrefix(first.Name, "calc-") {
		t.Fatalf("expected the same calc- prefixed name, got %s and %s", first.Name, second.Name)
	}
	if first.Phase != v1.CreatedPhase {
		t.Fatalf("expected phase %s, got %s", v1.CreatedPhase, first.Phase)
	}

	spec.Redshifts = []float64{2}
	third, err := NewCalculation(spec)
	if err != nil {
		t.Fatal(err)
	}
	if third.Name == first.Name {
		t.Fatalf("expected a different name for a different spec, got %s", third.Name)
	}
}

func TestCompute(t *testing.T) {
	testCases := []struct {
		id          string
		spec        v1.CalculationSpec
		expected    []float64
		expectedErr error
	}{
		{
			id: "explicit flat model",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.27, Tcmb0: float(3)},
				Method:    "Tcmb",
				Redshifts: []float64{0, 1},
			},
			expected: []float64{3, 6},
		},
		{
			id: "realization",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{Realization: "WMAP9"},
				Method:    "Tcmb",
				Redshifts: []float64{0},
			},
			expected: []float64{2.725},
		},
		{
			id: "unknown realization",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{Realization: "Planck99"},
				Method:    "H",
				Redshifts: []float64{0},
			},
			expectedErr: cosmology.ErrUnknownRealization,
		},
		{
			id: "unknown model",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{Model: "wCDM", H0: 70, Om0: 0.3},
				Method:    "H",
				Redshifts: []float64{0},
			},
			expectedErr: cosmology.ErrInvalidParameter,
		},
		{
			id: "no redshifts",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.3},
				Method:    "H",
			},
			expectedErr: cosmology.ErrInvalidRedshift,
		},
		{
			id: "invalid redshift",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{Model: cosmology.ModelLambdaCDM, H0: 70, Om0: 0.3, Ode0: 0.7},
				Method:    "age",
				Redshifts: []float64{1, -1},
			},
			expectedErr: cosmology.ErrInvalidRedshift,
		},
		{
			id: "unknown method",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.3},
				Method:    "hubble_constant",
				Redshifts: []float64{0},
			},
			expectedErr: cosmology.ErrUnknownMethod,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			if err := ValidateSpec(tc.spec); (err == nil) != (tc.expectedErr == nil) || (err != nil && !errors.Is(err, tc.expectedErr)) {
				t.Fatalf("expected validation error %v, got %v", tc.expectedErr, err)
			}

			actual, err := Compute(tc.spec)
			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) || !IsPermanent(err) {
					t.Fatalf("expected a permanent error matching %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestResultsCSV(t *testing.T) {
	calc := &v1.Calculation{
		Spec:    v1.CalculationSpec{Method: "scale_factor", Redshifts: []float64{0, 1, 3}},
		Results: []float64{1, 0.5, 0.25},
	}
	actual, err := ResultsCSV(calc)
	if err != nil {
		t.Fatal(err)
	}
	expected := "z,scale_factor\n0,1\n1,0.5\n3,0.25\n"
	if diff := cmp.Diff(expected, string(actual)); diff != "" {
		t.Fatal(diff)
	}
}
