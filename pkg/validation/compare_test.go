package validation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
)

func TestCheckFlatZ1(t *testing.T) {
	c, err := ReferenceCosmology()
	if err != nil {
		t.Fatal(err)
	}
	report, err := Check(c, FlatZ1References())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(report.Results))
	}
	for _, result := range report.Results {
		if len(result.Deviations) != len(Calculators) {
			t.Fatalf("%s: expected one deviation per calculator, got %v", result.Reference.Quantity, result.Deviations)
		}
	}
	if !report.Passed() {
		t.Fatalf("unexpected failures: %v", report.Failures())
	}
}

func TestCheck(t *testing.T) {
	c, err := ReferenceCosmology()
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		id               string
		refs             []Reference
		expectedFailures []string
		expectedErr      error
	}{
		{
			id: "deviation above tolerance",
			refs: []Reference{
				{Quantity: "comoving_distance", Z: 1, Values: []float64{3364.8, 3400}, RTol: 1e-4},
				{Quantity: "scale_factor", Z: 1, Values: []float64{0.5}, RTol: 1e-12},
			},
			expectedFailures: []string{"comoving_distance"},
		},
		{
			id:          "unknown quantity",
			refs:        []Reference{{Quantity: "distance", Z: 1, Values: []float64{1}, RTol: 1}},
			expectedErr: cosmology.ErrUnknownMethod,
		},
		{
			id:          "invalid redshift",
			refs:        []Reference{{Quantity: "comoving_distance", Z: -2, Values: []float64{1}, RTol: 1}},
			expectedErr: cosmology.ErrInvalidRedshift,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			report, err := Check(c, tc.refs)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if err != nil {
				return
			}
			var failures []string
			for _, f := range report.Failures() {
				failures = append(failures, f.Reference.Quantity)
			}
			if diff := cmp.Diff(tc.expectedFailures, failures); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
