package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
)

func TestArchiveParameters(t *testing.T) {
	h0 := 70.0
	testCases := []struct {
		id       string
		calc     *v1.Calculation
		expected map[string]string
	}{
		{
			id:   "realization",
			calc: testCalculation("calc-1", v1.CompletedPhase),
			expected: map[string]string{
				"name":        "calc-1",
				"method":      "comoving_distance",
				"cosmology":   `{"realization":"Planck18"}`,
				"redshifts":   "1",
				"realization": "Planck18",
			},
		},
		{
			id: "explicit model",
			calc: &v1.Calculation{
				ObjectMeta: metav1.ObjectMeta{Name: "calc-2"},
				Spec: v1.CalculationSpec{
					Cosmology: v1.CosmologySpec{Model: "LambdaCDM", H0: h0, Om0: 0.3, Ode0: 0.7},
					Method:    "age",
					Redshifts: []float64{0, 0.5, 1100},
				},
			},
			expected: map[string]string{
				"name":      "calc-2",
				"method":    "age",
				"cosmology": `{"model":"LambdaCDM","H0":70,"Om0":0.3,"Ode0":0.7}`,
				"redshifts": "0,0.5,1100",
				"model":     "LambdaCDM",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			actual, err := ArchiveParameters(tc.calc)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
