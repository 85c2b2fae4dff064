package executor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

func TestRun(t *testing.T) {
	testCases := []struct {
		id       string
		spec     v1.CalculationSpec
		expected util.Result
	}{
		{
			id: "completed",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.3},
				Method:    "scale_factor",
				Redshifts: []float64{0, 1},
			},
			expected: util.Result{CalcName: "calc-1", Phase: v1.CompletedPhase, Values: []float64{1, 0.5}},
		},
		{
			id: "invalid redshift",
			spec: v1.CalculationSpec{
				Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.3},
				Method:    "scale_factor",
				Redshifts: []float64{-2},
			},
			expected: util.Result{CalcName: "calc-1", Phase: v1.FailedPhase, Err: cosmology.ErrInvalidRedshift},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			executeChan := make(chan *v1.Calculation)
			resultChan := make(chan util.Result)
			stopCh := make(chan struct{})
			defer close(stopCh)

			e := NewExecutor(executeChan, resultChan)
			go e.Run(stopCh)

			executeChan <- &v1.Calculation{ObjectMeta: metav1.ObjectMeta{Name: "calc-1"}, Spec: tc.spec}
			actual := <-resultChan

			if !errors.Is(actual.Err, tc.expected.Err) {
				t.Fatalf("expected error %v, got %v", tc.expected.Err, actual.Err)
			}
			if diff := cmp.Diff(tc.expected, actual, cmpopts.IgnoreFields(util.Result{}, "Err")); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
