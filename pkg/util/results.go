package util

import (
	"bytes"
	"encoding/csv"
	"strconv"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
)

// Result is the outcome of computing a calculation.
type Result struct {
	CalcName string
	Phase    v1.CalculationPhase
	Values   []float64
	Err      error
}

// ResultsCSV renders a completed calculation as two columns: the redshift and
// the value of the method at that redshift.
func ResultsCSV(calc *v1.Calculation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"z", calc.Spec.Method}); err != nil {
		return nil, err
	}
	for i, z := range calc.Spec.Redshifts {
		if i >= len(calc.Results) {
			break
		}
		record := []string{
			strconv.FormatFloat(z, 'g', -1, 64),
			strconv.FormatFloat(calc.Results[i], 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
