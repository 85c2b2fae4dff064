// Package validation compares cosmology calculations against values
// published by independent calculators.
package validation

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
)

// Result is the outcome of a single Reference.
type Result struct {
	Reference Reference
	Computed  float64
	// Deviations holds |computed - value| / |value| per calculator.
	Deviations    []float64
	MaxDeviation  float64
	MeanDeviation float64
}

// Passed reports whether every calculator agrees within the tolerance.
func (r Result) Passed() bool {
	return r.MaxDeviation <= r.Reference.RTol
}

func (r Result) String() string {
	status := "ok"
	if !r.Passed() {
		status = "FAIL"
	}
	return fmt.Sprintf("%-4s %s(z=%v) = %.6f: max deviation %.3g, mean %.3g, rtol %g",
		status, r.Reference.Quantity, r.Reference.Z, r.Computed, r.MaxDeviation, r.MeanDeviation, r.Reference.RTol)
}

// Report collects the results of a Check run.
type Report struct {
	Cosmology string
	Results   []Result
}

// Passed reports whether all results passed.
func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

// Failures returns the results outside of their tolerance.
func (r *Report) Failures() []Result {
	var failures []Result
	for _, result := range r.Results {
		if !result.Passed() {
			failures = append(failures, result)
		}
	}
	return failures
}

// Check evaluates every reference against c. Errors from the cosmology
// itself (bad redshift, unknown quantity) abort the run.
func Check(c cosmology.Cosmology, refs []Reference) (*Report, error) {
	logger := logrus.WithField("component", "validation")
	report := &Report{Cosmology: c.String()}

	for _, ref := range refs {
		if len(ref.Values) == 0 {
			return nil, fmt.Errorf("reference %s(z=%v) has no values", ref.Quantity, ref.Z)
		}
		computed, err := cosmology.Evaluate(c, ref.Quantity, []float64{ref.Z})
		if err != nil {
			return nil, fmt.Errorf("couldn't evaluate %s: %w", ref.Quantity, err)
		}

		result := Result{Reference: ref, Computed: computed[0]}
		for _, v := range ref.Values {
			result.Deviations = append(result.Deviations, math.Abs(computed[0]-v)/math.Abs(v))
		}
		if result.MaxDeviation, err = stats.Max(result.Deviations); err != nil {
			return nil, fmt.Errorf("max deviation computation failed: %w", err)
		}
		if result.MeanDeviation, err = stats.Mean(result.Deviations); err != nil {
			return nil, fmt.Errorf("mean deviation computation failed: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"quantity": ref.Quantity,
			"z":        ref.Z,
			"computed": result.Computed,
			"max":      result.MaxDeviation,
		}).Debug("Compared with reference values.")
		report.Results = append(report.Results, result)
	}
	return report, nil
}
