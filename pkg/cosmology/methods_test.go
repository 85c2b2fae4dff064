package cosmology

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate(t *testing.T) {
	c := newTestLambdaCDM(t)

	testCases := []struct {
		id          string
		method      string
		zs          []float64
		expected    []float64
		expectedErr error
	}{
		{
			id:       "scale factor",
			method:   "scale_factor",
			zs:       []float64{0, 1, 3},
			expected: []float64{1, 0.5, 0.25},
		},
		{
			id:       "dark energy equation of state",
			method:   "w",
			zs:       []float64{0, 1},
			expected: []float64{-1, -1},
		},
		{
			id:       "CMB temperature",
			method:   "Tcmb",
			zs:       []float64{0, 1},
			expected: []float64{3, 6},
		},
		{
			id:          "unknown method",
			method:      "luminosity",
			zs:          []float64{1},
			expectedErr: ErrUnknownMethod,
		},
		{
			id:          "invalid redshift stops the evaluation",
			method:      "scale_factor",
			zs:          []float64{1, -1},
			expectedErr: ErrInvalidRedshift,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			actual, err := Evaluate(c, tc.method, tc.zs)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestMethodNames(t *testing.T) {
	names := MethodNames(newTestFlatLambdaCDM(t))
	if len(names) != 35 {
		t.Fatalf("expected 35 redshift methods, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names are not sorted: %v", names)
		}
	}
}

func TestParseRedshifts(t *testing.T) {
	testCases := []struct {
		id          string
		input       string
		expected    []float64
		expectedErr bool
	}{
		{id: "single", input: "1", expected: []float64{1}},
		{id: "list with spaces", input: "0, 0.5 ,3", expected: []float64{0, 0.5, 3}},
		{id: "negative but valid", input: "-0.5", expected: []float64{-0.5}},
		{id: "empty", input: " ", expectedErr: true},
		{id: "not a number", input: "1,abc", expectedErr: true},
		{id: "minus one", input: "-1", expectedErr: true},
		{id: "NaN", input: "NaN", expectedErr: true},
		{id: "infinity", input: "0,+Inf", expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			actual, err := ParseRedshifts(tc.input)
			if tc.expectedErr {
				if !errors.Is(err, ErrInvalidRedshift) {
					t.Fatalf("expected ErrInvalidRedshift, got %v", err)
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

func TestParamsRoundTrip(t *testing.T) {
	for _, c := range []Cosmology{newTestLambdaCDM(t), newTestFlatLambdaCDM(t)} {
		raw, err := json.Marshal(c.Params())
		if err != nil {
			t.Fatal(err)
		}
		var p Params
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatal(err)
		}
		rebuilt, err := New(p)
		if err != nil {
			t.Fatal(err)
		}
		if rebuilt.String() != c.String() {
			t.Fatalf("expected %s, got %s", c, rebuilt)
		}
		if !IsEquivalent(c, rebuilt) {
			t.Fatalf("expected %s to be equivalent to %s", rebuilt, c)
		}
	}

	if _, err := New(Params{Model: "wCDM", H0: 70, Om0: 0.3}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := New(Params{H0: 70, Om0: math.NaN()}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
