package cosmology

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func (c *flrw) formatParams(withOde0 bool) string {
	name := "None"
	if c.name != "" {
		name = fmt.Sprintf("%q", c.name)
	}
	mNu := "None"
	if c.mNu != nil {
		mNu = formatArray(c.mNu) + " eV"
	}
	ob0 := "None"
	if c.hasOb0 {
		ob0 = formatFloat(c.ob0)
	}

	parts := []string{
		"name=" + name,
		"H0=" + formatFloat(c.h0) + " km / (Mpc s)",
		"Om0=" + formatFloat(c.om0),
	}
	if withOde0 {
		parts = append(parts, "Ode0="+formatFloat(c.ode0))
	}
	parts = append(parts,
		"Tcmb0="+formatFloat(c.tcmb0)+" K",
		"Neff="+formatFloat(c.neff),
		"m_nu="+mNu,
		"Ob0="+ob0,
	)
	return strings.Join(parts, ", ")
}

// formatFloat prints the shortest representation that round trips, always
// with a decimal point or an exponent: 70.0, 0.27, 1e-05.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); v != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatArray prints values the way numpy does for short float arrays:
// integral values keep a bare trailing point and every element is padded to
// the same width, [0.   0.   0.06].
func formatArray(values []float64) string {
	elems := make([]string, len(values))
	width := 0
	for i, v := range values {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += "."
		}
		elems[i] = s
		if len(s) > width {
			width = len(s)
		}
	}
	for i, s := range elems {
		elems[i] = s + strings.Repeat(" ", width-len(s))
	}
	return "[" + strings.Join(elems, " ") + "]"
}
