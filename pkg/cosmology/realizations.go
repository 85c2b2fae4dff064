package cosmology

import (
	"fmt"
	"sort"
)

type realization struct {
	h0, om0, tcmb0, neff, ob0 float64
	mNu                       []float64
}

// Published flat LambdaCDM parameter sets.
var realizations = map[string]realization{
	// Planck 2018 paper VI, table 2 (TT, TE, EE + lowE + lensing + BAO)
	"Planck18": {h0: 67.66, om0: 0.30966, tcmb0: 2.7255, neff: 3.046, mNu: []float64{0, 0, 0.06}, ob0: 0.04897},
	// Planck 2015 paper XIII, table 4 (TT, TE, EE + lowP + lensing + ext)
	"Planck15": {h0: 67.74, om0: 0.3075, tcmb0: 2.7255, neff: 3.046, mNu: []float64{0, 0, 0.06}, ob0: 0.0486},
	// Planck 2013 paper XVI, table 5 (Planck + WP + highL + BAO)
	"Planck13": {h0: 67.77, om0: 0.30712, tcmb0: 2.7255, neff: 3.046, mNu: []float64{0, 0, 0.06}, ob0: 0.048252},
	"WMAP9":    {h0: 69.32, om0: 0.2865, tcmb0: 2.725, neff: 3.04, mNu: []float64{0}, ob0: 0.04628},
	"WMAP7":    {h0: 70.4, om0: 0.272, tcmb0: 2.725, neff: 3.04, mNu: []float64{0}, ob0: 0.0455},
	"WMAP5":    {h0: 70.2, om0: 0.277, tcmb0: 2.725, neff: 3.04, mNu: []float64{0}, ob0: 0.0459},
	"WMAP3":    {h0: 70.1, om0: 0.276, tcmb0: 2.725, neff: 3.04, mNu: []float64{0}, ob0: 0.0454},
	"WMAP1":    {h0: 72.0, om0: 0.257, tcmb0: 2.725, neff: 3.04, mNu: []float64{0}, ob0: 0.0436},
}

// RealizationNames returns the names accepted by Realization.
func RealizationNames() []string {
	var names []string
	for name := range realizations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Realization builds the named published cosmology.
func Realization(name string, opts ...Option) (*FlatLambdaCDM, error) {
	r, ok := realizations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRealization, name)
	}
	opts = append([]Option{
		WithName(name),
		WithTcmb0(r.tcmb0),
		WithNeff(r.neff),
		WithMNu(r.mNu...),
		WithOb0(r.ob0),
	}, opts...)
	return NewFlatLambdaCDM(r.h0, r.om0, opts...)
}
