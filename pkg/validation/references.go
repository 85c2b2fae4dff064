package validation

import "github.com/vega-project/ccb-cosmology/pkg/cosmology"

// Calculators names the independent codes the reference values come from,
// in the order of Reference.Values.
var Calculators = []string{"Wright", "Kempner", "iCosmos"}

// Reference is a quantity computed by the calculators at a single redshift.
type Reference struct {
	// Quantity is a name accepted by cosmology.Evaluate.
	Quantity string
	Z        float64
	Values   []float64
	RTol     float64
}

// ReferenceCosmology is the model the FlatZ1References were computed for:
// flat, H0=70 km/s/Mpc, Om0=0.27 and no radiation.
func ReferenceCosmology() (*cosmology.FlatLambdaCDM, error) {
	return cosmology.NewFlatLambdaCDM(70, 0.27, cosmology.WithTcmb0(0))
}

// FlatZ1References returns the z=1 values published by the Wright, Kempner
// and iCosmos web calculators (retrieved 2012-02-11).
func FlatZ1References() []Reference {
	return []Reference{
		{Quantity: "comoving_distance", Z: 1, Values: []float64{3364.5, 3364.8, 3364.7988}, RTol: 1e-4},
		{Quantity: "angular_diameter_distance", Z: 1, Values: []float64{1682.3, 1682.4, 1682.3994}, RTol: 1e-4},
		{Quantity: "luminosity_distance", Z: 1, Values: []float64{6729.2, 6729.6, 6729.5976}, RTol: 1e-4},
		{Quantity: "lookback_time", Z: 1, Values: []float64{7.841, 7.84178, 7.843}, RTol: 1e-3},
		{Quantity: "lookback_distance", Z: 1, Values: []float64{2404.0, 2404.24, 2404.4}, RTol: 1e-3},
	}
}
