// Package cosmology implements homogeneous, isotropic FLRW cosmologies with
// a cosmological constant: LambdaCDM and FlatLambdaCDM.
//
// Distances are returned in Mpc, times in Gyr, the Hubble parameter in
// km/s/Mpc, densities in g/cm^3 and volumes in Mpc^3. Every method taking a
// redshift rejects values that are not finite or not greater than -1 with a
// *RedshiftError.
//
// Radiation free models use closed form solutions where they exist; those
// depend on the special functions of the specfunc package and fall back to
// Gauss-Legendre quadrature when no backend is compiled in.
package cosmology

import "fmt"

// Cosmology is implemented by *LambdaCDM and *FlatLambdaCDM.
type Cosmology interface {
	fmt.Stringer

	Name() string
	H0() float64
	Om0() float64
	Ode0() float64
	Ok0() float64
	Ob0() (float64, bool)
	Odm0() (float64, bool)
	Tcmb0() float64
	Tnu0() float64
	Neff() float64
	MNu() []float64
	HasMassiveNu() bool
	Ogamma0() float64
	Onu0() float64
	Otot0() float64
	HubbleTime() float64
	HubbleDistance() float64
	CriticalDensity0() float64
	IsFlat() bool
	Params() Params

	W(z float64) (float64, error)
	DeDensityScale(z float64) (float64, error)
	Efunc(z float64) (float64, error)
	InvEfunc(z float64) (float64, error)
	H(z float64) (float64, error)
	ScaleFactor(z float64) (float64, error)
	Om(z float64) (float64, error)
	Ob(z float64) (float64, error)
	Odm(z float64) (float64, error)
	Ok(z float64) (float64, error)
	Ode(z float64) (float64, error)
	Ogamma(z float64) (float64, error)
	Onu(z float64) (float64, error)
	Otot(z float64) (float64, error)
	Tcmb(z float64) (float64, error)
	Tnu(z float64) (float64, error)
	NuRelativeDensity(z float64) (float64, error)
	LookbackTime(z float64) (float64, error)
	LookbackDistance(z float64) (float64, error)
	Age(z float64) (float64, error)
	ComovingDistance(z float64) (float64, error)
	ComovingTransverseDistance(z float64) (float64, error)
	AngularDiameterDistance(z float64) (float64, error)
	AngularDiameterDistanceZ1Z2(z1, z2 float64) (float64, error)
	LuminosityDistance(z float64) (float64, error)
	Distmod(z float64) (float64, error)
	ComovingVolume(z float64) (float64, error)
	DifferentialComovingVolume(z float64) (float64, error)
	AbsorptionDistance(z float64) (float64, error)
	CriticalDensity(z float64) (float64, error)
	KpcComovingPerArcmin(z float64) (float64, error)
	KpcProperPerArcmin(z float64) (float64, error)
	ArcsecPerKpcComoving(z float64) (float64, error)
	ArcsecPerKpcProper(z float64) (float64, error)
	LookbackTimeIntegrand(z float64) (float64, error)
	AbsDistanceIntegrand(z float64) (float64, error)
}

var (
	_ Cosmology = &LambdaCDM{}
	_ Cosmology = &FlatLambdaCDM{}
)

// IsEquivalent reports whether two cosmologies describe the same universe,
// ignoring their names.
func IsEquivalent(a, b Cosmology) bool {
	pa, pb := a.Params(), b.Params()
	if a.IsFlat() != b.IsFlat() {
		return false
	}
	if pa.H0 != pb.H0 || pa.Om0 != pb.Om0 || pa.Ode0 != pb.Ode0 || pa.Tcmb0 != pb.Tcmb0 || pa.Neff != pb.Neff {
		return false
	}
	if (pa.Ob0 == nil) != (pb.Ob0 == nil) || (pa.Ob0 != nil && *pa.Ob0 != *pb.Ob0) {
		return false
	}
	if len(pa.MNu) != len(pb.MNu) {
		return false
	}
	for i := range pa.MNu {
		if pa.MNu[i] != pb.MNu[i] {
			return false
		}
	}
	return true
}
