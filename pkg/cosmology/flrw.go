package cosmology

import (
	"fmt"
	"math"

	"github.com/vega-project/ccb-cosmology/pkg/specfunc"
)

// flrw holds the state shared by the FLRW models: the parameters, the
// derived radiation densities and the distance solvers chosen at
// construction time.
type flrw struct {
	name  string
	h0    float64
	om0   float64
	ode0  float64
	ok0   float64
	tcmb0 float64
	neff  float64
	// nil when Tcmb0 is zero
	mNu    []float64
	ob0    float64
	hasOb0 bool

	ogamma0 float64
	onu0    float64
	tnu0    float64

	nNeutrinos  int
	nMasslessNu int
	neffPerNu   float64
	massiveNu   bool
	nuY         []float64

	hubbleTime       float64
	hubbleDistance   float64
	criticalDensity0 float64

	funcs specfunc.Backend

	comovingDistanceZ1Z2 func(z1, z2 float64) (float64, error)
	age                  func(z float64) (float64, error)
	lookbackTime         func(z float64) (float64, error)
}

func validateParameter(name string, value float64, nonNegative bool) error {
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return &ParameterError{Name: name, Reason: fmt.Sprintf("%v is not finite", value)}
	case nonNegative && value < 0:
		return &ParameterError{Name: name, Reason: fmt.Sprintf("%v is negative", value)}
	}
	return nil
}

// newFLRW validates the parameters and derives the densities. For flat
// models ode0 is ignored and derived from the closure relation.
func newFLRW(h0, om0, ode0 float64, flat bool, cfg config) (*flrw, error) {
	if err := validateParameter("H0", h0, true); err != nil {
		return nil, err
	}
	if h0 == 0 {
		return nil, &ParameterError{Name: "H0", Reason: "must be positive"}
	}
	if err := validateParameter("Om0", om0, true); err != nil {
		return nil, err
	}
	if !flat {
		if err := validateParameter("Ode0", ode0, false); err != nil {
			return nil, err
		}
	}
	if err := validateParameter("Tcmb0", cfg.tcmb0, true); err != nil {
		return nil, err
	}
	if err := validateParameter("Neff", cfg.neff, true); err != nil {
		return nil, err
	}
	for _, m := range cfg.mNu {
		if err := validateParameter("m_nu", m, true); err != nil {
			return nil, err
		}
	}

	c := &flrw{
		name:  cfg.name,
		h0:    h0,
		om0:   om0,
		tcmb0: cfg.tcmb0,
		neff:  cfg.neff,
		funcs: cfg.funcs,
	}
	if c.funcs == nil {
		c.funcs = specfunc.Default()
	}

	if cfg.ob0 != nil {
		if err := validateParameter("Ob0", *cfg.ob0, true); err != nil {
			return nil, err
		}
		if *cfg.ob0 > om0 {
			return nil, &ParameterError{Name: "Ob0", Reason: "baryonic density can not be larger than total matter density"}
		}
		c.ob0, c.hasOb0 = *cfg.ob0, true
	}

	h0PerSecond := h0 / mpcInKm
	c.hubbleTime = 1 / h0PerSecond / gyrInSeconds
	c.hubbleDistance = speedOfLight / h0
	c.criticalDensity0 = 3 * h0PerSecond * h0PerSecond / (8 * math.Pi * gravitationalConstant)

	if err := c.initNeutrinos(cfg.mNu); err != nil {
		return nil, err
	}

	c.ogamma0 = radiationDensityConstant * math.Pow(c.tcmb0, 4) / c.criticalDensity0
	if c.ogamma0 > 0 {
		c.onu0 = c.ogamma0 * c.nuRelativeDensity(0)
	}

	if flat {
		c.ode0 = 1 - c.om0 - c.ogamma0 - c.onu0
		c.ok0 = 0
	} else {
		c.ode0 = ode0
		c.ok0 = 1 - c.om0 - c.ode0 - c.ogamma0 - c.onu0
	}

	c.comovingDistanceZ1Z2 = c.integralComovingDistanceZ1Z2
	c.age = c.integralAge
	c.lookbackTime = c.integralLookbackTime
	return c, nil
}

func (c *flrw) initNeutrinos(masses []float64) error {
	c.nNeutrinos = int(math.Floor(c.neff))
	if c.nNeutrinos > 0 {
		c.neffPerNu = c.neff / float64(c.nNeutrinos)
	}
	c.nMasslessNu = c.nNeutrinos
	if c.tcmb0 == 0 {
		return nil
	}
	c.tnu0 = tnuFactor * c.tcmb0

	switch len(masses) {
	case 1:
		c.mNu = make([]float64, c.nNeutrinos)
		for i := range c.mNu {
			c.mNu[i] = masses[0]
		}
	case c.nNeutrinos:
		c.mNu = append([]float64{}, masses...)
	default:
		return &ParameterError{Name: "m_nu", Reason: fmt.Sprintf("expected 1 or %d masses, got %d", c.nNeutrinos, len(masses))}
	}

	for _, m := range c.mNu {
		if m > 0 {
			c.nuY = append(c.nuY, m/(boltzmannEV*c.tnu0))
		}
	}
	c.massiveNu = len(c.nuY) > 0
	c.nMasslessNu = c.nNeutrinos - len(c.nuY)
	return nil
}

func checkRedshift(method string, z float64) error {
	switch {
	case math.IsNaN(z):
		return &RedshiftError{Method: method, Z: z, Reason: "redshift is NaN"}
	case math.IsInf(z, 0):
		return &RedshiftError{Method: method, Z: z, Reason: "redshift is not finite"}
	case z <= -1:
		return &RedshiftError{Method: method, Z: z, Reason: "redshift must be greater than -1"}
	}
	return nil
}

func (c *flrw) Name() string                    { return c.name }
func (c *flrw) H0() float64                     { return c.h0 }
func (c *flrw) Om0() float64                    { return c.om0 }
func (c *flrw) Ode0() float64                   { return c.ode0 }
func (c *flrw) Ok0() float64                    { return c.ok0 }
func (c *flrw) Tcmb0() float64                  { return c.tcmb0 }
func (c *flrw) Tnu0() float64                   { return c.tnu0 }
func (c *flrw) Neff() float64                   { return c.neff }
func (c *flrw) Ogamma0() float64                { return c.ogamma0 }
func (c *flrw) Onu0() float64                   { return c.onu0 }
func (c *flrw) HubbleTime() float64             { return c.hubbleTime }
func (c *flrw) HubbleDistance() float64         { return c.hubbleDistance }
func (c *flrw) CriticalDensity0() float64       { return c.criticalDensity0 }
func (c *flrw) HasMassiveNu() bool              { return c.massiveNu }
func (c *flrw) Ob0() (float64, bool)            { return c.ob0, c.hasOb0 }
func (c *flrw) Odm0() (float64, bool)           { return c.om0 - c.ob0, c.hasOb0 }
func (c *flrw) Otot0() float64                  { return c.om0 + c.ogamma0 + c.onu0 + c.ode0 + c.ok0 }
func (c *flrw) SpecialFunctionsAvailable() bool { return c.funcs.Available() }

// MNu returns the neutrino masses in eV, nil when Tcmb0 is zero.
func (c *flrw) MNu() []float64 {
	if c.mNu == nil {
		return nil
	}
	return append([]float64{}, c.mNu...)
}

// IsFlat reports whether the spatial curvature vanishes and the densities
// sum to one.
func (c *flrw) IsFlat() bool {
	return c.ok0 == 0 && c.Otot0() == 1
}

func (c *flrw) params(model string) Params {
	p := Params{
		Model: model,
		Name:  c.name,
		H0:    c.h0,
		Om0:   c.om0,
		Ode0:  c.ode0,
		Tcmb0: c.tcmb0,
		Neff:  c.neff,
		MNu:   c.MNu(),
	}
	if c.hasOb0 {
		ob0 := c.ob0
		p.Ob0 = &ob0
	}
	return p
}

func (c *flrw) nuRelativeDensity(z float64) float64 {
	if !c.massiveNu {
		return nuDensityPrefactor * c.neff
	}
	rel := float64(c.nMasslessNu)
	for _, y := range c.nuY {
		curr := y / (1 + z)
		rel += math.Pow(1+math.Pow(nuFitK*curr, nuFitP), nuFitInvP)
	}
	return nuDensityPrefactor * c.neffPerNu * rel
}

// efunc is E(z) = H(z)/H0 for a cosmological constant.
func (c *flrw) efunc(z float64) float64 {
	zp1 := 1 + z
	or := c.ogamma0 + c.onu0
	if c.massiveNu {
		or = c.ogamma0 * (1 + c.nuRelativeDensity(z))
	}
	return math.Sqrt(zp1*zp1*((or*zp1+c.om0)*zp1+c.ok0) + c.ode0)
}

func (c *flrw) comovingTransverse(dc float64) float64 {
	if c.ok0 == 0 {
		return dc
	}
	sqrtOk0 := math.Sqrt(math.Abs(c.ok0))
	dh := c.hubbleDistance
	if c.ok0 > 0 {
		return dh / sqrtOk0 * math.Sinh(sqrtOk0*dc/dh)
	}
	return dh / sqrtOk0 * math.Sin(sqrtOk0*dc/dh)
}

// Efunc returns E(z) = H(z)/H0.
func (c *flrw) Efunc(z float64) (float64, error) {
	if err := checkRedshift("efunc", z); err != nil {
		return 0, err
	}
	return c.efunc(z), nil
}

// InvEfunc returns 1/E(z).
func (c *flrw) InvEfunc(z float64) (float64, error) {
	if err := checkRedshift("inv_efunc", z); err != nil {
		return 0, err
	}
	return 1 / c.efunc(z), nil
}

// H returns the Hubble parameter in km/s/Mpc.
func (c *flrw) H(z float64) (float64, error) {
	if err := checkRedshift("H", z); err != nil {
		return 0, err
	}
	return c.h0 * c.efunc(z), nil
}

func (c *flrw) ScaleFactor(z float64) (float64, error) {
	if err := checkRedshift("scale_factor", z); err != nil {
		return 0, err
	}
	return 1 / (1 + z), nil
}

// Om returns the matter density parameter at z.
func (c *flrw) Om(z float64) (float64, error) {
	if err := checkRedshift("Om", z); err != nil {
		return 0, err
	}
	zp1 := 1 + z
	e := c.efunc(z)
	return c.om0 * zp1 * zp1 * zp1 / (e * e), nil
}

// Ob returns the baryon density parameter at z.
func (c *flrw) Ob(z float64) (float64, error) {
	if err := checkRedshift("Ob", z); err != nil {
		return 0, err
	}
	if !c.hasOb0 {
		return 0, fmt.Errorf("Ob: %w", ErrBaryonDensityUnset)
	}
	zp1 := 1 + z
	e := c.efunc(z)
	return c.ob0 * zp1 * zp1 * zp1 / (e * e), nil
}

// Odm returns the dark matter density parameter at z.
func (c *flrw) Odm(z float64) (float64, error) {
	if err := checkRedshift("Odm", z); err != nil {
		return 0, err
	}
	if !c.hasOb0 {
		return 0, fmt.Errorf("Odm: %w", ErrBaryonDensityUnset)
	}
	zp1 := 1 + z
	e := c.efunc(z)
	return (c.om0 - c.ob0) * zp1 * zp1 * zp1 / (e * e), nil
}

// Ok returns the curvature density parameter at z.
func (c *flrw) Ok(z float64) (float64, error) {
	if err := checkRedshift("Ok", z); err != nil {
		return 0, err
	}
	if c.ok0 == 0 {
		return 0, nil
	}
	zp1 := 1 + z
	e := c.efunc(z)
	return c.ok0 * zp1 * zp1 / (e * e), nil
}

// Ode returns the dark energy density parameter at z.
func (c *flrw) Ode(z float64) (float64, error) {
	if err := checkRedshift("Ode", z); err != nil {
		return 0, err
	}
	if c.ode0 == 0 {
		return 0, nil
	}
	e := c.efunc(z)
	return c.ode0 / (e * e), nil
}

// Ogamma returns the photon density parameter at z.
func (c *flrw) Ogamma(z float64) (float64, error) {
	if err := checkRedshift("Ogamma", z); err != nil {
		return 0, err
	}
	return c.ogamma(z), nil
}

func (c *flrw) ogamma(z float64) float64 {
	zp1 := 1 + z
	e := c.efunc(z)
	return c.ogamma0 * zp1 * zp1 * zp1 * zp1 / (e * e)
}

// Onu returns the neutrino density parameter at z.
func (c *flrw) Onu(z float64) (float64, error) {
	if err := checkRedshift("Onu", z); err != nil {
		return 0, err
	}
	if c.ogamma0 == 0 {
		return 0, nil
	}
	return c.ogamma(z) * c.nuRelativeDensity(z), nil
}

// Otot returns the total density parameter at z, curvature included.
func (c *flrw) Otot(z float64) (float64, error) {
	if err := checkRedshift("Otot", z); err != nil {
		return 0, err
	}
	zp1 := 1 + z
	e2 := c.efunc(z) * c.efunc(z)
	og := c.ogamma(z)
	onu := 0.0
	if c.ogamma0 != 0 {
		onu = og * c.nuRelativeDensity(z)
	}
	return c.om0*zp1*zp1*zp1/e2 + og + onu + c.ode0/e2 + c.ok0*zp1*zp1/e2, nil
}

// Tcmb returns the CMB temperature at z in K.
func (c *flrw) Tcmb(z float64) (float64, error) {
	if err := checkRedshift("Tcmb", z); err != nil {
		return 0, err
	}
	return c.tcmb0 * (1 + z), nil
}

// Tnu returns the neutrino temperature at z in K.
func (c *flrw) Tnu(z float64) (float64, error) {
	if err := checkRedshift("Tnu", z); err != nil {
		return 0, err
	}
	return c.tnu0 * (1 + z), nil
}

// NuRelativeDensity returns the neutrino density relative to the photon density.
func (c *flrw) NuRelativeDensity(z float64) (float64, error) {
	if err := checkRedshift("nu_relative_density", z); err != nil {
		return 0, err
	}
	return c.nuRelativeDensity(z), nil
}

// LookbackTime returns the lookback time to z in Gyr.
func (c *flrw) LookbackTime(z float64) (float64, error) {
	if err := checkRedshift("lookback_time", z); err != nil {
		return 0, err
	}
	return c.lookbackTime(z)
}

// LookbackDistance returns the light travel distance to z in Mpc.
func (c *flrw) LookbackDistance(z float64) (float64, error) {
	if err := checkRedshift("lookback_distance", z); err != nil {
		return 0, err
	}
	t, err := c.lookbackTime(z)
	if err != nil {
		return 0, err
	}
	return t * mpcPerGyr, nil
}

// Age returns the age of the universe at z in Gyr.
func (c *flrw) Age(z float64) (float64, error) {
	if err := checkRedshift("age", z); err != nil {
		return 0, err
	}
	return c.age(z)
}

// ComovingDistance returns the line of sight comoving distance to z in Mpc.
func (c *flrw) ComovingDistance(z float64) (float64, error) {
	if err := checkRedshift("comoving_distance", z); err != nil {
		return 0, err
	}
	return c.comovingDistanceZ1Z2(0, z)
}

// ComovingTransverseDistance returns the transverse comoving distance to z in Mpc.
func (c *flrw) ComovingTransverseDistance(z float64) (float64, error) {
	if err := checkRedshift("comoving_transverse_distance", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	return c.comovingTransverse(dc), nil
}

// AngularDiameterDistance returns the angular diameter distance to z in Mpc.
func (c *flrw) AngularDiameterDistance(z float64) (float64, error) {
	if err := checkRedshift("angular_diameter_distance", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	return c.comovingTransverse(dc) / (1 + z), nil
}

// AngularDiameterDistanceZ1Z2 returns the angular diameter distance between
// two redshifts in Mpc, as seen from z1 for a source at z2.
func (c *flrw) AngularDiameterDistanceZ1Z2(z1, z2 float64) (float64, error) {
	if err := checkRedshift("angular_diameter_distance_z1z2", z1); err != nil {
		return 0, err
	}
	if err := checkRedshift("angular_diameter_distance_z1z2", z2); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(z1, z2)
	if err != nil {
		return 0, err
	}
	return c.comovingTransverse(dc) / (1 + z2), nil
}

// LuminosityDistance returns the luminosity distance to z in Mpc.
func (c *flrw) LuminosityDistance(z float64) (float64, error) {
	if err := checkRedshift("luminosity_distance", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * c.comovingTransverse(dc), nil
}

// Distmod returns the distance modulus in magnitudes.
func (c *flrw) Distmod(z float64) (float64, error) {
	if err := checkRedshift("distmod", z); err != nil {
		return 0, err
	}
	dl, err := c.LuminosityDistance(z)
	if err != nil {
		return 0, err
	}
	return 5*math.Log10(math.Abs(dl)) + 25, nil
}

// ComovingVolume returns the comoving volume within z over the whole sky in Mpc^3.
func (c *flrw) ComovingVolume(z float64) (float64, error) {
	if err := checkRedshift("comoving_volume", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	dm := c.comovingTransverse(dc)
	if c.ok0 == 0 {
		return 4.0 / 3 * math.Pi * dm * dm * dm, nil
	}

	dh := c.hubbleDistance
	x := dm / dh
	sqrtOk0 := math.Sqrt(math.Abs(c.ok0))
	term1 := 4 * math.Pi * dh * dh * dh / (2 * c.ok0)
	term2 := x * math.Sqrt(1+c.ok0*x*x)
	term3 := sqrtOk0 * x
	if c.ok0 > 0 {
		return term1 * (term2 - math.Asinh(term3)/sqrtOk0), nil
	}
	return term1 * (term2 - math.Asin(term3)/sqrtOk0), nil
}

// DifferentialComovingVolume returns dV/dz/dOmega in Mpc^3/sr.
func (c *flrw) DifferentialComovingVolume(z float64) (float64, error) {
	if err := checkRedshift("differential_comoving_volume", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	dm := c.comovingTransverse(dc)
	return c.hubbleDistance * dm * dm / c.efunc(z), nil
}

// AbsorptionDistance returns the dimensionless absorption distance to z.
func (c *flrw) AbsorptionDistance(z float64) (float64, error) {
	if err := checkRedshift("absorption_distance", z); err != nil {
		return 0, err
	}
	return c.integralAbsorptionDistance(z), nil
}

// CriticalDensity returns the critical density at z in g/cm^3.
func (c *flrw) CriticalDensity(z float64) (float64, error) {
	if err := checkRedshift("critical_density", z); err != nil {
		return 0, err
	}
	e := c.efunc(z)
	return c.criticalDensity0 * e * e, nil
}

// KpcComovingPerArcmin returns the comoving transverse size of one arcminute at z in kpc.
func (c *flrw) KpcComovingPerArcmin(z float64) (float64, error) {
	if err := checkRedshift("kpc_comoving_per_arcmin", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	return c.comovingTransverse(dc) * 1e3 * arcminInRadians, nil
}

// KpcProperPerArcmin returns the proper transverse size of one arcminute at z in kpc.
func (c *flrw) KpcProperPerArcmin(z float64) (float64, error) {
	if err := checkRedshift("kpc_proper_per_arcmin", z); err != nil {
		return 0, err
	}
	da, err := c.AngularDiameterDistance(z)
	if err != nil {
		return 0, err
	}
	return da * 1e3 * arcminInRadians, nil
}

// ArcsecPerKpcComoving returns the angle subtended by one comoving kpc at z in arcsec.
func (c *flrw) ArcsecPerKpcComoving(z float64) (float64, error) {
	if err := checkRedshift("arcsec_per_kpc_comoving", z); err != nil {
		return 0, err
	}
	dc, err := c.comovingDistanceZ1Z2(0, z)
	if err != nil {
		return 0, err
	}
	return 1 / (c.comovingTransverse(dc) * 1e3 * arcsecInRadians), nil
}

// ArcsecPerKpcProper returns the angle subtended by one proper kpc at z in arcsec.
func (c *flrw) ArcsecPerKpcProper(z float64) (float64, error) {
	if err := checkRedshift("arcsec_per_kpc_proper", z); err != nil {
		return 0, err
	}
	da, err := c.AngularDiameterDistance(z)
	if err != nil {
		return 0, err
	}
	return 1 / (da * 1e3 * arcsecInRadians), nil
}

// LookbackTimeIntegrand returns 1/((1+z) E(z)).
func (c *flrw) LookbackTimeIntegrand(z float64) (float64, error) {
	if err := checkRedshift("lookback_time_integrand", z); err != nil {
		return 0, err
	}
	return 1 / ((1 + z) * c.efunc(z)), nil
}

// AbsDistanceIntegrand returns (1+z)^2 / E(z).
func (c *flrw) AbsDistanceIntegrand(z float64) (float64, error) {
	if err := checkRedshift("abs_distance_integrand", z); err != nil {
		return 0, err
	}
	zp1 := 1 + z
	return zp1 * zp1 / c.efunc(z), nil
}
