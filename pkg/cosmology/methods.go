package cosmology

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RedshiftFunc evaluates a quantity at a single redshift.
type RedshiftFunc func(z float64) (float64, error)

// RedshiftMethods returns every single redshift method of c keyed by its
// snake_case name.
func RedshiftMethods(c Cosmology) map[string]RedshiftFunc {
	return map[string]RedshiftFunc{
		"w":                            c.W,
		"de_density_scale":             c.DeDensityScale,
		"efunc":                        c.Efunc,
		"inv_efunc":                    c.InvEfunc,
		"H":                            c.H,
		"scale_factor":                 c.ScaleFactor,
		"Om":                           c.Om,
		"Ob":                           c.Ob,
		"Odm":                          c.Odm,
		"Ok":                           c.Ok,
		"Ode":                          c.Ode,
		"Ogamma":                       c.Ogamma,
		"Onu":                          c.Onu,
		"Otot":                         c.Otot,
		"Tcmb":                         c.Tcmb,
		"Tnu":                          c.Tnu,
		"nu_relative_density":          c.NuRelativeDensity,
		"lookback_time":                c.LookbackTime,
		"lookback_distance":            c.LookbackDistance,
		"age":                          c.Age,
		"comoving_distance":            c.ComovingDistance,
		"comoving_transverse_distance": c.ComovingTransverseDistance,
		"angular_diameter_distance":    c.AngularDiameterDistance,
		"luminosity_distance":          c.LuminosityDistance,
		"distmod":                      c.Distmod,
		"comoving_volume":              c.ComovingVolume,
		"differential_comoving_volume": c.DifferentialComovingVolume,
		"absorption_distance":          c.AbsorptionDistance,
		"critical_density":             c.CriticalDensity,
		"kpc_comoving_per_arcmin":      c.KpcComovingPerArcmin,
		"kpc_proper_per_arcmin":        c.KpcProperPerArcmin,
		"arcsec_per_kpc_comoving":      c.ArcsecPerKpcComoving,
		"arcsec_per_kpc_proper":        c.ArcsecPerKpcProper,
		"lookback_time_integrand":      c.LookbackTimeIntegrand,
		"abs_distance_integrand":       c.AbsDistanceIntegrand,
	}
}

// MethodNames returns the sorted names accepted by Evaluate.
func MethodNames(c Cosmology) []string {
	var names []string
	for name := range RedshiftMethods(c) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate applies the named method to every redshift, stopping at the
// first error.
func Evaluate(c Cosmology, method string, zs []float64) ([]float64, error) {
	fn, ok := RedshiftMethods(c)[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	values := make([]float64, len(zs))
	for i, z := range zs {
		v, err := fn(z)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ParseRedshift parses a single redshift and checks its domain.
func ParseRedshift(s string) (float64, error) {
	z, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &RedshiftError{Reason: fmt.Sprintf("%q is not a number", s)}
	}
	if err := checkRedshift("", z); err != nil {
		return 0, err
	}
	return z, nil
}

// ParseRedshifts parses a comma separated list of redshifts.
func ParseRedshifts(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &RedshiftError{Reason: "no redshift given"}
	}
	var zs []float64
	for _, field := range strings.Split(s, ",") {
		z, err := ParseRedshift(field)
		if err != nil {
			return nil, err
		}
		zs = append(zs, z)
	}
	return zs, nil
}
