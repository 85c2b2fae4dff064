package cosmology

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Number of Gauss-Legendre nodes. The integrands below are smooth in
// u = (1+z)^(-1/2), so a fixed rule is enough for every redshift we accept.
const quadratureNodes = 256

func integrate(f func(float64) float64, min, max float64) float64 {
	switch {
	case min == max:
		return 0
	case min > max:
		return -quad.Fixed(f, max, min, quadratureNodes, nil, 0)
	}
	return quad.Fixed(f, min, max, quadratureNodes, nil, 0)
}

func redshiftToU(z float64) float64 {
	return 1 / math.Sqrt(1+z)
}

func uToRedshift(u float64) float64 {
	return 1/(u*u) - 1
}

// integralComovingDistanceZ1Z2 integrates dz/E(z), written as
// 2 du / (u^3 E) with u = (1+z)^(-1/2).
func (c *flrw) integralComovingDistanceZ1Z2(z1, z2 float64) (float64, error) {
	f := func(u float64) float64 {
		return 2 / (u * u * u * c.efunc(uToRedshift(u)))
	}
	return c.hubbleDistance * integrate(f, redshiftToU(z2), redshiftToU(z1)), nil
}

// lookbackIntegrand is dz/((1+z) E(z)) in terms of u.
func (c *flrw) lookbackIntegrand(u float64) float64 {
	return 2 / (u * c.efunc(uToRedshift(u)))
}

func (c *flrw) integralLookbackTime(z float64) (float64, error) {
	return c.hubbleTime * integrate(c.lookbackIntegrand, redshiftToU(z), 1), nil
}

func (c *flrw) integralAge(z float64) (float64, error) {
	// Without matter or radiation the integrand does not vanish at the big bang.
	if c.om0 == 0 && c.ogamma0 == 0 && c.ode0 > 0 && c.ok0 == 0 {
		return math.Inf(1), nil
	}
	return c.hubbleTime * integrate(c.lookbackIntegrand, 0, redshiftToU(z)), nil
}

func (c *flrw) integralAbsorptionDistance(z float64) float64 {
	f := func(u float64) float64 {
		u2 := u * u
		return 2 / (u2 * u2 * u2 * u * c.efunc(uToRedshift(u)))
	}
	return integrate(f, redshiftToU(z), 1)
}
