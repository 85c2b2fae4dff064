package cosmology

import (
	"fmt"
	"math"
)

// LambdaCDM is an FLRW cosmology with a cosmological constant and cold dark
// matter, with or without curvature.
type LambdaCDM struct {
	*flrw
}

// NewLambdaCDM builds a LambdaCDM cosmology. H0 is in km/s/Mpc, Om0 and Ode0
// are the matter and dark energy densities at z=0.
func NewLambdaCDM(h0, om0, ode0 float64, opts ...Option) (*LambdaCDM, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	base, err := newFLRW(h0, om0, ode0, false, cfg)
	if err != nil {
		return nil, err
	}
	c := &LambdaCDM{flrw: base}
	c.selectSolvers()
	return c, nil
}

// FlatLambdaCDM is a LambdaCDM cosmology without curvature; Ode0 follows
// from the other densities.
type FlatLambdaCDM struct {
	LambdaCDM
}

// NewFlatLambdaCDM builds a flat LambdaCDM cosmology.
func NewFlatLambdaCDM(h0, om0 float64, opts ...Option) (*FlatLambdaCDM, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	base, err := newFLRW(h0, om0, 0, true, cfg)
	if err != nil {
		return nil, err
	}
	c := &FlatLambdaCDM{LambdaCDM{flrw: base}}
	c.selectSolvers()
	return c, nil
}

// selectSolvers replaces the quadratures with closed forms where they exist.
// They all require a universe without radiation.
func (c *LambdaCDM) selectSolvers() {
	if c.tcmb0 != 0 {
		return
	}

	if c.ok0 != 0 {
		if c.funcs.Available() {
			c.comovingDistanceZ1Z2 = c.ellipticComovingDistanceZ1Z2
		}
		return
	}

	switch {
	case c.om0 == 1:
		c.comovingDistanceZ1Z2 = c.edsComovingDistanceZ1Z2
		c.age = c.edsAge
		c.lookbackTime = c.edsLookbackTime
	case c.ode0 == 1:
		c.comovingDistanceZ1Z2 = c.dsComovingDistanceZ1Z2
		c.age = c.dsAge
		c.lookbackTime = c.dsLookbackTime
	case c.om0 > 0 && c.ode0 > 0:
		if c.funcs.Available() {
			c.comovingDistanceZ1Z2 = c.hypergeometricComovingDistanceZ1Z2
		}
		c.age = c.flatAge
		c.lookbackTime = c.flatLookbackTime
	}
}

// W is the dark energy equation of state, -1 at every redshift.
func (c *LambdaCDM) W(z float64) (float64, error) {
	if err := checkRedshift("w", z); err != nil {
		return 0, err
	}
	return -1, nil
}

// DeDensityScale is the redshift scaling of the dark energy density, 1 for a
// cosmological constant.
func (c *LambdaCDM) DeDensityScale(z float64) (float64, error) {
	if err := checkRedshift("de_density_scale", z); err != nil {
		return 0, err
	}
	return 1, nil
}

// ellipticComovingDistanceZ1Z2 is the comoving distance of a curved universe
// without radiation in terms of elliptic integrals of the first kind
// (Kantowski, Kao & Thomas 2000; Thomas & Kantowski 2000).
func (c *LambdaCDM) ellipticComovingDistanceZ1Z2(z1, z2 float64) (float64, error) {
	// Not valid when any of the densities vanish.
	if c.om0 == 0 || c.ode0 == 0 || c.ok0 == 0 {
		return c.integralComovingDistanceZ1Z2(z1, z2)
	}

	absOk0 := math.Abs(c.ok0)
	b := -(27.0 / 2) * c.om0 * c.om0 * c.ode0 / (c.ok0 * c.ok0 * c.ok0)
	kappa := b / math.Abs(b)

	var g, k2, phi1, phi2 float64
	switch {
	case b < 0 || b > 2:
		vk := math.Pow(kappa*(b-1)+math.Sqrt(b*(b-2)), 1.0/3)
		y1 := (-1 + kappa*(vk+1/vk)) / 3
		a := math.Sqrt(y1 * (3*y1 + 2))
		g = 1 / math.Sqrt(a)
		k2 = (2*a + kappa*(1+3*y1)) / (4 * a)
		phi := func(z float64) float64 {
			x := (1+z)*c.om0/absOk0 + kappa*y1
			return math.Acos((x - a) / (x + a))
		}
		phi1, phi2 = phi(z1), phi(z2)
	case b > 0 && b < 2 && c.om0 > c.ode0:
		// Lower right branch of the Om0-Ode0 plane; the upper left one has no big bang.
		yb := math.Cos(math.Acos(1-b) / 3)
		yc := math.Sqrt(3) * math.Sin(math.Acos(1-b)/3)
		y1 := (-1 + yb + yc) / 3
		y2 := (-1 - 2*yb) / 3
		y3 := (-1 + yb - yc) / 3
		g = 2 / math.Sqrt(y1-y2)
		k2 = (y1 - y3) / (y1 - y2)
		phi := func(z float64) float64 {
			return math.Asin(math.Sqrt((y1 - y2) / ((1+z)*c.om0/absOk0 + y1)))
		}
		phi1, phi2 = phi(z1), phi(z2)
	default:
		return c.integralComovingDistanceZ1Z2(z1, z2)
	}

	f1, err := c.funcs.Ellipkinc(phi1, k2)
	if err != nil {
		return 0, fmt.Errorf("comoving distance: %w", err)
	}
	f2, err := c.funcs.Ellipkinc(phi2, k2)
	if err != nil {
		return 0, fmt.Errorf("comoving distance: %w", err)
	}
	return c.hubbleDistance / math.Sqrt(absOk0) * g * (f1 - f2), nil
}

// hypergeometricComovingDistanceZ1Z2 is the flat, radiation free comoving
// distance (Baes, Camps & Van De Putte 2017).
func (c *LambdaCDM) hypergeometricComovingDistanceZ1Z2(z1, z2 float64) (float64, error) {
	s := math.Cbrt(c.ode0 / c.om0)
	t1, err := c.tHypergeometric(s / (z1 + 1))
	if err != nil {
		return 0, err
	}
	t2, err := c.tHypergeometric(s / (z2 + 1))
	if err != nil {
		return 0, err
	}
	return c.hubbleDistance / math.Sqrt(s*c.om0) * (t1 - t2), nil
}

func (c *LambdaCDM) tHypergeometric(x float64) (float64, error) {
	f, err := c.funcs.Hyp2f1(1.0/6, 0.5, 7.0/6, -x*x*x)
	if err != nil {
		return 0, fmt.Errorf("comoving distance: %w", err)
	}
	return 2 * math.Sqrt(x) * f, nil
}

func (c *LambdaCDM) flatAge(z float64) (float64, error) {
	prefactor := 2 / (3 * math.Sqrt(c.ode0))
	return c.hubbleTime * prefactor * math.Asinh(math.Sqrt(c.ode0/c.om0)*math.Pow(1+z, -1.5)), nil
}

func (c *LambdaCDM) flatLookbackTime(z float64) (float64, error) {
	now, _ := c.flatAge(0)
	then, _ := c.flatAge(z)
	return now - then, nil
}

// Einstein-de Sitter: Om0 = 1.

func (c *LambdaCDM) edsComovingDistanceZ1Z2(z1, z2 float64) (float64, error) {
	return 2 * c.hubbleDistance * (1/math.Sqrt(1+z1) - 1/math.Sqrt(1+z2)), nil
}

func (c *LambdaCDM) edsAge(z float64) (float64, error) {
	return 2.0 / 3 * c.hubbleTime * math.Pow(1+z, -1.5), nil
}

func (c *LambdaCDM) edsLookbackTime(z float64) (float64, error) {
	now, _ := c.edsAge(0)
	then, _ := c.edsAge(z)
	return now - then, nil
}

// de Sitter: Ode0 = 1.

func (c *LambdaCDM) dsComovingDistanceZ1Z2(z1, z2 float64) (float64, error) {
	return c.hubbleDistance * (z2 - z1), nil
}

func (c *LambdaCDM) dsAge(z float64) (float64, error) {
	return math.Inf(1), nil
}

func (c *LambdaCDM) dsLookbackTime(z float64) (float64, error) {
	return c.hubbleTime * math.Log(1+z), nil
}

// Params returns the parameter set of the cosmology.
func (c *LambdaCDM) Params() Params {
	return c.params(ModelLambdaCDM)
}

// Clone returns a copy with the given options applied on top of the current
// parameters.
func (c *LambdaCDM) Clone(opts ...Option) (*LambdaCDM, error) {
	p := c.Params()
	opts = append(append(p.Options(), WithSpecialFunctions(c.funcs)), opts...)
	return NewLambdaCDM(p.H0, p.Om0, p.Ode0, opts...)
}

func (c *LambdaCDM) String() string {
	return fmt.Sprintf("%s(%s)", ModelLambdaCDM, c.formatParams(true))
}

// Params returns the parameter set of the cosmology; Ode0 is the derived value.
func (c *FlatLambdaCDM) Params() Params {
	return c.params(ModelFlatLambdaCDM)
}

// Clone returns a flat copy with the given options applied on top of the
// current parameters.
func (c *FlatLambdaCDM) Clone(opts ...Option) (*FlatLambdaCDM, error) {
	p := c.Params()
	opts = append(append(p.Options(), WithSpecialFunctions(c.funcs)), opts...)
	return NewFlatLambdaCDM(p.H0, p.Om0, opts...)
}

// Nonflat returns the equivalent LambdaCDM with Ode0 set explicitly.
func (c *FlatLambdaCDM) Nonflat() (*LambdaCDM, error) {
	p := c.Params()
	opts := append(p.Options(), WithSpecialFunctions(c.funcs))
	return NewLambdaCDM(p.H0, p.Om0, p.Ode0, opts...)
}

// Otot0 is exactly 1; summing the derived densities back can round below it.
func (c *FlatLambdaCDM) Otot0() float64 { return 1 }

func (c *FlatLambdaCDM) IsFlat() bool { return true }

// Otot is 1 at every redshift for a flat cosmology.
func (c *FlatLambdaCDM) Otot(z float64) (float64, error) {
	if err := checkRedshift("Otot", z); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *FlatLambdaCDM) String() string {
	return fmt.Sprintf("%s(%s)", ModelFlatLambdaCDM, c.formatParams(false))
}
