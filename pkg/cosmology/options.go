package cosmology

import (
	"fmt"

	"github.com/vega-project/ccb-cosmology/pkg/specfunc"
)

const (
	// DefaultNeff is the effective number of neutrino species used when
	// WithNeff is not given.
	DefaultNeff = 3.04

	ModelLambdaCDM     = "LambdaCDM"
	ModelFlatLambdaCDM = "FlatLambdaCDM"
)

type config struct {
	name  string
	tcmb0 float64
	neff  float64
	mNu   []float64
	ob0   *float64
	funcs specfunc.Backend
}

func defaultConfig() config {
	return config{
		neff:  DefaultNeff,
		mNu:   []float64{0},
		funcs: specfunc.Default(),
	}
}

// Option configures the optional parameters of a cosmology.
type Option func(*config)

// WithName sets a human readable name.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithTcmb0 sets the CMB temperature at z=0 in K. A zero temperature
// disables photons and neutrinos entirely.
func WithTcmb0(tcmb0 float64) Option {
	return func(c *config) { c.tcmb0 = tcmb0 }
}

// WithNeff sets the effective number of neutrino species.
func WithNeff(neff float64) Option {
	return func(c *config) { c.neff = neff }
}

// WithMNu sets the neutrino masses in eV. A single value applies to every
// species, otherwise one value per species (floor(Neff)) is required.
func WithMNu(masses ...float64) Option {
	return func(c *config) { c.mNu = append([]float64(nil), masses...) }
}

// WithOb0 sets the baryon density at z=0.
func WithOb0(ob0 float64) Option {
	return func(c *config) { c.ob0 = &ob0 }
}

// WithSpecialFunctions replaces the special function backend used by the
// closed form solutions.
func WithSpecialFunctions(b specfunc.Backend) Option {
	return func(c *config) { c.funcs = b }
}

// Params is the serialisable parameter set of a cosmology.
type Params struct {
	Model string    `json:"model"`
	Name  string    `json:"name,omitempty"`
	H0    float64   `json:"H0"`
	Om0   float64   `json:"Om0"`
	Ode0  float64   `json:"Ode0"`
	Tcmb0 float64   `json:"Tcmb0"`
	Neff  float64   `json:"Neff"`
	MNu   []float64 `json:"m_nu,omitempty"`
	Ob0   *float64  `json:"Ob0,omitempty"`
}

// Options converts the optional parameters into constructor options.
func (p Params) Options() []Option {
	opts := []Option{WithName(p.Name), WithTcmb0(p.Tcmb0), WithNeff(p.Neff)}
	if len(p.MNu) > 0 {
		opts = append(opts, WithMNu(p.MNu...))
	}
	if p.Ob0 != nil {
		opts = append(opts, WithOb0(*p.Ob0))
	}
	return opts
}

// New builds the model named by p.Model. For flat models Ode0 is ignored.
func New(p Params, opts ...Option) (Cosmology, error) {
	opts = append(p.Options(), opts...)
	switch p.Model {
	case ModelLambdaCDM:
		return NewLambdaCDM(p.H0, p.Om0, p.Ode0, opts...)
	case ModelFlatLambdaCDM, "":
		return NewFlatLambdaCDM(p.H0, p.Om0, opts...)
	}
	return nil, &ParameterError{Name: "model", Reason: fmt.Sprintf("unsupported model %q", p.Model)}
}
