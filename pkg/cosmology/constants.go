package cosmology

import "math"

const (
	// km/s
	speedOfLight = 299792.458
	// cm/s
	speedOfLightCgs = 2.99792458e10
	mpcInKm         = 3.0856775814913673e19
	gyrInSeconds    = 1e9 * 365.25 * 86400
	// cm^3 g^-1 s^-2, CODATA 2018
	gravitationalConstant = 6.67430e-8
	// erg cm^-2 s^-1 K^-4
	stefanBoltzmann = 5.670374419e-5
	// eV/K
	boltzmannEV = 8.617333262e-5

	// (4/11)^(1/3), ratio of the neutrino to the photon temperature.
	tnuFactor = 0.7137658555036082
	// 7/8 (4/11)^(4/3), energy density of one massless neutrino species
	// relative to the photons.
	nuDensityPrefactor = 0.22710731766

	// Massive neutrino fitting function, Komatsu et al. 2011 eq 26.
	nuFitP    = 1.83
	nuFitInvP = 0.54644808743
	nuFitK    = 0.3173

	arcminInRadians = math.Pi / (180 * 60)
	arcsecInRadians = math.Pi / (180 * 3600)

	mpcPerGyr = speedOfLight * gyrInSeconds / mpcInKm
)

// Radiation constant over c^2, g cm^-3 K^-4.
var radiationDensityConstant = 4 * stefanBoltzmann / (speedOfLightCgs * speedOfLightCgs * speedOfLightCgs)
