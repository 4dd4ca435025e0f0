// Package physics implements the deterministic baseline model for an
// optical storage channel. Dataset generation, training, and inference
// all call into this package, so the SNR formula and its constants live
// in exactly one place.
package physics

import (
	"math"

	"osis/internal/channel"
)

// KBoltzmann is the Boltzmann constant in eV/K.
const KBoltzmann = 8.617e-5

// ThermalFactor returns the Arrhenius stability term exp(-Ea/(kB*T)) for
// an activation energy in eV and a temperature in degrees Celsius. For
// archival materials the result is vanishingly small: 2.0 eV at 25 C
// is on the order of 1e-34.
func ThermalFactor(activationEnergyEV, temperatureC float64) float64 {
	tempK := temperatureC + 273.15
	return math.Exp(-activationEnergyEV / (KBoltzmann * tempK))
}

// SNR computes the closed-form baseline in dB:
//
//	85 + 30*NA - 0.02*wavelength - 15*isi - 10*crosstalk + 5*thermal
//
// The function is pure and never clamps. Negative results are possible
// for extreme channel geometries and are returned as-is.
func SNR(wavelengthNm, na, isi, crosstalk, thermalFactor float64) float64 {
	return 85 + 30*na - 0.02*wavelengthNm - 15*isi - 10*crosstalk + 5*thermalFactor
}

// SpotSizeNm returns the diffraction-limited spot diameter 0.61*lambda/NA
// in nanometers.
func SpotSizeNm(wavelengthNm, na float64) float64 {
	return 0.61 * wavelengthNm / na
}

// Baseline evaluates the thermal factor and baseline SNR for a channel
// parameter record. Every inference path goes through this one call so the
// recomputed baseline is identical everywhere.
func Baseline(rec channel.Record) (thermalFactor, snrDB float64) {
	tf := ThermalFactor(rec.ActivationEnergyEV, rec.TemperatureC)
	snr := SNR(float64(rec.LaserWavelengthNm), rec.NumericalAperture, rec.ISIFactor, rec.CrosstalkFactor, tf)
	return tf, snr
}
