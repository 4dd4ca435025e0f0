// Package feature turns channel parameter records into the named feature
// values the residual model consumes, and aligns those values into dense
// vectors laid out by a persisted feature schema.
package feature

import "osis/internal/channel"

// trainingOrder is the canonical feature order used when fitting a new
// model. Artifacts persist the order they were trained with, and
// inference aligns to whatever order the artifact carries, so changing
// this list never invalidates existing artifacts.
var trainingOrder = []string{
	"laser_wavelength_nm",
	"numerical_aperture",
	"track_pitch_nm",
	"layer_count",
	"layer_spacing_nm",
	"temperature_c",
	"relative_humidity",
	"prml_enabled",
	"ctc_enabled",
	"thermal_conductivity_w_mk",
	"activation_energy_ev",
	"spot_size_nm",
	"isi_factor",
	"crosstalk_factor",
	"thermal_factor",
	"physics_snr_db",
	"NA_sq",
	"wavelength_div_NA",
	"spot_div_pitch",
	"temp_x_humidity",
	"recording_material_GST_HTL",
	"recording_material_MDISC",
}

// Names returns a copy of the canonical training-order feature names.
func Names() []string {
	out := make([]string, len(trainingOrder))
	copy(out, trainingOrder)
	return out
}

// Compute derives the named feature map for a record. The thermal factor
// and physics baseline are passed in rather than recomputed: training
// feeds the stored dataset columns while inference feeds freshly computed
// values, and both paths share this transform.
//
// Material encoding keeps DYE_LTH as the implicit reference category.
// Unknown materials also encode as (0, 0).
func Compute(rec channel.Record, thermalFactor, physicsSNR float64) map[string]float64 {
	mat := rec.Material()
	return map[string]float64{
		"laser_wavelength_nm":        float64(rec.LaserWavelengthNm),
		"numerical_aperture":         rec.NumericalAperture,
		"track_pitch_nm":             rec.TrackPitchNm,
		"layer_count":                float64(rec.LayerCount),
		"layer_spacing_nm":           rec.LayerSpacingNm,
		"temperature_c":              rec.TemperatureC,
		"relative_humidity":          rec.RelativeHumidity,
		"prml_enabled":               float64(rec.PRMLEnabled),
		"ctc_enabled":                float64(rec.CTCEnabled),
		"thermal_conductivity_w_mk":  rec.ThermalConductivityWMK,
		"activation_energy_ev":       rec.ActivationEnergyEV,
		"spot_size_nm":               rec.SpotSizeNm,
		"isi_factor":                 rec.ISIFactor,
		"crosstalk_factor":           rec.CrosstalkFactor,
		"thermal_factor":             thermalFactor,
		"physics_snr_db":             physicsSNR,
		"NA_sq":                      rec.NumericalAperture * rec.NumericalAperture,
		"wavelength_div_NA":          float64(rec.LaserWavelengthNm) / rec.NumericalAperture,
		"spot_div_pitch":             rec.SpotSizeNm / rec.TrackPitchNm,
		"temp_x_humidity":            rec.TemperatureC * rec.RelativeHumidity,
		"recording_material_GST_HTL": indicator(mat == channel.MaterialGSTHTL),
		"recording_material_MDISC":   indicator(mat == channel.MaterialMDISC),
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
