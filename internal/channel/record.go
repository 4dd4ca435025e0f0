// Package channel defines the optical channel parameter record shared by
// every pipeline stage, from dataset generation through training to the
// serving boundary.
package channel

import (
	"errors"
	"fmt"
	"strings"
)

// Material identifies the recording layer material system.
type Material int

const (
	// MaterialOther covers unrecognized material names. Records with an
	// unknown material remain predictable; they share the reference
	// encoding with DYE_LTH, with both indicator features zero.
	MaterialOther Material = iota
	MaterialGSTHTL
	MaterialDYELTH
	MaterialMDISC
)

// Canonical material names as they appear on the wire and in CSV files.
const (
	NameGSTHTL = "GST_HTL"
	NameDYELTH = "DYE_LTH"
	NameMDISC  = "MDISC"
)

// ParseMaterial maps a material name to its enum value. Unrecognized
// names return MaterialOther; an unknown material is a defined fallback,
// not an error.
func ParseMaterial(name string) Material {
	switch name {
	case NameGSTHTL:
		return MaterialGSTHTL
	case NameDYELTH:
		return MaterialDYELTH
	case NameMDISC:
		return MaterialMDISC
	default:
		return MaterialOther
	}
}

func (m Material) String() string {
	switch m {
	case MaterialGSTHTL:
		return NameGSTHTL
	case MaterialDYELTH:
		return NameDYELTH
	case MaterialMDISC:
		return NameMDISC
	default:
		return "other"
	}
}

// Record holds the channel parameters for one disc configuration. Field
// names follow the wire contract; the same tags drive JSON requests,
// YAML profiles, and the CSV header.
type Record struct {
	LaserWavelengthNm      int     `json:"laser_wavelength_nm" yaml:"laser_wavelength_nm"`
	NumericalAperture      float64 `json:"numerical_aperture" yaml:"numerical_aperture"`
	SpotSizeNm             float64 `json:"spot_size_nm" yaml:"spot_size_nm"`
	TrackPitchNm           float64 `json:"track_pitch_nm" yaml:"track_pitch_nm"`
	LayerCount             int     `json:"layer_count" yaml:"layer_count"`
	LayerSpacingNm         float64 `json:"layer_spacing_nm" yaml:"layer_spacing_nm"`
	ISIFactor              float64 `json:"isi_factor" yaml:"isi_factor"`
	CrosstalkFactor        float64 `json:"crosstalk_factor" yaml:"crosstalk_factor"`
	RecordingMaterial      string  `json:"recording_material" yaml:"recording_material"`
	ThermalConductivityWMK float64 `json:"thermal_conductivity_w_mk" yaml:"thermal_conductivity_w_mk"`
	ActivationEnergyEV     float64 `json:"activation_energy_ev" yaml:"activation_energy_ev"`
	TemperatureC           float64 `json:"temperature_c" yaml:"temperature_c"`
	RelativeHumidity       float64 `json:"relative_humidity" yaml:"relative_humidity"`
	PRMLEnabled            int     `json:"prml_enabled" yaml:"prml_enabled"`
	CTCEnabled             int     `json:"ctc_enabled" yaml:"ctc_enabled"`
}

// FieldNames returns the wire names of all record fields in canonical
// order. The serving boundary uses the list to detect missing request
// fields and the dataset package derives its CSV header from it.
func FieldNames() []string {
	return []string{
		"laser_wavelength_nm",
		"numerical_aperture",
		"spot_size_nm",
		"track_pitch_nm",
		"layer_count",
		"layer_spacing_nm",
		"isi_factor",
		"crosstalk_factor",
		"recording_material",
		"thermal_conductivity_w_mk",
		"activation_energy_ev",
		"temperature_c",
		"relative_humidity",
		"prml_enabled",
		"ctc_enabled",
	}
}

// Material returns the parsed material enum for the record.
func (r Record) Material() Material {
	return ParseMaterial(r.RecordingMaterial)
}

// ErrValidation marks a record whose parameters fail structural checks.
var ErrValidation = errors.New("invalid channel parameters")

// Validate checks structural soundness. It rejects values that break the
// downstream math, such as non-positive geometry or temperatures at or
// below absolute zero. The crosstalk factor has no upper bound: tight
// blue-laser geometries push the exponential above 1. Material names are
// never rejected; unknown names fall back to MaterialOther.
func (r Record) Validate() error {
	var bad []string
	if r.LaserWavelengthNm <= 0 {
		bad = append(bad, "laser_wavelength_nm must be positive")
	}
	if r.NumericalAperture <= 0 {
		bad = append(bad, "numerical_aperture must be positive")
	}
	if r.SpotSizeNm <= 0 {
		bad = append(bad, "spot_size_nm must be positive")
	}
	if r.TrackPitchNm <= 0 {
		bad = append(bad, "track_pitch_nm must be positive")
	}
	if r.LayerCount < 1 {
		bad = append(bad, "layer_count must be at least 1")
	}
	if r.LayerSpacingNm <= 0 {
		bad = append(bad, "layer_spacing_nm must be positive")
	}
	if r.ISIFactor < 0 {
		bad = append(bad, "isi_factor must not be negative")
	}
	if r.CrosstalkFactor < 0 {
		bad = append(bad, "crosstalk_factor must not be negative")
	}
	if r.ThermalConductivityWMK <= 0 {
		bad = append(bad, "thermal_conductivity_w_mk must be positive")
	}
	if r.ActivationEnergyEV <= 0 {
		bad = append(bad, "activation_energy_ev must be positive")
	}
	if r.TemperatureC <= -273.15 {
		bad = append(bad, "temperature_c must be above absolute zero")
	}
	if r.RelativeHumidity < 0 || r.RelativeHumidity > 100 {
		bad = append(bad, "relative_humidity must be between 0 and 100")
	}
	if r.PRMLEnabled != 0 && r.PRMLEnabled != 1 {
		bad = append(bad, "prml_enabled must be 0 or 1")
	}
	if r.CTCEnabled != 0 && r.CTCEnabled != 1 {
		bad = append(bad, "ctc_enabled must be 0 or 1")
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(bad, "; "))
	}
	return nil
}
