// Package dataset generates synthetic channel measurement datasets and
// reads them back from CSV. Generation draws channel configurations from
// a sampling profile, computes the physics baseline for each, and layers
// the nonlinear measurement effects the residual model is expected to
// learn.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (r Range) valid() bool {
	return r.Min <= r.Max
}

// WavelengthClass describes one laser generation: its wavelength, the
// realistic numerical aperture band, and the nominal track pitch the
// format uses at that wavelength.
type WavelengthClass struct {
	WavelengthNm int     `json:"wavelength_nm" yaml:"wavelength_nm"`
	NA           Range   `json:"numerical_aperture" yaml:"numerical_aperture"`
	BasePitchNm  float64 `json:"base_pitch_nm" yaml:"base_pitch_nm"`
}

// MaterialClass describes one recording material and the property ranges
// it is sampled from. Weights are relative, not normalized.
type MaterialClass struct {
	Name         string  `json:"name" yaml:"name"`
	Weight       float64 `json:"weight" yaml:"weight"`
	Conductivity Range   `json:"thermal_conductivity_w_mk" yaml:"thermal_conductivity_w_mk"`
	Activation   Range   `json:"activation_energy_ev" yaml:"activation_energy_ev"`
}

// LayerChoice is one layer-count option with its relative weight.
type LayerChoice struct {
	Count  int     `json:"count" yaml:"count"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Profile holds the sampling distributions for dataset generation. The
// zero value is unusable; start from DefaultProfile or load one from a
// YAML or JSON file.
type Profile struct {
	Wavelengths          []WavelengthClass `json:"wavelengths" yaml:"wavelengths"`
	PitchJitter          Range             `json:"pitch_jitter" yaml:"pitch_jitter"`
	Layers               []LayerChoice     `json:"layers" yaml:"layers"`
	LayerSpacingNm       Range             `json:"layer_spacing_nm" yaml:"layer_spacing_nm"`
	SingleLayerSpacingNm float64           `json:"single_layer_spacing_nm" yaml:"single_layer_spacing_nm"`
	Materials            []MaterialClass   `json:"materials" yaml:"materials"`
	TemperatureC         Range             `json:"temperature_c" yaml:"temperature_c"`
	RelativeHumidity     Range             `json:"relative_humidity" yaml:"relative_humidity"`
	PRMLRate             float64           `json:"prml_rate" yaml:"prml_rate"`
	CTCRate              float64           `json:"ctc_rate" yaml:"ctc_rate"`
}

// DefaultProfile returns the sampling profile the shipped datasets were
// generated with: blue (405), red (650), and infrared (780) laser
// classes, three recording materials, and mild pitch manufacturing
// variation. Single-layer discs carry a 1e6 nm spacing sentinel meaning
// "no adjacent layer".
func DefaultProfile() Profile {
	return Profile{
		Wavelengths: []WavelengthClass{
			{WavelengthNm: 405, NA: Range{0.80, 0.95}, BasePitchNm: 225},
			{WavelengthNm: 650, NA: Range{0.60, 0.70}, BasePitchNm: 740},
			{WavelengthNm: 780, NA: Range{0.40, 0.55}, BasePitchNm: 1600},
		},
		PitchJitter: Range{0.9, 1.1},
		Layers: []LayerChoice{
			{Count: 1, Weight: 0.5},
			{Count: 2, Weight: 0.3},
			{Count: 3, Weight: 0.15},
			{Count: 4, Weight: 0.05},
		},
		LayerSpacingNm:       Range{15000, 30000},
		SingleLayerSpacingNm: 1e6,
		Materials: []MaterialClass{
			{Name: "GST_HTL", Weight: 0.5, Conductivity: Range{0.5, 1.5}, Activation: Range{1.8, 2.2}},
			{Name: "DYE_LTH", Weight: 0.3, Conductivity: Range{0.1, 0.4}, Activation: Range{0.8, 1.2}},
			{Name: "MDISC", Weight: 0.2, Conductivity: Range{1.2, 2.0}, Activation: Range{2.0, 2.5}},
		},
		TemperatureC:     Range{20, 80},
		RelativeHumidity: Range{10, 90},
		PRMLRate:         0.5,
		CTCRate:          0.5,
	}
}

// Validate checks that the profile can actually be sampled from.
func (p Profile) Validate() error {
	if len(p.Wavelengths) == 0 {
		return errors.New("profile: no wavelength classes")
	}
	for i, w := range p.Wavelengths {
		if w.WavelengthNm <= 0 {
			return fmt.Errorf("profile: wavelength class %d has non-positive wavelength", i)
		}
		if !w.NA.valid() || w.NA.Min <= 0 {
			return fmt.Errorf("profile: wavelength class %d has invalid NA range", i)
		}
		if w.BasePitchNm <= 0 {
			return fmt.Errorf("profile: wavelength class %d has non-positive base pitch", i)
		}
	}
	if !p.PitchJitter.valid() || p.PitchJitter.Min <= 0 {
		return errors.New("profile: invalid pitch jitter range")
	}
	if len(p.Layers) == 0 {
		return errors.New("profile: no layer choices")
	}
	for i, l := range p.Layers {
		if l.Count < 1 {
			return fmt.Errorf("profile: layer choice %d has count below 1", i)
		}
		if l.Weight <= 0 {
			return fmt.Errorf("profile: layer choice %d has non-positive weight", i)
		}
	}
	if !p.LayerSpacingNm.valid() || p.LayerSpacingNm.Min <= 0 {
		return errors.New("profile: invalid layer spacing range")
	}
	if p.SingleLayerSpacingNm <= 0 {
		return errors.New("profile: single layer spacing sentinel must be positive")
	}
	if len(p.Materials) == 0 {
		return errors.New("profile: no materials")
	}
	for i, m := range p.Materials {
		if m.Name == "" {
			return fmt.Errorf("profile: material %d has no name", i)
		}
		if m.Weight <= 0 {
			return fmt.Errorf("profile: material %q has non-positive weight", m.Name)
		}
		if !m.Conductivity.valid() || m.Conductivity.Min <= 0 {
			return fmt.Errorf("profile: material %q has invalid conductivity range", m.Name)
		}
		if !m.Activation.valid() || m.Activation.Min <= 0 {
			return fmt.Errorf("profile: material %q has invalid activation range", m.Name)
		}
	}
	if !p.TemperatureC.valid() || p.TemperatureC.Min <= -273.15 {
		return errors.New("profile: invalid temperature range")
	}
	if !p.RelativeHumidity.valid() || p.RelativeHumidity.Min < 0 || p.RelativeHumidity.Max > 100 {
		return errors.New("profile: invalid humidity range")
	}
	if p.PRMLRate < 0 || p.PRMLRate > 1 {
		return errors.New("profile: prml rate must be in [0, 1]")
	}
	if p.CTCRate < 0 || p.CTCRate > 1 {
		return errors.New("profile: ctc rate must be in [0, 1]")
	}
	return nil
}

// LoadProfile reads a sampling profile from a YAML or JSON file. Format
// is detected by extension (.yaml/.yml, .json) or by content when the
// extension is unknown.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p, err := parseProfile(data, filepath.Ext(path))
	if err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func parseProfile(data []byte, ext string) (Profile, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	var p Profile
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, &p); err != nil {
				return Profile{}, fmt.Errorf("parse profile json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile yaml: %w", err)
		}
	}
	return p, nil
}
