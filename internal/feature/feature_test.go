package feature

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"osis/internal/channel"
)

func testRecord() channel.Record {
	return channel.Record{
		LaserWavelengthNm:      405,
		NumericalAperture:      0.85,
		SpotSizeNm:             290.47,
		TrackPitchNm:           225,
		LayerCount:             1,
		LayerSpacingNm:         20000,
		ISIFactor:              1.29,
		CrosstalkFactor:        0,
		RecordingMaterial:      channel.NameGSTHTL,
		ThermalConductivityWMK: 1.5,
		ActivationEnergyEV:     2.0,
		TemperatureC:           25,
		RelativeHumidity:       45,
		PRMLEnabled:            1,
		CTCEnabled:             1,
	}
}

func TestNamesOrder(t *testing.T) {
	want := []string{
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
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("canonical feature order changed (-want +got):\n%s", diff)
	}
}

func TestComputeValues(t *testing.T) {
	rec := testRecord()
	feats := Compute(rec, 1.5e-34, 83.05)

	if len(feats) != len(Names()) {
		t.Fatalf("Compute produced %d features, want %d", len(feats), len(Names()))
	}
	for _, name := range Names() {
		if _, ok := feats[name]; !ok {
			t.Errorf("Compute missing feature %q", name)
		}
	}

	checks := map[string]float64{
		"laser_wavelength_nm": 405,
		"layer_count":         1,
		"prml_enabled":        1,
		"thermal_factor":      1.5e-34,
		"physics_snr_db":      83.05,
		"NA_sq":               0.85 * 0.85,
		"wavelength_div_NA":   405.0 / 0.85,
		"spot_div_pitch":      290.47 / 225.0,
		"temp_x_humidity":     25 * 45,
	}
	for name, want := range checks {
		if got := feats[name]; math.Abs(got-want) > 1e-12 {
			t.Errorf("feature %s = %g, want %g", name, got, want)
		}
	}
}

func TestMaterialEncoding(t *testing.T) {
	tests := []struct {
		material string
		gst      float64
		mdisc    float64
	}{
		{channel.NameGSTHTL, 1, 0},
		{channel.NameMDISC, 0, 1},
		{channel.NameDYELTH, 0, 0},
		{"UNOBTAINIUM", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			rec := testRecord()
			rec.RecordingMaterial = tt.material
			feats := Compute(rec, 0, 0)
			if feats["recording_material_GST_HTL"] != tt.gst {
				t.Errorf("GST_HTL indicator = %v, want %v", feats["recording_material_GST_HTL"], tt.gst)
			}
			if feats["recording_material_MDISC"] != tt.mdisc {
				t.Errorf("MDISC indicator = %v, want %v", feats["recording_material_MDISC"], tt.mdisc)
			}
		})
	}
}

func TestSchemaAlign(t *testing.T) {
	s := Default()
	feats := Compute(testRecord(), 0, 83.05)

	vec, filled, err := s.Align(feats, Strict)
	if err != nil {
		t.Fatalf("strict align of a complete map failed: %v", err)
	}
	if filled != 0 {
		t.Errorf("filled = %d, want 0", filled)
	}
	if len(vec) != s.Len() {
		t.Fatalf("vector width %d, want %d", len(vec), s.Len())
	}

	// Vector layout follows schema order.
	names := s.Names()
	for i, name := range names {
		if vec[i] != feats[name] {
			t.Errorf("vec[%d] = %g, want %s = %g", i, vec[i], name, feats[name])
		}
	}
}

func TestSchemaAlignLenientFillsZero(t *testing.T) {
	s, err := NewSchema([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	vec, filled, err := s.Align(map[string]float64{"a": 1, "c": 3}, Lenient)
	if err != nil {
		t.Fatalf("lenient align failed: %v", err)
	}
	if filled != 1 {
		t.Errorf("filled = %d, want 1", filled)
	}
	want := []float64{1, 0, 3}
	if diff := cmp.Diff(want, vec); diff != "" {
		t.Errorf("vector (-want +got):\n%s", diff)
	}
}

func TestSchemaAlignStrictRejectsMissing(t *testing.T) {
	s, err := NewSchema([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = s.Align(map[string]float64{"b": 2}, Strict)
	if !errors.Is(err, ErrMissingFeatures) {
		t.Fatalf("error = %v, want ErrMissingFeatures", err)
	}
	// Gaps are named in schema order.
	if !strings.Contains(err.Error(), "a, c") {
		t.Errorf("error %q does not list missing names in order", err)
	}
}

func TestSchemaAlignDropsExtras(t *testing.T) {
	s, err := NewSchema([]string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	vec, filled, err := s.Align(map[string]float64{"a": 7, "stray": 99}, Strict)
	if err != nil {
		t.Fatalf("align failed: %v", err)
	}
	if filled != 0 || len(vec) != 1 || vec[0] != 7 {
		t.Errorf("vec = %v filled = %d, want [7] 0", vec, filled)
	}
}

func TestSchemaOrderGovernsLayout(t *testing.T) {
	values := map[string]float64{"x": 1, "y": 2}

	fwd, _ := NewSchema([]string{"x", "y"})
	rev, _ := NewSchema([]string{"y", "x"})

	a, _, err := fwd.Align(values, Strict)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := rev.Align(values, Strict)
	if err != nil {
		t.Fatal(err)
	}
	if a[0] != b[1] || a[1] != b[0] {
		t.Errorf("schema order not honored: %v vs %v", a, b)
	}
}

func TestNewSchemaRejectsBadLists(t *testing.T) {
	if _, err := NewSchema(nil); err == nil {
		t.Error("empty list accepted")
	}
	if _, err := NewSchema([]string{"a", ""}); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := NewSchema([]string{"a", "a"}); err == nil {
		t.Error("duplicate name accepted")
	}
}
