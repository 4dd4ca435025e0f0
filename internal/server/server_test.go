package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"osis/internal/channel"
	"osis/internal/feature"
	"osis/internal/hybrid"
	"osis/internal/physics"
	"osis/internal/residual"
)

// newTestServer builds a server around a constant-residual model, so
// every prediction returns residualDB exactly.
func newTestServer(t *testing.T, residualDB float64) *Server {
	t.Helper()
	schema := feature.Default()
	base := channel.Record{
		LaserWavelengthNm:      405,
		NumericalAperture:      0.85,
		SpotSizeNm:             290.47,
		TrackPitchNm:           225,
		LayerCount:             1,
		LayerSpacingNm:         20000,
		ISIFactor:              1.29,
		CrosstalkFactor:        1.14,
		RecordingMaterial:      channel.NameGSTHTL,
		ThermalConductivityWMK: 1.5,
		ActivationEnergyEV:     2.0,
		TemperatureC:           25,
		RelativeHumidity:       45,
		PRMLEnabled:            1,
		CTCEnabled:             1,
	}
	rows := make([][]float64, 8)
	target := make([]float64, 8)
	for i := range rows {
		rec := base
		rec.TemperatureC = 20 + float64(i)*7
		tf, snr := physics.Baseline(rec)
		vec, _, err := schema.Align(feature.Compute(rec, tf, snr), feature.Strict)
		if err != nil {
			t.Fatalf("Align: %v", err)
		}
		rows[i] = vec
		target[i] = residualDB
	}
	p := residual.DefaultParams()
	p.Trees = 3
	p.ValidationFraction = 0
	p.EarlyStopRounds = 0
	model, err := residual.Fit(rows, target, p)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	pred, err := hybrid.New(&residual.Artifact{
		SchemaVersion: residual.ArtifactSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		FeatureNames:  schema.Names(),
		Params:        p,
		Model:         model,
	})
	if err != nil {
		t.Fatalf("hybrid.New: %v", err)
	}
	return New(pred)
}

func validPayload() map[string]any {
	return map[string]any{
		"laser_wavelength_nm":       405,
		"numerical_aperture":        0.85,
		"spot_size_nm":              290.47,
		"track_pitch_nm":            225.0,
		"layer_count":               1,
		"layer_spacing_nm":          20000.0,
		"isi_factor":                1.29,
		"crosstalk_factor":          0.0,
		"recording_material":        "GST_HTL",
		"thermal_conductivity_w_mk": 1.5,
		"activation_energy_ev":      2.0,
		"temperature_c":             25.0,
		"relative_humidity":         45.0,
		"prml_enabled":              1,
		"ctc_enabled":               1,
	}
}

func postPredict(t *testing.T, s *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/predict_snr", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPredictEndpoint(t *testing.T) {
	s := newTestServer(t, 2.5)
	w := postPredict(t, s, validPayload())
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp struct {
		PhysicsSNRDB   float64 `json:"physics_snr_db"`
		MLResidualDB   float64 `json:"ml_residual_db"`
		PredictedSNRDB float64 `json:"predicted_snr_db"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Blu-ray reference geometry with zero crosstalk: 85 + 30*0.85
	// - 0.02*405 - 15*1.29, thermal term vanishing. Rounded to cents.
	if resp.PhysicsSNRDB != 83.05 {
		t.Errorf("physics_snr_db = %v, want 83.05", resp.PhysicsSNRDB)
	}
	if resp.MLResidualDB != 2.5 {
		t.Errorf("ml_residual_db = %v, want 2.5", resp.MLResidualDB)
	}
	if resp.PredictedSNRDB != 85.55 {
		t.Errorf("predicted_snr_db = %v, want 85.55", resp.PredictedSNRDB)
	}
}

func TestPredictIgnoresExtraFields(t *testing.T) {
	s := newTestServer(t, 0)
	payload := validPayload()
	payload["firmware_revision"] = "2.4.1"
	if w := postPredict(t, s, payload); w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestPredictUnknownMaterial(t *testing.T) {
	s := newTestServer(t, 0)
	payload := validPayload()
	payload["recording_material"] = "UNOBTAINIUM"
	if w := postPredict(t, s, payload); w.Code != http.StatusOK {
		t.Fatalf("unknown material rejected: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestPredictMissingField(t *testing.T) {
	s := newTestServer(t, 0)
	payload := validPayload()
	delete(payload, "crosstalk_factor")
	w := postPredict(t, s, payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(resp["error"], "crosstalk_factor") {
		t.Errorf("error %q does not name the missing field", resp["error"])
	}
}

func TestPredictMalformedJSON(t *testing.T) {
	s := newTestServer(t, 0)
	if w := postPredict(t, s, "{not json"); w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPredictWrongFieldType(t *testing.T) {
	s := newTestServer(t, 0)
	payload := validPayload()
	payload["numerical_aperture"] = "high"
	w := postPredict(t, s, payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPredictInvalidValues(t *testing.T) {
	s := newTestServer(t, 0)
	payload := validPayload()
	payload["numerical_aperture"] = -0.5
	w := postPredict(t, s, payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(resp["error"], "numerical_aperture") {
		t.Errorf("error %q does not name the bad field", resp["error"])
	}
}

func TestPredictStrictFeatureDrift(t *testing.T) {
	// An artifact expecting a feature the transform never produces, served
	// strictly, must fail the request rather than zero-fill.
	names := append(feature.Names(), "servo_gain_margin")
	pred, err := hybrid.New(&residual.Artifact{
		SchemaVersion: residual.ArtifactSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		FeatureNames:  names,
		Params:        residual.DefaultParams(),
		Model: &residual.Model{
			LearningRate: 0.05,
			NumFeatures:  len(names),
		},
	}, hybrid.WithStrictFeatures())
	if err != nil {
		t.Fatalf("hybrid.New: %v", err)
	}
	s := New(pred)

	w := postPredict(t, s, validPayload())
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(resp["error"], "servo_gain_margin") {
		t.Errorf("error %q does not name the missing feature", resp["error"])
	}
}

func TestPredictMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/predict_snr", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 0)
	postPredict(t, s, validPayload())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "osis_predict_requests_total") {
		t.Error("metrics output is missing the request counter")
	}
	if !strings.Contains(body, `code="200"`) {
		t.Error("request counter has no 200 sample")
	}
}

func TestIndexAndStaticPages(t *testing.T) {
	s := newTestServer(t, 0)
	for _, path := range []string{"/", "/static/index.html"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "OSIS Hybrid SNR Predictor") {
			t.Errorf("GET %s: page is missing the title", path)
		}
	}
}
