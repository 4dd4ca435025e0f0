package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("osis %s: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

// TestPipeline_GenerateTrainVerifyPredict drives the whole CLI surface
// against a small dataset: generate, train, verify, predict, inspect,
// and the runs registry.
func TestPipeline_GenerateTrainVerifyPredict(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.csv")
	modelPath := filepath.Join(dir, "model.json")
	dbPath := filepath.Join(dir, "runs.db")

	// --- dataset generate ---
	out := runCLI(t, "dataset", "generate",
		"--samples", "400", "--seed", "42", "--out", dataPath)
	if !strings.Contains(out, "created successfully with 400 samples.") {
		t.Fatalf("generate output:\n%s", out)
	}
	if _, err := os.Stat(dataPath); err != nil {
		t.Fatalf("dataset not written: %v", err)
	}

	// --- train ---
	out = runCLI(t, "train",
		"--data", dataPath, "--out", modelPath, "--db", dbPath, "--trees", "80")
	if !strings.Contains(out, "Model Evaluation Metrics (Hybrid Physics + ML):") {
		t.Fatalf("train output missing metrics block:\n%s", out)
	}
	if !strings.Contains(out, "Target Accuracy") {
		t.Fatalf("train output missing accuracy banner:\n%s", out)
	}
	if _, err := os.Stat(modelPath); err != nil {
		t.Fatalf("model not written: %v", err)
	}

	// --- verify ---
	out = runCLI(t, "verify",
		"--model", modelPath, "--data", dataPath, "--parallel", "2")
	if !strings.Contains(out, "Hybrid Model Evaluation Metrics:") {
		t.Fatalf("verify output missing metrics block:\n%s", out)
	}
	if !strings.Contains(out, "Status:") {
		t.Fatalf("verify output missing status line:\n%s", out)
	}

	// --- predict, parameter flags only ---
	// The flag defaults are the reference configuration, so this mirrors
	// scoring the canonical Blu-ray record.
	out = runCLI(t, "predict", "--model", modelPath)
	if !strings.Contains(out, "Physics Baseline: 83.05 dB") {
		t.Errorf("flag-default predict baseline off:\n%s", out)
	}

	// --- predict, record file ---
	inputPath := filepath.Join(dir, "input.json")
	input := `{
		"laser_wavelength_nm": 405,
		"numerical_aperture": 0.85,
		"spot_size_nm": 290.47,
		"track_pitch_nm": 225,
		"layer_count": 1,
		"layer_spacing_nm": 20000,
		"isi_factor": 1.29,
		"crosstalk_factor": 0.0,
		"recording_material": "GST_HTL",
		"thermal_conductivity_w_mk": 1.5,
		"activation_energy_ev": 2.0,
		"temperature_c": 25,
		"relative_humidity": 45,
		"prml_enabled": 1,
		"ctc_enabled": 1
	}`
	if err := os.WriteFile(inputPath, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}
	out = runCLI(t, "predict", "--model", modelPath, "--input", inputPath)
	for _, want := range []string{"Physics Baseline:", "ML Residual:", "Predicted SNR:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("predict output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Physics Baseline: 83.05 dB") {
		t.Errorf("predict baseline off:\n%s", out)
	}

	// --- model inspect ---
	out = runCLI(t, "model", "inspect", "--model", modelPath)
	if !strings.Contains(out, "Importance") || !strings.Contains(out, "TOTAL") {
		t.Fatalf("inspect output missing importance table:\n%s", out)
	}

	// --- runs list ---
	out = runCLI(t, "runs", "list", "--db", dbPath)
	if strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("training run was not recorded:\n%s", out)
	}
	if !strings.Contains(out, "R²") {
		t.Fatalf("runs table missing header:\n%s", out)
	}
}

func TestPredictRejectsMissingModel(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.json")
	if err := os.WriteFile(inputPath, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"predict",
		"--model", filepath.Join(dir, "missing.json"), "--input", inputPath})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("predict with a missing model succeeded")
	}
}
