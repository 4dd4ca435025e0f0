package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"osis/internal/channel"
	"osis/internal/hybrid"
)

var predictFlags struct {
	model string
	input string
	rec   channel.Record
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one channel configuration",
	Long: `Reads channel parameters from a file (--input, - for stdin) or from the
parameter flags, which default to the Blu-ray reference configuration.
A non-empty --input overrides the parameter flags. The command recomputes
the physics baseline and prints the hybrid SNR prediction.`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.model, "model", "osis_model.json", "Model artifact path")
	f.StringVar(&predictFlags.input, "input", "", "Channel parameters file (JSON or YAML, - for stdin)")

	rec := &predictFlags.rec
	f.IntVar(&rec.LaserWavelengthNm, "wavelength", 405, "Laser wavelength in nm")
	f.Float64Var(&rec.NumericalAperture, "na", 0.85, "Numerical aperture")
	f.Float64Var(&rec.SpotSizeNm, "spot-size", 290.47, "Spot size in nm")
	f.Float64Var(&rec.TrackPitchNm, "track-pitch", 225, "Track pitch in nm")
	f.IntVar(&rec.LayerCount, "layers", 1, "Layer count")
	f.Float64Var(&rec.LayerSpacingNm, "layer-spacing", 20000, "Layer spacing in nm")
	f.Float64Var(&rec.ISIFactor, "isi", 1.29, "Inter-symbol interference factor")
	f.Float64Var(&rec.CrosstalkFactor, "crosstalk", 0, "Crosstalk factor")
	f.StringVar(&rec.RecordingMaterial, "material", channel.NameGSTHTL, "Recording material (GST_HTL, DYE_LTH, MDISC)")
	f.Float64Var(&rec.ThermalConductivityWMK, "conductivity", 1.5, "Thermal conductivity in W/mK")
	f.Float64Var(&rec.ActivationEnergyEV, "activation-energy", 2.0, "Activation energy in eV")
	f.Float64Var(&rec.TemperatureC, "temperature", 25, "Operating temperature in degrees C")
	f.Float64Var(&rec.RelativeHumidity, "humidity", 45, "Relative humidity in percent")
	f.IntVar(&rec.PRMLEnabled, "prml", 1, "PRML signal processing (0 or 1)")
	f.IntVar(&rec.CTCEnabled, "ctc", 1, "Cross-talk cancellation (0 or 1)")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	pred, err := hybrid.Load(predictFlags.model)
	if err != nil {
		return err
	}
	rec := predictFlags.rec
	if predictFlags.input != "" {
		rec, err = readRecord(cmd, predictFlags.input)
		if err != nil {
			return err
		}
	}
	p, err := pred.Predict(rec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Physics Baseline: %.2f dB\n", p.PhysicsSNR)
	fmt.Fprintf(out, "ML Residual: %.2f dB\n", p.Residual)
	fmt.Fprintf(out, "Predicted SNR: %.2f dB\n", p.FinalSNR)
	return nil
}

// readRecord loads channel parameters from path. JSON is detected by
// content so piped input works regardless of extension.
func readRecord(cmd *cobra.Command, path string) (channel.Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return channel.Record{}, fmt.Errorf("read input: %w", err)
	}

	var rec channel.Record
	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		err = yaml.Unmarshal(data, &rec)
	case json.Valid(data):
		err = json.Unmarshal(data, &rec)
	default:
		err = yaml.Unmarshal(data, &rec)
	}
	if err != nil {
		return channel.Record{}, fmt.Errorf("parse input: %w", err)
	}
	return rec, nil
}
