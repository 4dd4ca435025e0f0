package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"osis/internal/dataset"
	"osis/internal/hybrid"
	"osis/internal/train"
)

var verifyFlags struct {
	model    string
	data     string
	parallel int
	targetR2 float64
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay a dataset through the serving path and score the model",
	Long: `Loads a model artifact, recomputes the physics baseline for every dataset
row exactly as the HTTP service does, and scores the hybrid prediction
against the measured SNR column.`,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.model, "model", "osis_model.json", "Model artifact path")
	f.StringVar(&verifyFlags.data, "data", "osis_dataset.csv", "Dataset CSV to replay")
	f.IntVar(&verifyFlags.parallel, "parallel", 1, "Number of parallel workers (1 = serial)")
	f.Float64Var(&verifyFlags.targetR2, "target-r2", 0.99, "R² target for the EXCELLENT status")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	pred, err := hybrid.Load(verifyFlags.model)
	if err != nil {
		return err
	}
	rows, err := dataset.ReadFile(verifyFlags.data)
	if err != nil {
		return err
	}

	metrics, err := train.Verify(cmd.Context(), pred, rows, verifyFlags.parallel, verifyFlags.targetR2)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, metrics.Report("Hybrid Model Evaluation Metrics:"))
	if r2, ok := metrics.ByID("R2"); ok && r2.Pass {
		fmt.Fprintf(out, "✅ Status: EXCELLENT (Target > %.2f met)\n", verifyFlags.targetR2)
	} else {
		fmt.Fprintln(out, "⚠️ Status: NEEDS IMPROVEMENT")
	}
	return nil
}
