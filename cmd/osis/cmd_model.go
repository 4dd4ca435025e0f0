package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"osis/internal/format"
	"osis/internal/residual"
)

var modelInspectFlags struct {
	model  string
	format string
	top    int
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model artifact utilities",
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show artifact metadata and feature importances",
	RunE:  runModelInspect,
}

func init() {
	f := modelInspectCmd.Flags()
	f.StringVar(&modelInspectFlags.model, "model", "osis_model.json", "Model artifact path")
	f.StringVar(&modelInspectFlags.format, "format", "ascii", "Table format (ascii, markdown)")
	f.IntVar(&modelInspectFlags.top, "top", 0, "Show only the N most important features (0 = all)")
	modelCmd.AddCommand(modelInspectCmd)
}

func runModelInspect(cmd *cobra.Command, _ []string) error {
	mode, err := format.ParseMode(modelInspectFlags.format)
	if err != nil {
		return err
	}
	art, err := residual.Load(modelInspectFlags.model)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Artifact: %s (schema v%d)\n", modelInspectFlags.model, art.SchemaVersion)
	fmt.Fprintf(out, "Created:  %s\n", art.CreatedAt.Format(time.RFC3339))
	if art.DatasetPath != "" {
		fmt.Fprintf(out, "Dataset:  %s (%s samples)\n", art.DatasetPath, format.FmtCount(art.Samples))
	}
	fmt.Fprintf(out, "Model:    %d trees, learning rate %g, max depth %d, %d features\n",
		len(art.Model.Trees), art.Model.LearningRate, art.Params.MaxDepth, art.Model.NumFeatures)
	if r2, ok := art.Metrics["R2"]; ok {
		fmt.Fprintf(out, "Test R²:  %.5f", r2)
		if rmse, ok := art.Metrics["RMSE"]; ok {
			fmt.Fprintf(out, "  RMSE: %.4f dB", rmse)
		}
		if mae, ok := art.Metrics["MAE"]; ok {
			fmt.Fprintf(out, "  MAE: %.4f dB", mae)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)

	if art.Model.Importances == nil {
		fmt.Fprintln(out, "No feature importances recorded.")
		return nil
	}

	type entry struct {
		name  string
		score float64
	}
	entries := make([]entry, len(art.FeatureNames))
	for i, name := range art.FeatureNames {
		entries[i] = entry{name: name, score: art.Model.Importances[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })
	if n := modelInspectFlags.top; n > 0 && n < len(entries) {
		entries = entries[:n]
	}

	var total float64
	tbl := format.NewTable(mode)
	tbl.Header("Rank", "Feature", "Importance")
	tbl.RightAlign(1, 3)
	for i, e := range entries {
		tbl.Row(i+1, e.name, fmt.Sprintf("%.4f", e.score))
		total += e.score
	}
	tbl.Footer("", "TOTAL", fmt.Sprintf("%.4f", total))
	fmt.Fprintln(out, tbl.String())
	return nil
}
