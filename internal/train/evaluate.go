package train

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Evaluate scores final-SNR predictions against measured values. The R²
// metric passes when it exceeds targetR2; the threshold is advisory and
// never aborts anything. RMSE and MAE are reported without a gate.
func Evaluate(predicted, measured []float64, targetR2 float64) (MetricSet, error) {
	if len(predicted) != len(measured) {
		return MetricSet{}, fmt.Errorf("evaluate: %d predictions but %d measurements", len(predicted), len(measured))
	}
	if len(predicted) == 0 {
		return MetricSet{}, fmt.Errorf("evaluate: no samples")
	}

	r2 := stat.RSquaredFrom(predicted, measured, nil)

	var sq, abs float64
	for i := range predicted {
		d := predicted[i] - measured[i]
		sq += d * d
		abs += math.Abs(d)
	}
	n := float64(len(predicted))
	rmse := math.Sqrt(sq / n)
	mae := abs / n

	return MetricSet{Metrics: []Metric{
		{
			ID:        "R2",
			Name:      "R² Score",
			Value:     r2,
			Threshold: targetR2,
			Pass:      r2 > targetR2,
			Detail:    fmt.Sprintf("%d samples", len(predicted)),
		},
		{
			ID:     "RMSE",
			Name:   "Root Mean Squared Error (RMSE)",
			Value:  rmse,
			Pass:   true,
			Detail: "dB",
		},
		{
			ID:     "MAE",
			Name:   "Mean Absolute Error (MAE)",
			Value:  mae,
			Pass:   true,
			Detail: "dB",
		},
	}}, nil
}
