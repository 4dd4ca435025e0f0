package train

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"osis/internal/dataset"
	"osis/internal/hybrid"
)

// Verify replays every row through the full serving path, recomputing the
// physics baseline instead of trusting the stored column, and scores the
// reconstructed SNR against the measurement. This is the whole-pipeline
// check: it exercises validation, feature alignment and the model exactly
// as the HTTP handler does.
func Verify(ctx context.Context, pred *hybrid.Predictor, rows []dataset.Row, parallel int, targetR2 float64) (MetricSet, error) {
	if len(rows) == 0 {
		return MetricSet{}, fmt.Errorf("verify: no rows")
	}
	if parallel < 1 {
		parallel = 1
	}

	predicted := make([]float64, len(rows))
	measured := make([]float64, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range rows {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			p, err := pred.Predict(rows[i].Record)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			predicted[i] = p.FinalSNR
			measured[i] = rows[i].MeasuredSNRDB
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MetricSet{}, fmt.Errorf("verify: %w", err)
	}

	return Evaluate(predicted, measured, targetR2)
}
