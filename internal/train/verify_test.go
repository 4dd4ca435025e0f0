package train

import (
	"context"
	"errors"
	"testing"

	"osis/internal/channel"
	"osis/internal/dataset"
	"osis/internal/hybrid"
)

func TestVerify(t *testing.T) {
	rows := generateRows(t, 800, 7)
	cfg := DefaultConfig()
	cfg.Params.Trees = 120
	res, err := Run(cfg, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	pred, err := hybrid.New(res.Artifact)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("scores the full dataset", func(t *testing.T) {
		metrics, err := Verify(context.Background(), pred, rows, 4, 0.99)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		r2, ok := metrics.ByID("R2")
		if !ok {
			t.Fatal("no R2 metric")
		}
		// Replaying the training rows through the recomputed baseline
		// should score at least as well as the held-out evaluation.
		if r2.Value < 0.8 {
			t.Errorf("full-dataset R² = %v, want at least 0.8", r2.Value)
		}
		if r2.Threshold != 0.99 {
			t.Errorf("R² threshold = %v, want 0.99", r2.Threshold)
		}
	})

	t.Run("worker count does not change the score", func(t *testing.T) {
		serial, err := Verify(context.Background(), pred, rows, 1, 0.99)
		if err != nil {
			t.Fatalf("Verify(parallel=1): %v", err)
		}
		wide, err := Verify(context.Background(), pred, rows, 8, 0.99)
		if err != nil {
			t.Fatalf("Verify(parallel=8): %v", err)
		}
		a, _ := serial.ByID("R2")
		b, _ := wide.ByID("R2")
		if a.Value != b.Value {
			t.Errorf("R² differs across worker counts: %v vs %v", a.Value, b.Value)
		}
	})

	t.Run("propagates row errors", func(t *testing.T) {
		broken := append([]dataset.Row{}, rows...)
		broken[3].NumericalAperture = -1
		_, err := Verify(context.Background(), pred, broken, 4, 0.99)
		if !errors.Is(err, channel.ErrValidation) {
			t.Fatalf("Verify error = %v, want ErrValidation", err)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Verify(ctx, pred, rows, 4, 0.99); !errors.Is(err, context.Canceled) {
			t.Fatalf("Verify error = %v, want context.Canceled", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := Verify(context.Background(), pred, nil, 4, 0.99); err == nil {
			t.Error("Verify accepted an empty dataset")
		}
	})
}
