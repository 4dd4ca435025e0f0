package train

import (
	"errors"
	"fmt"
	"time"

	"osis/internal/dataset"
	"osis/internal/feature"
	"osis/internal/logging"
	"osis/internal/residual"
)

// Config holds everything a training run needs besides the rows.
type Config struct {
	DatasetPath  string
	Params       residual.Params
	TestFraction float64
	SplitSeed    int64
	TargetR2     float64
}

// DefaultConfig mirrors the split and target the production model was
// trained with.
func DefaultConfig() Config {
	return Config{
		Params:       residual.DefaultParams(),
		TestFraction: 0.2,
		SplitSeed:    42,
		TargetR2:     0.95,
	}
}

// Result is one completed training run.
type Result struct {
	Artifact     *residual.Artifact
	Metrics      MetricSet
	TrainSamples int
	TestSamples  int
	Duration     time.Duration
}

// Run fits a residual model and evaluates it on the held-back test split.
//
// The residual target is measured minus the stored baseline, and the
// feature matrix uses the stored physics and thermal columns rather than
// recomputed values, so the model learns against exactly the data the
// measurements were taken with. Evaluation reconstructs final SNR as
// stored baseline plus predicted residual and compares that against the
// measurement. A test R² at or below the target is reported, never fatal.
func Run(cfg Config, rows []dataset.Row) (*Result, error) {
	if len(rows) < 2 {
		return nil, errors.New("train: need at least 2 rows")
	}
	log := logging.New("train")

	schema := feature.Default()
	matrix := make([][]float64, len(rows))
	target := make([]float64, len(rows))
	for i, row := range rows {
		feats := feature.Compute(row.Record, row.ThermalFactor, row.PhysicsSNRDB)
		vec, _, err := schema.Align(feats, feature.Strict)
		if err != nil {
			return nil, fmt.Errorf("train: row %d: %w", i, err)
		}
		matrix[i] = vec
		target[i] = row.MeasuredSNRDB - row.PhysicsSNRDB
	}

	trainIdx, testIdx, err := Split(len(rows), cfg.TestFraction, cfg.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for k, i := range trainIdx {
		trainX[k] = matrix[i]
		trainY[k] = target[i]
	}

	log.Info("fitting residual model",
		"samples", len(trainIdx), "features", schema.Len(), "trees", cfg.Params.Trees)
	started := time.Now()
	model, err := residual.Fit(trainX, trainY, cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	elapsed := time.Since(started)

	predicted := make([]float64, len(testIdx))
	measured := make([]float64, len(testIdx))
	for k, i := range testIdx {
		res, err := model.Predict(matrix[i])
		if err != nil {
			return nil, fmt.Errorf("train: evaluate row %d: %w", i, err)
		}
		predicted[k] = rows[i].PhysicsSNRDB + res
		measured[k] = rows[i].MeasuredSNRDB
	}
	metrics, err := Evaluate(predicted, measured, cfg.TargetR2)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	art := &residual.Artifact{
		SchemaVersion: residual.ArtifactSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		DatasetPath:   cfg.DatasetPath,
		Samples:       len(rows),
		FeatureNames:  schema.Names(),
		Params:        cfg.Params,
		Metrics:       metrics.Values(),
		Model:         model,
	}

	if r2, ok := metrics.ByID("R2"); ok {
		log.Info("training complete",
			"trees", len(model.Trees), "r2", r2.Value, "elapsed", elapsed.Round(time.Millisecond))
	}

	return &Result{
		Artifact:     art,
		Metrics:      metrics,
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		Duration:     elapsed,
	}, nil
}
