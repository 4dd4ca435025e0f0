// Package hybrid composes the physics baseline with the learned residual
// model. Every serving path, the HTTP handler, the predict command and
// full-dataset verification, goes through a Predictor so the baseline is
// always recomputed from the channel parameters rather than read from a
// stored column.
package hybrid

import (
	"fmt"
	"log/slog"

	"osis/internal/channel"
	"osis/internal/feature"
	"osis/internal/logging"
	"osis/internal/physics"
	"osis/internal/residual"
)

// Prediction is one scored channel configuration. Values carry full float
// precision; presentation layers round.
type Prediction struct {
	PhysicsSNR float64
	Residual   float64
	FinalSNR   float64
	// ZeroFilled counts features the artifact expects but the transform
	// did not produce. Zero unless the artifact and binary have drifted.
	ZeroFilled int
}

// Predictor holds a loaded residual model and its feature schema.
type Predictor struct {
	model  *residual.Model
	schema *feature.Schema
	mode   feature.Mode
	log    *slog.Logger
}

// Option adjusts Predictor behaviour.
type Option func(*Predictor)

// WithStrictFeatures makes any gap between the artifact's feature list and
// the computed features a hard error instead of a zero-filled warning.
func WithStrictFeatures() Option {
	return func(p *Predictor) { p.mode = feature.Strict }
}

// New builds a Predictor from a loaded artifact.
func New(art *residual.Artifact, opts ...Option) (*Predictor, error) {
	if art == nil || art.Model == nil {
		return nil, fmt.Errorf("hybrid: nil artifact")
	}
	schema, err := feature.NewSchema(art.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("hybrid: artifact features: %w", err)
	}
	p := &Predictor{
		model:  art.Model,
		schema: schema,
		mode:   feature.Lenient,
		log:    logging.New("hybrid"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Load reads a model artifact from disk and wraps it in a Predictor.
func Load(path string, opts ...Option) (*Predictor, error) {
	art, err := residual.Load(path)
	if err != nil {
		return nil, err
	}
	return New(art, opts...)
}

// Features returns the artifact's feature names in model order.
func (p *Predictor) Features() []string {
	return p.schema.Names()
}

// Predict validates the record, recomputes the physics baseline, and adds
// the model's residual correction.
func (p *Predictor) Predict(rec channel.Record) (Prediction, error) {
	if err := rec.Validate(); err != nil {
		return Prediction{}, err
	}

	thermalFactor, physicsSNR := physics.Baseline(rec)
	feats := feature.Compute(rec, thermalFactor, physicsSNR)
	vec, filled, err := p.schema.Align(feats, p.mode)
	if err != nil {
		return Prediction{}, fmt.Errorf("hybrid: %w", err)
	}
	if filled > 0 {
		p.log.Warn("zero-filled missing features", "count", filled)
	}

	res, err := p.model.Predict(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("hybrid: %w", err)
	}

	return Prediction{
		PhysicsSNR: physicsSNR,
		Residual:   res,
		FinalSNR:   physicsSNR + res,
		ZeroFilled: filled,
	}, nil
}
