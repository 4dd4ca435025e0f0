// Package residual implements the gradient-boosted regression trees that
// learn the gap between measured SNR and the physics baseline. The
// learner is least-squares boosting with shrinkage and optional
// early stopping on a held-out slice; training is fully deterministic
// for a fixed seed.
package residual

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Params configures gradient-boosted training.
type Params struct {
	Trees              int     `json:"trees"`
	LearningRate       float64 `json:"learning_rate"`
	MaxDepth           int     `json:"max_depth"`
	MinLeaf            int     `json:"min_leaf"`
	ValidationFraction float64 `json:"validation_fraction"`
	EarlyStopRounds    int     `json:"early_stop_rounds"`
	Tol                float64 `json:"tol"`
	Seed               int64   `json:"seed"`
}

// DefaultParams returns the hyperparameters the production model was
// tuned with.
func DefaultParams() Params {
	return Params{
		Trees:              400,
		LearningRate:       0.05,
		MaxDepth:           4,
		MinLeaf:            1,
		ValidationFraction: 0.1,
		EarlyStopRounds:    10,
		Tol:                1e-4,
		Seed:               42,
	}
}

func (p Params) validate() error {
	switch {
	case p.Trees < 1:
		return errors.New("trees must be at least 1")
	case p.LearningRate <= 0:
		return errors.New("learning rate must be positive")
	case p.MaxDepth < 1:
		return errors.New("max depth must be at least 1")
	case p.MinLeaf < 1:
		return errors.New("min leaf must be at least 1")
	case p.ValidationFraction < 0 || p.ValidationFraction >= 1:
		return errors.New("validation fraction must be in [0, 1)")
	case p.EarlyStopRounds < 0:
		return errors.New("early stop rounds must not be negative")
	case p.Tol < 0:
		return errors.New("tolerance must not be negative")
	}
	return nil
}

// Model is a fitted boosted ensemble. The zero value is not usable; fit
// one with Fit or load a persisted artifact.
type Model struct {
	Base         float64   `json:"base"`
	LearningRate float64   `json:"learning_rate"`
	NumFeatures  int       `json:"num_features"`
	Trees        []tree    `json:"trees"`
	Importances  []float64 `json:"importances,omitempty"`
}

// ErrWidthMismatch reports a feature vector whose width differs from the
// width the model was trained on.
var ErrWidthMismatch = errors.New("feature width mismatch")

// Predict returns the ensemble output for one feature vector.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != m.NumFeatures {
		return 0, fmt.Errorf("%w: got %d values, model expects %d", ErrWidthMismatch, len(x), m.NumFeatures)
	}
	out := m.Base
	for i := range m.Trees {
		out += m.LearningRate * m.Trees[i].predict(x)
	}
	return out, nil
}

// Fit trains an ensemble on dense feature rows. When ValidationFraction
// and EarlyStopRounds are both positive, a seeded fraction of the samples
// is held out and boosting stops once the held-out MSE has failed to
// improve by Tol for EarlyStopRounds consecutive rounds. All trees grown
// up to the stopping round are kept.
func Fit(rows [][]float64, target []float64, p Params) (*Model, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("fit: no samples")
	}
	if len(rows) != len(target) {
		return nil, fmt.Errorf("fit: %d rows but %d targets", len(rows), len(target))
	}
	width := len(rows[0])
	if width == 0 {
		return nil, errors.New("fit: zero-width feature vectors")
	}
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("fit: row %d has width %d, want %d", i, len(r), width)
		}
	}

	rng := rand.New(rand.NewSource(p.Seed))
	perm := rng.Perm(len(rows))

	nVal := 0
	if p.ValidationFraction > 0 && p.EarlyStopRounds > 0 {
		nVal = int(float64(len(rows)) * p.ValidationFraction)
	}
	valIdx := perm[:nVal]
	trainIdx := perm[nVal:]

	m := &Model{
		Base:         meanAt(target, trainIdx),
		LearningRate: p.LearningRate,
		NumFeatures:  width,
	}

	pred := make([]float64, len(rows))
	for i := range pred {
		pred[i] = m.Base
	}
	resid := make([]float64, len(rows))
	gains := make([]float64, width)

	bestVal := math.Inf(1)
	stale := 0

	for round := 0; round < p.Trees; round++ {
		for _, i := range trainIdx {
			resid[i] = target[i] - pred[i]
		}
		tr := fitTree(rows, resid, trainIdx, p.MaxDepth, p.MinLeaf, gains)
		m.Trees = append(m.Trees, tr)
		for _, i := range trainIdx {
			pred[i] += p.LearningRate * tr.predict(rows[i])
		}

		if nVal == 0 {
			continue
		}
		var mse float64
		for _, i := range valIdx {
			pred[i] += p.LearningRate * tr.predict(rows[i])
			d := target[i] - pred[i]
			mse += d * d
		}
		mse /= float64(nVal)
		if mse < bestVal-p.Tol {
			bestVal = mse
			stale = 0
		} else {
			stale++
			if stale >= p.EarlyStopRounds {
				break
			}
		}
	}

	var totalGain float64
	for _, g := range gains {
		totalGain += g
	}
	if totalGain > 0 {
		m.Importances = make([]float64, width)
		for f, g := range gains {
			m.Importances[f] = g / totalGain
		}
	}

	return m, nil
}
