package residual

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactSchemaVersion identifies the on-disk artifact layout.
const ArtifactSchemaVersion = 1

// Artifact bundles a fitted model with the exact ordered feature-name
// list it was trained on, plus training provenance. The two halves are
// persisted and loaded as one document; a model separated from its
// feature order is unusable.
type Artifact struct {
	SchemaVersion int                `json:"schema_version"`
	CreatedAt     time.Time          `json:"created_at"`
	DatasetPath   string             `json:"dataset_path,omitempty"`
	Samples       int                `json:"samples,omitempty"`
	FeatureNames  []string           `json:"feature_names"`
	Params        Params             `json:"params"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Model         *Model             `json:"model"`
}

// Save writes the artifact atomically: encoded into a temp file in the
// destination directory, then renamed into place. A crash mid-write never
// leaves a truncated artifact behind the final path.
func (a *Artifact) Save(path string) error {
	if err := a.check(); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move artifact into place: %w", err)
	}
	return nil
}

// Load reads and validates an artifact. Anything inconsistent is
// rejected: wrong schema version, missing model payload, or a feature
// list whose length does not match the model width.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if err := a.check(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &a, nil
}

func (a *Artifact) check() error {
	if a.SchemaVersion != ArtifactSchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", a.SchemaVersion, ArtifactSchemaVersion)
	}
	if a.Model == nil {
		return errors.New("no model payload")
	}
	if len(a.FeatureNames) == 0 {
		return errors.New("no feature names")
	}
	if a.Model.NumFeatures != len(a.FeatureNames) {
		return fmt.Errorf("model width %d does not match %d feature names", a.Model.NumFeatures, len(a.FeatureNames))
	}
	return nil
}
