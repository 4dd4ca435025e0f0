// Package store keeps a local registry of training runs in SQLite, so
// every trained artifact can be traced back to its dataset, split,
// hyperparameters, and scores.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is where the CLI keeps its registry unless told
// otherwise.
const DefaultDBPath = ".osis/osis.db"

// Run statuses, matching the training banner.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
)

// Run is one recorded training run.
type Run struct {
	ID           int64
	CreatedAt    string
	DatasetPath  string
	Samples      int
	Features     int
	TrainSamples int
	TestSamples  int
	SplitSeed    int64
	Duration     time.Duration
	ParamsJSON   string
	R2           float64
	RMSE         float64
	MAE          float64
	ArtifactPath string
	Status       string
}

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// Store implements the runs registry with SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .osis) if it does not exist.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	// Check if schema_version table exists to detect database state.
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		// Fresh database.
		if _, err := s.db.Exec(schemaDDL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("schema_version table is empty")
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run and returns its id. CreatedAt is stamped here
// unless the caller set it.
func (s *Store) RecordRun(r *Run) (int64, error) {
	if r == nil {
		return 0, errors.New("run is nil")
	}
	createdAt := r.CreatedAt
	if createdAt == "" {
		createdAt = nowUTC()
	}
	params := r.ParamsJSON
	if params == "" {
		params = "{}"
	}
	res, err := s.db.Exec(
		`INSERT INTO runs(created_at, dataset_path, samples, features, train_samples,
		                  test_samples, split_seed, duration_ms, params, r2, rmse, mae, artifact_path, status)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt, r.DatasetPath, r.Samples, r.Features, r.TrainSamples,
		r.TestSamples, r.SplitSeed, r.Duration.Milliseconds(), params, r.R2, r.RMSE, r.MAE, r.ArtifactPath, r.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = createdAt
	return id, nil
}

// GetRun returns the run by id, or nil if not found.
func (s *Store) GetRun(id int64) (*Run, error) {
	var r Run
	var artifactPath sql.NullString
	var durationMS int64
	err := s.db.QueryRow(
		`SELECT id, created_at, dataset_path, samples, features, train_samples,
		        test_samples, split_seed, duration_ms, params, r2, rmse, mae, artifact_path, status
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.CreatedAt, &r.DatasetPath, &r.Samples, &r.Features, &r.TrainSamples,
		&r.TestSamples, &r.SplitSeed, &durationMS, &r.ParamsJSON, &r.R2, &r.RMSE, &r.MAE, &artifactPath, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.ArtifactPath = nullStr(artifactPath)
	return &r, nil
}

// ListRuns returns the most recent runs, newest first. A limit below 1
// returns all of them.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT id, created_at, dataset_path, samples, features, train_samples,
	                 test_samples, split_seed, duration_ms, params, r2, rmse, mae, artifact_path, status
	          FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var list []*Run
	for rows.Next() {
		var r Run
		var artifactPath sql.NullString
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.DatasetPath, &r.Samples, &r.Features,
			&r.TrainSamples, &r.TestSamples, &r.SplitSeed, &durationMS, &r.ParamsJSON,
			&r.R2, &r.RMSE, &r.MAE, &artifactPath, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.ArtifactPath = nullStr(artifactPath)
		list = append(list, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return list, nil
}
