package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/ironlog/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default local-file backend.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path, creating parent
// directories as needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS domain_records (
		domain     TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating domain_records table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) saveDomain(ctx context.Context, domain string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO domain_records (domain, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		domain, string(data))
	if err != nil {
		return fmt.Errorf("saving %s: %w", domain, err)
	}
	return nil
}

func (s *SQLiteStore) loadDomain(ctx context.Context, domain string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM domain_records WHERE domain = ?`, domain).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", domain, err)
	}
	return []byte(data), nil
}

// LoadAll reads every domain collection.
func (s *SQLiteStore) LoadAll(ctx context.Context) (*Snapshot, error) {
	return loadSnapshot(ctx, s)
}

func (s *SQLiteStore) SaveExercises(ctx context.Context, exercises []models.Exercise) error {
	return saveJSON(ctx, s, domainExercises, exercises)
}

func (s *SQLiteStore) SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error {
	return saveJSON(ctx, s, domainSessions, sessions)
}

func (s *SQLiteStore) SaveRoutines(ctx context.Context, routines []models.Routine) error {
	return saveJSON(ctx, s, domainRoutines, routines)
}

func (s *SQLiteStore) SaveMeasurements(ctx context.Context, measurements []models.MeasurementLog) error {
	return saveJSON(ctx, s, domainMeasurements, measurements)
}

func (s *SQLiteStore) SaveWidgets(ctx context.Context, widgets []models.WidgetConfiguration) error {
	return saveJSON(ctx, s, domainWidgets, widgets)
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return saveJSON(ctx, s, domainProfile, profile)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
