package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the optional server-backed store, for installations that
// keep their data off-device.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) saveDomain(ctx context.Context, domain string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO domain_records (domain, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (domain) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		domain, string(data))
	if err != nil {
		return fmt.Errorf("saving %s: %w", domain, err)
	}
	return nil
}

func (s *PostgresStore) loadDomain(ctx context.Context, domain string) ([]byte, error) {
	var data string
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM domain_records WHERE domain = $1`, domain).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", domain, err)
	}
	return []byte(data), nil
}

// LoadAll reads every domain collection.
func (s *PostgresStore) LoadAll(ctx context.Context) (*Snapshot, error) {
	return loadSnapshot(ctx, s)
}

func (s *PostgresStore) SaveExercises(ctx context.Context, exercises []models.Exercise) error {
	return saveJSON(ctx, s, domainExercises, exercises)
}

func (s *PostgresStore) SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error {
	return saveJSON(ctx, s, domainSessions, sessions)
}

func (s *PostgresStore) SaveRoutines(ctx context.Context, routines []models.Routine) error {
	return saveJSON(ctx, s, domainRoutines, routines)
}

func (s *PostgresStore) SaveMeasurements(ctx context.Context, measurements []models.MeasurementLog) error {
	return saveJSON(ctx, s, domainMeasurements, measurements)
}

func (s *PostgresStore) SaveWidgets(ctx context.Context, widgets []models.WidgetConfiguration) error {
	return saveJSON(ctx, s, domainWidgets, widgets)
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return saveJSON(ctx, s, domainProfile, profile)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
