// Package importer restores a full IronLog backup into a store. A backup is
// one JSON document (optionally gzipped) holding every collection, which
// matches the whole-collection persistence model: each collection present in
// the file replaces the stored one.
package importer

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

// Backup is the on-disk export format. Absent collections are left untouched
// on import.
type Backup struct {
	Exercises    []models.Exercise            `json:"exercises,omitempty"`
	Sessions     []models.WorkoutSession      `json:"sessions,omitempty"`
	Routines     []models.Routine             `json:"routines,omitempty"`
	Measurements []models.MeasurementLog      `json:"measurements,omitempty"`
	Widgets      []models.WidgetConfiguration `json:"widgets,omitempty"`
	Profile      *models.UserProfile          `json:"profile,omitempty"`
}

// Stats tracks import progress.
type Stats struct {
	Exercises    int
	Sessions     int
	Routines     int
	Measurements int
	Widgets      int
	Profile      bool

	SkippedSessions     int
	SkippedMeasurements int
}

// Importer reads a backup file and writes its collections into a store.
type Importer struct {
	store  storage.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(store storage.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// Import reads the backup at path and replaces each stored collection the
// file contains.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	backup, err := ReadBackup(path)
	if err != nil {
		return &imp.stats, err
	}

	if backup.Exercises != nil {
		imp.stats.Exercises = len(backup.Exercises)
		if !imp.dryRun {
			if err := imp.store.SaveExercises(ctx, backup.Exercises); err != nil {
				return &imp.stats, fmt.Errorf("importing exercises: %w", err)
			}
		}
	}

	if backup.Sessions != nil {
		sessions := imp.validSessions(backup.Sessions)
		imp.stats.Sessions = len(sessions)
		if !imp.dryRun {
			if err := imp.store.SaveSessions(ctx, sessions); err != nil {
				return &imp.stats, fmt.Errorf("importing sessions: %w", err)
			}
		}
	}

	if backup.Routines != nil {
		imp.stats.Routines = len(backup.Routines)
		if !imp.dryRun {
			if err := imp.store.SaveRoutines(ctx, backup.Routines); err != nil {
				return &imp.stats, fmt.Errorf("importing routines: %w", err)
			}
		}
	}

	if backup.Measurements != nil {
		measurements := imp.validMeasurements(backup.Measurements)
		imp.stats.Measurements = len(measurements)
		if !imp.dryRun {
			if err := imp.store.SaveMeasurements(ctx, measurements); err != nil {
				return &imp.stats, fmt.Errorf("importing measurements: %w", err)
			}
		}
	}

	if backup.Widgets != nil {
		imp.stats.Widgets = len(backup.Widgets)
		if !imp.dryRun {
			if err := imp.store.SaveWidgets(ctx, backup.Widgets); err != nil {
				return &imp.stats, fmt.Errorf("importing widgets: %w", err)
			}
		}
	}

	if backup.Profile != nil {
		imp.stats.Profile = true
		if !imp.dryRun {
			if err := imp.store.SaveProfile(ctx, backup.Profile); err != nil {
				return &imp.stats, fmt.Errorf("importing profile: %w", err)
			}
		}
	}

	return &imp.stats, nil
}

// validSessions drops sessions without an ID or start time.
func (imp *Importer) validSessions(in []models.WorkoutSession) []models.WorkoutSession {
	out := make([]models.WorkoutSession, 0, len(in))
	for _, s := range in {
		if s.ID == uuid.Nil || s.StartTime.IsZero() {
			imp.log.Warn("skipping invalid session", "id", s.ID)
			imp.stats.SkippedSessions++
			continue
		}
		out = append(out, s)
	}
	return out
}

// validMeasurements drops entries with unknown types or units.
func (imp *Importer) validMeasurements(in []models.MeasurementLog) []models.MeasurementLog {
	out := make([]models.MeasurementLog, 0, len(in))
	for _, m := range in {
		if !models.ValidMeasurementType(m.Type) || !models.ValidMeasurementUnit(m.Unit) {
			imp.log.Warn("skipping invalid measurement", "id", m.ID, "type", m.Type, "unit", m.Unit)
			imp.stats.SkippedMeasurements++
			continue
		}
		out = append(out, m)
	}
	return out
}

// ReadBackup loads and decodes a backup file. Gzip is detected by magic
// bytes, so both .json and .json.gz exports work.
func ReadBackup(path string) (*Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	data, err := readMaybeGzip(f)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", path, err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parsing backup %s: %w", path, err)
	}
	return &backup, nil
}

// Export writes the store's full contents to path as a JSON backup.
func Export(ctx context.Context, store storage.Store, path string) error {
	snap, err := store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	backup := Backup{
		Exercises:    snap.Exercises,
		Sessions:     snap.Sessions,
		Routines:     snap.Routines,
		Measurements: snap.Measurements,
		Widgets:      snap.Widgets,
		Profile:      snap.Profile,
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

func readMaybeGzip(f *os.File) ([]byte, error) {
	var magic [2]byte
	n, err := f.Read(magic[:])
	if err != nil && err != io.EOF {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(f)
}
