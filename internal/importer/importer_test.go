package importer

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

type recordingStore struct {
	snap storage.Snapshot
}

func (r *recordingStore) LoadAll(ctx context.Context) (*storage.Snapshot, error) {
	return &r.snap, nil
}
func (r *recordingStore) SaveExercises(ctx context.Context, v []models.Exercise) error {
	r.snap.Exercises = v
	return nil
}
func (r *recordingStore) SaveSessions(ctx context.Context, v []models.WorkoutSession) error {
	r.snap.Sessions = v
	return nil
}
func (r *recordingStore) SaveRoutines(ctx context.Context, v []models.Routine) error {
	r.snap.Routines = v
	return nil
}
func (r *recordingStore) SaveMeasurements(ctx context.Context, v []models.MeasurementLog) error {
	r.snap.Measurements = v
	return nil
}
func (r *recordingStore) SaveWidgets(ctx context.Context, v []models.WidgetConfiguration) error {
	r.snap.Widgets = v
	return nil
}
func (r *recordingStore) SaveProfile(ctx context.Context, v *models.UserProfile) error {
	r.snap.Profile = v
	return nil
}
func (r *recordingStore) Close() error { return nil }

func writeBackupFile(t *testing.T, backup Backup, compress bool) string {
	t.Helper()
	data, err := json.Marshal(backup)
	if err != nil {
		t.Fatal(err)
	}

	name := "backup.json"
	if compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := io.Copy(gz, bytes.NewReader(data)); err != nil {
			t.Fatal(err)
		}
		if err := gz.Close(); err != nil {
			t.Fatal(err)
		}
		data = buf.Bytes()
		name = "backup.json.gz"
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testBackup() Backup {
	profile := models.NewDefaultProfile()
	return Backup{
		Exercises: []models.Exercise{
			{ID: uuid.New(), Name: "Bench Press", Category: models.CategoryBarbell},
		},
		Sessions: []models.WorkoutSession{
			{ID: uuid.New(), StartTime: time.Now().Add(-time.Hour)},
		},
		Measurements: []models.MeasurementLog{
			{ID: uuid.New(), Type: models.MeasurementWeight, Value: 180, Unit: models.UnitLb, Date: time.Now()},
		},
		Profile: &profile,
	}
}

func TestImport(t *testing.T) {
	path := writeBackupFile(t, testBackup(), false)
	store := &recordingStore{}
	imp := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	stats, err := imp.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.Exercises != 1 || stats.Sessions != 1 || stats.Measurements != 1 || !stats.Profile {
		t.Errorf("stats = %+v", stats)
	}
	if len(store.snap.Exercises) != 1 {
		t.Errorf("exercises not saved: %+v", store.snap.Exercises)
	}
	if store.snap.Profile == nil {
		t.Error("profile not saved")
	}
	// Routines absent from the backup stay untouched.
	if store.snap.Routines != nil {
		t.Errorf("routines should not have been written: %+v", store.snap.Routines)
	}
}

func TestImportGzip(t *testing.T) {
	path := writeBackupFile(t, testBackup(), true)
	store := &recordingStore{}
	imp := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	stats, err := imp.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.Exercises != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportDryRun(t *testing.T) {
	path := writeBackupFile(t, testBackup(), false)
	store := &recordingStore{}
	imp := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), true)

	stats, err := imp.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.Exercises != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if store.snap.Exercises != nil {
		t.Error("dry run must not write to the store")
	}
}

func TestImportSkipsInvalid(t *testing.T) {
	backup := testBackup()
	backup.Sessions = append(backup.Sessions, models.WorkoutSession{})
	backup.Measurements = append(backup.Measurements, models.MeasurementLog{
		ID: uuid.New(), Type: "Wingspan", Value: 1, Unit: "furlong",
	})
	path := writeBackupFile(t, backup, false)

	store := &recordingStore{}
	imp := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	stats, err := imp.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.SkippedSessions != 1 || stats.SkippedMeasurements != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(store.snap.Sessions) != 1 || len(store.snap.Measurements) != 1 {
		t.Errorf("invalid entries were saved: %d sessions, %d measurements",
			len(store.snap.Sessions), len(store.snap.Measurements))
	}
}

func TestImportBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	imp := New(&recordingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	if _, err := imp.Import(context.Background(), path); err == nil {
		t.Fatal("expected error for malformed backup")
	}
}

func TestExportRoundTrip(t *testing.T) {
	store := &recordingStore{snap: storage.Snapshot{
		Exercises: []models.Exercise{{ID: uuid.New(), Name: "Squat"}},
	}}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := Export(context.Background(), store, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	backup, err := ReadBackup(path)
	if err != nil {
		t.Fatalf("ReadBackup() error = %v", err)
	}
	if len(backup.Exercises) != 1 || backup.Exercises[0].Name != "Squat" {
		t.Errorf("round trip = %+v", backup.Exercises)
	}
}
