// Package storage is the persistence gateway. Each domain is stored as one
// opaque JSON collection; every save replaces the whole collection for its
// domain, matching how the core always submits the full post-mutation state.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/ironlog/internal/models"
)

// Domain names under which collections are stored.
const (
	domainExercises    = "exercises"
	domainSessions     = "sessions"
	domainRoutines     = "routines"
	domainMeasurements = "measurements"
	domainWidgets      = "widgets"
	domainProfile      = "profile"
)

// Snapshot is everything the gateway loads at startup.
type Snapshot struct {
	Exercises    []models.Exercise
	Sessions     []models.WorkoutSession
	Routines     []models.Routine
	Measurements []models.MeasurementLog
	Widgets      []models.WidgetConfiguration
	Profile      *models.UserProfile
}

// Store loads and saves the per-domain collections. Saves are full
// replacements; there are no partial or delta updates.
type Store interface {
	LoadAll(ctx context.Context) (*Snapshot, error)
	SaveExercises(ctx context.Context, exercises []models.Exercise) error
	SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error
	SaveRoutines(ctx context.Context, routines []models.Routine) error
	SaveMeasurements(ctx context.Context, measurements []models.MeasurementLog) error
	SaveWidgets(ctx context.Context, widgets []models.WidgetConfiguration) error
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	Close() error
}

// domainSaver is the single primitive both backends implement: upsert one
// domain's JSON document.
type domainSaver interface {
	saveDomain(ctx context.Context, domain string, data []byte) error
	loadDomain(ctx context.Context, domain string) ([]byte, error)
}

func saveJSON(ctx context.Context, s domainSaver, domain string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", domain, err)
	}
	return s.saveDomain(ctx, domain, data)
}

// loadJSON decodes one domain into v. A missing domain leaves v untouched,
// which gives fresh installations empty collections.
func loadJSON(ctx context.Context, s domainSaver, domain string, v any) error {
	data, err := s.loadDomain(ctx, domain)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", domain, err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, s domainSaver) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := loadJSON(ctx, s, domainExercises, &snap.Exercises); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, s, domainSessions, &snap.Sessions); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, s, domainRoutines, &snap.Routines); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, s, domainMeasurements, &snap.Measurements); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, s, domainWidgets, &snap.Widgets); err != nil {
		return nil, err
	}
	if err := loadJSON(ctx, s, domainProfile, &snap.Profile); err != nil {
		return nil, err
	}
	return snap, nil
}
