package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-alerts/internal/storage/memory"
	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	"github.com/goliatone/go-alerts/pkg/preferences"
)

func TestNewCatalogRequiresService(t *testing.T) {
	if _, err := NewCatalog(Dependencies{}); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestSetVibeIntensityCommand(t *testing.T) {
	ctx := context.Background()
	catalog, repo := newTestCatalog(t)

	if err := catalog.SetVibeIntensity.Execute(ctx, SetVibeIntensity{
		SubjectType: "user",
		SubjectID:   "u1",
		Intensity:   "high",
	}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	record, err := repo.GetBySubject(ctx, "user", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("unexpected intensity %s", record.VibeIntensity)
	}

	if err := catalog.SetVibeIntensity.Execute(ctx, SetVibeIntensity{
		SubjectType: "user",
		SubjectID:   "u1",
		Intensity:   "extreme",
	}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSetDndModeCommand(t *testing.T) {
	ctx := context.Background()
	catalog, repo := newTestCatalog(t)

	manual := true
	if err := catalog.SetDndMode.Execute(ctx, SetDndMode{
		SubjectType: "user",
		SubjectID:   "u1",
		Mode:        "hide",
		Manual:      &manual,
	}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	record, err := repo.GetBySubject(ctx, "user", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.DndMode != domain.DndNotificationModeHide {
		t.Fatalf("unexpected mode %s", record.DndMode)
	}
	if !record.DndManual {
		t.Fatalf("expected manual flag stored")
	}
}

func TestClearPreferenceCommand(t *testing.T) {
	ctx := context.Background()
	catalog, repo := newTestCatalog(t)

	if err := catalog.SetVibeIntensity.Execute(ctx, SetVibeIntensity{
		SubjectType: "user",
		SubjectID:   "u1",
		Intensity:   "low",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := catalog.ClearPreference.Execute(ctx, ClearPreference{SubjectType: "user", SubjectID: "u1"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.GetBySubject(ctx, "user", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after clear, got %v", err)
	}

	if err := catalog.ClearPreference.Execute(ctx, ClearPreference{SubjectType: "user"}); err == nil {
		t.Fatalf("expected missing subject id error")
	}
}

func TestSaveDndScheduleCommand(t *testing.T) {
	ctx := context.Background()
	catalog, _ := newTestCatalog(t)

	if err := catalog.SaveDndSchedule.Execute(ctx, preferences.ScheduleInput{
		SubjectType: "user",
		SubjectID:   "u1",
		Start:       "22:00",
		End:         "07:00",
		Weekdays:    []string{"friday", "saturday"},
	}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if err := catalog.SaveDndSchedule.Execute(ctx, preferences.ScheduleInput{
		SubjectType: "user",
		SubjectID:   "u1",
		Start:       "late",
		End:         "07:00",
	}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func newTestCatalog(t *testing.T) (*Catalog, *memory.PreferenceRepository) {
	t.Helper()

	repo := memory.NewPreferenceRepository()
	svc, err := preferences.New(preferences.Dependencies{
		Repository: repo,
		Schedules:  memory.NewScheduleRepository(),
		Logger:     &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("preferences.New: %v", err)
	}
	catalog, err := NewCatalog(Dependencies{Preferences: svc, Logger: &logger.Nop{}})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return catalog, repo
}
