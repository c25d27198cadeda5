package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-alerts/internal/storage/memory"
	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-alerts/pkg/interfaces/cache"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	pkgoptions "github.com/goliatone/go-alerts/pkg/options"
	opts "github.com/goliatone/go-options"
)

func TestServiceUpsertCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	high := domain.VibeIntensityHigh
	created, err := service.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &high,
		QuietHours: &QuietHoursWindow{
			Start: "21:00",
			End:   "06:00",
		},
	})
	if err != nil {
		t.Fatalf("upsert create: %v", err)
	}
	if created.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("expected high intensity, got %s", created.VibeIntensity)
	}

	low := domain.VibeIntensityLow
	delay := true
	updated, err := service.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &low,
		VibeDelay:     &delay,
		QuietHours: &QuietHoursWindow{
			Start: "20:00",
			End:   "05:00",
		},
	})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.VibeIntensity != domain.VibeIntensityLow {
		t.Fatalf("expected intensity update, got %s", updated.VibeIntensity)
	}
	if !updated.VibeDelay {
		t.Fatalf("expected vibe delay stored")
	}
	if updated.QuietHours["start"] != "20:00" {
		t.Fatalf("quiet hours not updated: %+v", updated.QuietHours)
	}
	if updated.ID != created.ID {
		t.Fatalf("upsert should reuse the record")
	}
}

func TestServiceCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	if _, err := service.Create(ctx, PreferenceInput{SubjectType: "user"}); err == nil {
		t.Fatalf("expected missing subject id error")
	}
	bad := domain.VibeIntensity("extreme")
	if _, err := service.Create(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &bad,
	}); err == nil {
		t.Fatalf("expected invalid intensity error")
	}

	if _, err := service.Create(ctx, PreferenceInput{SubjectType: "user", SubjectID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Create(ctx, PreferenceInput{SubjectType: "user", SubjectID: "u1"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestServiceEvaluateDefaults(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{userScope("user-1")},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	eff := result.Effective
	if eff.VibeIntensity != domain.DefaultVibeIntensity {
		t.Fatalf("expected default intensity, got %s", eff.VibeIntensity)
	}
	if eff.AlternativeDesign || eff.VibeDelay || eff.DndActive {
		t.Fatalf("expected baseline flags false, got %+v", eff)
	}
	if eff.DndMode != domain.DndNotificationModeShow {
		t.Fatalf("expected show mode, got %s", eff.DndMode)
	}
	if result.Reason != ReasonDefault {
		t.Fatalf("expected default reason, got %s", result.Reason)
	}
}

func TestServiceEvaluateStoredOverrides(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	seed := &domain.AlertPreference{
		SubjectType:       "user",
		SubjectID:         "user-42",
		VibeIntensity:     domain.VibeIntensityHigh,
		AlternativeDesign: true,
		DndMode:           domain.DndNotificationModeHide,
	}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{userScope("user-42")},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	eff := result.Effective
	if eff.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("expected stored intensity, got %s", eff.VibeIntensity)
	}
	if !eff.AlternativeDesign {
		t.Fatalf("expected alternative design enabled")
	}
	if eff.DndMode != domain.DndNotificationModeHide {
		t.Fatalf("expected hide mode, got %s", eff.DndMode)
	}
	if eff.DndActive {
		t.Fatalf("mode alone should not activate DND")
	}
	if result.Reason != ReasonStored {
		t.Fatalf("expected stored reason, got %s", result.Reason)
	}
}

func TestServiceEvaluateScopePriority(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	tenant := &domain.AlertPreference{
		SubjectType:   "tenant",
		SubjectID:     "acme",
		VibeIntensity: domain.VibeIntensityLow,
	}
	user := &domain.AlertPreference{
		SubjectType:   "user",
		SubjectID:     "user-9",
		VibeIntensity: domain.VibeIntensityHigh,
	}
	if err := repo.Create(ctx, tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{
			{
				Scope:       opts.NewScope("tenant", opts.ScopePrioritySystem),
				SubjectType: "tenant",
				SubjectID:   "acme",
			},
			userScope("user-9"),
		},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Effective.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("user scope should win, got %s", result.Effective.VibeIntensity)
	}
}

func TestServiceEvaluateManualDnd(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	seed := &domain.AlertPreference{
		SubjectType: "user",
		SubjectID:   "user-7",
		DndManual:   true,
		DndMode:     domain.DndNotificationModeHide,
	}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{userScope("user-7")},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Effective.DndActive {
		t.Fatalf("expected DND active")
	}
	if result.DndReason != ReasonManualDnd {
		t.Fatalf("expected manual reason, got %s", result.DndReason)
	}
}

func TestServiceEvaluateQuietHours(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	seed := &domain.AlertPreference{
		SubjectType: "user",
		SubjectID:   "user-5",
		QuietHours: domain.JSONMap{
			"start": "22:00",
			"end":   "07:00",
		},
	}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	inside := time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC)
	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes:    []pkgoptions.PreferenceScopeRef{userScope("user-5")},
		Timestamp: inside,
	})
	if err != nil {
		t.Fatalf("evaluate inside: %v", err)
	}
	if !result.Effective.DndActive || result.DndReason != ReasonQuietHours {
		t.Fatalf("expected quiet hours DND, got %+v", result)
	}

	outside := inside.Add(13 * time.Hour)
	result, err = service.Evaluate(ctx, EvaluationRequest{
		Scopes:    []pkgoptions.PreferenceScopeRef{userScope("user-5")},
		Timestamp: outside,
	})
	if err != nil {
		t.Fatalf("evaluate outside: %v", err)
	}
	if result.Effective.DndActive {
		t.Fatalf("expected DND inactive outside the window")
	}
}

func TestServiceEvaluateScheduleWindow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	schedules := memory.NewScheduleRepository()
	service := newTestService(t, repo, schedules)

	enabled := true
	if _, err := service.SaveSchedule(ctx, ScheduleInput{
		SubjectType: "user",
		SubjectID:   "user-3",
		Start:       "09:00",
		End:         "17:00",
		Weekdays:    []string{"monday"},
		Enabled:     &enabled,
	}); err != nil {
		t.Fatalf("save schedule: %v", err)
	}

	// 2026-01-05 is a Monday.
	monday := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	result, err := service.Evaluate(ctx, EvaluationRequest{
		Scopes:    []pkgoptions.PreferenceScopeRef{userScope("user-3")},
		Timestamp: monday,
	})
	if err != nil {
		t.Fatalf("evaluate monday: %v", err)
	}
	if !result.Effective.DndActive || result.DndReason != ReasonDndSchedule {
		t.Fatalf("expected schedule DND on monday, got %+v", result)
	}

	tuesday := monday.Add(24 * time.Hour)
	result, err = service.Evaluate(ctx, EvaluationRequest{
		Scopes:    []pkgoptions.PreferenceScopeRef{userScope("user-3")},
		Timestamp: tuesday,
	})
	if err != nil {
		t.Fatalf("evaluate tuesday: %v", err)
	}
	if result.Effective.DndActive {
		t.Fatalf("schedule should not match tuesday")
	}
}

func TestServiceEvaluateConfiguredBaseline(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	svc, err := NewService(Dependencies{
		Repository: repo,
		Logger:     &logger.Nop{},
		Defaults: &EffectiveAlerts{
			VibeIntensity: domain.VibeIntensityLow,
			VibeDelay:     true,
			DndMode:       domain.DndNotificationModeHide,
		},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Evaluate(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{userScope("nobody")},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	eff := result.Effective
	if eff.VibeIntensity != domain.VibeIntensityLow {
		t.Fatalf("expected configured intensity, got %s", eff.VibeIntensity)
	}
	if !eff.VibeDelay {
		t.Fatalf("expected configured vibe delay")
	}
	if eff.DndMode != domain.DndNotificationModeHide {
		t.Fatalf("expected configured mode, got %s", eff.DndMode)
	}
	if result.Reason != ReasonDefault {
		t.Fatalf("expected default reason, got %s", result.Reason)
	}
}

func TestServiceEvaluateQuietHoursFallbackTimezone(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T, tz string) *Service {
		t.Helper()
		repo := memory.NewPreferenceRepository()
		seed := &domain.AlertPreference{
			SubjectType: "user",
			SubjectID:   "user-8",
			QuietHours: domain.JSONMap{
				"start": "09:00",
				"end":   "17:00",
			},
		}
		if err := repo.Create(ctx, seed); err != nil {
			t.Fatalf("seed: %v", err)
		}
		svc, err := NewService(Dependencies{
			Repository: repo,
			Logger:     &logger.Nop{},
			Timezone:   tz,
		})
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
		return svc
	}

	// 20:00 UTC is 15:00 in New York during January.
	ts := time.Date(2026, 1, 6, 20, 0, 0, 0, time.UTC)
	req := EvaluationRequest{
		Scopes:    []pkgoptions.PreferenceScopeRef{userScope("user-8")},
		Timestamp: ts,
	}

	result, err := newService(t, "America/New_York").Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("evaluate with fallback tz: %v", err)
	}
	if !result.Effective.DndActive || result.DndReason != ReasonQuietHours {
		t.Fatalf("expected window active in fallback timezone, got %+v", result)
	}

	result, err = newService(t, "").Evaluate(ctx, req)
	if err != nil {
		t.Fatalf("evaluate with UTC: %v", err)
	}
	if result.Effective.DndActive {
		t.Fatalf("window should be inactive at 20:00 UTC")
	}
}

func TestNewServiceRejectsInvalidTimezone(t *testing.T) {
	_, err := NewService(Dependencies{
		Repository: memory.NewPreferenceRepository(),
		Logger:     &logger.Nop{},
		Timezone:   "Mars/Olympus",
	})
	if err == nil {
		t.Fatalf("expected invalid timezone error")
	}
}

func TestServiceGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	svc, err := NewService(Dependencies{
		Repository: repo,
		Logger:     &logger.Nop{},
		Cache:      newMapCache(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	high := domain.VibeIntensityHigh
	if _, err := svc.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &high,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, err := svc.Get(ctx, "user", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.VibeIntensity = domain.VibeIntensityLow

	second, err := svc.Get(ctx, "user", "u1")
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if second.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("caller mutation leaked into cache, got %s", second.VibeIntensity)
	}

	second.VibeIntensity = domain.VibeIntensityLow
	third, err := svc.Get(ctx, "user", "u1")
	if err != nil {
		t.Fatalf("get cached again: %v", err)
	}
	if third.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("cached record mutated, got %s", third.VibeIntensity)
	}
}

func TestServiceSaveScheduleValidation(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t, memory.NewPreferenceRepository(), memory.NewScheduleRepository())

	cases := []struct {
		name  string
		input ScheduleInput
	}{
		{"missing subject", ScheduleInput{Start: "09:00", End: "17:00"}},
		{"bad start", ScheduleInput{SubjectType: "user", SubjectID: "u1", Start: "9am", End: "17:00"}},
		{"bad weekday", ScheduleInput{SubjectType: "user", SubjectID: "u1", Start: "09:00", End: "17:00", Weekdays: []string{"someday"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.SaveSchedule(ctx, tc.input); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestServiceDeleteBroadcastsAndClears(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()

	var events []broadcaster.Event
	svc, err := NewService(Dependencies{
		Repository: repo,
		Logger:     &logger.Nop{},
		Broadcaster: broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
			events = append(events, evt)
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.Upsert(ctx, PreferenceInput{SubjectType: "user", SubjectID: "u1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.Delete(ctx, "user", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "user", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Topic != TopicPreferenceUpdated || events[1].Topic != TopicPreferenceCleared {
		t.Fatalf("unexpected topics: %+v", events)
	}
}

func TestServiceUpsertAfterDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPreferenceRepository()
	service := newTestService(t, repo, nil)

	if _, err := service.Upsert(ctx, PreferenceInput{SubjectType: "user", SubjectID: "u1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := service.Delete(ctx, "user", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	high := domain.VibeIntensityHigh
	record, err := service.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &high,
	})
	if err != nil {
		t.Fatalf("upsert after delete: %v", err)
	}
	if record.VibeIntensity != domain.VibeIntensityHigh {
		t.Fatalf("unexpected intensity %s", record.VibeIntensity)
	}
}

type mapCache struct {
	values map[string]any
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]any)}
}

var _ cache.Cache = (*mapCache)(nil)

func (c *mapCache) Get(ctx context.Context, key string) (any, bool, error) {
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func userScope(id string) pkgoptions.PreferenceScopeRef {
	return pkgoptions.PreferenceScopeRef{
		Scope:       opts.NewScope("user", opts.ScopePriorityUser),
		SubjectType: "user",
		SubjectID:   id,
	}
}

func newTestService(t *testing.T, repo store.AlertPreferenceRepository, schedules store.DndScheduleRepository) *Service {
	t.Helper()
	svc, err := NewService(Dependencies{
		Repository: repo,
		Schedules:  schedules,
		Logger:     &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
