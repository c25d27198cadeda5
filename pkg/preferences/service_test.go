package preferences

import (
	"context"
	"testing"

	"github.com/goliatone/go-alerts/internal/storage/memory"
	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	pkgoptions "github.com/goliatone/go-alerts/pkg/options"
	opts "github.com/goliatone/go-options"
)

func TestServiceGuardsAgainstNil(t *testing.T) {
	var svc *Service
	if _, err := svc.Get(context.Background(), "user", "u1"); err == nil {
		t.Fatalf("expected not initialised error")
	}
	if _, err := svc.Upsert(context.Background(), PreferenceInput{}); err == nil {
		t.Fatalf("expected not initialised error")
	}
	if err := svc.Delete(context.Background(), "user", "u1"); err == nil {
		t.Fatalf("expected not initialised error")
	}
}

func TestSnapshotProviderBindsEvaluation(t *testing.T) {
	ctx := context.Background()
	svc := newPublicService(t)

	high := domain.VibeIntensityHigh
	delay := true
	if _, err := svc.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &high,
		VibeDelay:     &delay,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	provider, err := svc.SnapshotProvider(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{publicUserScope("u1")},
	})
	if err != nil {
		t.Fatalf("snapshot provider: %v", err)
	}

	if got := provider.VibeIntensity(); got != domain.VibeIntensityHigh {
		t.Fatalf("expected stored intensity, got %s", got)
	}
	if !provider.NotificationVibeDelay() {
		t.Fatalf("expected vibe delay enabled")
	}
	if got := provider.DndShowNotifications(); got != domain.DndNotificationModeShow {
		t.Fatalf("expected default mode, got %s", got)
	}

	Register(provider)
	t.Cleanup(Reset)
	if got := Active().VibeIntensity(); got != domain.VibeIntensityHigh {
		t.Fatalf("registered provider should drive Active, got %s", got)
	}
}

func TestSnapshotProviderFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newPublicService(t)

	provider, err := svc.SnapshotProvider(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{publicUserScope("nobody")},
	})
	if err != nil {
		t.Fatalf("snapshot provider: %v", err)
	}

	defaults := Defaults{}
	if provider.VibeIntensity() != defaults.VibeIntensity() {
		t.Fatalf("expected default intensity")
	}
	if provider.DndShowNotifications() != defaults.DndShowNotifications() {
		t.Fatalf("expected default mode")
	}
	if provider.NotificationAlternativeDesign() != defaults.NotificationAlternativeDesign() {
		t.Fatalf("expected default design flag")
	}
	if provider.NotificationVibeDelay() != defaults.NotificationVibeDelay() {
		t.Fatalf("expected default delay flag")
	}
}

func TestResolveWithTrace(t *testing.T) {
	ctx := context.Background()
	svc := newPublicService(t)

	low := domain.VibeIntensityLow
	if _, err := svc.Upsert(ctx, PreferenceInput{
		SubjectType:   "user",
		SubjectID:     "u1",
		VibeIntensity: &low,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	value, trace, err := svc.ResolveWithTrace(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{publicUserScope("u1")},
	}, "vibe_intensity")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if value != "low" {
		t.Fatalf("unexpected value %v", value)
	}
	if trace.Path != "vibe_intensity" {
		t.Fatalf("unexpected trace path %q", trace.Path)
	}
}

func TestSchemaExport(t *testing.T) {
	ctx := context.Background()
	svc := newPublicService(t)

	if _, err := svc.Schema(ctx, EvaluationRequest{
		Scopes: []pkgoptions.PreferenceScopeRef{publicUserScope("u1")},
	}); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func publicUserScope(id string) pkgoptions.PreferenceScopeRef {
	return pkgoptions.PreferenceScopeRef{
		Scope:       opts.NewScope("user", opts.ScopePriorityUser),
		SubjectType: "user",
		SubjectID:   id,
	}
}

func newPublicService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(Dependencies{
		Repository: memory.NewPreferenceRepository(),
		Schedules:  memory.NewScheduleRepository(),
		Logger:     &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}
