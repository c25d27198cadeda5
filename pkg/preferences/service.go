package preferences

import (
	"context"
	"errors"

	internalprefs "github.com/goliatone/go-alerts/internal/preferences"
	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-alerts/pkg/interfaces/cache"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	opts "github.com/goliatone/go-options"
)

// Re-export types required by consumers so they do not depend on the internal package.
type (
	PreferenceInput   = internalprefs.PreferenceInput
	ScheduleInput     = internalprefs.ScheduleInput
	EvaluationRequest = internalprefs.EvaluationRequest
	EvaluationResult  = internalprefs.EvaluationResult
	EffectiveAlerts   = internalprefs.EffectiveAlerts
	QuietHoursWindow  = internalprefs.QuietHoursWindow
)

const (
	ReasonDefault     = internalprefs.ReasonDefault
	ReasonStored      = internalprefs.ReasonStored
	ReasonManualDnd   = internalprefs.ReasonManualDnd
	ReasonQuietHours  = internalprefs.ReasonQuietHours
	ReasonDndSchedule = internalprefs.ReasonDndSchedule
)

// Service exposes CRUD and evaluation helpers to consumers.
type Service struct {
	internal *internalprefs.Service
}

// Dependencies wires repositories and loggers into the service.
type Dependencies struct {
	Repository  store.AlertPreferenceRepository
	Schedules   store.DndScheduleRepository
	Logger      logger.Logger
	Cache       cache.Cache
	Broadcaster broadcaster.Broadcaster
	// Defaults replaces the built-in evaluation baseline.
	Defaults *EffectiveAlerts
	// Timezone applies to quiet-hours windows without one of their own.
	Timezone string
}

var errServiceNotInitialised = errors.New("preferences: service not initialised")

// New constructs the preferences facade backed by the internal service.
func New(deps Dependencies) (*Service, error) {
	internal, err := internalprefs.NewService(internalprefs.Dependencies{
		Repository:  deps.Repository,
		Schedules:   deps.Schedules,
		Logger:      deps.Logger,
		Cache:       deps.Cache,
		Broadcaster: deps.Broadcaster,
		Defaults:    deps.Defaults,
		Timezone:    deps.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return &Service{internal: internal}, nil
}

// Create persists a preference record.
func (s *Service) Create(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Create(ctx, input)
}

// Update mutates an existing preference record.
func (s *Service) Update(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Update(ctx, input)
}

// Upsert creates or updates a preference record.
func (s *Service) Upsert(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Upsert(ctx, input)
}

// Delete removes the preference record for the provided subject.
func (s *Service) Delete(ctx context.Context, subjectType, subjectID string) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.Delete(ctx, subjectType, subjectID)
}

// Get fetches the stored preference record for the subject.
func (s *Service) Get(ctx context.Context, subjectType, subjectID string) (*domain.AlertPreference, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Get(ctx, subjectType, subjectID)
}

// List enumerates stored preferences using repository pagination.
func (s *Service) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AlertPreference], error) {
	if s == nil || s.internal == nil {
		return store.ListResult[domain.AlertPreference]{}, errServiceNotInitialised
	}
	return s.internal.List(ctx, opts)
}

// SaveSchedule persists a DND schedule window for a subject.
func (s *Service) SaveSchedule(ctx context.Context, input ScheduleInput) (*domain.DndSchedule, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.SaveSchedule(ctx, input)
}

// Schedules lists stored DND schedules for a subject.
func (s *Service) Schedules(ctx context.Context, subjectType, subjectID string) ([]domain.DndSchedule, error) {
	if s == nil || s.internal == nil {
		return nil, errServiceNotInitialised
	}
	return s.internal.Schedules(ctx, subjectType, subjectID)
}

// Evaluate resolves scoped preferences and returns the effective alert values.
func (s *Service) Evaluate(ctx context.Context, req EvaluationRequest) (EvaluationResult, error) {
	if s == nil || s.internal == nil {
		return EvaluationResult{}, errServiceNotInitialised
	}
	return s.internal.Evaluate(ctx, req)
}

// SnapshotProvider evaluates the request and binds the result to an immutable
// Provider. The returned provider is the production replacement for Defaults
// and can be handed to Register or injected directly.
func (s *Service) SnapshotProvider(ctx context.Context, req EvaluationRequest) (Provider, error) {
	result, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	return Static{Effective: result.Effective}, nil
}

// ResolveWithTrace evaluates the request and resolves the provided path.
func (s *Service) ResolveWithTrace(ctx context.Context, req EvaluationRequest, path string) (any, opts.Trace, error) {
	result, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, opts.Trace{Path: path}, err
	}
	if result.Resolver == nil {
		return nil, opts.Trace{Path: path}, errors.New("preferences: resolver unavailable")
	}
	return result.Resolver.Resolve(path)
}

// Schema evaluates the request and exports the schema document for UI tooling.
func (s *Service) Schema(ctx context.Context, req EvaluationRequest) (opts.SchemaDocument, error) {
	result, err := s.Evaluate(ctx, req)
	if err != nil {
		return opts.SchemaDocument{}, err
	}
	if result.Resolver == nil {
		return opts.SchemaDocument{}, errors.New("preferences: resolver unavailable")
	}
	return result.Resolver.Schema()
}
