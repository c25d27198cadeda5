package commands

import (
	internalcommands "github.com/goliatone/go-alerts/internal/commands"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/preferences"
	command "github.com/goliatone/go-command"
)

// Re-export request types so consumers need not import internal packages.
type (
	SetVibeIntensity = internalcommands.SetVibeIntensity
	SetDndMode       = internalcommands.SetDndMode
	ClearPreference  = internalcommands.ClearPreference
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog          *internalcommands.Catalog
	UpsertPreference command.Commander[preferences.PreferenceInput]
	SetVibeIntensity command.Commander[SetVibeIntensity]
	SetDndMode       command.Commander[SetDndMode]
	SaveDndSchedule  command.Commander[preferences.ScheduleInput]
	ClearPreference  command.Commander[ClearPreference]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Preferences *preferences.Service
	Logger      logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Preferences: deps.Preferences,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:          catalog,
		UpsertPreference: catalog.UpsertPreference,
		SetVibeIntensity: catalog.SetVibeIntensity,
		SetDndMode:       catalog.SetDndMode,
		SaveDndSchedule:  catalog.SaveDndSchedule,
		ClearPreference:  catalog.ClearPreference,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.UpsertPreference,
		r.SetVibeIntensity,
		r.SetDndMode,
		r.SaveDndSchedule,
		r.ClearPreference,
	}
}
