package di

import (
	"reflect"

	"github.com/goliatone/go-alerts/pkg/commands"
	"github.com/goliatone/go-alerts/pkg/config"
	"github.com/goliatone/go-alerts/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-alerts/pkg/interfaces/cache"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/preferences"
	"github.com/goliatone/go-alerts/pkg/storage"
)

// Options configure the DI container.
type Options struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Cache       cache.Cache
	Broadcaster broadcaster.Broadcaster
	Provider    preferences.Provider
}

// Container wires repositories, services, commands, and the active provider.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	Preferences *preferences.Service
	Commands    *commands.Registry
	Provider    preferences.Provider
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.Preferences == nil {
		providers = storage.NewMemoryProviders()
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	c := opts.Cache
	if c == nil {
		c = &cache.Nop{}
	}

	b := opts.Broadcaster
	if b == nil {
		b = &broadcaster.Nop{}
	}

	baseline := preferences.EffectiveAlerts{
		VibeIntensity:     cfg.BaselineVibeIntensity(),
		AlternativeDesign: cfg.Defaults.AlternativeDesign,
		VibeDelay:         cfg.Defaults.VibeDelay,
		DndMode:           cfg.BaselineDndMode(),
	}
	prefSvc, err := preferences.New(preferences.Dependencies{
		Repository:  providers.Preferences,
		Schedules:   providers.Schedules,
		Logger:      lgr,
		Cache:       c,
		Broadcaster: b,
		Defaults:    &baseline,
		Timezone:    cfg.Evaluation.Timezone,
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Preferences: prefSvc,
		Logger:      lgr,
	})
	if err != nil {
		return nil, err
	}

	provider := opts.Provider
	if provider == nil {
		provider = preferences.Defaults{}
	}

	return &Container{
		Config:      cfg,
		Storage:     providers,
		Preferences: prefSvc,
		Commands:    cmdRegistry,
		Provider:    provider,
	}, nil
}
