package preferences

import (
	"sync/atomic"

	"github.com/goliatone/go-alerts/pkg/domain"
)

// Provider supplies the alert preference values consumed by the alerting
// pipeline. Implementations must be safe for concurrent callers.
type Provider interface {
	// VibeIntensity returns the haptic strength for alert vibes.
	VibeIntensity() domain.VibeIntensity
	// NotificationAlternativeDesign reports whether the alternative
	// notification layout is enabled.
	NotificationAlternativeDesign() bool
	// DndShowNotifications returns how notifications surface while Do Not
	// Disturb is active.
	DndShowNotifications() domain.DndNotificationMode
	// NotificationVibeDelay reports whether vibes are deferred when a
	// notification first lands.
	NotificationVibeDelay() bool
}

// Defaults is the fallback Provider used when nothing has been registered.
// Every accessor returns a fixed constant, so values are stable across any
// call ordering or interleaving.
type Defaults struct{}

var _ Provider = Defaults{}

func (Defaults) VibeIntensity() domain.VibeIntensity { return domain.DefaultVibeIntensity }

func (Defaults) NotificationAlternativeDesign() bool { return false }

func (Defaults) DndShowNotifications() domain.DndNotificationMode {
	return domain.DefaultDndNotificationMode
}

func (Defaults) NotificationVibeDelay() bool { return false }

type providerEntry struct {
	provider Provider
}

var registered atomic.Pointer[providerEntry]

// Register installs a provider that supersedes Defaults for every consumer
// resolving through Active. Callers of Active need no changes when a
// registration lands. Registering nil restores the defaults.
func Register(provider Provider) {
	if provider == nil {
		registered.Store(nil)
		return
	}
	registered.Store(&providerEntry{provider: provider})
}

// Active returns the registered provider, falling back to Defaults when none
// has been registered.
func Active() Provider {
	if entry := registered.Load(); entry != nil {
		return entry.provider
	}
	return Defaults{}
}

// Reset clears any registered provider. Intended for tests.
func Reset() {
	registered.Store(nil)
}

// Static is an immutable Provider bound to a snapshot of effective values.
type Static struct {
	Effective EffectiveAlerts
}

var _ Provider = Static{}

func (s Static) VibeIntensity() domain.VibeIntensity { return s.Effective.VibeIntensity }

func (s Static) NotificationAlternativeDesign() bool { return s.Effective.AlternativeDesign }

func (s Static) DndShowNotifications() domain.DndNotificationMode { return s.Effective.DndMode }

func (s Static) NotificationVibeDelay() bool { return s.Effective.VibeDelay }
