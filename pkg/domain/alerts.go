package domain

import (
	"fmt"
	"strings"
)

// VibeIntensity is the configured strength of a haptic alert.
type VibeIntensity string

const (
	VibeIntensityLow    VibeIntensity = "low"
	VibeIntensityMedium VibeIntensity = "medium"
	VibeIntensityHigh   VibeIntensity = "high"
)

// DefaultVibeIntensity is used whenever no stored preference applies.
const DefaultVibeIntensity = VibeIntensityMedium

// ParseVibeIntensity normalizes raw input into a VibeIntensity.
func ParseVibeIntensity(raw string) (VibeIntensity, error) {
	switch VibeIntensity(strings.ToLower(strings.TrimSpace(raw))) {
	case VibeIntensityLow:
		return VibeIntensityLow, nil
	case VibeIntensityMedium:
		return VibeIntensityMedium, nil
	case VibeIntensityHigh:
		return VibeIntensityHigh, nil
	default:
		return "", fmt.Errorf("domain: unknown vibe intensity %q", raw)
	}
}

// IsValid reports whether the intensity is one of the known levels.
func (v VibeIntensity) IsValid() bool {
	switch v {
	case VibeIntensityLow, VibeIntensityMedium, VibeIntensityHigh:
		return true
	default:
		return false
	}
}

// DndNotificationMode controls how notifications surface while Do Not
// Disturb is active.
type DndNotificationMode string

const (
	// DndNotificationModeShow keeps notifications visible during DND.
	DndNotificationModeShow DndNotificationMode = "show"
	// DndNotificationModeHide suppresses notification visibility during DND.
	DndNotificationModeHide DndNotificationMode = "hide"
)

// DefaultDndNotificationMode applies when no stored preference overrides it.
const DefaultDndNotificationMode = DndNotificationModeShow

// ParseDndNotificationMode normalizes raw input into a DndNotificationMode.
func ParseDndNotificationMode(raw string) (DndNotificationMode, error) {
	switch DndNotificationMode(strings.ToLower(strings.TrimSpace(raw))) {
	case DndNotificationModeShow:
		return DndNotificationModeShow, nil
	case DndNotificationModeHide:
		return DndNotificationModeHide, nil
	default:
		return "", fmt.Errorf("domain: unknown dnd notification mode %q", raw)
	}
}

// IsValid reports whether the mode is one of the known modes.
func (m DndNotificationMode) IsValid() bool {
	return m == DndNotificationModeShow || m == DndNotificationModeHide
}
