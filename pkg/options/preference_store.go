package options

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	opts "github.com/goliatone/go-options"
)

// PreferenceScopeRef describes how a stored preference maps to a scope layer.
type PreferenceScopeRef struct {
	Scope       opts.Scope
	SubjectType string
	SubjectID   string
}

// PreferenceSnapshotStore adapts the preference repository to scope snapshots.
type PreferenceSnapshotStore struct {
	Repository store.AlertPreferenceRepository
}

var (
	errPreferenceRepositoryRequired = errors.New("options: preference repository is required")
)

// Load pulls stored alert preferences for the supplied scope references and
// converts them into scope snapshots that can be fed into the resolver.
func (s PreferenceSnapshotStore) Load(ctx context.Context, refs []PreferenceScopeRef) ([]Snapshot, error) {
	if s.Repository == nil {
		return nil, errPreferenceRepositoryRequired
	}

	snapshots := make([]Snapshot, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref.SubjectType) == "" || strings.TrimSpace(ref.SubjectID) == "" {
			return nil, fmt.Errorf("options: scope %s missing subject identifiers", ref.Scope.Name)
		}
		if ref.Scope.Name == "" {
			return nil, fmt.Errorf("options: scope name required for %s/%s", ref.SubjectType, ref.SubjectID)
		}
		pref, err := s.Repository.GetBySubject(ctx, ref.SubjectType, ref.SubjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		snapshots = append(snapshots, snapshotFromPreference(ref.Scope, pref))
	}
	return snapshots, nil
}

func snapshotFromPreference(scope opts.Scope, pref *domain.AlertPreference) Snapshot {
	payload := map[string]any{}
	if pref.VibeIntensity != "" {
		payload["vibe_intensity"] = string(pref.VibeIntensity)
	}
	if pref.AlternativeDesign {
		payload["alternative_design"] = true
	}
	if pref.VibeDelay {
		payload["vibe_delay"] = true
	}
	dnd := map[string]any{}
	if pref.DndMode != "" {
		dnd["mode"] = string(pref.DndMode)
	}
	if pref.DndManual {
		dnd["manual"] = true
	}
	if len(dnd) > 0 {
		payload["dnd"] = dnd
	}
	if len(pref.QuietHours) > 0 {
		payload["quiet_hours"] = copyJSONMap(pref.QuietHours)
	}
	if len(pref.AdditionalRules) > 0 {
		payload["rules"] = copyJSONMap(pref.AdditionalRules)
	}
	return Snapshot{
		Scope:      scope,
		Data:       payload,
		SnapshotID: pref.ID.String(),
	}
}

func copyJSONMap(src domain.JSONMap) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return cloneMap(map[string]any(src))
}
