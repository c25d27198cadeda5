package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	"github.com/google/uuid"
)

type PreferenceRepository struct {
	base      baseMemoryRepo[domain.AlertPreference]
	mu        sync.RWMutex
	bySubject map[string]uuid.UUID
}

func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{
		base:      newBaseMemoryRepo("alert_preference", func(p *domain.AlertPreference) *domain.RecordMeta { return &p.RecordMeta }),
		bySubject: make(map[string]uuid.UUID),
	}
}

// subjectKey folds only the type component; ids compare verbatim.
func subjectKey(subjectType, subjectID string) string {
	return fmt.Sprintf("%s|%s", store.NormalizeSubjectType(subjectType), strings.TrimSpace(subjectID))
}

func (r *PreferenceRepository) Create(ctx context.Context, pref *domain.AlertPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := subjectKey(pref.SubjectType, pref.SubjectID)
	if existing, ok := r.bySubject[key]; ok {
		if _, err := r.base.getByID(ctx, existing, false); err == nil {
			return fmt.Errorf("alert preference already exists for %s", key)
		}
		// Stale entry pointing at a soft-deleted record.
		delete(r.bySubject, key)
	}
	if err := r.base.create(ctx, pref); err != nil {
		return err
	}
	r.bySubject[key] = pref.ID
	return nil
}

func (r *PreferenceRepository) Update(ctx context.Context, pref *domain.AlertPreference) error {
	return r.base.update(ctx, pref)
}

func (r *PreferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AlertPreference, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *PreferenceRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AlertPreference], error) {
	return r.base.list(ctx, opts)
}

func (r *PreferenceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.base.softDelete(ctx, id); err != nil {
		return err
	}
	for key, indexed := range r.bySubject {
		if indexed == id {
			delete(r.bySubject, key)
			break
		}
	}
	return nil
}

func (r *PreferenceRepository) GetBySubject(ctx context.Context, subjectType, subjectID string) (*domain.AlertPreference, error) {
	r.mu.RLock()
	id, ok := r.bySubject[subjectKey(subjectType, subjectID)]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.base.getByID(ctx, id, false)
}
