package bunrepo

import (
	"context"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type PreferenceRepository struct {
	base baseRepository[domain.AlertPreference]
}

func NewPreferenceRepository(db *bun.DB) *PreferenceRepository {
	handlers := repository.ModelHandlers[*domain.AlertPreference]{
		NewRecord:          func() *domain.AlertPreference { return &domain.AlertPreference{} },
		GetID:              func(p *domain.AlertPreference) uuid.UUID { return p.ID },
		SetID:              func(p *domain.AlertPreference, id uuid.UUID) { p.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(p *domain.AlertPreference) string { return p.ID.String() },
	}
	return &PreferenceRepository{
		base: newBaseRepository[domain.AlertPreference](db, handlers, func(p *domain.AlertPreference) *domain.RecordMeta { return &p.RecordMeta }),
	}
}

func (r *PreferenceRepository) Create(ctx context.Context, pref *domain.AlertPreference) error {
	return r.base.create(ctx, pref)
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
	return r.base.softDelete(ctx, id)
}

func (r *PreferenceRepository) GetBySubject(ctx context.Context, subjectType, subjectID string) (*domain.AlertPreference, error) {
	record, err := r.base.repo.Get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(subject_type) = ?", store.NormalizeSubjectType(subjectType)).
				Where("subject_id = ?", subjectID)
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}
