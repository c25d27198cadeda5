package bunrepo

import (
	"context"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ScheduleRepository struct {
	base baseRepository[domain.DndSchedule]
}

func NewScheduleRepository(db *bun.DB) *ScheduleRepository {
	handlers := repository.ModelHandlers[*domain.DndSchedule]{
		NewRecord:          func() *domain.DndSchedule { return &domain.DndSchedule{} },
		GetID:              func(s *domain.DndSchedule) uuid.UUID { return s.ID },
		SetID:              func(s *domain.DndSchedule, id uuid.UUID) { s.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(s *domain.DndSchedule) string { return s.ID.String() },
	}
	return &ScheduleRepository{
		base: newBaseRepository[domain.DndSchedule](db, handlers, func(s *domain.DndSchedule) *domain.RecordMeta { return &s.RecordMeta }),
	}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.DndSchedule) error {
	return r.base.create(ctx, schedule)
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *domain.DndSchedule) error {
	return r.base.update(ctx, schedule)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DndSchedule, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ScheduleRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.DndSchedule], error) {
	return r.base.list(ctx, opts)
}

func (r *ScheduleRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ScheduleRepository) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]domain.DndSchedule, error) {
	records, _, err := r.base.repo.List(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(subject_type) = ?", store.NormalizeSubjectType(subjectType)).
				Where("subject_id = ?", subjectID)
		},
		withoutDeleted(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	items := make([]domain.DndSchedule, len(records))
	for i, rec := range records {
		items[i] = *rec
	}
	return items, nil
}
