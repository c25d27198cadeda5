package memory

import (
	"context"
	"strings"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ScheduleRepository struct {
	base baseMemoryRepo[domain.DndSchedule]
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{
		base: newBaseMemoryRepo("dnd_schedule", func(s *domain.DndSchedule) *domain.RecordMeta { return &s.RecordMeta }),
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
	result, err := r.base.list(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	var matched []domain.DndSchedule
	for _, schedule := range result.Items {
		if strings.EqualFold(schedule.SubjectType, subjectType) && schedule.SubjectID == subjectID {
			matched = append(matched, schedule)
		}
	}
	return matched, nil
}
