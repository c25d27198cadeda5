package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/preferences"
	command "github.com/goliatone/go-command"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	UpsertPreference command.Commander[preferences.PreferenceInput]
	SetVibeIntensity command.Commander[SetVibeIntensity]
	SetDndMode       command.Commander[SetDndMode]
	SaveDndSchedule  command.Commander[preferences.ScheduleInput]
	ClearPreference  command.Commander[ClearPreference]
}

type preferenceService interface {
	Upsert(ctx context.Context, input preferences.PreferenceInput) (*domain.AlertPreference, error)
	Delete(ctx context.Context, subjectType, subjectID string) error
	SaveSchedule(ctx context.Context, input preferences.ScheduleInput) (*domain.DndSchedule, error)
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Preferences preferenceService
	Logger      logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Preferences == nil {
		return nil, errors.New("commands: preferences service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		UpsertPreference: preferenceUpsertCommand{svc: deps.Preferences},
		SetVibeIntensity: vibeIntensityCommand{svc: deps.Preferences},
		SetDndMode:       dndModeCommand{svc: deps.Preferences},
		SaveDndSchedule:  scheduleSaveCommand{svc: deps.Preferences},
		ClearPreference:  preferenceClearCommand{svc: deps.Preferences},
	}, nil
}

type preferenceUpsertCommand struct {
	svc preferenceService
}

func (c preferenceUpsertCommand) Execute(ctx context.Context, msg preferences.PreferenceInput) error {
	_, err := c.svc.Upsert(ctx, msg)
	return err
}

// SetVibeIntensity adjusts the stored haptic strength for a subject.
type SetVibeIntensity struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	Intensity   string `json:"intensity"`
}

type vibeIntensityCommand struct {
	svc preferenceService
}

func (c vibeIntensityCommand) Execute(ctx context.Context, msg SetVibeIntensity) error {
	intensity, err := domain.ParseVibeIntensity(msg.Intensity)
	if err != nil {
		return err
	}
	_, err = c.svc.Upsert(ctx, preferences.PreferenceInput{
		SubjectType:   msg.SubjectType,
		SubjectID:     msg.SubjectID,
		VibeIntensity: &intensity,
	})
	return err
}

// SetDndMode adjusts the DND notification mode, optionally toggling the
// manual DND switch in the same write.
type SetDndMode struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	Mode        string `json:"mode"`
	Manual      *bool  `json:"manual,omitempty"`
}

type dndModeCommand struct {
	svc preferenceService
}

func (c dndModeCommand) Execute(ctx context.Context, msg SetDndMode) error {
	mode, err := domain.ParseDndNotificationMode(msg.Mode)
	if err != nil {
		return err
	}
	_, err = c.svc.Upsert(ctx, preferences.PreferenceInput{
		SubjectType: msg.SubjectType,
		SubjectID:   msg.SubjectID,
		DndMode:     &mode,
		DndManual:   msg.Manual,
	})
	return err
}

type scheduleSaveCommand struct {
	svc preferenceService
}

func (c scheduleSaveCommand) Execute(ctx context.Context, msg preferences.ScheduleInput) error {
	_, err := c.svc.SaveSchedule(ctx, msg)
	return err
}

// ClearPreference removes the stored record so defaults apply again.
type ClearPreference struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
}

type preferenceClearCommand struct {
	svc preferenceService
}

func (c preferenceClearCommand) Execute(ctx context.Context, msg ClearPreference) error {
	if strings.TrimSpace(msg.SubjectID) == "" {
		return errors.New("commands: subject id is required")
	}
	return c.svc.Delete(ctx, msg.SubjectType, msg.SubjectID)
}
