package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// StringList stores []string as JSON.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(value any) error {
	if s == nil {
		return errors.New("StringList: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return fmt.Errorf("StringList: unsupported type %T", value)
	}
}

// AlertPreference captures subject-scoped alert behavior settings.
type AlertPreference struct {
	bun.BaseModel `bun:"table:alert_preferences"`
	RecordMeta

	SubjectID   string `bun:",nullzero,notnull" json:"subject_id"`
	SubjectType string `bun:",nullzero,notnull" json:"subject_type"` // user, tenant, device, etc.

	VibeIntensity     VibeIntensity       `bun:",nullzero" json:"vibe_intensity,omitempty"`
	AlternativeDesign bool                `bun:",nullzero" json:"alternative_design,omitempty"`
	VibeDelay         bool                `bun:",nullzero" json:"vibe_delay,omitempty"`
	DndMode           DndNotificationMode `bun:",nullzero" json:"dnd_mode,omitempty"`
	DndManual         bool                `bun:",nullzero" json:"dnd_manual,omitempty"`

	QuietHours      JSONMap `bun:"type:jsonb,nullzero" json:"quiet_hours,omitempty"`
	AdditionalRules JSONMap `bun:"type:jsonb,nullzero" json:"additional_rules,omitempty"`
}

// DndSchedule models a recurring Do Not Disturb window for a subject.
type DndSchedule struct {
	bun.BaseModel `bun:"table:alert_dnd_schedules"`
	RecordMeta

	SubjectID   string `bun:",nullzero,notnull" json:"subject_id"`
	SubjectType string `bun:",nullzero,notnull" json:"subject_type"`

	// Start and End use the "15:04" clock format local to Timezone.
	Start    string     `bun:",nullzero" json:"start"`
	End      string     `bun:",nullzero" json:"end"`
	Timezone string     `bun:",nullzero" json:"timezone,omitempty"`
	Weekdays StringList `bun:"type:jsonb,nullzero" json:"weekdays,omitempty"`
	Enabled  bool       `bun:",nullzero" json:"enabled"`

	Metadata JSONMap `bun:"type:jsonb,nullzero" json:"metadata,omitempty"`
}
