package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-alerts/pkg/domain"
	"github.com/goliatone/go-alerts/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-alerts/pkg/interfaces/cache"
	"github.com/goliatone/go-alerts/pkg/interfaces/logger"
	"github.com/goliatone/go-alerts/pkg/interfaces/store"
	pkgoptions "github.com/goliatone/go-alerts/pkg/options"
	opts "github.com/goliatone/go-options"
)

// Broadcast topics emitted on preference mutations.
const (
	TopicPreferenceUpdated = "alerts.preference.updated"
	TopicPreferenceCleared = "alerts.preference.cleared"
	TopicScheduleSaved     = "alerts.schedule.saved"
)

// Reason identifiers used during evaluation.
const (
	ReasonDefault     = "default"
	ReasonStored      = "stored"
	ReasonManualDnd   = "manual-dnd"
	ReasonQuietHours  = "quiet-hours"
	ReasonDndSchedule = "dnd-schedule"
)

// QuietHoursWindow models a quiet hours schedule relative to a timezone.
type QuietHoursWindow struct {
	Start    string
	End      string
	Timezone string
}

// PreferenceInput captures persistence fields for CRUD operations.
type PreferenceInput struct {
	SubjectType       string                      `json:"subject_type"`
	SubjectID         string                      `json:"subject_id"`
	VibeIntensity     *domain.VibeIntensity       `json:"vibe_intensity,omitempty"`
	AlternativeDesign *bool                       `json:"alternative_design,omitempty"`
	VibeDelay         *bool                       `json:"vibe_delay,omitempty"`
	DndMode           *domain.DndNotificationMode `json:"dnd_mode,omitempty"`
	DndManual         *bool                       `json:"dnd_manual,omitempty"`
	QuietHours        *QuietHoursWindow           `json:"quiet_hours,omitempty"`
	Rules             domain.JSONMap              `json:"rules,omitempty"`
}

// ScheduleInput captures persistence fields for DND schedule upserts.
type ScheduleInput struct {
	SubjectType string         `json:"subject_type"`
	SubjectID   string         `json:"subject_id"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	Timezone    string         `json:"timezone,omitempty"`
	Weekdays    []string       `json:"weekdays,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
	Metadata    domain.JSONMap `json:"metadata,omitempty"`
}

// EvaluationRequest defines the scoped lookup performed by alert consumers.
type EvaluationRequest struct {
	Scopes    []pkgoptions.PreferenceScopeRef
	Timestamp time.Time
	// Defaults overrides the module baseline used for the lowest layer.
	Defaults *EffectiveAlerts
}

// EffectiveAlerts bundles the four alert preference values consumed by the
// alerting pipeline.
type EffectiveAlerts struct {
	VibeIntensity     domain.VibeIntensity
	AlternativeDesign bool
	VibeDelay         bool
	DndActive         bool
	DndMode           domain.DndNotificationMode
}

// EvaluationResult returns the computed state along with traces.
type EvaluationResult struct {
	Effective EffectiveAlerts
	Reason    string
	DndReason string
	VibeTrace opts.Trace
	DndTrace  opts.Trace
	Resolver  *pkgoptions.Resolver
}

// Dependencies wires repositories and logging into the service.
type Dependencies struct {
	Repository  store.AlertPreferenceRepository
	Schedules   store.DndScheduleRepository
	Logger      logger.Logger
	Cache       cache.Cache
	Broadcaster broadcaster.Broadcaster
	CacheTTL    time.Duration
	Clock       func() time.Time
	// Defaults replaces the built-in baseline used for the lowest layer.
	Defaults *EffectiveAlerts
	// Timezone applies to quiet-hours windows and schedules that carry no
	// timezone of their own.
	Timezone string
}

// Service persists alert preferences and evaluates scope-aware rules.
type Service struct {
	repo      store.AlertPreferenceRepository
	schedules store.DndScheduleRepository
	log       logger.Logger
	cache     cache.Cache
	broadcast broadcaster.Broadcaster
	ttl       time.Duration
	clock     func() time.Time
	defaults  EffectiveAlerts
	location  *time.Location
}

var (
	errRepositoryRequired = errors.New("preferences: repository is required")
)

// NewService constructs the preferences service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Repository == nil {
		return nil, errRepositoryRequired
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Cache == nil {
		deps.Cache = &cache.Nop{}
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = &broadcaster.Nop{}
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Minute
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	defaults := moduleDefaults()
	if deps.Defaults != nil {
		defaults = *deps.Defaults
	}
	location := time.UTC
	if tz := strings.TrimSpace(deps.Timezone); tz != "" && !strings.EqualFold(tz, "UTC") {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("preferences: invalid timezone %q: %w", deps.Timezone, err)
		}
		location = loc
	}
	return &Service{
		repo:      deps.Repository,
		schedules: deps.Schedules,
		log:       deps.Logger,
		cache:     deps.Cache,
		broadcast: deps.Broadcaster,
		ttl:       deps.CacheTTL,
		clock:     deps.Clock,
		defaults:  defaults,
		location:  location,
	}, nil
}

// Create persists a brand new preference record.
func (s *Service) Create(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetBySubject(ctx, input.SubjectType, input.SubjectID); err == nil {
		return nil, fmt.Errorf("preferences: record already exists for %s/%s", input.SubjectType, input.SubjectID)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	record := newPreferenceRecord(input)
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, TopicPreferenceUpdated, record)
	return record, nil
}

// Update mutates an existing preference record.
func (s *Service) Update(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	current, err := s.repo.GetBySubject(ctx, input.SubjectType, input.SubjectID)
	if err != nil {
		return nil, err
	}
	applyInput(current, input)
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, TopicPreferenceUpdated, current)
	return current, nil
}

// Upsert creates or updates a preference record.
func (s *Service) Upsert(ctx context.Context, input PreferenceInput) (*domain.AlertPreference, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	current, err := s.repo.GetBySubject(ctx, input.SubjectType, input.SubjectID)
	switch {
	case err == nil:
		applyInput(current, input)
		if err := s.repo.Update(ctx, current); err != nil {
			return nil, err
		}
		s.afterWrite(ctx, TopicPreferenceUpdated, current)
		return current, nil
	case errors.Is(err, store.ErrNotFound):
		record := newPreferenceRecord(input)
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, err
		}
		s.afterWrite(ctx, TopicPreferenceUpdated, record)
		return record, nil
	default:
		return nil, err
	}
}

// Delete soft deletes the preference record for the provided subject.
func (s *Service) Delete(ctx context.Context, subjectType, subjectID string) error {
	record, err := s.repo.GetBySubject(ctx, subjectType, subjectID)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, record.ID); err != nil {
		return err
	}
	s.afterWrite(ctx, TopicPreferenceCleared, record)
	return nil
}

// Get fetches the stored preference for a subject, consulting the cache first.
func (s *Service) Get(ctx context.Context, subjectType, subjectID string) (*domain.AlertPreference, error) {
	key := cacheKey(subjectType, subjectID)
	if value, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		if record, ok := value.(*domain.AlertPreference); ok && record != nil {
			// Hand out a copy so callers cannot mutate the cached record.
			clone := *record
			return &clone, nil
		}
	}
	record, err := s.repo.GetBySubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	cached := *record
	if err := s.cache.Set(ctx, key, &cached, s.ttl); err != nil {
		s.log.Warn("preference cache write failed", logger.Field{Key: "error", Value: err})
	}
	return record, nil
}

// List enumerates preference records using repository pagination.
func (s *Service) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AlertPreference], error) {
	return s.repo.List(ctx, opts)
}

// SaveSchedule persists a DND schedule window for a subject.
func (s *Service) SaveSchedule(ctx context.Context, input ScheduleInput) (*domain.DndSchedule, error) {
	if s.schedules == nil {
		return nil, errors.New("preferences: schedule repository not configured")
	}
	if err := validateSchedule(input); err != nil {
		return nil, err
	}
	record := &domain.DndSchedule{
		SubjectType: strings.TrimSpace(strings.ToLower(input.SubjectType)),
		SubjectID:   strings.TrimSpace(input.SubjectID),
		Start:       strings.TrimSpace(input.Start),
		End:         strings.TrimSpace(input.End),
		Timezone:    strings.TrimSpace(input.Timezone),
		Weekdays:    normalizeWeekdays(input.Weekdays),
		Enabled:     true,
		Metadata:    input.Metadata,
	}
	if input.Enabled != nil {
		record.Enabled = *input.Enabled
	}
	if err := s.schedules.Create(ctx, record); err != nil {
		return nil, err
	}
	s.publish(ctx, TopicScheduleSaved, record)
	return record, nil
}

// Schedules lists stored DND schedules for a subject.
func (s *Service) Schedules(ctx context.Context, subjectType, subjectID string) ([]domain.DndSchedule, error) {
	if s.schedules == nil {
		return nil, nil
	}
	return s.schedules.ListBySubject(ctx, subjectType, subjectID)
}

// Evaluate merges scope snapshots and computes the effective alert values.
func (s *Service) Evaluate(ctx context.Context, req EvaluationRequest) (EvaluationResult, error) {
	baseline := s.defaults
	if req.Defaults != nil {
		baseline = *req.Defaults
	}
	result := EvaluationResult{
		Effective: baseline,
		Reason:    ReasonDefault,
	}
	if len(req.Scopes) == 0 {
		return result, errors.New("preferences: at least one scope is required")
	}

	snapshotStore := pkgoptions.PreferenceSnapshotStore{Repository: s.repo}
	snapshots, err := snapshotStore.Load(ctx, req.Scopes)
	if err != nil {
		return result, err
	}
	stored := len(snapshots) > 0

	snapshots = append(snapshots, pkgoptions.Snapshot{
		Scope: opts.NewScope("defaults", opts.ScopePrioritySystem-1000, opts.WithScopeLabel("Defaults")),
		Data: map[string]any{
			"vibe_intensity":     string(baseline.VibeIntensity),
			"alternative_design": baseline.AlternativeDesign,
			"vibe_delay":         baseline.VibeDelay,
			"dnd": map[string]any{
				"mode":   string(baseline.DndMode),
				"manual": false,
			},
		},
	})

	resolver, err := pkgoptions.NewResolver(snapshots...)
	if err != nil {
		return result, err
	}
	result.Resolver = resolver

	if stored {
		result.Reason = ReasonStored
	}
	if intensity, trace, err := resolver.ResolveVibeIntensity("vibe_intensity"); err == nil {
		result.Effective.VibeIntensity = intensity
		result.VibeTrace = trace
	}
	if altDesign, _, err := resolver.ResolveBool("alternative_design"); err == nil {
		result.Effective.AlternativeDesign = altDesign
	}
	if vibeDelay, _, err := resolver.ResolveBool("vibe_delay"); err == nil {
		result.Effective.VibeDelay = vibeDelay
	}
	if mode, trace, err := resolver.ResolveDndMode("dnd.mode"); err == nil {
		result.Effective.DndMode = mode
		result.DndTrace = trace
	}

	ts := req.Timestamp
	if ts.IsZero() {
		ts = s.clock()
	}

	if manual, _, err := resolver.ResolveBool("dnd.manual"); err == nil && manual {
		result.Effective.DndActive = true
		result.DndReason = ReasonManualDnd
	}
	if !result.Effective.DndActive {
		if window, ok := resolveQuietHours(resolver); ok {
			window.fallback = s.location
			if window.contains(ts) {
				result.Effective.DndActive = true
				result.DndReason = ReasonQuietHours
			}
		}
	}
	if !result.Effective.DndActive && s.schedules != nil {
		active, err := s.scheduleActive(ctx, req.Scopes, ts)
		if err != nil {
			return result, err
		}
		if active {
			result.Effective.DndActive = true
			result.DndReason = ReasonDndSchedule
		}
	}

	return result, nil
}

func (s *Service) scheduleActive(ctx context.Context, refs []pkgoptions.PreferenceScopeRef, ts time.Time) (bool, error) {
	for _, ref := range refs {
		schedules, err := s.schedules.ListBySubject(ctx, ref.SubjectType, ref.SubjectID)
		if err != nil {
			return false, err
		}
		for _, schedule := range schedules {
			if !schedule.Enabled {
				continue
			}
			window := quietHours{
				start:    schedule.Start,
				end:      schedule.End,
				timezone: schedule.Timezone,
				fallback: s.location,
			}
			if !weekdayMatches(schedule.Weekdays, ts, window.location()) {
				continue
			}
			if window.contains(ts) {
				return true, nil
			}
		}
	}
	return false, nil
}

func cacheKey(subjectType, subjectID string) string {
	return fmt.Sprintf("alerts:pref:%s:%s", strings.ToLower(strings.TrimSpace(subjectType)), strings.TrimSpace(subjectID))
}

func (s *Service) afterWrite(ctx context.Context, topic string, record *domain.AlertPreference) {
	if err := s.cache.Delete(ctx, cacheKey(record.SubjectType, record.SubjectID)); err != nil {
		s.log.Warn("preference cache invalidation failed", logger.Field{Key: "error", Value: err})
	}
	s.publish(ctx, topic, record)
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	event := broadcaster.Event{Topic: topic, Payload: payload}
	if err := s.broadcast.Broadcast(ctx, event); err != nil {
		s.log.Warn("preference broadcast failed",
			logger.Field{Key: "topic", Value: topic},
			logger.Field{Key: "error", Value: err})
	}
}

func moduleDefaults() EffectiveAlerts {
	return EffectiveAlerts{
		VibeIntensity:     domain.DefaultVibeIntensity,
		AlternativeDesign: false,
		VibeDelay:         false,
		DndActive:         false,
		DndMode:           domain.DefaultDndNotificationMode,
	}
}

func newPreferenceRecord(input PreferenceInput) *domain.AlertPreference {
	record := &domain.AlertPreference{
		SubjectType: strings.TrimSpace(strings.ToLower(input.SubjectType)),
		SubjectID:   strings.TrimSpace(input.SubjectID),
	}
	applyInput(record, input)
	return record
}

func applyInput(record *domain.AlertPreference, input PreferenceInput) {
	if record == nil {
		return
	}
	if input.VibeIntensity != nil {
		record.VibeIntensity = *input.VibeIntensity
	}
	if input.AlternativeDesign != nil {
		record.AlternativeDesign = *input.AlternativeDesign
	}
	if input.VibeDelay != nil {
		record.VibeDelay = *input.VibeDelay
	}
	if input.DndMode != nil {
		record.DndMode = *input.DndMode
	}
	if input.DndManual != nil {
		record.DndManual = *input.DndManual
	}
	if quietMap, ok := quietHoursToJSON(input.QuietHours); ok {
		record.QuietHours = quietMap
	}
	if input.Rules != nil {
		record.AdditionalRules = copyJSONMap(input.Rules)
	}
}

func quietHoursToJSON(window *QuietHoursWindow) (domain.JSONMap, bool) {
	if window == nil {
		return nil, false
	}
	start := strings.TrimSpace(window.Start)
	end := strings.TrimSpace(window.End)
	if start == "" && end == "" {
		return nil, true
	}
	result := domain.JSONMap{
		"start": start,
		"end":   end,
	}
	if tz := strings.TrimSpace(window.Timezone); tz != "" {
		result["timezone"] = tz
	}
	return result, true
}

func copyJSONMap(src domain.JSONMap) domain.JSONMap {
	if len(src) == 0 {
		return nil
	}
	dst := make(domain.JSONMap, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func validateInput(input PreferenceInput) error {
	if strings.TrimSpace(input.SubjectType) == "" {
		return errors.New("preferences: subject type is required")
	}
	if strings.TrimSpace(input.SubjectID) == "" {
		return errors.New("preferences: subject id is required")
	}
	if input.VibeIntensity != nil && !input.VibeIntensity.IsValid() {
		return fmt.Errorf("preferences: invalid vibe intensity %q", *input.VibeIntensity)
	}
	if input.DndMode != nil && !input.DndMode.IsValid() {
		return fmt.Errorf("preferences: invalid dnd mode %q", *input.DndMode)
	}
	return nil
}

func validateSchedule(input ScheduleInput) error {
	if strings.TrimSpace(input.SubjectType) == "" {
		return errors.New("preferences: subject type is required")
	}
	if strings.TrimSpace(input.SubjectID) == "" {
		return errors.New("preferences: subject id is required")
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(input.Start)); err != nil {
		return fmt.Errorf("preferences: invalid schedule start %q", input.Start)
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(input.End)); err != nil {
		return fmt.Errorf("preferences: invalid schedule end %q", input.End)
	}
	for _, day := range input.Weekdays {
		if _, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]; !ok {
			return fmt.Errorf("preferences: invalid weekday %q", day)
		}
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func normalizeWeekdays(days []string) domain.StringList {
	if len(days) == 0 {
		return nil
	}
	out := make(domain.StringList, 0, len(days))
	for _, day := range days {
		out = append(out, strings.ToLower(strings.TrimSpace(day)))
	}
	return out
}

func weekdayMatches(days domain.StringList, ts time.Time, loc *time.Location) bool {
	if len(days) == 0 {
		return true
	}
	current := ts.In(loc).Weekday()
	for _, day := range days {
		if weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]; ok && weekday == current {
			return true
		}
	}
	return false
}

type quietHours struct {
	start    string
	end      string
	timezone string
	fallback *time.Location
}

func resolveQuietHours(resolver *pkgoptions.Resolver) (quietHours, bool) {
	if resolver == nil {
		return quietHours{}, false
	}
	value, _, err := resolver.Resolve("quiet_hours")
	if err != nil {
		return quietHours{}, false
	}
	switch v := value.(type) {
	case map[string]any:
		return quietHours{
			start:    asString(v["start"]),
			end:      asString(v["end"]),
			timezone: asString(v["timezone"]),
		}, true
	case domain.JSONMap:
		return quietHours{
			start:    asString(v["start"]),
			end:      asString(v["end"]),
			timezone: asString(v["timezone"]),
		}, true
	default:
		return quietHours{}, false
	}
}

func (q quietHours) location() *time.Location {
	if q.timezone != "" {
		if location, err := time.LoadLocation(q.timezone); err == nil {
			return location
		}
	}
	if q.fallback != nil {
		return q.fallback
	}
	return time.UTC
}

func (q quietHours) contains(ts time.Time) bool {
	if q.start == "" || q.end == "" {
		return false
	}
	loc := q.location()
	now := ts.In(loc)
	startClock, err := time.Parse("15:04", q.start)
	if err != nil {
		return false
	}
	endClock, err := time.Parse("15:04", q.end)
	if err != nil {
		return false
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)

	if !end.After(start) {
		// Wrap around midnight.
		end = end.Add(24 * time.Hour)
		if now.Before(start) {
			start = start.Add(-24 * time.Hour)
		}
	}
	if now.Before(start) || !now.Before(end) {
		return false
	}
	return true
}

func asString(value any) string {
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}
