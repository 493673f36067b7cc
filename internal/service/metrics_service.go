package service

import (
	"alcyxob/coach-app/internal/access"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMetricNotFound      = notFound("metric")
	ErrOtherUsersData      = forbidden("only trainers can read another user's data")
	ErrMetricLabelRequired = invalid("label is required")
)

type CreateBodyMetricInput struct {
	Label  string
	Unit   string
	Target *float64
}

type BodyEntryInput struct {
	MetricID   primitive.ObjectID
	Value      float64
	RecordedAt time.Time // Zero means now
}

type CreateExerciseMetricInput struct {
	Label       string
	MuscleGroup string
}

type ExerciseEntryInput struct {
	MetricID    primitive.ObjectID
	Date        time.Time // Zero means now
	Weight      *float64
	Repetitions *int
	Sets        *int
}

// TrackingFilter selects whose entries to read. UserID lets a trainer read a
// linked client's data; nil means the caller's own.
type TrackingFilter struct {
	UserID   *primitive.ObjectID
	MetricID *primitive.ObjectID
	From     *time.Time
	To       *time.Time
}

// MetricsService tracks body measurements and exercise progress. Users write
// their own metrics; a trainer can read those of linked clients.
type MetricsService interface {
	CreateBodyMetric(ctx context.Context, actor domain.Actor, in CreateBodyMetricInput) (*domain.BodyMetric, error)
	ListBodyMetrics(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.BodyMetric, error)
	SetBodyMetricTarget(ctx context.Context, actor domain.Actor, id primitive.ObjectID, target *float64) (*domain.BodyMetric, error)
	BodyTargetHistory(ctx context.Context, actor domain.Actor, metricID, userID *primitive.ObjectID) ([]domain.TargetChange, error)
	AddBodyEntry(ctx context.Context, actor domain.Actor, in BodyEntryInput) (*domain.BodyMetricEntry, error)
	ListBodyEntries(ctx context.Context, actor domain.Actor, filter TrackingFilter) ([]domain.BodyMetricEntry, error)

	CreateExerciseMetric(ctx context.Context, actor domain.Actor, in CreateExerciseMetricInput) (*domain.ExerciseMetric, error)
	ListExerciseMetrics(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.ExerciseMetric, error)
	AddExerciseEntry(ctx context.Context, actor domain.Actor, in ExerciseEntryInput) (*domain.ExerciseMetricEntry, error)
	ListExerciseEntries(ctx context.Context, actor domain.Actor, filter TrackingFilter) ([]domain.ExerciseMetricEntry, error)
}

type metricsService struct {
	userRepo     repository.UserRepository
	bodyRepo     repository.BodyMetricRepository
	exerciseRepo repository.ExerciseMetricRepository
	now          func() time.Time
}

// NewMetricsService creates a new instance of metricsService.
func NewMetricsService(userRepo repository.UserRepository, bodyRepo repository.BodyMetricRepository, exerciseRepo repository.ExerciseMetricRepository) MetricsService {
	return &metricsService{
		userRepo:     userRepo,
		bodyRepo:     bodyRepo,
		exerciseRepo: exerciseRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// trackedUser resolves whose tracking data a read targets: the actor, or a
// user the actor manages. An unlinked user is reported as a missing client.
func trackedUser(ctx context.Context, users repository.UserRepository, actor domain.Actor, userID *primitive.ObjectID) (primitive.ObjectID, error) {
	if userID == nil || *userID == actor.ID {
		return actor.ID, nil
	}
	if !actor.IsTrainer() {
		return primitive.NilObjectID, ErrOtherUsersData
	}
	u, err := loadUser(ctx, users, *userID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !access.ManagesUser(actor, u) {
		return primitive.NilObjectID, ErrClientNotFound
	}
	return u.ID, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// --- Body metrics ---

func (s *metricsService) CreateBodyMetric(ctx context.Context, actor domain.Actor, in CreateBodyMetricInput) (*domain.BodyMetric, error) {
	label, unit := strings.TrimSpace(in.Label), strings.TrimSpace(in.Unit)
	if label == "" {
		return nil, ErrMetricLabelRequired
	}
	if unit == "" {
		return nil, invalid("unit is required")
	}
	if in.Target != nil && !finite(*in.Target) {
		return nil, invalid("target must be a finite number")
	}
	metric := &domain.BodyMetric{UserID: actor.ID, Label: label, Unit: unit, Target: in.Target}
	if _, err := s.bodyRepo.Create(ctx, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *metricsService) ListBodyMetrics(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.BodyMetric, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, userID)
	if err != nil {
		return nil, err
	}
	return s.bodyRepo.ListByUserID(ctx, subject)
}

// ownBodyMetric loads a body metric the actor owns; anyone else's looks missing.
func (s *metricsService) ownBodyMetric(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.BodyMetric, error) {
	m, err := s.bodyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	if m.UserID != actor.ID {
		return nil, ErrMetricNotFound
	}
	return m, nil
}

// SetBodyMetricTarget replaces the target (nil clears it) and records the change.
func (s *metricsService) SetBodyMetricTarget(ctx context.Context, actor domain.Actor, id primitive.ObjectID, target *float64) (*domain.BodyMetric, error) {
	if target != nil && !finite(*target) {
		return nil, invalid("target must be a finite number")
	}
	if _, err := s.ownBodyMetric(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.bodyRepo.SetTarget(ctx, id, domain.TargetChange{Target: target, ChangedAt: s.now()}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return s.bodyRepo.GetByID(ctx, id)
}

// BodyTargetHistory lists target changes newest first. A missing metricID,
// or a metric that does not belong to the resolved user, yields an empty list.
func (s *metricsService) BodyTargetHistory(ctx context.Context, actor domain.Actor, metricID, userID *primitive.ObjectID) ([]domain.TargetChange, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, userID)
	if err != nil {
		return nil, err
	}
	history := []domain.TargetChange{}
	if metricID == nil {
		return history, nil
	}
	m, err := s.bodyRepo.GetByID(ctx, *metricID)
	if errors.Is(err, repository.ErrNotFound) {
		return history, nil
	}
	if err != nil {
		return nil, err
	}
	if m.UserID != subject {
		return history, nil
	}
	for i := len(m.TargetHistory) - 1; i >= 0; i-- {
		history = append(history, m.TargetHistory[i])
	}
	return history, nil
}

func (s *metricsService) AddBodyEntry(ctx context.Context, actor domain.Actor, in BodyEntryInput) (*domain.BodyMetricEntry, error) {
	if !finite(in.Value) {
		return nil, invalid("value must be a finite number")
	}
	m, err := s.ownBodyMetric(ctx, actor, in.MetricID)
	if err != nil {
		return nil, err
	}
	if in.RecordedAt.IsZero() {
		in.RecordedAt = s.now()
	}
	entry := &domain.BodyMetricEntry{MetricID: m.ID, UserID: m.UserID, Value: in.Value, RecordedAt: in.RecordedAt.UTC()}
	if _, err := s.bodyRepo.AddEntry(ctx, entry); err != nil {
		return nil, err
	}
	metrics.RecordTrackingEntry("body")
	return entry, nil
}

func (s *metricsService) ListBodyEntries(ctx context.Context, actor domain.Actor, f TrackingFilter) ([]domain.BodyMetricEntry, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, f.UserID)
	if err != nil {
		return nil, err
	}
	return s.bodyRepo.ListEntries(ctx, repository.EntryFilter{UserID: subject, MetricID: f.MetricID, From: f.From, To: f.To})
}

// --- Exercise metrics ---

func (s *metricsService) CreateExerciseMetric(ctx context.Context, actor domain.Actor, in CreateExerciseMetricInput) (*domain.ExerciseMetric, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, ErrMetricLabelRequired
	}
	metric := &domain.ExerciseMetric{UserID: actor.ID, Label: label, MuscleGroup: strings.TrimSpace(in.MuscleGroup)}
	if _, err := s.exerciseRepo.Create(ctx, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *metricsService) ListExerciseMetrics(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.ExerciseMetric, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, userID)
	if err != nil {
		return nil, err
	}
	return s.exerciseRepo.ListByUserID(ctx, subject)
}

func (s *metricsService) AddExerciseEntry(ctx context.Context, actor domain.Actor, in ExerciseEntryInput) (*domain.ExerciseMetricEntry, error) {
	if in.Weight != nil && (!finite(*in.Weight) || *in.Weight < 0) {
		return nil, invalid("weight cannot be negative")
	}
	if (in.Repetitions != nil && *in.Repetitions < 0) || (in.Sets != nil && *in.Sets < 0) {
		return nil, invalid("repetitions and sets cannot be negative")
	}
	m, err := s.exerciseRepo.GetByID(ctx, in.MetricID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	if m.UserID != actor.ID {
		return nil, ErrMetricNotFound
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	entry := &domain.ExerciseMetricEntry{
		MetricID:    m.ID,
		UserID:      m.UserID,
		Date:        in.Date.UTC(),
		Weight:      in.Weight,
		Repetitions: in.Repetitions,
		Sets:        in.Sets,
	}
	if _, err := s.exerciseRepo.AddEntry(ctx, entry); err != nil {
		return nil, err
	}
	metrics.RecordTrackingEntry("exercise")
	return entry, nil
}

func (s *metricsService) ListExerciseEntries(ctx context.Context, actor domain.Actor, f TrackingFilter) ([]domain.ExerciseMetricEntry, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, f.UserID)
	if err != nil {
		return nil, err
	}
	return s.exerciseRepo.ListEntries(ctx, repository.EntryFilter{UserID: subject, MetricID: f.MetricID, From: f.From, To: f.To})
}
