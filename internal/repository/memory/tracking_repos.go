package memory

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func inRange(t time.Time, f repository.EntryFilter) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	return f.To == nil || !t.After(*f.To)
}

func matchesMetric(metricID primitive.ObjectID, f repository.EntryFilter) bool {
	return f.MetricID == nil || *f.MetricID == metricID
}

// --- Body metrics ---

type BodyMetricRepository struct{ s *Store }

var _ repository.BodyMetricRepository = (*BodyMetricRepository)(nil)

func (r *BodyMetricRepository) Create(ctx context.Context, metric *domain.BodyMetric) (primitive.ObjectID, error) {
	if metric.UserID == primitive.NilObjectID || metric.Label == "" {
		return primitive.NilObjectID, errors.New("body metric requires userId and label")
	}
	metric.ID = primitive.NewObjectID()
	metric.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.bodyMetrics[metric.ID] = clone(metric)
	return metric.ID, nil
}

func (r *BodyMetricRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.BodyMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.bodyMetrics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(m), nil
}

func (r *BodyMetricRepository) ListByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.BodyMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.bodyMetrics,
		func(m *domain.BodyMetric) bool { return m.UserID == userID },
		func(a, b *domain.BodyMetric) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r *BodyMetricRepository) SetTarget(ctx context.Context, id primitive.ObjectID, change domain.TargetChange) error {
	defer r.s.lockWrite(ctx)()
	m, ok := r.s.bodyMetrics[id]
	if !ok {
		return repository.ErrNotFound
	}
	c := clone(m)
	c.Target = change.Target
	c.TargetHistory = append(c.TargetHistory, change)
	r.s.bodyMetrics[id] = clone(c)
	return nil
}

func (r *BodyMetricRepository) AddEntry(ctx context.Context, entry *domain.BodyMetricEntry) (primitive.ObjectID, error) {
	if entry.MetricID == primitive.NilObjectID || entry.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body metric entry requires metricId and userId")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.bodyEntries[entry.ID] = clone(entry)
	return entry.ID, nil
}

func (r *BodyMetricRepository) ListEntries(_ context.Context, f repository.EntryFilter) ([]domain.BodyMetricEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.bodyEntries, func(e *domain.BodyMetricEntry) bool {
		return e.UserID == f.UserID && matchesMetric(e.MetricID, f) && inRange(e.RecordedAt, f)
	}, func(a, b *domain.BodyMetricEntry) bool { return a.RecordedAt.After(b.RecordedAt) }), nil
}

// --- Exercise metrics ---

type ExerciseMetricRepository struct{ s *Store }

var _ repository.ExerciseMetricRepository = (*ExerciseMetricRepository)(nil)

func (r *ExerciseMetricRepository) Create(ctx context.Context, metric *domain.ExerciseMetric) (primitive.ObjectID, error) {
	if metric.UserID == primitive.NilObjectID || metric.Label == "" {
		return primitive.NilObjectID, errors.New("exercise metric requires userId and label")
	}
	metric.ID = primitive.NewObjectID()
	metric.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.exerciseMetrics[metric.ID] = clone(metric)
	return metric.ID, nil
}

func (r *ExerciseMetricRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.exerciseMetrics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(m), nil
}

func (r *ExerciseMetricRepository) ListByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.ExerciseMetric, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.exerciseMetrics,
		func(m *domain.ExerciseMetric) bool { return m.UserID == userID },
		func(a, b *domain.ExerciseMetric) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (r *ExerciseMetricRepository) AddEntry(ctx context.Context, entry *domain.ExerciseMetricEntry) (primitive.ObjectID, error) {
	if entry.MetricID == primitive.NilObjectID || entry.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise metric entry requires metricId and userId")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.exerciseEntries[entry.ID] = clone(entry)
	return entry.ID, nil
}

func (r *ExerciseMetricRepository) ListEntries(_ context.Context, f repository.EntryFilter) ([]domain.ExerciseMetricEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.exerciseEntries, func(e *domain.ExerciseMetricEntry) bool {
		return e.UserID == f.UserID && matchesMetric(e.MetricID, f) && inRange(e.Date, f)
	}, func(a, b *domain.ExerciseMetricEntry) bool { return a.Date.After(b.Date) }), nil
}

// --- Nutrition ---

type NutritionRepository struct{ s *Store }

var _ repository.NutritionRepository = (*NutritionRepository)(nil)

// dayTaken reports whether another entry already holds userID's day. Caller holds mu.
func (r *NutritionRepository) dayTaken(e *domain.NutritionEntry) bool {
	for id, other := range r.s.nutrition {
		if id != e.ID && other.UserID == e.UserID && other.Day == e.Day {
			return true
		}
	}
	return false
}

func (r *NutritionRepository) Create(ctx context.Context, entry *domain.NutritionEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.Day == "" {
		return primitive.NilObjectID, errors.New("nutrition entry requires userId and day")
	}
	defer r.s.lockWrite(ctx)()
	entry.ID = primitive.NewObjectID()
	if r.dayTaken(entry) {
		entry.ID = primitive.NilObjectID
		return primitive.NilObjectID, repository.ErrDuplicateKey
	}
	entry.CreatedAt = now()
	entry.UpdatedAt = entry.CreatedAt
	r.s.nutrition[entry.ID] = clone(entry)
	return entry.ID, nil
}

func (r *NutritionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.NutritionEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.nutrition[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(e), nil
}

func (r *NutritionRepository) GetByDay(_ context.Context, userID primitive.ObjectID, day string) (*domain.NutritionEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.nutrition {
		if e.UserID == userID && e.Day == day {
			return clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *NutritionRepository) List(_ context.Context, f repository.EntryFilter) ([]domain.NutritionEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.nutrition, func(e *domain.NutritionEntry) bool {
		return e.UserID == f.UserID && inRange(e.Date, f)
	}, func(a, b *domain.NutritionEntry) bool { return a.Date.After(b.Date) }), nil
}

func (r *NutritionRepository) Update(ctx context.Context, entry *domain.NutritionEntry) error {
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.nutrition[entry.ID]
	if !ok || stored.UserID != entry.UserID {
		return repository.ErrNotFound
	}
	if r.dayTaken(entry) {
		return repository.ErrDuplicateKey
	}
	entry.CreatedAt = stored.CreatedAt
	entry.UpdatedAt = now()
	r.s.nutrition[entry.ID] = clone(entry)
	return nil
}

func (r *NutritionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.nutrition[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.nutrition, id)
	return nil
}

// --- Trainer notes ---

type NoteRepository struct{ s *Store }

var _ repository.NoteRepository = (*NoteRepository)(nil)

func (r *NoteRepository) Create(ctx context.Context, note *domain.TrainerNote) (primitive.ObjectID, error) {
	if note.TrainerID == primitive.NilObjectID || note.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("note requires trainerId and clientId")
	}
	note.ID = primitive.NewObjectID()
	note.CreatedAt = now()
	note.UpdatedAt = note.CreatedAt
	defer r.s.lockWrite(ctx)()
	r.s.notes[note.ID] = clone(note)
	return note.ID, nil
}

func (r *NoteRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainerNote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(n), nil
}

func (r *NoteRepository) List(_ context.Context, f repository.NoteFilter) ([]domain.TrainerNote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.notes, func(n *domain.TrainerNote) bool {
		if f.TrainerID != nil && n.TrainerID != *f.TrainerID {
			return false
		}
		return f.ClientID == nil || n.ClientID == *f.ClientID
	}, func(a, b *domain.TrainerNote) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

func (r *NoteRepository) Update(ctx context.Context, note *domain.TrainerNote) error {
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.notes[note.ID]
	if !ok || stored.TrainerID != note.TrainerID {
		return repository.ErrNotFound
	}
	note.CreatedAt = stored.CreatedAt
	note.UpdatedAt = now()
	r.s.notes[note.ID] = clone(note)
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.notes, id)
	return nil
}
