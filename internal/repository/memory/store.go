// Package memory is an in-process implementation of the repository
// interfaces. It backs the "memory" database driver and the service tests.
package memory

import (
	"alcyxob/coach-app/internal/domain"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// Store holds every collection. Stored values are never mutated in place:
// writes replace the map entry with a fresh copy, so a snapshot only needs
// to copy the maps.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         map[primitive.ObjectID]*domain.User
	workouts      map[primitive.ObjectID]*domain.Workout
	programs      map[primitive.ObjectID]*domain.TrainingProgram
	days          map[primitive.ObjectID]*domain.ProgramDay
	payments      map[primitive.ObjectID]*domain.Payment
	notifications map[primitive.ObjectID]*domain.Notification
	exercises     map[primitive.ObjectID]*domain.Exercise

	bodyMetrics     map[primitive.ObjectID]*domain.BodyMetric
	bodyEntries     map[primitive.ObjectID]*domain.BodyMetricEntry
	exerciseMetrics map[primitive.ObjectID]*domain.ExerciseMetric
	exerciseEntries map[primitive.ObjectID]*domain.ExerciseMetricEntry
	nutrition       map[primitive.ObjectID]*domain.NutritionEntry
	notes           map[primitive.ObjectID]*domain.TrainerNote
}

func NewStore() *Store {
	return &Store{
		users:         map[primitive.ObjectID]*domain.User{},
		workouts:      map[primitive.ObjectID]*domain.Workout{},
		programs:      map[primitive.ObjectID]*domain.TrainingProgram{},
		days:          map[primitive.ObjectID]*domain.ProgramDay{},
		payments:      map[primitive.ObjectID]*domain.Payment{},
		notifications: map[primitive.ObjectID]*domain.Notification{},
		exercises:     map[primitive.ObjectID]*domain.Exercise{},

		bodyMetrics:     map[primitive.ObjectID]*domain.BodyMetric{},
		bodyEntries:     map[primitive.ObjectID]*domain.BodyMetricEntry{},
		exerciseMetrics: map[primitive.ObjectID]*domain.ExerciseMetric{},
		exerciseEntries: map[primitive.ObjectID]*domain.ExerciseMetricEntry{},
		nutrition:       map[primitive.ObjectID]*domain.NutritionEntry{},
		notes:           map[primitive.ObjectID]*domain.TrainerNote{},
	}
}

// WithinTransaction serialises transactions and restores the pre-transaction
// state when fn fails. Nested calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lockWrite takes the write lock for a repository mutation. Outside a
// transaction it also waits for any running transaction, so a rollback never
// drops a write made concurrently with it.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Store{
		users:         copyMap(s.users),
		workouts:      copyMap(s.workouts),
		programs:      copyMap(s.programs),
		days:          copyMap(s.days),
		payments:      copyMap(s.payments),
		notifications: copyMap(s.notifications),
		exercises:     copyMap(s.exercises),

		bodyMetrics:     copyMap(s.bodyMetrics),
		bodyEntries:     copyMap(s.bodyEntries),
		exerciseMetrics: copyMap(s.exerciseMetrics),
		exerciseEntries: copyMap(s.exerciseEntries),
		nutrition:       copyMap(s.nutrition),
		notes:           copyMap(s.notes),
	}
}

func (s *Store) restore(snap *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.workouts = snap.workouts
	s.programs = snap.programs
	s.days = snap.days
	s.payments = snap.payments
	s.notifications = snap.notifications
	s.exercises = snap.exercises
	s.bodyMetrics = snap.bodyMetrics
	s.bodyEntries = snap.bodyEntries
	s.exerciseMetrics = snap.exerciseMetrics
	s.exerciseEntries = snap.exerciseEntries
	s.nutrition = snap.nutrition
	s.notes = snap.notes
}

func copyMap[V any](m map[primitive.ObjectID]*V) map[primitive.ObjectID]*V {
	out := make(map[primitive.ObjectID]*V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone deep-copies through BSON so the in-memory store stores exactly what
// MongoDB would (millisecond times in UTC included).
func clone[T any](v *T) *T {
	data, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

// collect copies out every value matching keep, ordered by less.
func collect[V any](m map[primitive.ObjectID]*V, keep func(*V) bool, less func(a, b *V) bool) []V {
	matched := make([]*V, 0)
	for _, v := range m {
		if keep(v) {
			matched = append(matched, v)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	out := make([]V, len(matched))
	for i, v := range matched {
		out[i] = *clone(v)
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Accessors returning the repository views of the store.

func (s *Store) Users() *UserRepository                     { return &UserRepository{s} }
func (s *Store) Workouts() *WorkoutRepository               { return &WorkoutRepository{s} }
func (s *Store) Programs() *ProgramRepository               { return &ProgramRepository{s} }
func (s *Store) ProgramDays() *ProgramDayRepository         { return &ProgramDayRepository{s} }
func (s *Store) Payments() *PaymentRepository               { return &PaymentRepository{s} }
func (s *Store) Notifications() *NotificationRepository     { return &NotificationRepository{s} }
func (s *Store) Exercises() *ExerciseRepository             { return &ExerciseRepository{s} }
func (s *Store) BodyMetrics() *BodyMetricRepository         { return &BodyMetricRepository{s} }
func (s *Store) ExerciseMetrics() *ExerciseMetricRepository { return &ExerciseMetricRepository{s} }
func (s *Store) Nutrition() *NutritionRepository            { return &NutritionRepository{s} }
func (s *Store) Notes() *NoteRepository                     { return &NoteRepository{s} }
