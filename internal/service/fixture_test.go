package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository/memory"
	"alcyxob/coach-app/internal/schedule"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixture wires every service over one in-memory store, the same way the
// server does.
type fixture struct {
	ctx   context.Context
	store *memory.Store

	finance       *financeService
	notifications NotificationService
	workouts      WorkoutService
	programs      ProgramService
	exercises     ExerciseService
	trainers      TrainerService
	tracking      MetricsService
	nutrition     NutritionService
	notes         NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	finance := NewFinanceService(store, store.Users(), store.Payments()).(*financeService)
	notifications := NewNotificationService(store.Notifications())
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		finance:       finance,
		notifications: notifications,
		workouts: NewWorkoutService(store, store.Users(), store.Workouts(), store.Programs(), store.ProgramDays(),
			finance, notifications, schedule.Expander{}),
		programs:  NewProgramService(store, store.Users(), store.Programs(), store.ProgramDays(), store.Workouts()),
		exercises: NewExerciseService(store.Exercises(), store.Users()),
		trainers:  NewTrainerService(store.Users()),
		tracking:  NewMetricsService(store.Users(), store.BodyMetrics(), store.ExerciseMetrics()),
		nutrition: NewNutritionService(store, store.Users(), store.Nutrition()),
		notes:     NewNoteService(store.Users(), store.Notes(), notifications),
	}
}

func (f *fixture) trainer(t *testing.T, name string) *domain.User {
	return f.addUser(t, name, domain.RoleTrainer, nil)
}

func (f *fixture) client(t *testing.T, name string, trainer *domain.User) *domain.User {
	var trainerID *primitive.ObjectID
	if trainer != nil {
		id := trainer.ID
		trainerID = &id
	}
	return f.addUser(t, name, domain.RoleClient, trainerID)
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role, trainerID *primitive.ObjectID) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "x",
		Role:         role,
		TrainerID:    trainerID,
	}
	_, err := f.store.Users().Create(f.ctx, u)
	require.NoError(t, err)
	return u
}

func (f *fixture) reload(t *testing.T, u *domain.User) *domain.User {
	t.Helper()
	got, err := f.store.Users().GetByID(f.ctx, u.ID)
	require.NoError(t, err)
	return got
}

func actorOf(u *domain.User) domain.Actor {
	return domain.ActorFromUser(u)
}

func ptr[T any](v T) *T { return &v }

func at(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

// counterValue reads one labelled counter from the default registry, or 0
// before it was first incremented.
func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
