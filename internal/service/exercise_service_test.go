package service

import (
	"testing"

	"alcyxob/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseLibraryVisibility(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", coach)
	loner := f.client(t, "Loner", nil)

	shared, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), ExerciseInput{Name: "Squat", MuscleGroups: "Legs"})
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityAll, shared.Visibility)

	personal, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), ExerciseInput{Name: "Band pull", Visibility: domain.VisibilityClient, ClientID: &anna.ID})
	require.NoError(t, err)
	private, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), ExerciseInput{Name: "Notes", Visibility: domain.VisibilityTrainer})
	require.NoError(t, err)

	names := func(list []domain.Exercise) []string {
		out := make([]string, len(list))
		for i, e := range list {
			out[i] = e.Name
		}
		return out
	}

	own, err := f.exercises.ListExercises(f.ctx, actorOf(coach))
	require.NoError(t, err)
	assert.Len(t, own, 3)

	forAnna, err := f.exercises.ListExercises(f.ctx, actorOf(anna))
	require.NoError(t, err)
	assert.Equal(t, []string{"Band pull", "Squat"}, names(forAnna))

	forBoris, err := f.exercises.ListExercises(f.ctx, actorOf(boris))
	require.NoError(t, err)
	assert.Equal(t, []string{"Squat"}, names(forBoris))

	none, err := f.exercises.ListExercises(f.ctx, actorOf(loner))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.exercises.GetExerciseByID(f.ctx, actorOf(anna), personal.ID)
	assert.NoError(t, err)
	_, err = f.exercises.GetExerciseByID(f.ctx, actorOf(boris), personal.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.exercises.GetExerciseByID(f.ctx, actorOf(anna), private.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.exercises.GetExerciseByID(f.ctx, actorOf(coach), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExerciseLibraryValidation(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	loner := f.client(t, "Loner", nil)

	cases := map[string]ExerciseInput{
		"no name":            {Name: " "},
		"unknown visibility": {Name: "x", Visibility: "friends"},
		"client without id":  {Name: "x", Visibility: domain.VisibilityClient},
		"id without client":  {Name: "x", Visibility: domain.VisibilityAll, ClientID: &anna.ID},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), ExerciseInput{Name: "x", Visibility: domain.VisibilityClient, ClientID: &loner.ID})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.exercises.CreateExercise(f.ctx, actorOf(anna), ExerciseInput{Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExerciseLibraryUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	other := f.trainer(t, "Other")
	anna := f.client(t, "Anna", coach)

	ex, err := f.exercises.CreateExercise(f.ctx, actorOf(coach), ExerciseInput{Name: "Squat"})
	require.NoError(t, err)

	updated, err := f.exercises.UpdateExercise(f.ctx, actorOf(coach), ex.ID, ExerciseInput{Name: "Front squat", Visibility: domain.VisibilityClient, ClientID: &anna.ID})
	require.NoError(t, err)
	assert.Equal(t, "Front squat", updated.Name)
	assert.Equal(t, anna.ID, *updated.ClientID)

	_, err = f.exercises.UpdateExercise(f.ctx, actorOf(other), ex.ID, ExerciseInput{Name: "Mine"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.exercises.DeleteExercise(f.ctx, actorOf(anna), ex.ID), ErrForbidden)

	require.NoError(t, f.exercises.DeleteExercise(f.ctx, actorOf(coach), ex.ID))
	assert.ErrorIs(t, f.exercises.DeleteExercise(f.ctx, actorOf(coach), ex.ID), ErrNotFound)
}
