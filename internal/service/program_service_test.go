package service

import (
	"testing"

	"alcyxob/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateProgramOwnerTags(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	own, err := f.programs.CreateProgram(f.ctx, actorOf(anna), CreateProgramInput{Title: "My plan"})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerClient, own.Owner)
	assert.Equal(t, anna.ID, own.UserID)

	forAnna, err := f.programs.CreateProgram(f.ctx, actorOf(coach), CreateProgramInput{UserID: &anna.ID, Title: "Coach plan"})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerTrainer, forAnna.Owner)
	assert.Equal(t, anna.ID, forAnna.UserID)

	_, err = f.programs.CreateProgram(f.ctx, actorOf(coach), CreateProgramInput{UserID: &boris.ID, Title: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.programs.CreateProgram(f.ctx, actorOf(anna), CreateProgramInput{UserID: &boris.ID, Title: "Nope"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.programs.CreateProgram(f.ctx, actorOf(anna), CreateProgramInput{Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.programs.ListPrograms(f.ctx, actorOf(coach), &anna.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	mine, err := f.programs.ListPrograms(f.ctx, actorOf(coach), nil)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestProgramAccess(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	program, err := f.programs.CreateProgram(f.ctx, actorOf(anna), CreateProgramInput{Title: "Plan"})
	require.NoError(t, err)

	_, err = f.programs.GetProgram(f.ctx, actorOf(coach), program.ID)
	assert.NoError(t, err)
	_, err = f.programs.GetProgram(f.ctx, actorOf(boris), program.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.programs.GetProgram(f.ctx, actorOf(anna), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.programs.UpdateProgram(f.ctx, actorOf(coach), program.ID, ProgramPatch{Description: domain.Some("four weeks")})
	require.NoError(t, err)
	assert.Equal(t, "Plan", updated.Title)
	assert.Equal(t, "four weeks", updated.Description)
}

func TestProgramDaysAndExercises(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	me := actorOf(anna)

	program, err := f.programs.CreateProgram(f.ctx, me, CreateProgramInput{Title: "Plan"})
	require.NoError(t, err)

	day, err := f.programs.CreateDay(f.ctx, me, program.ID, CreateDayInput{
		Name: "Upper",
		Blocks: []ProgramBlockInput{
			{Type: "warmup", Title: "Warm-up", Exercises: []ProgramExerciseInput{{Title: "Jumping jacks", DurationMinutes: ptr(5)}}},
			{Type: "main", Title: "Main", Exercises: []ProgramExerciseInput{
				{Title: "Bench", Sets: 4, Reps: ptr(8), WeightKg: ptr(60.0), RestSeconds: ptr(90)},
				{Title: "Row", Sets: 3, Reps: ptr(10)},
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, day.Order)
	assert.Equal(t, domain.OwnerClient, day.Owner)
	require.Len(t, day.Blocks, 2)
	assert.Equal(t, 1, day.Blocks[0].Exercises[0].Sets)
	assert.Equal(t, 1, day.Blocks[1].Exercises[1].Order)

	second, err := f.programs.CreateDay(f.ctx, me, program.ID, CreateDayInput{Name: "Lower"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	main := day.Blocks[1]
	added, err := f.programs.AddExercise(f.ctx, me, program.ID, day.ID, main.ID, ProgramExerciseInput{Title: "Dips", Sets: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Order)

	changed, err := f.programs.UpdateExercise(f.ctx, me, program.ID, day.ID, main.ID, added.ID, ProgramExercisePatch{
		Reps:     domain.Some(ptr(12)),
		WeightKg: domain.Some[*float64](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dips", changed.Title)
	assert.Equal(t, 12, *changed.Reps)

	_, err = f.programs.UpdateExercise(f.ctx, me, program.ID, day.ID, main.ID, added.ID, ProgramExercisePatch{Sets: domain.Some(0)})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.programs.DeleteExercise(f.ctx, me, program.ID, day.ID, main.ID, main.Exercises[0].ID))
	stored, err := f.programs.GetDay(f.ctx, me, program.ID, day.ID)
	require.NoError(t, err)
	titles := []string{}
	for _, ex := range stored.Block(main.ID).Exercises {
		titles = append(titles, ex.Title)
	}
	assert.Equal(t, []string{"Row", "Dips"}, titles)

	_, err = f.programs.AddExercise(f.ctx, me, program.ID, day.ID, primitive.NewObjectID(), ProgramExerciseInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.programs.GetDay(f.ctx, me, program.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	moved, err := f.programs.UpdateDay(f.ctx, me, program.ID, second.ID, DayPatch{Order: domain.Some(0), Notes: domain.Some("easy")})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, "Lower", moved.Name)
}

func TestClientCannotDeleteTrainerContent(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	program, err := f.programs.CreateProgram(f.ctx, actorOf(coach), CreateProgramInput{UserID: &anna.ID, Title: "Coach plan"})
	require.NoError(t, err)
	day, err := f.programs.CreateDay(f.ctx, actorOf(coach), program.ID, CreateDayInput{
		Name:   "Push",
		Blocks: []ProgramBlockInput{{Type: "main", Exercises: []ProgramExerciseInput{{Title: "Press"}}}},
	})
	require.NoError(t, err)
	block := day.Blocks[0]

	// The client may read and extend it.
	_, err = f.programs.GetProgram(f.ctx, actorOf(anna), program.ID)
	require.NoError(t, err)
	fly, err := f.programs.AddExercise(f.ctx, actorOf(anna), program.ID, day.ID, block.ID, ProgramExerciseInput{Title: "Fly"})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerClient, fly.Owner)

	err = f.programs.DeleteExercise(f.ctx, actorOf(anna), program.ID, day.ID, block.ID, block.Exercises[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.programs.DeleteDay(f.ctx, actorOf(anna), program.ID, day.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.programs.DeleteProgram(f.ctx, actorOf(anna), program.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.programs.DeleteProgram(f.ctx, actorOf(coach), program.ID))
}

func TestClientDeletesOwnContentInTrainerProgram(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	program, err := f.programs.CreateProgram(f.ctx, actorOf(coach), CreateProgramInput{UserID: &anna.ID, Title: "Coach plan"})
	require.NoError(t, err)
	coachDay, err := f.programs.CreateDay(f.ctx, actorOf(coach), program.ID, CreateDayInput{
		Name:   "Push",
		Blocks: []ProgramBlockInput{{Type: "main", Exercises: []ProgramExerciseInput{{Title: "Press"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerTrainer, coachDay.Blocks[0].Owner)
	assert.Equal(t, domain.OwnerTrainer, coachDay.Blocks[0].Exercises[0].Owner)

	own, err := f.programs.CreateDay(f.ctx, actorOf(anna), program.ID, CreateDayInput{
		Name:   "Extra cardio",
		Blocks: []ProgramBlockInput{{Type: "main", Exercises: []ProgramExerciseInput{{Title: "Bike"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerClient, own.Owner)
	assert.Equal(t, domain.OwnerClient, own.Blocks[0].Owner)
	assert.Equal(t, domain.OwnerClient, own.Blocks[0].Exercises[0].Owner)

	// The coach adds to Anna's day; she cannot remove that exercise.
	block := own.Blocks[0]
	row, err := f.programs.AddExercise(f.ctx, actorOf(coach), program.ID, own.ID, block.ID, ProgramExerciseInput{Title: "Row"})
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerTrainer, row.Owner)
	err = f.programs.DeleteExercise(f.ctx, actorOf(anna), program.ID, own.ID, block.ID, row.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Her own exercise in the coach's day goes, the coach's stays.
	mine, err := f.programs.AddExercise(f.ctx, actorOf(anna), program.ID, coachDay.ID, coachDay.Blocks[0].ID, ProgramExerciseInput{Title: "Curl"})
	require.NoError(t, err)
	require.NoError(t, f.programs.DeleteExercise(f.ctx, actorOf(anna), program.ID, coachDay.ID, coachDay.Blocks[0].ID, mine.ID))

	require.NoError(t, f.programs.DeleteExercise(f.ctx, actorOf(anna), program.ID, own.ID, block.ID, block.Exercises[0].ID))
	require.NoError(t, f.programs.DeleteDay(f.ctx, actorOf(anna), program.ID, own.ID))
	assert.ErrorIs(t, f.programs.DeleteDay(f.ctx, actorOf(anna), program.ID, coachDay.ID), ErrForbidden)

	days, err := f.programs.ListDays(f.ctx, actorOf(anna), program.ID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, coachDay.ID, days[0].ID)
}

func TestDeleteProgramUnlinksWorkouts(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	me := actorOf(anna)

	program, err := f.programs.CreateProgram(f.ctx, me, CreateProgramInput{Title: "Plan"})
	require.NoError(t, err)
	dayA, err := f.programs.CreateDay(f.ctx, me, program.ID, CreateDayInput{Name: "A"})
	require.NoError(t, err)
	dayB, err := f.programs.CreateDay(f.ctx, me, program.ID, CreateDayInput{Name: "B"})
	require.NoError(t, err)

	wa, err := f.workouts.Create(f.ctx, me, CreateWorkoutInput{Title: "A", Start: at(1, 9), End: at(1, 10), ProgramDayID: &dayA.ID})
	require.NoError(t, err)
	wb, err := f.workouts.Create(f.ctx, me, CreateWorkoutInput{Title: "B", Start: at(2, 9), End: at(2, 10), ProgramDayID: &dayB.ID})
	require.NoError(t, err)

	require.NoError(t, f.programs.DeleteDay(f.ctx, me, program.ID, dayA.ID))
	got, err := f.workouts.Get(f.ctx, me, wa[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProgramDayID)
	got, err = f.workouts.Get(f.ctx, me, wb[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ProgramDayID)

	require.NoError(t, f.programs.DeleteProgram(f.ctx, me, program.ID))
	got, err = f.workouts.Get(f.ctx, me, wb[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProgramDayID)

	_, err = f.store.ProgramDays().GetByID(f.ctx, dayB.ID)
	assert.Error(t, err)
	_, err = f.programs.GetProgram(f.ctx, me, program.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
