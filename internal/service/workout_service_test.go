package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateWorkoutWeeklySeries(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	created, err := f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{
		ClientID: &anna.ID,
		Title:    "Strength",
		Start:    at(1, 10), // Monday
		End:      at(1, 11),
		Recurrence: &schedule.Rule{
			Frequency:   schedule.Weekly,
			DaysOfWeek:  []int{1, 5},
			Occurrences: ptr(4),
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 4)

	wantStarts := []time.Time{at(1, 10), at(5, 10), at(8, 10), at(12, 10)}
	for i, w := range created {
		assert.Equal(t, wantStarts[i], w.Start)
		assert.Equal(t, time.Hour, w.Duration())
		assert.Equal(t, anna.ID, w.UserID)
		require.NotNil(t, w.TrainerID)
		assert.Equal(t, coach.ID, *w.TrainerID)
		assert.Equal(t, domain.AttendanceScheduled, w.Attendance)
		require.NotNil(t, w.RecurrenceSeriesID)
		assert.Equal(t, created[0].ID, *w.RecurrenceSeriesID)
	}

	series, err := f.store.Workouts().GetBySeriesID(f.ctx, created[0].ID)
	require.NoError(t, err)
	assert.Len(t, series, 4)
}

func TestCreateSingleWorkoutHasNoSeries(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)

	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(2, 7), End: at(2, 8)})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].RecurrenceSeriesID)
	assert.Nil(t, created[0].TrainerID)
	assert.Equal(t, anna.ID, created[0].UserID)
}

func TestCreateWorkoutContinuesSeries(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	first, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{
		Title: "Yoga", Start: at(3, 18), End: at(3, 19),
		Recurrence: &schedule.Rule{Frequency: schedule.Daily, Occurrences: ptr(2)},
	})
	require.NoError(t, err)

	extra, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{
		Title: "Yoga", Start: at(10, 18), End: at(10, 19),
		RecurrenceSeriesID: first[0].RecurrenceSeriesID,
	})
	require.NoError(t, err)
	assert.Equal(t, first[0].RecurrenceSeriesID, extra[0].RecurrenceSeriesID)
}

func TestContinuingSeriesStaysOnItsCalendar(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	series, err := f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{
		ClientID: &anna.ID, Title: "PT", Start: at(1, 9), End: at(1, 10),
		Recurrence: &schedule.Rule{Frequency: schedule.Weekly, Occurrences: ptr(2)},
	})
	require.NoError(t, err)
	seriesID := series[0].RecurrenceSeriesID

	_, err = f.workouts.Create(f.ctx, actorOf(boris), CreateWorkoutInput{
		Title: "PT", Start: at(20, 9), End: at(20, 10), RecurrenceSeriesID: seriesID,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// The coach's own calendar is not Anna's either.
	_, err = f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{
		Title: "PT", Start: at(20, 9), End: at(20, 10), RecurrenceSeriesID: seriesID,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	unknown := primitive.NewObjectID()
	_, err = f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{
		Title: "PT", Start: at(20, 9), End: at(20, 10), RecurrenceSeriesID: &unknown,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	extra, err := f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{
		ClientID: &anna.ID, Title: "PT", Start: at(20, 9), End: at(20, 10), RecurrenceSeriesID: seriesID,
	})
	require.NoError(t, err)
	assert.Equal(t, seriesID, extra[0].RecurrenceSeriesID)

	members, err := f.store.Workouts().GetBySeriesID(f.ctx, *seriesID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestCreateWorkoutValidation(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	bad := domain.WorkoutFormat("hybrid")

	cases := map[string]CreateWorkoutInput{
		"empty title":   {Title: " ", Start: at(1, 10), End: at(1, 11)},
		"end too early": {Title: "Run", Start: at(1, 10), End: at(1, 10)},
		"bad format":    {Title: "Run", Start: at(1, 10), End: at(1, 11), Format: &bad},
		"bad frequency": {Title: "Run", Start: at(1, 10), End: at(1, 11), Recurrence: &schedule.Rule{Frequency: "yearly"}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.workouts.Create(f.ctx, actorOf(anna), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateWorkoutParticipants(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	other := f.trainer(t, "Other")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)
	slot := func(in CreateWorkoutInput) CreateWorkoutInput {
		in.Title, in.Start, in.End = "Session", at(4, 9), at(4, 10)
		return in
	}

	t.Run("client books with own trainer", func(t *testing.T) {
		created, err := f.workouts.Create(f.ctx, actorOf(anna), slot(CreateWorkoutInput{TrainerID: &coach.ID}))
		require.NoError(t, err)
		assert.Equal(t, anna.ID, created[0].UserID)
		assert.Equal(t, coach.ID, *created[0].TrainerID)
	})
	t.Run("client books with another trainer", func(t *testing.T) {
		_, err := f.workouts.Create(f.ctx, actorOf(anna), slot(CreateWorkoutInput{TrainerID: &other.ID}))
		assert.ErrorIs(t, err, ErrForbidden)
	})
	t.Run("client books with a missing trainer", func(t *testing.T) {
		missing := primitive.NewObjectID()
		_, err := f.workouts.Create(f.ctx, actorOf(anna), slot(CreateWorkoutInput{TrainerID: &missing}))
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("trainer schedules an unlinked client", func(t *testing.T) {
		_, err := f.workouts.Create(f.ctx, actorOf(coach), slot(CreateWorkoutInput{ClientID: &boris.ID}))
		assert.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("trainer schedules for self", func(t *testing.T) {
		created, err := f.workouts.Create(f.ctx, actorOf(coach), slot(CreateWorkoutInput{}))
		require.NoError(t, err)
		assert.Equal(t, coach.ID, created[0].UserID)
		assert.Nil(t, created[0].TrainerID)
	})
}

func TestCreateWorkoutProgramDayChecks(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	boris := f.client(t, "Boris", nil)

	program, err := f.programs.CreateProgram(f.ctx, actorOf(boris), CreateProgramInput{Title: "Boris plan"})
	require.NoError(t, err)
	day, err := f.programs.CreateDay(f.ctx, actorOf(boris), program.ID, CreateDayInput{Name: "Legs"})
	require.NoError(t, err)

	unknown := primitive.NewObjectID()
	_, err = f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(1, 10), End: at(1, 11), ProgramDayID: &unknown})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(1, 10), End: at(1, 11), ProgramDayID: &day.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	created, err := f.workouts.Create(f.ctx, actorOf(boris), CreateWorkoutInput{Title: "Legs", Start: at(1, 10), End: at(1, 11), ProgramDayID: &day.ID})
	require.NoError(t, err)
	assert.Equal(t, day.ID, *created[0].ProgramDayID)
}

func TestListWorkouts(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", coach)
	stranger := f.client(t, "Stranger", nil)

	for _, c := range []*domain.User{anna, boris} {
		_, err := f.workouts.Create(f.ctx, actorOf(c), CreateWorkoutInput{Title: c.Name, Start: at(2, 9), End: at(2, 10)})
		require.NoError(t, err)
	}
	_, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Late", Start: at(20, 9), End: at(20, 10)})
	require.NoError(t, err)
	_, err = f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{Title: "Own", Start: at(3, 9), End: at(3, 10)})
	require.NoError(t, err)

	own, err := f.workouts.List(f.ctx, actorOf(coach), WorkoutListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Own", own[0].Title)

	all, err := f.workouts.List(f.ctx, actorOf(coach), WorkoutListFilter{TrainerView: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	to := at(10, 0)
	annaEarly, err := f.workouts.List(f.ctx, actorOf(coach), WorkoutListFilter{ClientID: &anna.ID, To: &to})
	require.NoError(t, err)
	require.Len(t, annaEarly, 1)
	assert.Equal(t, "Anna", annaEarly[0].Title)

	_, err = f.workouts.List(f.ctx, actorOf(coach), WorkoutListFilter{ClientID: &stranger.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	// A client only ever sees their own calendar.
	mine, err := f.workouts.List(f.ctx, actorOf(boris), WorkoutListFilter{ClientID: &anna.ID, TrainerView: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, boris.ID, mine[0].UserID)
}

func TestGetWorkoutAccess(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(1, 7), End: at(1, 8)})
	require.NoError(t, err)
	id := created[0].ID

	_, err = f.workouts.Get(f.ctx, actorOf(coach), id)
	assert.NoError(t, err)
	_, err = f.workouts.Get(f.ctx, actorOf(boris), id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.workouts.Get(f.ctx, actorOf(anna), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletingWorkoutConsumesPackage(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	require.NoError(t, f.store.Users().AddToWorkoutsPackage(f.ctx, anna.ID, 3))
	pkg := &domain.Payment{
		TrainerID: coach.ID, ClientID: anna.ID, Amount: 100, Date: at(1, 0),
		Type: domain.PaymentPackage, PackageSize: ptr(5), RemainingSessions: ptr(5),
	}
	_, err := f.store.Payments().Create(f.ctx, pkg)
	require.NoError(t, err)

	created, err := f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{ClientID: &anna.ID, Title: "PT", Start: at(2, 9), End: at(2, 10)})
	require.NoError(t, err)
	id := created[0].ID

	assertBalances := func(user, payment int) {
		t.Helper()
		assert.Equal(t, user, *f.reload(t, anna).WorkoutsPackage)
		p, err := f.store.Payments().GetByID(f.ctx, pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, payment, *p.RemainingSessions)
	}

	updated, err := f.workouts.Update(f.ctx, actorOf(coach), id, WorkoutPatch{Attendance: domain.Some(domain.AttendanceCompleted)})
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceCompleted, updated.Attendance)
	assertBalances(2, 4)

	_, err = f.workouts.Update(f.ctx, actorOf(coach), id, WorkoutPatch{Attendance: domain.Some(domain.AttendanceCompleted)})
	require.NoError(t, err)
	assertBalances(2, 4)

	_, err = f.workouts.Update(f.ctx, actorOf(coach), id, WorkoutPatch{Attendance: domain.Some(domain.AttendanceMissed)})
	require.NoError(t, err)
	assertBalances(2, 4)
}

// retryingTx runs every transaction twice, discarding the first attempt the
// way a driver retry after a transient commit error does.
type retryingTx struct{ inner repository.Transactor }

var errTransient = errors.New("transient commit error")

func (r retryingTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := r.inner.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		return err
	}
	return r.inner.WithinTransaction(ctx, fn)
}

func TestPackageMetricsRecordedOncePerCommit(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	require.NoError(t, f.store.Users().AddToWorkoutsPackage(f.ctx, anna.ID, 3))

	workouts := NewWorkoutService(retryingTx{f.store}, f.store.Users(), f.store.Workouts(), f.store.Programs(), f.store.ProgramDays(),
		f.finance, f.notifications, schedule.Expander{})
	created, err := workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{ClientID: &anna.ID, Title: "PT", Start: at(2, 9), End: at(2, 10)})
	require.NoError(t, err)

	before := counterValue(t, "coach_app_package_sessions_consumed_total", "counter", "client")
	_, err = workouts.Update(f.ctx, actorOf(coach), created[0].ID, WorkoutPatch{Attendance: domain.Some(domain.AttendanceCompleted)})
	require.NoError(t, err)

	assert.Equal(t, 2, *f.reload(t, anna).WorkoutsPackage)
	assert.Equal(t, before+1, counterValue(t, "coach_app_package_sessions_consumed_total", "counter", "client"))
}

func TestCompletingWorkoutWithoutPackage(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(2, 9), End: at(2, 10)})
	require.NoError(t, err)

	_, err = f.workouts.Update(f.ctx, actorOf(anna), created[0].ID, WorkoutPatch{Attendance: domain.Some(domain.AttendanceCompleted)})
	require.NoError(t, err)
	assert.Nil(t, f.reload(t, anna).WorkoutsPackage)
}

func TestUpdateWorkoutPatch(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	note := "bring a towel"
	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Swim", Start: at(2, 9), End: at(2, 10), Location: "Pool", CoachNote: &note})
	require.NoError(t, err)
	id := created[0].ID

	updated, err := f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{
		Title:     domain.Some("Long swim"),
		End:       domain.Some(at(2, 11)),
		CoachNote: domain.Some[*string](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "Long swim", updated.Title)
	assert.Equal(t, "Pool", updated.Location)
	assert.Equal(t, 2*time.Hour, updated.Duration())
	assert.Nil(t, updated.CoachNote)

	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{Start: domain.Some(at(3, 9))})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{Start: domain.Some(time.Time{})})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{End: domain.Some(time.Time{})})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{Attendance: domain.Some(domain.Attendance("late"))})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := f.workouts.Get(f.ctx, actorOf(anna), id)
	require.NoError(t, err)
	assert.Equal(t, "Long swim", stored.Title)
}

func TestClientRescheduleNotifiesTrainer(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{TrainerID: &coach.ID, Title: "PT", Start: at(2, 9), End: at(2, 10)})
	require.NoError(t, err)
	id := created[0].ID

	feed := func() []domain.Notification {
		t.Helper()
		list, err := f.notifications.List(f.ctx, actorOf(coach), repository.NotificationFilter{})
		require.NoError(t, err)
		return list
	}

	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{Title: domain.Some("PT legs")})
	require.NoError(t, err)
	assert.Empty(t, feed())

	_, err = f.workouts.Update(f.ctx, actorOf(anna), id, WorkoutPatch{Start: domain.Some(at(2, 8)), End: domain.Some(at(2, 9))})
	require.NoError(t, err)
	list := feed()
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotificationWorkoutRescheduled, list[0].Type)
	assert.Equal(t, anna.ID, *list[0].SenderID)
	assert.Contains(t, list[0].Title, "Anna")
	assert.Contains(t, list[0].Link, id.Hex())
	assert.False(t, list[0].IsRead)

	_, err = f.workouts.Update(f.ctx, actorOf(coach), id, WorkoutPatch{Start: domain.Some(at(2, 7))})
	require.NoError(t, err)
	assert.Len(t, feed(), 1)
}

func TestUpdateWorkoutAccess(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	boris := f.client(t, "Boris", nil)
	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{Title: "Run", Start: at(2, 9), End: at(2, 10)})
	require.NoError(t, err)

	_, err = f.workouts.Update(f.ctx, actorOf(boris), created[0].ID, WorkoutPatch{Title: domain.Some("Mine")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.workouts.Update(f.ctx, actorOf(anna), primitive.NewObjectID(), WorkoutPatch{})
	assert.ErrorIs(t, err, ErrNotFound)

	unknown := primitive.NewObjectID()
	_, err = f.workouts.Update(f.ctx, actorOf(anna), created[0].ID, WorkoutPatch{ProgramDayID: domain.Some(&unknown)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteSingleWorkout(t *testing.T) {
	f := newFixture(t)
	anna := f.client(t, "Anna", nil)
	boris := f.client(t, "Boris", nil)
	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{
		Title: "Run", Start: at(1, 7), End: at(1, 8),
		Recurrence: &schedule.Rule{Frequency: schedule.Daily, Occurrences: ptr(3)},
	})
	require.NoError(t, err)

	_, err = f.workouts.Delete(f.ctx, actorOf(boris), created[0].ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := f.workouts.Delete(f.ctx, actorOf(anna), created[1].ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	series, err := f.store.Workouts().GetBySeriesID(f.ctx, *created[0].RecurrenceSeriesID)
	require.NoError(t, err)
	assert.Len(t, series, 2)

	_, err = f.workouts.Delete(f.ctx, actorOf(anna), created[1].ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSeriesSkipsTrainerProgramDays(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	program, err := f.programs.CreateProgram(f.ctx, actorOf(coach), CreateProgramInput{UserID: &anna.ID, Title: "Block A"})
	require.NoError(t, err)
	day, err := f.programs.CreateDay(f.ctx, actorOf(coach), program.ID, CreateDayInput{Name: "Push"})
	require.NoError(t, err)
	require.Equal(t, domain.OwnerTrainer, day.Owner)

	created, err := f.workouts.Create(f.ctx, actorOf(anna), CreateWorkoutInput{
		TrainerID: &coach.ID, Title: "PT", Start: at(1, 9), End: at(1, 10),
		Recurrence: &schedule.Rule{Frequency: schedule.Weekly, Occurrences: ptr(4)},
	})
	require.NoError(t, err)

	// The coach pins two sessions to their program day.
	for _, w := range created[2:] {
		_, err := f.workouts.Update(f.ctx, actorOf(coach), w.ID, WorkoutPatch{ProgramDayID: domain.Some(&day.ID)})
		require.NoError(t, err)
	}

	n, err := f.workouts.Delete(f.ctx, actorOf(anna), created[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := f.store.Workouts().GetBySeriesID(f.ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, w := range left {
		assert.Equal(t, day.ID, *w.ProgramDayID)
	}

	_, err = f.workouts.Delete(f.ctx, actorOf(anna), left[0].ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err = f.workouts.Delete(f.ctx, actorOf(coach), left[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTrainerSeriesDeleteRemovesOnlyLinkedClients(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	created, err := f.workouts.Create(f.ctx, actorOf(coach), CreateWorkoutInput{
		ClientID: &anna.ID, Title: "Group", Start: at(1, 18), End: at(1, 19),
		Recurrence: &schedule.Rule{Frequency: schedule.Weekly, Occurrences: ptr(3)},
	})
	require.NoError(t, err)
	seriesID := created[0].RecurrenceSeriesID

	// A series spanning a second, unlinked owner.
	for _, day := range []int{1, 8} {
		_, err := f.store.Workouts().Create(f.ctx, &domain.Workout{
			UserID: boris.ID, Title: "Group", Start: at(day, 18), End: at(day, 19), RecurrenceSeriesID: seriesID,
		})
		require.NoError(t, err)
	}

	n, err := f.workouts.Delete(f.ctx, actorOf(coach), created[1].ID, true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	left, err := f.store.Workouts().GetBySeriesID(f.ctx, *seriesID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, w := range left {
		assert.Equal(t, boris.ID, w.UserID)
	}
}
