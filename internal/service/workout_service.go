package service

import (
	"alcyxob/coach-app/internal/access"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/schedule"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = notFound("workout")
	ErrWorkoutAccessDenied = forbidden("no access to this workout")
	ErrTrainerNotFound     = notFound("trainer")
	ErrTrainerNotLinked    = forbidden("you are not linked to this trainer")
	ErrInvalidTimeRange    = invalid("end must be after start")
	ErrSeriesNotFound      = notFound("recurrence series")
	ErrSeriesOtherCalendar = forbidden("recurrence series belongs to another calendar")
)

// CreateWorkoutInput describes a single workout or, with Recurrence set, a series.
type CreateWorkoutInput struct {
	// ClientID is used by a trainer scheduling for one of their clients.
	ClientID *primitive.ObjectID
	// TrainerID is used by a client booking with their trainer.
	TrainerID *primitive.ObjectID

	Title        string
	Start        time.Time
	End          time.Time
	Location     string
	Format       *domain.WorkoutFormat
	CoachNote    *string
	ProgramDayID *primitive.ObjectID

	Recurrence *schedule.Rule
	// RecurrenceSeriesID continues an existing series instead of starting one.
	RecurrenceSeriesID *primitive.ObjectID
}

// WorkoutListFilter selects whose calendar to read.
type WorkoutListFilter struct {
	From        *time.Time
	To          *time.Time
	ClientID    *primitive.ObjectID
	TrainerView bool // Trainer: every linked client's workouts
}

// WorkoutPatch holds the fields a caller explicitly supplied.
type WorkoutPatch struct {
	Title        domain.Field[string]
	Start        domain.Field[time.Time]
	End          domain.Field[time.Time]
	Location     domain.Field[string]
	Attendance   domain.Field[domain.Attendance]
	CoachNote    domain.Field[*string]
	ProgramDayID domain.Field[*primitive.ObjectID]
	Format       domain.Field[*domain.WorkoutFormat]
}

// WorkoutService schedules workouts and drives their attendance lifecycle.
type WorkoutService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateWorkoutInput) ([]domain.Workout, error)
	List(ctx context.Context, actor domain.Actor, filter WorkoutListFilter) ([]domain.Workout, error)
	Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Workout, error)
	Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch WorkoutPatch) (*domain.Workout, error)
	// Delete removes one workout, or with deleteSeries every member of its
	// series the actor may delete. Returns how many were removed.
	Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID, deleteSeries bool) (int, error)
}

// NotificationSink accepts notifications for the in-app feed.
type NotificationSink interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// SessionLedger books a completed session against a client's prepaid balance.
type SessionLedger interface {
	ConsumePackageSession(ctx context.Context, clientID primitive.ObjectID) (PackageUsage, error)
}

// PackageUsage reports which prepaid counters a completed session was taken from.
type PackageUsage struct {
	Balance bool // User.WorkoutsPackage
	Payment bool // the oldest open package payment
}

// record feeds the metrics; call it only once the transaction has committed.
func (u PackageUsage) record() {
	if u.Balance {
		metrics.RecordPackageSessionConsumed("client")
	}
	if u.Payment {
		metrics.RecordPackageSessionConsumed("payment")
	}
}

type workoutService struct {
	tx          repository.Transactor
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
	programs    programGuard
	ledger      SessionLedger
	notifier    NotificationSink
	expander    schedule.Expander
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	workoutRepo repository.WorkoutRepository,
	programRepo repository.ProgramRepository,
	dayRepo repository.ProgramDayRepository,
	ledger SessionLedger,
	notifier NotificationSink,
	expander schedule.Expander,
) WorkoutService {
	return &workoutService{
		tx:          tx,
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		programs:    programGuard{users: userRepo, programs: programRepo, days: dayRepo},
		ledger:      ledger,
		notifier:    notifier,
		expander:    expander,
	}
}

// --- Create ---

func (s *workoutService) Create(ctx context.Context, actor domain.Actor, in CreateWorkoutInput) ([]domain.Workout, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if !in.End.After(in.Start) {
		return nil, ErrInvalidTimeRange
	}
	if in.Format != nil && !in.Format.Valid() {
		return nil, invalid("unknown workout format")
	}

	userID, trainerID, err := s.resolveParticipants(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	if in.ProgramDayID != nil {
		if err := s.programs.checkDayUsable(ctx, actor, *in.ProgramDayID); err != nil {
			return nil, err
		}
	}

	occurrences := []schedule.Occurrence{{Start: in.Start, End: in.End}}
	if in.Recurrence != nil {
		occurrences, err = s.expander.Expand(in.Start, in.End, *in.Recurrence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if in.RecurrenceSeriesID != nil {
		if err := s.checkSeriesOwner(ctx, *in.RecurrenceSeriesID, userID); err != nil {
			return nil, err
		}
	}

	firstID := primitive.NewObjectID()
	seriesID := in.RecurrenceSeriesID
	if seriesID == nil && in.Recurrence != nil {
		seriesID = &firstID
	}

	batch := make([]*domain.Workout, len(occurrences))
	for i, occ := range occurrences {
		id := firstID
		if i > 0 {
			id = primitive.NewObjectID()
		}
		batch[i] = &domain.Workout{
			ID:                 id,
			UserID:             userID,
			TrainerID:          trainerID,
			Title:              in.Title,
			Start:              occ.Start,
			End:                occ.End,
			Location:           in.Location,
			Format:             in.Format,
			Attendance:         domain.AttendanceScheduled,
			CoachNote:          in.CoachNote,
			ProgramDayID:       in.ProgramDayID,
			RecurrenceSeriesID: seriesID,
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.workoutRepo.CreateMany(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWorkoutsCreated(string(actor.Role), len(batch))
	out := make([]domain.Workout, len(batch))
	for i, w := range batch {
		out[i] = *w
	}
	return out, nil
}

// checkSeriesOwner allows continuing a series only on the calendar it lives on.
func (s *workoutService) checkSeriesOwner(ctx context.Context, seriesID, userID primitive.ObjectID) error {
	members, err := s.workoutRepo.GetBySeriesID(ctx, seriesID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return ErrSeriesNotFound
	}
	for _, m := range members {
		if m.UserID != userID {
			return ErrSeriesOtherCalendar
		}
	}
	return nil
}

// resolveParticipants decides whose calendar the workout lands on and which trainer runs it.
func (s *workoutService) resolveParticipants(ctx context.Context, actor domain.Actor, in CreateWorkoutInput) (primitive.ObjectID, *primitive.ObjectID, error) {
	if actor.IsTrainer() {
		target := in.ClientID
		if target == nil {
			// Older clients put the client in trainerId.
			target = in.TrainerID
		}
		if target == nil || *target == actor.ID {
			return actor.ID, nil, nil
		}
		client, err := loadManagedClient(ctx, s.userRepo, actor, *target)
		if err != nil {
			return primitive.NilObjectID, nil, err
		}
		trainerID := actor.ID
		return client.ID, &trainerID, nil
	}

	if in.TrainerID == nil {
		return actor.ID, nil, nil
	}
	trainer, err := loadUser(ctx, s.userRepo, *in.TrainerID)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	if trainer == nil || !trainer.IsTrainer() {
		return primitive.NilObjectID, nil, ErrTrainerNotFound
	}
	if actor.TrainerID == nil || *actor.TrainerID != trainer.ID {
		return primitive.NilObjectID, nil, ErrTrainerNotLinked
	}
	return actor.ID, &trainer.ID, nil
}

// --- Read ---

func (s *workoutService) List(ctx context.Context, actor domain.Actor, f WorkoutListFilter) ([]domain.Workout, error) {
	userIDs, err := s.calendarOwners(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	return s.workoutRepo.List(ctx, repository.WorkoutFilter{UserIDs: userIDs, From: f.From, To: f.To})
}

func (s *workoutService) calendarOwners(ctx context.Context, actor domain.Actor, f WorkoutListFilter) ([]primitive.ObjectID, error) {
	if !actor.IsTrainer() {
		return []primitive.ObjectID{actor.ID}, nil
	}
	if f.ClientID != nil {
		client, err := loadManagedClient(ctx, s.userRepo, actor, *f.ClientID)
		if err != nil {
			return nil, err
		}
		return []primitive.ObjectID{client.ID}, nil
	}
	if !f.TrainerView {
		return []primitive.ObjectID{actor.ID}, nil
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *workoutService) Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Workout, error) {
	workout, _, err := s.loadAccessible(ctx, actor, id)
	return workout, err
}

// loadAccessible returns the workout and its owner, or NotFound / Forbidden.
func (s *workoutService) loadAccessible(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.Workout, *domain.User, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrWorkoutNotFound
		}
		return nil, nil, err
	}
	owner, err := loadUser(ctx, s.userRepo, workout.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccessWorkout(actor, workout, owner) {
		return nil, nil, ErrWorkoutAccessDenied
	}
	return workout, owner, nil
}

// --- Update ---

func (s *workoutService) Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch WorkoutPatch) (*domain.Workout, error) {
	var (
		updated     *domain.Workout
		rescheduled bool
		usage       PackageUsage
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		usage = PackageUsage{}
		current, _, err := s.loadAccessible(ctx, actor, id)
		if err != nil {
			return err
		}
		next := *current
		if err := s.applyPatch(ctx, actor, &next, patch); err != nil {
			return err
		}

		completing := next.Attendance == domain.AttendanceCompleted && current.Attendance != domain.AttendanceCompleted
		rescheduled = !next.Start.Equal(current.Start) || !next.End.Equal(current.End)

		if err := s.workoutRepo.Update(ctx, &next); err != nil {
			return err
		}
		if completing {
			if usage, err = s.ledger.ConsumePackageSession(ctx, next.UserID); err != nil {
				return fmt.Errorf("consume package session: %w", err)
			}
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	usage.record()

	if rescheduled && actor.IsClient() && updated.TrainerID != nil {
		s.notifyRescheduled(ctx, actor, updated)
	}
	return updated, nil
}

func (s *workoutService) applyPatch(ctx context.Context, actor domain.Actor, w *domain.Workout, p WorkoutPatch) error {
	if p.Title.Set {
		w.Title = strings.TrimSpace(p.Title.Value)
		if w.Title == "" {
			return invalid("title cannot be empty")
		}
	}
	if (p.Start.Set && p.Start.Value.IsZero()) || (p.End.Set && p.End.Value.IsZero()) {
		return invalid("start and end cannot be cleared")
	}
	p.Start.Apply(&w.Start)
	p.End.Apply(&w.End)
	if !w.End.After(w.Start) {
		return ErrInvalidTimeRange
	}
	p.Location.Apply(&w.Location)
	if p.Attendance.Set {
		if !p.Attendance.Value.Valid() {
			return invalid("unknown attendance state")
		}
		w.Attendance = p.Attendance.Value
	}
	p.CoachNote.Apply(&w.CoachNote)
	if p.Format.Set {
		if p.Format.Value != nil && !p.Format.Value.Valid() {
			return invalid("unknown workout format")
		}
		w.Format = p.Format.Value
	}
	if p.ProgramDayID.Set {
		if p.ProgramDayID.Value != nil {
			if err := s.programs.checkDayUsable(ctx, actor, *p.ProgramDayID.Value); err != nil {
				return err
			}
		}
		w.ProgramDayID = p.ProgramDayID.Value
	}
	return nil
}

// notifyRescheduled tells the trainer a client moved a session. The update is
// already committed, so failures are only logged.
func (s *workoutService) notifyRescheduled(ctx context.Context, actor domain.Actor, w *domain.Workout) {
	name := "?"
	if u, err := loadUser(ctx, s.userRepo, actor.ID); err == nil && u != nil {
		name = u.Name
	}
	sender := actor.ID
	n := domain.Notification{
		UserID:   *w.TrainerID,
		SenderID: &sender,
		Type:     domain.NotificationWorkoutRescheduled,
		Title:    fmt.Sprintf("Клиент %s перенес тренировку", name),
		Content:  fmt.Sprintf("Тренировка '%s' перенесена на %s", w.Title, w.Start.Format("02.01.2006 15:04")),
		Link:     fmt.Sprintf("/clients/%s/calendar?workout_id=%s", actor.ID.Hex(), w.ID.Hex()),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("ERROR: Failed to notify trainer %s about rescheduled workout %s: %v", w.TrainerID.Hex(), w.ID.Hex(), err)
	}
}

// --- Delete ---

func (s *workoutService) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID, deleteSeries bool) (int, error) {
	deleted := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deleted = 0
		checker := &deleteChecker{svc: s, actor: actor, owners: map[primitive.ObjectID]*domain.User{}, days: map[primitive.ObjectID]*domain.ProgramDay{}}

		target, err := s.workoutRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWorkoutNotFound
			}
			return err
		}
		ok, err := checker.allowed(ctx, target)
		if err != nil {
			return err
		}
		if !ok {
			return ErrWorkoutAccessDenied
		}

		if !deleteSeries || target.RecurrenceSeriesID == nil {
			if err := s.workoutRepo.Delete(ctx, target.ID); err != nil {
				return err
			}
			deleted = 1
			return nil
		}

		series, err := s.workoutRepo.GetBySeriesID(ctx, *target.RecurrenceSeriesID)
		if err != nil {
			return err
		}
		for i := range series {
			ok, err := checker.allowed(ctx, &series[i])
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := s.workoutRepo.Delete(ctx, series[i].ID); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if deleteSeries {
		metrics.RecordSeriesDeletion(deleted)
	}
	return deleted, nil
}

// deleteChecker evaluates CanDeleteWorkout across a series, caching lookups.
type deleteChecker struct {
	svc    *workoutService
	actor  domain.Actor
	owners map[primitive.ObjectID]*domain.User
	days   map[primitive.ObjectID]*domain.ProgramDay
}

func (c *deleteChecker) allowed(ctx context.Context, w *domain.Workout) (bool, error) {
	owner, seen := c.owners[w.UserID]
	if !seen {
		var err error
		if owner, err = loadUser(ctx, c.svc.userRepo, w.UserID); err != nil {
			return false, err
		}
		c.owners[w.UserID] = owner
	}

	var day *domain.ProgramDay
	if w.ProgramDayID != nil {
		var ok bool
		if day, ok = c.days[*w.ProgramDayID]; !ok {
			d, err := c.svc.programs.days.GetByID(ctx, *w.ProgramDayID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return false, err
			}
			day = d
			c.days[*w.ProgramDayID] = day
		}
	}
	return access.CanDeleteWorkout(c.actor, w, owner, day), nil
}
