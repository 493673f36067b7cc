package memory

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func now() time.Time { return time.Now().UTC() }

// --- Users ---

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	defer r.s.lockWrite(ctx)()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = clone(user)
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.users,
		func(u *domain.User) bool { return u.IsClientOf(trainerID) },
		func(a, b *domain.User) bool { return a.Name < b.Name }), nil
}

// mutateUser copies the stored user, applies fn and stores the copy.
func (r *UserRepository) mutateUser(ctx context.Context, id primitive.ObjectID, fn func(u *domain.User) bool) (bool, error) {
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	u := clone(stored)
	if !fn(u) {
		return false, nil
	}
	u.UpdatedAt = now()
	r.s.users[id] = u
	return true, nil
}

func (r *UserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	r.s.mu.RLock()
	stored, ok := r.s.users[clientID]
	r.s.mu.RUnlock()
	if !ok || !stored.IsClient() {
		return repository.ErrNotFound
	}
	_, err := r.mutateUser(ctx, clientID, func(u *domain.User) bool {
		u.TrainerID = &trainerID
		return true
	})
	return err
}

func (r *UserRepository) DecrementWorkoutsPackage(ctx context.Context, clientID primitive.ObjectID) (bool, error) {
	changed, err := r.mutateUser(ctx, clientID, func(u *domain.User) bool {
		if u.WorkoutsPackage == nil || *u.WorkoutsPackage <= 0 {
			return false
		}
		left := *u.WorkoutsPackage - 1
		u.WorkoutsPackage = &left
		return true
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return changed, err
}

func (r *UserRepository) AddToWorkoutsPackage(ctx context.Context, clientID primitive.ObjectID, sessions int) error {
	_, err := r.mutateUser(ctx, clientID, func(u *domain.User) bool {
		total := sessions
		if u.WorkoutsPackage != nil {
			total += *u.WorkoutsPackage
		}
		u.WorkoutsPackage = &total
		return true
	})
	return err
}

func (r *UserRepository) SetSubscriptionExpiry(ctx context.Context, clientID primitive.ObjectID, expiresAt time.Time) error {
	_, err := r.mutateUser(ctx, clientID, func(u *domain.User) bool {
		t := expiresAt.UTC()
		u.SubscriptionExpiresAt = &t
		return true
	})
	return err
}

// --- Workouts ---

type WorkoutRepository struct{ s *Store }

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)

func prepareWorkout(w *domain.Workout, at time.Time) error {
	if w.UserID == primitive.NilObjectID || w.Title == "" {
		return errors.New("workout requires userId and title")
	}
	if !w.End.After(w.Start) {
		return errors.New("workout end must be after start")
	}
	if w.ID == primitive.NilObjectID {
		w.ID = primitive.NewObjectID()
	}
	if w.Attendance == "" {
		w.Attendance = domain.AttendanceScheduled
	}
	w.CreatedAt = at
	w.UpdatedAt = at
	return nil
}

func (r *WorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if err := r.CreateMany(ctx, []*domain.Workout{workout}); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

func (r *WorkoutRepository) CreateMany(ctx context.Context, workouts []*domain.Workout) error {
	at := now()
	for _, w := range workouts {
		if err := prepareWorkout(w, at); err != nil {
			return err
		}
	}
	defer r.s.lockWrite(ctx)()
	for _, w := range workouts {
		if _, dup := r.s.workouts[w.ID]; dup {
			return repository.ErrDuplicateKey
		}
	}
	for _, w := range workouts {
		r.s.workouts[w.ID] = clone(w)
	}
	return nil
}

func (r *WorkoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(w), nil
}

func byStart(a, b *domain.Workout) bool { return a.Start.Before(b.Start) }

func (r *WorkoutRepository) List(_ context.Context, f repository.WorkoutFilter) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.workouts, func(w *domain.Workout) bool {
		if !containsID(f.UserIDs, w.UserID) {
			return false
		}
		if f.From != nil && w.Start.Before(*f.From) {
			return false
		}
		if f.To != nil && w.Start.After(*f.To) {
			return false
		}
		return true
	}, byStart), nil
}

func (r *WorkoutRepository) GetBySeriesID(_ context.Context, seriesID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.workouts, func(w *domain.Workout) bool {
		return w.RecurrenceSeriesID != nil && *w.RecurrenceSeriesID == seriesID
	}, byStart), nil
}

func (r *WorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if !workout.End.After(workout.Start) {
		return errors.New("workout end must be after start")
	}
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.workouts[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	workout.UserID = stored.UserID
	workout.RecurrenceSeriesID = stored.RecurrenceSeriesID
	workout.CreatedAt = stored.CreatedAt
	workout.UpdatedAt = now()
	r.s.workouts[workout.ID] = clone(workout)
	return nil
}

func (r *WorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.workouts, id)
	return nil
}

func (r *WorkoutRepository) ClearProgramDay(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	defer r.s.lockWrite(ctx)()
	var n int64
	for id, w := range r.s.workouts {
		if w.ProgramDayID == nil || !containsID(dayIDs, *w.ProgramDayID) {
			continue
		}
		c := clone(w)
		c.ProgramDayID = nil
		c.UpdatedAt = now()
		r.s.workouts[id] = c
		n++
	}
	return n, nil
}

// --- Programs ---

type ProgramRepository struct{ s *Store }

var _ repository.ProgramRepository = (*ProgramRepository)(nil)

func (r *ProgramRepository) Create(ctx context.Context, program *domain.TrainingProgram) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Title == "" {
		return primitive.NilObjectID, errors.New("program requires userId and title")
	}
	program.ID = primitive.NewObjectID()
	program.CreatedAt = now()
	program.UpdatedAt = program.CreatedAt
	defer r.s.lockWrite(ctx)()
	r.s.programs[program.ID] = clone(program)
	return program.ID, nil
}

func (r *ProgramRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingProgram, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *ProgramRepository) ListByUserIDs(_ context.Context, userIDs []primitive.ObjectID) ([]domain.TrainingProgram, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.programs,
		func(p *domain.TrainingProgram) bool { return containsID(userIDs, p.UserID) },
		func(a, b *domain.TrainingProgram) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r *ProgramRepository) Update(ctx context.Context, program *domain.TrainingProgram) error {
	if program.Title == "" {
		return errors.New("program title cannot be empty")
	}
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.programs[program.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := clone(stored)
	c.Title = program.Title
	c.Description = program.Description
	c.UpdatedAt = now()
	r.s.programs[program.ID] = c
	program.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.programs, id)
	return nil
}

// --- Program days ---

type ProgramDayRepository struct{ s *Store }

var _ repository.ProgramDayRepository = (*ProgramDayRepository)(nil)

func (r *ProgramDayRepository) Create(ctx context.Context, day *domain.ProgramDay) (primitive.ObjectID, error) {
	if day.ProgramID == primitive.NilObjectID || day.Name == "" {
		return primitive.NilObjectID, errors.New("program day requires programId and name")
	}
	day.ID = primitive.NewObjectID()
	day.CreatedAt = now()
	day.UpdatedAt = day.CreatedAt
	if day.Blocks == nil {
		day.Blocks = []domain.ProgramBlock{}
	}
	defer r.s.lockWrite(ctx)()
	r.s.days[day.ID] = clone(day)
	return day.ID, nil
}

func (r *ProgramDayRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(d), nil
}

func (r *ProgramDayRepository) ListByProgramID(_ context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.days,
		func(d *domain.ProgramDay) bool { return d.ProgramID == programID },
		func(a, b *domain.ProgramDay) bool { return a.Order < b.Order }), nil
}

func (r *ProgramDayRepository) CountByProgramID(_ context.Context, programID primitive.ObjectID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, d := range r.s.days {
		if d.ProgramID == programID {
			n++
		}
	}
	return n, nil
}

func (r *ProgramDayRepository) Update(ctx context.Context, day *domain.ProgramDay) error {
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.days[day.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := clone(day)
	c.ProgramID = stored.ProgramID
	c.Owner = stored.Owner
	c.SourceTemplateID = stored.SourceTemplateID
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = now()
	r.s.days[day.ID] = c
	day.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *ProgramDayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.days[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.days, id)
	return nil
}

func (r *ProgramDayRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error) {
	defer r.s.lockWrite(ctx)()
	ids := []primitive.ObjectID{}
	for id, d := range r.s.days {
		if d.ProgramID == programID {
			ids = append(ids, id)
			delete(r.s.days, id)
		}
	}
	return ids, nil
}

// --- Payments ---

type PaymentRepository struct{ s *Store }

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.TrainerID == primitive.NilObjectID || payment.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires trainerId and clientId")
	}
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.payments[payment.ID] = clone(payment)
	return payment.ID, nil
}

func (r *PaymentRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *PaymentRepository) List(_ context.Context, f repository.PaymentFilter) ([]domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.payments, func(p *domain.Payment) bool {
		if p.TrainerID != f.TrainerID {
			return false
		}
		if f.ClientID != nil && p.ClientID != *f.ClientID {
			return false
		}
		if f.From != nil && p.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && p.Date.After(*f.To) {
			return false
		}
		return true
	}, func(a, b *domain.Payment) bool { return a.Date.After(b.Date) }), nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.payments, id)
	return nil
}

func (r *PaymentRepository) ConsumeOldestPackageSession(ctx context.Context, clientID primitive.ObjectID) (*domain.Payment, error) {
	defer r.s.lockWrite(ctx)()
	var oldest *domain.Payment
	for _, p := range r.s.payments {
		if p.ClientID != clientID || p.Type != domain.PaymentPackage || p.RemainingSessions == nil || *p.RemainingSessions <= 0 {
			continue
		}
		if oldest == nil || p.Date.Before(oldest.Date) || (p.Date.Equal(oldest.Date) && p.CreatedAt.Before(oldest.CreatedAt)) {
			oldest = p
		}
	}
	if oldest == nil {
		return nil, nil
	}
	c := clone(oldest)
	left := *c.RemainingSessions - 1
	c.RemainingSessions = &left
	r.s.payments[c.ID] = c
	return clone(c), nil
}

// --- Notifications ---

type NotificationRepository struct{ s *Store }

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now()
	defer r.s.lockWrite(ctx)()
	r.s.notifications[n.ID] = clone(n)
	return n.ID, nil
}

func (r *NotificationRepository) ListByUserID(_ context.Context, userID primitive.ObjectID, f repository.NotificationFilter) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := collect(r.s.notifications, func(n *domain.Notification) bool {
		return n.UserID == userID && !(f.OnlyUnread && n.IsRead)
	}, func(a, b *domain.Notification) bool { return a.CreatedAt.After(b.CreatedAt) })

	if f.Skip >= len(all) {
		return []domain.Notification{}, nil
	}
	all = all[f.Skip:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	c := clone(n)
	c.IsRead = true
	r.s.notifications[id] = c
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

// --- Exercise library ---

type ExerciseRepository struct{ s *Store }

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.TrainerID == primitive.NilObjectID || exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise requires trainerId and name")
	}
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = now()
	exercise.UpdatedAt = exercise.CreatedAt
	defer r.s.lockWrite(ctx)()
	r.s.exercises[exercise.ID] = clone(exercise)
	return exercise.ID, nil
}

func (r *ExerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(e), nil
}

func (r *ExerciseRepository) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.exercises,
		func(e *domain.Exercise) bool { return e.TrainerID == trainerID },
		func(a, b *domain.Exercise) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r *ExerciseRepository) ListVisibleToClient(_ context.Context, trainerID, clientID primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return collect(r.s.exercises, func(e *domain.Exercise) bool {
		if e.TrainerID != trainerID {
			return false
		}
		return e.Visibility == domain.VisibilityAll ||
			(e.Visibility == domain.VisibilityClient && e.ClientID != nil && *e.ClientID == clientID)
	}, func(a, b *domain.Exercise) bool { return a.Name < b.Name }), nil
}

func (r *ExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}
	defer r.s.lockWrite(ctx)()
	stored, ok := r.s.exercises[exercise.ID]
	if !ok || stored.TrainerID != exercise.TrainerID {
		return repository.ErrNotFound
	}
	exercise.CreatedAt = stored.CreatedAt
	exercise.UpdatedAt = now()
	r.s.exercises[exercise.ID] = clone(exercise)
	return nil
}

func (r *ExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	defer r.s.lockWrite(ctx)()
	e, ok := r.s.exercises[id]
	if !ok || e.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, id)
	return nil
}
