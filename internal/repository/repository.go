package repository

import (
	"alcyxob/coach-app/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn as one unit of work. Repository calls made with the ctx
// handed to fn join the transaction; any error returned by fn rolls it back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
	// DecrementWorkoutsPackage takes one session off a positive balance and
	// reports whether it did. Unset or zero balances are left alone.
	DecrementWorkoutsPackage(ctx context.Context, clientID primitive.ObjectID) (bool, error)
	AddToWorkoutsPackage(ctx context.Context, clientID primitive.ObjectID, sessions int) error
	SetSubscriptionExpiry(ctx context.Context, clientID primitive.ObjectID, expiresAt time.Time) error
}

// WorkoutFilter narrows a workout listing. Empty UserIDs matches nothing.
type WorkoutFilter struct {
	UserIDs []primitive.ObjectID
	From    *time.Time // start >= From
	To      *time.Time // start <= To
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	// CreateMany inserts a batch whose IDs were assigned by the caller.
	CreateMany(ctx context.Context, workouts []*domain.Workout) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error) // Ordered by start
	GetBySeriesID(ctx context.Context, seriesID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ClearProgramDay unlinks every workout pointing at one of dayIDs.
	ClearProgramDay(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error)
}

// ProgramRepository defines the interface for interacting with training programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.TrainingProgram) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingProgram, error)
	ListByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]domain.TrainingProgram, error)
	Update(ctx context.Context, program *domain.TrainingProgram) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgramDayRepository stores days together with their embedded blocks and exercises.
type ProgramDayRepository interface {
	Create(ctx context.Context, day *domain.ProgramDay) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDay, error)
	ListByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) // Ordered by order
	CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error)
	Update(ctx context.Context, day *domain.ProgramDay) error // Replaces the whole subtree
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// PaymentFilter narrows a payment listing for one trainer.
type PaymentFilter struct {
	TrainerID primitive.ObjectID
	ClientID  *primitive.ObjectID
	From      *time.Time
	To        *time.Time
}

// PaymentRepository defines the interface for interacting with payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error) // Newest first
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ConsumeOldestPackageSession decrements remaining sessions on the client's
	// oldest package payment that still has some. Returns nil when there is none.
	ConsumeOldestPackageSession(ctx context.Context, clientID primitive.ObjectID) (*domain.Payment, error)
}

// NotificationFilter pages through a recipient's feed.
type NotificationFilter struct {
	OnlyUnread bool
	Skip       int
	Limit      int
}

// NotificationRepository defines the interface for the notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID, filter NotificationFilter) ([]domain.Notification, error) // Newest first
	// MarkRead and Delete only touch notifications addressed to userID.
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	// ListVisibleToClient returns the trainer's exercises shared with everyone or with this client.
	ListVisibleToClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Ensure trainer owns the exercise
}

// EntryFilter narrows a user's tracking entries. Results are newest first.
type EntryFilter struct {
	UserID   primitive.ObjectID
	MetricID *primitive.ObjectID
	From     *time.Time
	To       *time.Time
}

// BodyMetricRepository stores body metrics and their entries.
type BodyMetricRepository interface {
	Create(ctx context.Context, metric *domain.BodyMetric) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMetric, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyMetric, error)
	// SetTarget replaces the target and appends the change to the metric's history.
	SetTarget(ctx context.Context, id primitive.ObjectID, change domain.TargetChange) error
	AddEntry(ctx context.Context, entry *domain.BodyMetricEntry) (primitive.ObjectID, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]domain.BodyMetricEntry, error) // Newest recordedAt first
}

// ExerciseMetricRepository stores exercise metrics and their entries.
type ExerciseMetricRepository interface {
	Create(ctx context.Context, metric *domain.ExerciseMetric) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseMetric, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseMetric, error)
	AddEntry(ctx context.Context, entry *domain.ExerciseMetricEntry) (primitive.ObjectID, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]domain.ExerciseMetricEntry, error) // Newest date first
}

// NutritionRepository stores daily nutrition entries, at most one per user and day.
type NutritionRepository interface {
	// Create returns ErrDuplicateKey when the user already has an entry for entry.Day.
	Create(ctx context.Context, entry *domain.NutritionEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.NutritionEntry, error)
	GetByDay(ctx context.Context, userID primitive.ObjectID, day string) (*domain.NutritionEntry, error)
	List(ctx context.Context, filter EntryFilter) ([]domain.NutritionEntry, error) // Newest date first; MetricID is ignored
	Update(ctx context.Context, entry *domain.NutritionEntry) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NoteFilter selects trainer notes. Nil fields are not filtered on.
type NoteFilter struct {
	TrainerID *primitive.ObjectID
	ClientID  *primitive.ObjectID
}

// NoteRepository stores trainer notes about clients.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.TrainerNote) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerNote, error)
	List(ctx context.Context, filter NoteFilter) ([]domain.TrainerNote, error) // Most recently updated first
	Update(ctx context.Context, note *domain.TrainerNote) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
