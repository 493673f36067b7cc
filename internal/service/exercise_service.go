package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = notFound("exercise")
	ErrExerciseAccessDenied = forbidden("access denied to modify or delete this exercise")
	ErrInvalidVisibility    = invalid("visibility must be all, client or trainer")
	ErrVisibilityClient     = invalid("clientId is required exactly when visibility is client")
)

// ExerciseInput is the editable part of a library exercise.
type ExerciseInput struct {
	Name                  string
	Description           string
	MuscleGroups          string
	Equipment             string
	Difficulty            string
	StartingPosition      string
	ExecutionInstructions string
	VideoURL              string
	Notes                 string
	Visibility            domain.Visibility // Empty means all
	ClientID              *primitive.ObjectID
}

// ExerciseService manages a trainer's exercise library.
type ExerciseService interface {
	CreateExercise(ctx context.Context, actor domain.Actor, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	// ListExercises returns a trainer's own library, or for a client what
	// their trainer shared with them.
	ListExercises(ctx context.Context, actor domain.Actor) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	userRepo     repository.UserRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, userRepo repository.UserRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		userRepo:     userRepo,
	}
}

// CreateExercise handles the creation of a new exercise by a trainer.
func (s *exerciseService) CreateExercise(ctx context.Context, actor domain.Actor, in ExerciseInput) (*domain.Exercise, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	exercise := &domain.Exercise{TrainerID: actor.ID}
	if err := s.apply(ctx, actor, exercise, in); err != nil {
		return nil, err
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, exercise) {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, actor domain.Actor) ([]domain.Exercise, error) {
	if actor.IsTrainer() {
		return s.exerciseRepo.GetByTrainerID(ctx, actor.ID)
	}
	if actor.TrainerID == nil {
		return []domain.Exercise{}, nil
	}
	return s.exerciseRepo.ListVisibleToClient(ctx, *actor.TrainerID, actor.ID)
}

// UpdateExercise replaces the editable fields. Only the author may update.
func (s *exerciseService) UpdateExercise(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.TrainerID != actor.ID {
		return nil, ErrExerciseAccessDenied
	}
	if err := s.apply(ctx, actor, exercise, in); err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, actor domain.Actor, exerciseID primitive.ObjectID) error {
	exercise, err := s.load(ctx, exerciseID)
	if err != nil {
		return err
	}
	if exercise.TrainerID != actor.ID {
		return ErrExerciseAccessDenied
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

func (s *exerciseService) load(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// apply validates in and copies it onto e.
func (s *exerciseService) apply(ctx context.Context, actor domain.Actor, e *domain.Exercise, in ExerciseInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("exercise name is required")
	}
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityAll
	}
	if !in.Visibility.Valid() {
		return ErrInvalidVisibility
	}
	if (in.Visibility == domain.VisibilityClient) != (in.ClientID != nil) {
		return ErrVisibilityClient
	}
	if in.ClientID != nil {
		if _, err := loadManagedClient(ctx, s.userRepo, actor, *in.ClientID); err != nil {
			return err
		}
	}

	e.Name = name
	e.Description = in.Description
	e.MuscleGroups = in.MuscleGroups
	e.Equipment = in.Equipment
	e.Difficulty = in.Difficulty
	e.StartingPosition = in.StartingPosition
	e.ExecutionInstructions = in.ExecutionInstructions
	e.VideoURL = in.VideoURL
	e.Notes = in.Notes
	e.Visibility = in.Visibility
	e.ClientID = in.ClientID
	return nil
}

func visibleTo(actor domain.Actor, e *domain.Exercise) bool {
	if actor.IsTrainer() {
		return e.TrainerID == actor.ID
	}
	if actor.TrainerID == nil || *actor.TrainerID != e.TrainerID {
		return false
	}
	switch e.Visibility {
	case domain.VisibilityAll:
		return true
	case domain.VisibilityClient:
		return e.ClientID != nil && *e.ClientID == actor.ID
	}
	return false
}
