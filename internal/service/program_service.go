package service

import (
	"alcyxob/coach-app/internal/access"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound       = notFound("program")
	ErrProgramAccessDenied   = forbidden("no access to this program")
	ErrProgramDeleteDenied   = forbidden("content created by your trainer cannot be deleted")
	ErrProgramDayNotFound    = notFound("program day")
	ErrProgramDayUnknown     = invalid("program day does not exist")
	ErrProgramDayDenied      = forbidden("no access to this program day")
	ErrBlockNotFound         = notFound("block")
	ErrProgramExerciseAbsent = notFound("exercise")
	ErrForeignProgramOwner   = forbidden("only trainers can create programs for other users")
)

// --- Inputs ---

type CreateProgramInput struct {
	UserID      *primitive.ObjectID // Trainer authoring for a client
	Title       string
	Description string
}

type ProgramPatch struct {
	Title       domain.Field[string]
	Description domain.Field[string]
}

// ProgramExerciseInput carries typed quantities. Legacy text units are
// converted before reaching the service.
type ProgramExerciseInput struct {
	Title           string
	Sets            int
	Reps            *int
	DurationMinutes *int
	RestSeconds     *int
	WeightKg        *float64
	Description     string
	VideoURL        string
}

type ProgramExercisePatch struct {
	Title           domain.Field[string]
	Sets            domain.Field[int]
	Reps            domain.Field[*int]
	DurationMinutes domain.Field[*int]
	RestSeconds     domain.Field[*int]
	WeightKg        domain.Field[*float64]
	Description     domain.Field[string]
	VideoURL        domain.Field[string]
}

type ProgramBlockInput struct {
	Type      string
	Title     string
	Exercises []ProgramExerciseInput
}

type CreateDayInput struct {
	Name             string
	Notes            string
	SourceTemplateID *primitive.ObjectID
	Blocks           []ProgramBlockInput
}

type DayPatch struct {
	Name  domain.Field[string]
	Notes domain.Field[string]
	Order domain.Field[int]
}

// ProgramDetail is a program with its days in order.
type ProgramDetail struct {
	Program domain.TrainingProgram
	Days    []domain.ProgramDay
}

// ProgramService authors training programs and their day/block/exercise tree.
type ProgramService interface {
	CreateProgram(ctx context.Context, actor domain.Actor, in CreateProgramInput) (*domain.TrainingProgram, error)
	ListPrograms(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.TrainingProgram, error)
	GetProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*ProgramDetail, error)
	UpdateProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch ProgramPatch) (*domain.TrainingProgram, error)
	DeleteProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error

	CreateDay(ctx context.Context, actor domain.Actor, programID primitive.ObjectID, in CreateDayInput) (*domain.ProgramDay, error)
	ListDays(ctx context.Context, actor domain.Actor, programID primitive.ObjectID) ([]domain.ProgramDay, error)
	GetDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID) (*domain.ProgramDay, error)
	UpdateDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID, patch DayPatch) (*domain.ProgramDay, error)
	DeleteDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID) error

	AddExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID primitive.ObjectID, in ProgramExerciseInput) (*domain.ProgramExercise, error)
	UpdateExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID, exerciseID primitive.ObjectID, patch ProgramExercisePatch) (*domain.ProgramExercise, error)
	DeleteExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID, exerciseID primitive.ObjectID) error
}

type programService struct {
	tx          repository.Transactor
	guard       programGuard
	workoutRepo repository.WorkoutRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	programRepo repository.ProgramRepository,
	dayRepo repository.ProgramDayRepository,
	workoutRepo repository.WorkoutRepository,
) ProgramService {
	return &programService{
		tx:          tx,
		guard:       programGuard{users: userRepo, programs: programRepo, days: dayRepo},
		workoutRepo: workoutRepo,
	}
}

// --- Programs ---

func (s *programService) CreateProgram(ctx context.Context, actor domain.Actor, in CreateProgramInput) (*domain.TrainingProgram, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title is required")
	}

	program := &domain.TrainingProgram{
		UserID:      actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Owner:       domain.AuthoredBy(actor),
	}
	if in.UserID != nil && *in.UserID != actor.ID {
		if !actor.IsTrainer() {
			return nil, ErrForeignProgramOwner
		}
		client, err := loadManagedClient(ctx, s.guard.users, actor, *in.UserID)
		if err != nil {
			return nil, err
		}
		program.UserID = client.ID
	}

	if _, err := s.guard.programs.Create(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

func (s *programService) ListPrograms(ctx context.Context, actor domain.Actor, userID *primitive.ObjectID) ([]domain.TrainingProgram, error) {
	owner := actor.ID
	if userID != nil && *userID != actor.ID {
		client, err := loadManagedClient(ctx, s.guard.users, actor, *userID)
		if err != nil {
			return nil, err
		}
		owner = client.ID
	}
	return s.guard.programs.ListByUserIDs(ctx, []primitive.ObjectID{owner})
}

func (s *programService) GetProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*ProgramDetail, error) {
	program, _, err := s.guard.loadProgram(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	days, err := s.guard.days.ListByProgramID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProgramDetail{Program: *program, Days: days}, nil
}

func (s *programService) UpdateProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch ProgramPatch) (*domain.TrainingProgram, error) {
	program, _, err := s.guard.loadProgram(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title.Set {
		program.Title = strings.TrimSpace(patch.Title.Value)
		if program.Title == "" {
			return nil, invalid("title cannot be empty")
		}
	}
	patch.Description.Apply(&program.Description)
	if err := s.guard.programs.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// DeleteProgram cascades to the days and unlinks workouts scheduled from them.
func (s *programService) DeleteProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		program, owner, err := s.guard.loadProgram(ctx, actor, id)
		if err != nil {
			return err
		}
		if !access.CanDeleteProgramArtifact(actor, program, owner, program.Owner) {
			return ErrProgramDeleteDenied
		}
		dayIDs, err := s.guard.days.DeleteByProgramID(ctx, id)
		if err != nil {
			return err
		}
		unlinked, err := s.workoutRepo.ClearProgramDay(ctx, dayIDs)
		if err != nil {
			return err
		}
		if unlinked > 0 {
			log.Printf("INFO: Unlinked %d workouts from deleted program %s", unlinked, id.Hex())
		}
		return s.guard.programs.Delete(ctx, id)
	})
}

// --- Days ---

func (s *programService) CreateDay(ctx context.Context, actor domain.Actor, programID primitive.ObjectID, in CreateDayInput) (*domain.ProgramDay, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("day name is required")
	}
	// Every level records the author, so a client may delete what they add
	// to a trainer's program.
	tag := domain.AuthoredBy(actor)
	var day *domain.ProgramDay
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, _, err := s.guard.loadProgram(ctx, actor, programID); err != nil {
			return err
		}
		count, err := s.guard.days.CountByProgramID(ctx, programID)
		if err != nil {
			return err
		}
		day = &domain.ProgramDay{
			ProgramID:        programID,
			Name:             in.Name,
			Notes:            in.Notes,
			Order:            count,
			Owner:            tag,
			SourceTemplateID: in.SourceTemplateID,
			Blocks:           make([]domain.ProgramBlock, 0, len(in.Blocks)),
		}
		for i, b := range in.Blocks {
			block := domain.ProgramBlock{
				ID:        primitive.NewObjectID(),
				Type:      b.Type,
				Title:     b.Title,
				Order:     i,
				Owner:     tag,
				Exercises: make([]domain.ProgramExercise, 0, len(b.Exercises)),
			}
			for j, e := range b.Exercises {
				ex, err := newProgramExercise(e, j, tag)
				if err != nil {
					return err
				}
				block.Exercises = append(block.Exercises, ex)
			}
			day.Blocks = append(day.Blocks, block)
		}
		_, err = s.guard.days.Create(ctx, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

func (s *programService) ListDays(ctx context.Context, actor domain.Actor, programID primitive.ObjectID) ([]domain.ProgramDay, error) {
	if _, _, err := s.guard.loadProgram(ctx, actor, programID); err != nil {
		return nil, err
	}
	return s.guard.days.ListByProgramID(ctx, programID)
}

func (s *programService) GetDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID) (*domain.ProgramDay, error) {
	_, _, day, err := s.guard.loadDay(ctx, actor, programID, dayID)
	return day, err
}

func (s *programService) UpdateDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID, patch DayPatch) (*domain.ProgramDay, error) {
	var day *domain.ProgramDay
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if _, _, day, err = s.guard.loadDay(ctx, actor, programID, dayID); err != nil {
			return err
		}
		if patch.Name.Set {
			day.Name = strings.TrimSpace(patch.Name.Value)
			if day.Name == "" {
				return invalid("day name cannot be empty")
			}
		}
		patch.Notes.Apply(&day.Notes)
		if patch.Order.Set {
			if patch.Order.Value < 0 {
				return invalid("order cannot be negative")
			}
			day.Order = patch.Order.Value
		}
		return s.guard.days.Update(ctx, day)
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

func (s *programService) DeleteDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		program, owner, day, err := s.guard.loadDay(ctx, actor, programID, dayID)
		if err != nil {
			return err
		}
		if !access.CanDeleteProgramArtifact(actor, program, owner, day.Owner) {
			return ErrProgramDeleteDenied
		}
		if err := s.guard.days.Delete(ctx, dayID); err != nil {
			return err
		}
		_, err = s.workoutRepo.ClearProgramDay(ctx, []primitive.ObjectID{dayID})
		return err
	})
}

// --- Exercises ---

func (s *programService) AddExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID primitive.ObjectID, in ProgramExerciseInput) (*domain.ProgramExercise, error) {
	var added domain.ProgramExercise
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, _, day, err := s.guard.loadDay(ctx, actor, programID, dayID)
		if err != nil {
			return err
		}
		block := day.Block(blockID)
		if block == nil {
			return ErrBlockNotFound
		}
		if added, err = newProgramExercise(in, block.NextExerciseOrder(), domain.AuthoredBy(actor)); err != nil {
			return err
		}
		block.Exercises = append(block.Exercises, added)
		return s.guard.days.Update(ctx, day)
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *programService) UpdateExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID, exerciseID primitive.ObjectID, patch ProgramExercisePatch) (*domain.ProgramExercise, error) {
	var updated domain.ProgramExercise
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, _, day, err := s.guard.loadDay(ctx, actor, programID, dayID)
		if err != nil {
			return err
		}
		block := day.Block(blockID)
		if block == nil {
			return ErrBlockNotFound
		}
		ex := block.Exercise(exerciseID)
		if ex == nil {
			return ErrProgramExerciseAbsent
		}
		if patch.Title.Set {
			ex.Title = strings.TrimSpace(patch.Title.Value)
			if ex.Title == "" {
				return invalid("exercise title cannot be empty")
			}
		}
		if patch.Sets.Set {
			if patch.Sets.Value < 1 {
				return invalid("sets must be at least 1")
			}
			ex.Sets = patch.Sets.Value
		}
		patch.Reps.Apply(&ex.Reps)
		patch.DurationMinutes.Apply(&ex.DurationMinutes)
		patch.RestSeconds.Apply(&ex.RestSeconds)
		patch.WeightKg.Apply(&ex.WeightKg)
		patch.Description.Apply(&ex.Description)
		patch.VideoURL.Apply(&ex.VideoURL)
		updated = *ex
		return s.guard.days.Update(ctx, day)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *programService) DeleteExercise(ctx context.Context, actor domain.Actor, programID, dayID, blockID, exerciseID primitive.ObjectID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		program, owner, day, err := s.guard.loadDay(ctx, actor, programID, dayID)
		if err != nil {
			return err
		}
		block := day.Block(blockID)
		if block == nil {
			return ErrBlockNotFound
		}
		ex := block.Exercise(exerciseID)
		if ex == nil {
			return ErrProgramExerciseAbsent
		}
		if !access.CanDeleteProgramArtifact(actor, program, owner, day.ExerciseOwner(ex)) {
			return ErrProgramDeleteDenied
		}
		kept := make([]domain.ProgramExercise, 0, len(block.Exercises)-1)
		for _, other := range block.Exercises {
			if other.ID != exerciseID {
				kept = append(kept, other)
			}
		}
		block.Exercises = kept
		return s.guard.days.Update(ctx, day)
	})
}

func newProgramExercise(in ProgramExerciseInput, order int, tag domain.OwnerTag) (domain.ProgramExercise, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.ProgramExercise{}, invalid("exercise title is required")
	}
	sets := in.Sets
	if sets == 0 {
		sets = 1
	}
	if sets < 0 {
		return domain.ProgramExercise{}, invalid("sets must be at least 1")
	}
	return domain.ProgramExercise{
		ID:              primitive.NewObjectID(),
		Title:           title,
		Sets:            sets,
		Reps:            in.Reps,
		DurationMinutes: in.DurationMinutes,
		RestSeconds:     in.RestSeconds,
		WeightKg:        in.WeightKg,
		Description:     in.Description,
		VideoURL:        in.VideoURL,
		Order:           order,
		Owner:           tag,
	}, nil
}

// --- Access guard shared with the workout service ---

type programGuard struct {
	users    repository.UserRepository
	programs repository.ProgramRepository
	days     repository.ProgramDayRepository
}

func (g programGuard) loadProgram(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.TrainingProgram, *domain.User, error) {
	program, err := g.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrProgramNotFound
		}
		return nil, nil, err
	}
	owner, err := loadUser(ctx, g.users, program.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAccessProgram(actor, program, owner) {
		return nil, nil, ErrProgramAccessDenied
	}
	return program, owner, nil
}

func (g programGuard) loadDay(ctx context.Context, actor domain.Actor, programID, dayID primitive.ObjectID) (*domain.TrainingProgram, *domain.User, *domain.ProgramDay, error) {
	program, owner, err := g.loadProgram(ctx, actor, programID)
	if err != nil {
		return nil, nil, nil, err
	}
	day, err := g.days.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrProgramDayNotFound
		}
		return nil, nil, nil, err
	}
	if day.ProgramID != program.ID {
		return nil, nil, nil, ErrProgramDayNotFound
	}
	return program, owner, day, nil
}

// checkDayUsable validates a programDayId referenced by a workout: it must
// exist (400 otherwise) and sit in a program the actor can access (403).
func (g programGuard) checkDayUsable(ctx context.Context, actor domain.Actor, dayID primitive.ObjectID) error {
	day, err := g.days.GetByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramDayUnknown
		}
		return err
	}
	_, _, err = g.loadProgram(ctx, actor, day.ProgramID)
	switch {
	case errors.Is(err, ErrProgramNotFound):
		return ErrProgramDayUnknown
	case errors.Is(err, ErrProgramAccessDenied):
		return ErrProgramDayDenied
	}
	return err
}
