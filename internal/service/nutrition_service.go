package service

import (
	"alcyxob/coach-app/internal/access"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNutritionNotFound = notFound("nutrition entry")
	ErrNutritionDayTaken = conflict("a nutrition entry already exists for that day")
)

// NutritionInput is a full nutrition record; every write replaces all fields.
type NutritionInput struct {
	Date     time.Time
	Calories *float64
	Proteins *float64
	Fats     *float64
	Carbs    *float64
	Notes    string
}

// NutritionService keeps one food log entry per user and day. Entries are
// written by their owner and readable by the owner's trainer.
type NutritionService interface {
	// Log creates the entry for in.Date's day or overwrites the one already
	// there. created reports which happened.
	Log(ctx context.Context, actor domain.Actor, in NutritionInput) (entry *domain.NutritionEntry, created bool, err error)
	List(ctx context.Context, actor domain.Actor, filter TrackingFilter) ([]domain.NutritionEntry, error)
	Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.NutritionEntry, error)
	Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, in NutritionInput) (*domain.NutritionEntry, error)
	Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error
}

type nutritionService struct {
	tx       repository.Transactor
	userRepo repository.UserRepository
	repo     repository.NutritionRepository
}

// NewNutritionService creates a new instance of nutritionService.
func NewNutritionService(tx repository.Transactor, userRepo repository.UserRepository, repo repository.NutritionRepository) NutritionService {
	return &nutritionService{tx: tx, userRepo: userRepo, repo: repo}
}

func validateNutrition(in NutritionInput) error {
	if in.Date.IsZero() {
		return invalid("date is required")
	}
	for _, v := range []*float64{in.Calories, in.Proteins, in.Fats, in.Carbs} {
		if v != nil && (!finite(*v) || *v < 0) {
			return invalid("calories and macros cannot be negative")
		}
	}
	return nil
}

// apply overwrites e with in. Day follows the offset in.Date was given in.
func (in NutritionInput) apply(e *domain.NutritionEntry) {
	e.Date = in.Date.UTC()
	e.Day = domain.NutritionDay(in.Date)
	e.Calories = in.Calories
	e.Proteins = in.Proteins
	e.Fats = in.Fats
	e.Carbs = in.Carbs
	e.Notes = in.Notes
}

func (s *nutritionService) Log(ctx context.Context, actor domain.Actor, in NutritionInput) (*domain.NutritionEntry, bool, error) {
	if err := validateNutrition(in); err != nil {
		return nil, false, err
	}
	var entry *domain.NutritionEntry
	created := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created = false
		existing, err := s.repo.GetByDay(ctx, actor.ID, domain.NutritionDay(in.Date))
		switch {
		case err == nil:
			in.apply(existing)
			entry = existing
			return s.repo.Update(ctx, existing)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		entry = &domain.NutritionEntry{UserID: actor.ID}
		in.apply(entry)
		if _, err := s.repo.Create(ctx, entry); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrNutritionDayTaken
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		metrics.RecordTrackingEntry("nutrition")
	}
	return entry, created, nil
}

func (s *nutritionService) List(ctx context.Context, actor domain.Actor, f TrackingFilter) ([]domain.NutritionEntry, error) {
	subject, err := trackedUser(ctx, s.userRepo, actor, f.UserID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.EntryFilter{UserID: subject, From: f.From, To: f.To})
}

func (s *nutritionService) load(ctx context.Context, id primitive.ObjectID) (*domain.NutritionEntry, error) {
	e, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNutritionNotFound
	}
	return e, err
}

// Get lets the owner or their trainer read an entry. Anyone else gets not found.
func (s *nutritionService) Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.NutritionEntry, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID == actor.ID {
		return e, nil
	}
	owner, err := loadUser(ctx, s.userRepo, e.UserID)
	if err != nil {
		return nil, err
	}
	if !access.ManagesUser(actor, owner) {
		return nil, ErrNutritionNotFound
	}
	return e, nil
}

func (s *nutritionService) Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, in NutritionInput) (*domain.NutritionEntry, error) {
	if err := validateNutrition(in); err != nil {
		return nil, err
	}
	var entry *domain.NutritionEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if e.UserID != actor.ID {
			return ErrNutritionNotFound
		}
		in.apply(e)
		if err := s.repo.Update(ctx, e); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrNutritionDayTaken
			}
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *nutritionService) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if e.UserID != actor.ID {
			return ErrNutritionNotFound
		}
		return s.repo.Delete(ctx, id)
	})
}
