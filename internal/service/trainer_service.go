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
	ErrClientNotFound        = notFound("client")
	ErrClientNotRole         = invalid("user found but is not a client")
	ErrClientAlreadyAssigned = conflict("client is already assigned to a trainer")
	ErrNotATrainer           = forbidden("only trainers can do this")
)

// TrainerService manages the trainer/client link.
type TrainerService interface {
	AddClientByEmail(ctx context.Context, actor domain.Actor, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	// GetManagedClient returns one linked client, or ErrClientNotFound.
	GetManagedClient(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID) (*domain.User, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo repository.UserRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository) TrainerService {
	return &trainerService{userRepo: userRepo}
}

// AddClientByEmail links an existing client account to the trainer.
// Linking a client already linked to this trainer is a no-op.
func (s *trainerService) AddClientByEmail(ctx context.Context, actor domain.Actor, clientEmail string) (*domain.User, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	client, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(clientEmail)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	if client.TrainerID != nil && *client.TrainerID != actor.ID {
		return nil, ErrClientAlreadyAssigned
	}

	if client.TrainerID == nil {
		if err := s.userRepo.SetTrainerForClient(ctx, client.ID, actor.ID); err != nil {
			return nil, err
		}
		client.TrainerID = &actor.ID
	}
	client.PasswordHash = ""
	return client, nil
}

func (s *trainerService) GetManagedClients(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

func (s *trainerService) GetManagedClient(ctx context.Context, actor domain.Actor, clientID primitive.ObjectID) (*domain.User, error) {
	return loadManagedClient(ctx, s.userRepo, actor, clientID)
}

// loadManagedClient fetches a client only if it is linked to the acting trainer.
// An unlinked client is reported as missing, not forbidden.
func loadManagedClient(ctx context.Context, users repository.UserRepository, actor domain.Actor, clientID primitive.ObjectID) (*domain.User, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	client, err := users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClientOf(actor.ID) {
		return nil, ErrClientNotFound
	}
	client.PasswordHash = ""
	return client, nil
}

// loadUser returns the user or nil when it no longer exists.
func loadUser(ctx context.Context, users repository.UserRepository, id primitive.ObjectID) (*domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}
