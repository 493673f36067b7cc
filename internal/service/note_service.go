package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoteNotFound      = notFound("note")
	ErrNoteTitleRequired = invalid("note title is required")
)

type CreateNoteInput struct {
	ClientID primitive.ObjectID
	Title    string
	Content  string
}

// NotePatch holds the fields a caller explicitly supplied.
type NotePatch struct {
	Title   domain.Field[string]
	Content domain.Field[string]
}

// NoteService manages trainer notes about clients. Trainers write notes for
// their linked clients; a client reads the notes written about them.
type NoteService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateNoteInput) (*domain.TrainerNote, error)
	// List returns a trainer's own notes, optionally for one client, or the
	// notes about a client. clientID is ignored for clients.
	List(ctx context.Context, actor domain.Actor, clientID *primitive.ObjectID) ([]domain.TrainerNote, error)
	Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.TrainerNote, error)
	Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch NotePatch) (*domain.TrainerNote, error)
	Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error
}

type noteService struct {
	userRepo repository.UserRepository
	repo     repository.NoteRepository
	notifier NotificationSink
}

// NewNoteService creates a new instance of noteService.
func NewNoteService(userRepo repository.UserRepository, repo repository.NoteRepository, notifier NotificationSink) NoteService {
	return &noteService{userRepo: userRepo, repo: repo, notifier: notifier}
}

func (s *noteService) Create(ctx context.Context, actor domain.Actor, in CreateNoteInput) (*domain.TrainerNote, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrNoteTitleRequired
	}
	client, err := loadManagedClient(ctx, s.userRepo, actor, in.ClientID)
	if err != nil {
		return nil, err
	}
	note := &domain.TrainerNote{TrainerID: actor.ID, ClientID: client.ID, Title: title, Content: in.Content}
	if _, err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	n := domain.Notification{
		UserID:   client.ID,
		SenderID: &note.TrainerID,
		Type:     domain.NotificationTrainerNote,
		Title:    "New note from your trainer",
		Content:  title,
		Link:     fmt.Sprintf("/notes/%s", note.ID.Hex()),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("ERROR: Failed to notify client %s about note %s: %v", client.ID.Hex(), note.ID.Hex(), err)
	}
	return note, nil
}

func (s *noteService) List(ctx context.Context, actor domain.Actor, clientID *primitive.ObjectID) ([]domain.TrainerNote, error) {
	if !actor.IsTrainer() {
		return s.repo.List(ctx, repository.NoteFilter{ClientID: &actor.ID})
	}
	return s.repo.List(ctx, repository.NoteFilter{TrainerID: &actor.ID, ClientID: clientID})
}

// Get returns a note to its author or to the client it is about.
func (s *noteService) Get(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.TrainerNote, error) {
	note, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.TrainerID != actor.ID && note.ClientID != actor.ID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, actor domain.Actor, id primitive.ObjectID, patch NotePatch) (*domain.TrainerNote, error) {
	note, err := s.authored(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Title.Apply(&note.Title) {
		note.Title = strings.TrimSpace(note.Title)
		if note.Title == "" {
			return nil, ErrNoteTitleRequired
		}
	}
	patch.Content.Apply(&note.Content)
	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	if _, err := s.authored(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}

func (s *noteService) load(ctx context.Context, id primitive.ObjectID) (*domain.TrainerNote, error) {
	note, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	return note, err
}

// authored loads a note only the acting trainer wrote.
func (s *noteService) authored(ctx context.Context, actor domain.Actor, id primitive.ObjectID) (*domain.TrainerNote, error) {
	if !actor.IsTrainer() {
		return nil, ErrNotATrainer
	}
	note, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.TrainerID != actor.ID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}
