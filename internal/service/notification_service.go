package service

import (
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

var ErrNotificationNotFound = notFound("notification")

// NotificationService is the in-app feed. It also acts as the sink other
// services push notifications into.
type NotificationService interface {
	NotificationSink
	List(ctx context.Context, actor domain.Actor, filter repository.NotificationFilter) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error
	Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, n domain.Notification) error {
	if n.UserID == primitive.NilObjectID {
		return invalid("notification recipient is required")
	}
	n.IsRead = false
	if _, err := s.repo.Create(ctx, &n); err != nil {
		return err
	}
	metrics.RecordNotification(n.Type)
	return nil
}

func (s *notificationService) List(ctx context.Context, actor domain.Actor, f repository.NotificationFilter) ([]domain.Notification, error) {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultNotificationLimit
	}
	if f.Limit > maxNotificationLimit {
		f.Limit = maxNotificationLimit
	}
	return s.repo.ListByUserID(ctx, actor.ID, f)
}

func (s *notificationService) MarkRead(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	return notificationErr(s.repo.MarkRead(ctx, id, actor.ID))
}

func (s *notificationService) Delete(ctx context.Context, actor domain.Actor, id primitive.ObjectID) error {
	return notificationErr(s.repo.Delete(ctx, id, actor.ID))
}

func notificationErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
