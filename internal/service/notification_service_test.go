package service

import (
	"testing"

	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationFeed(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, f.notifications.Notify(f.ctx, domain.Notification{UserID: coach.ID, Type: "note", Title: title}))
	}
	require.NoError(t, f.notifications.Notify(f.ctx, domain.Notification{UserID: anna.ID, Type: "note", Title: "hers"}))
	assert.ErrorIs(t, f.notifications.Notify(f.ctx, domain.Notification{Type: "note"}), ErrValidation)

	all, err := f.notifications.List(f.ctx, actorOf(coach), repository.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	page, err := f.notifications.List(f.ctx, actorOf(coach), repository.NotificationFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, f.notifications.MarkRead(f.ctx, actorOf(coach), all[0].ID))
	unread, err := f.notifications.List(f.ctx, actorOf(coach), repository.NotificationFilter{OnlyUnread: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	// Another user's notification looks missing.
	assert.ErrorIs(t, f.notifications.MarkRead(f.ctx, actorOf(anna), all[1].ID), ErrNotFound)
	assert.ErrorIs(t, f.notifications.Delete(f.ctx, actorOf(anna), all[1].ID), ErrNotFound)
	assert.ErrorIs(t, f.notifications.Delete(f.ctx, actorOf(coach), primitive.NewObjectID()), ErrNotFound)

	require.NoError(t, f.notifications.Delete(f.ctx, actorOf(coach), all[1].ID))
	left, err := f.notifications.List(f.ctx, actorOf(coach), repository.NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 2)
}
