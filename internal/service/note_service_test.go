package service

import (
	"testing"

	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainerNotes(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	other := f.trainer(t, "Other")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", other)

	_, err := f.notes.Create(f.ctx, actorOf(coach), CreateNoteInput{ClientID: boris.ID, Title: "Shoulder"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.notes.Create(f.ctx, actorOf(anna), CreateNoteInput{ClientID: anna.ID, Title: "Self"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.notes.Create(f.ctx, actorOf(coach), CreateNoteInput{ClientID: anna.ID, Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	note, err := f.notes.Create(f.ctx, actorOf(coach), CreateNoteInput{ClientID: anna.ID, Title: "Knee", Content: "Avoid deep lunges"})
	require.NoError(t, err)
	_, err = f.notes.Create(f.ctx, actorOf(other), CreateNoteInput{ClientID: boris.ID, Title: "Shoulder"})
	require.NoError(t, err)

	feed, err := f.notifications.List(f.ctx, actorOf(anna), repository.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, domain.NotificationTrainerNote, feed[0].Type)
	assert.Equal(t, coach.ID, *feed[0].SenderID)

	mine, err := f.notes.List(f.ctx, actorOf(coach), nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, note.ID, mine[0].ID)

	// A client's clientId filter is ignored; they only ever see notes about themselves.
	about, err := f.notes.List(f.ctx, actorOf(anna), &boris.ID)
	require.NoError(t, err)
	require.Len(t, about, 1)
	assert.Equal(t, note.ID, about[0].ID)

	_, err = f.notes.Get(f.ctx, actorOf(anna), note.ID)
	assert.NoError(t, err)
	_, err = f.notes.Get(f.ctx, actorOf(boris), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.notes.Get(f.ctx, actorOf(other), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.notes.Update(f.ctx, actorOf(coach), note.ID, NotePatch{Content: domain.Some("Deep lunges are fine again")})
	require.NoError(t, err)
	assert.Equal(t, "Knee", updated.Title)
	assert.Equal(t, "Deep lunges are fine again", updated.Content)

	_, err = f.notes.Update(f.ctx, actorOf(coach), note.ID, NotePatch{Title: domain.Some(" ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.notes.Update(f.ctx, actorOf(anna), note.ID, NotePatch{Title: domain.Some("Mine now")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.notes.Update(f.ctx, actorOf(other), note.ID, NotePatch{Title: domain.Some("Mine now")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.notes.Delete(f.ctx, actorOf(other), note.ID), ErrNotFound)
	require.NoError(t, f.notes.Delete(f.ctx, actorOf(coach), note.ID))
	_, err = f.notes.Get(f.ctx, actorOf(anna), note.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
