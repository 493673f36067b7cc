package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNutritionOneEntryPerDay(t *testing.T) {
	f := newFixture(t)
	coach := f.trainer(t, "Coach")
	anna := f.client(t, "Anna", coach)
	boris := f.client(t, "Boris", nil)

	before := counterValue(t, trackingCounter, "kind", "nutrition")
	breakfast := time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC)

	first, created, err := f.nutrition.Log(f.ctx, actorOf(anna), NutritionInput{Date: breakfast, Calories: ptr(500.0), Notes: "oats"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-01-10", first.Day)

	// A second log the same day overwrites every field.
	second, created, err := f.nutrition.Log(f.ctx, actorOf(anna), NutritionInput{Date: breakfast.Add(12 * time.Hour), Calories: ptr(1900.0), Proteins: ptr(120.0)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Notes)
	assert.Equal(t, 1900.0, *second.Calories)
	assert.Equal(t, before+1, counterValue(t, trackingCounter, "kind", "nutrition"))

	// The day follows the offset the date was sent in: 01:00 at UTC+3 is still
	// the 10th in UTC but the 11th for the user.
	msk := time.FixedZone("MSK", 3*60*60)
	next, created, err := f.nutrition.Log(f.ctx, actorOf(anna), NutritionInput{Date: time.Date(2024, time.January, 11, 1, 0, 0, 0, msk), Calories: ptr(300.0)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2024-01-11", next.Day)

	entries, err := f.nutrition.List(f.ctx, actorOf(anna), TrackingFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, next.ID, entries[0].ID)

	_, err = f.nutrition.Update(f.ctx, actorOf(anna), next.ID, NutritionInput{Date: breakfast})
	assert.ErrorIs(t, err, ErrConflict)

	t.Run("trainer reads but does not write", func(t *testing.T) {
		got, err := f.nutrition.Get(f.ctx, actorOf(coach), second.ID)
		require.NoError(t, err)
		assert.Equal(t, anna.ID, got.UserID)

		list, err := f.nutrition.List(f.ctx, actorOf(coach), TrackingFilter{UserID: &anna.ID})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = f.nutrition.Update(f.ctx, actorOf(coach), second.ID, NutritionInput{Date: breakfast})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, f.nutrition.Delete(f.ctx, actorOf(coach), second.ID), ErrNotFound)
	})

	t.Run("strangers see nothing", func(t *testing.T) {
		_, err := f.nutrition.Get(f.ctx, actorOf(boris), second.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = f.nutrition.List(f.ctx, actorOf(boris), TrackingFilter{UserID: &anna.ID})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("validation", func(t *testing.T) {
		_, _, err := f.nutrition.Log(f.ctx, actorOf(anna), NutritionInput{})
		assert.ErrorIs(t, err, ErrValidation)
		_, _, err = f.nutrition.Log(f.ctx, actorOf(anna), NutritionInput{Date: breakfast, Fats: ptr(-1.0)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	updated, err := f.nutrition.Update(f.ctx, actorOf(anna), next.ID, NutritionInput{Date: next.Date.In(msk), Carbs: ptr(40.0), Notes: "late snack"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", updated.Day)
	assert.Nil(t, updated.Calories)

	require.NoError(t, f.nutrition.Delete(f.ctx, actorOf(anna), next.ID))
	_, err = f.nutrition.Get(f.ctx, actorOf(anna), next.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
