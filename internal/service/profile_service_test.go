package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/avatars"
	"kidsvids/internal/models"
	"kidsvids/internal/session"
	"kidsvids/internal/validation"
)

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")
	other := f.parent(t, "sam@example.com", "secret1")

	kid, err := profiles.AddProfile(ctx, parent.ID, ProfileInput{Name: " Mia ", AgeCategoryID: models.AgeCategoryPreschool, Avatar: "cat"})
	require.NoError(t, err)
	assert.Equal(t, "Mia", kid.Name)

	_, err = profiles.AddProfile(ctx, 999, ProfileInput{Name: "Ghost", AgeCategoryID: 1})
	assert.ErrorIs(t, err, ErrParentNotFound)

	updated, err := profiles.UpdateProfile(ctx, parent.ID, kid.ID, ProfileInput{Name: "Mia", AgeCategoryID: models.AgeCategoryOlder})
	require.NoError(t, err)
	assert.Equal(t, models.AgeCategoryOlder, updated.AgeCategoryID)
	assert.Equal(t, "cat", updated.Avatar)

	_, err = profiles.UpdateProfile(ctx, other.ID, kid.ID, ProfileInput{Name: "Stolen", AgeCategoryID: 1})
	assert.ErrorIs(t, err, ErrKidNotFound)
	assert.ErrorIs(t, profiles.DeleteProfile(ctx, other.ID, kid.ID), ErrKidNotFound)

	kids, err := profiles.ListProfiles(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, models.AgeCategoryOlder, kids[0].AgeCategoryID)

	require.NoError(t, profiles.DeleteProfile(ctx, parent.ID, kid.ID))
	kids, err = profiles.ListProfiles(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func TestProfileValidation(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	parent := f.parent(t, "pat@example.com", "secret1")

	_, err := profiles.AddProfile(context.Background(), parent.ID, ProfileInput{Name: "", AgeCategoryID: 4})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "name")
	assert.Contains(t, verrs, "age_category_id")

	_, err = profiles.AddProfile(context.Background(), parent.ID, ProfileInput{Name: "Mia", AgeCategoryID: 1, Avatar: "disneyelsa"})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "avatar")
}

func TestAddProfilePicksAvatar(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	parent := f.parent(t, "pat@example.com", "secret1")

	kid, err := profiles.AddProfile(context.Background(), parent.ID, ProfileInput{Name: "Mia", AgeCategoryID: 1})
	require.NoError(t, err)
	assert.True(t, avatars.Valid(kid.Avatar), kid.Avatar)
}

func TestWatchProfiles(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")

	sub := profiles.WatchProfiles(ctx, parent.ID)
	defer sub.Close()

	next := func() []models.Kid {
		t.Helper()
		select {
		case snap := <-sub.C:
			require.NoError(t, snap.Err)
			return snap.Value
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for profiles")
			return nil
		}
	}

	assert.Empty(t, next())
	_, err := profiles.AddProfile(ctx, parent.ID, ProfileInput{Name: "Mia", AgeCategoryID: 1})
	require.NoError(t, err)
	assert.Len(t, next(), 1)
}

func TestSelectProfileRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")
	other := f.parent(t, "sam@example.com", "secret1")
	mine := f.kid(t, parent.ID, 1)
	theirs := f.kid(t, other.ID, 1)

	sess, err := session.Open(ctx, "device", session.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)

	_, err = profiles.SelectProfile(ctx, sess, mine.ID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, sess.LoginParent(ctx, parent.ID))
	_, err = profiles.SelectProfile(ctx, sess, theirs.ID)
	assert.ErrorIs(t, err, ErrKidNotFound)
	_, selected := sess.SelectedKidID()
	assert.False(t, selected)

	kid, err := profiles.SelectProfile(ctx, sess, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, kid.ID)
	id, ok := sess.SelectedKidID()
	assert.True(t, ok)
	assert.Equal(t, mine.ID, id)
}

func TestAccountAndPIN(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.db, zap.NewNop())
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")
	kid, err := profiles.AddProfile(ctx, parent.ID, ProfileInput{Name: "Mia", AgeCategoryID: 1})
	require.NoError(t, err)

	account, err := profiles.Account(ctx, session.State{ParentID: &parent.ID, SelectedKidID: &kid.ID})
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", account.ParentEmail)
	assert.Equal(t, "Mia", account.CurrentKidName)

	missing := int64(999)
	account, err = profiles.Account(ctx, session.State{ParentID: &parent.ID, SelectedKidID: &missing})
	require.NoError(t, err)
	assert.Equal(t, "No profile selected", account.CurrentKidName)

	_, err = profiles.Account(ctx, session.State{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	ok, err := profiles.CheckPIN(ctx, parent.ID, "1234")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = profiles.CheckPIN(ctx, parent.ID, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = profiles.CheckPIN(ctx, 999, "1234")
	assert.ErrorIs(t, err, ErrParentNotFound)
}
