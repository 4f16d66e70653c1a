package screens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/service"
)

func TestProfilesFollowParent(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")

	screen := NewProfiles(f.sess, f.profiles, zap.NewNop())
	t.Cleanup(screen.Close)

	view := await(t, screen.Holder, func(v View[[]models.Kid]) bool { return v.Status == StatusError })
	assert.Equal(t, msgNoParent, view.Error)

	f.login(t, p, nil)
	view = await(t, screen.Holder, func(v View[[]models.Kid]) bool { return v.Status == StatusReady })
	assert.Empty(t, view.Data)

	_, err := f.profiles.AddProfile(context.Background(), p.ID, service.ProfileInput{Name: "Alex", AgeCategoryID: models.AgeCategoryYounger})
	require.NoError(t, err)
	view = await(t, screen.Holder, func(v View[[]models.Kid]) bool { return v.Status == StatusReady && len(v.Data) == 1 })
	assert.Equal(t, "Alex", view.Data[0].Name)
}

func TestProfilesSelectChecksOwnership(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	other := f.parent(t, "other@example.com")
	mine := f.kid(t, p.ID, "Alex", models.AgeCategoryYounger)
	theirs := f.kid(t, other.ID, "Jo", models.AgeCategoryOlder)
	f.login(t, p, nil)

	screen := NewProfiles(f.sess, f.profiles, zap.NewNop())
	t.Cleanup(screen.Close)
	await(t, screen.Holder, func(v View[[]models.Kid]) bool { return v.Status == StatusReady })

	_, err := screen.Select(context.Background(), theirs.ID)
	assert.ErrorIs(t, err, service.ErrKidNotFound)
	assert.Equal(t, msgProfileNotFound, screen.Snapshot().Message)
	_, selected := f.sess.SelectedKidID()
	assert.False(t, selected)

	screen.AcknowledgeMessage()
	kid, err := screen.Select(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, kid.ID)
	kidID, ok := f.sess.SelectedKidID()
	require.True(t, ok)
	assert.Equal(t, mine.ID, kidID)
	assert.Empty(t, screen.Snapshot().Message)
}

func TestAccountShowsSelectedProfile(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	k := f.kid(t, p.ID, "Alex", models.AgeCategoryYounger)
	f.login(t, p, nil)

	screen := NewAccount(f.sess, f.profiles, zap.NewNop())
	t.Cleanup(screen.Close)

	view := await(t, screen.Holder, func(v View[*service.Account]) bool { return v.Status == StatusReady })
	assert.Equal(t, "pat@example.com", view.Data.ParentEmail)
	assert.Empty(t, view.Data.CurrentKidName)

	require.NoError(t, f.sess.SelectProfile(context.Background(), k.ID))
	view = await(t, screen.Holder, func(v View[*service.Account]) bool {
		return v.Status == StatusReady && v.Data.CurrentKidName == "Alex"
	})

	require.NoError(t, f.kids.DeleteKid(context.Background(), k.ID))
	await(t, screen.Holder, func(v View[*service.Account]) bool {
		return v.Status == StatusReady && v.Data.CurrentKidName == "No profile selected"
	})

	ok, err := screen.CheckPIN(context.Background(), "1234")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = screen.CheckPIN(context.Background(), "9999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYourStuffAndBlocked(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	k := f.kid(t, p.ID, "Alex", models.AgeCategoryOlder)
	v1 := f.video(t, "songs", models.AgeCategoryPreschool, 1, models.SourceUploaded)
	v2 := f.video(t, "letters", models.AgeCategoryYounger, 2, models.SourceUploaded)
	f.login(t, p, k)
	ctx := context.Background()

	stuff := NewYourStuff(f.sess, f.overlays, zap.NewNop())
	t.Cleanup(stuff.Close)
	blocked := NewBlocked(f.sess, f.content, f.overlays, zap.NewNop())
	t.Cleanup(blocked.Close)

	view := await(t, stuff.Holder, func(v View[*service.YourStuff]) bool { return v.Status == StatusReady })
	assert.Empty(t, view.Data.History)
	assert.Empty(t, view.Data.Favorites)

	require.NoError(t, f.content.RecordWatch(ctx, k.ID, v1.ID, 30))
	_, err := f.content.ToggleFavorite(ctx, k.ID, v2.ID)
	require.NoError(t, err)
	await(t, stuff.Holder, func(v View[*service.YourStuff]) bool {
		return v.Status == StatusReady && sameIDs(ids(v.Data.History), v1.ID) && sameIDs(ids(v.Data.Favorites), v2.ID)
	})

	require.NoError(t, f.content.BlockVideo(ctx, k.ID, v1.ID))
	await(t, blocked.Holder, func(v View[[]models.Video]) bool {
		return v.Status == StatusReady && sameIDs(ids(v.Data), v1.ID)
	})

	require.NoError(t, blocked.Unblock(ctx, v1.ID))
	await(t, blocked.Holder, func(v View[[]models.Video]) bool {
		return v.Status == StatusReady && len(v.Data) == 0
	})
}

func TestOverlayScreensWithoutProfile(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	f.login(t, p, nil)

	blocked := NewBlocked(f.sess, f.content, f.overlays, zap.NewNop())
	t.Cleanup(blocked.Close)

	view := await(t, blocked.Holder, func(v View[[]models.Video]) bool { return v.Status.Settled() })
	assert.Equal(t, StatusError, view.Status)
	assert.Equal(t, msgNoProfile, view.Error)
	assert.NoError(t, blocked.Unblock(context.Background(), 1))
}

func TestKidActionsRequireSelection(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	k := f.kid(t, p.ID, "Alex", models.AgeCategoryOlder)
	v := f.video(t, "songs", models.AgeCategoryPreschool, 1, models.SourceUploaded)
	actions := NewKidActions(f.sess, f.content)
	ctx := context.Background()

	_, applied, err := actions.ToggleFavorite(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, applied)

	f.login(t, p, k)
	favorite, applied, err := actions.ToggleFavorite(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, favorite)

	applied, err = actions.Block(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = actions.Unblock(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, applied)
}
