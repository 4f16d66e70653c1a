package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidsvids/internal/models"
)

func TestRegroup(t *testing.T) {
	videos := []models.Video{{ID: 3, Title: "c"}, {ID: 1, Title: "a"}, {ID: 2, Title: "b"}}

	tests := []struct {
		name     string
		idLists  [][]int64
		expected [][]int64
	}{
		{
			name:     "keeps each list's order",
			idLists:  [][]int64{{2, 3, 1}, {1, 2}},
			expected: [][]int64{{2, 3, 1}, {1, 2}},
		},
		{
			name:     "drops duplicate ids",
			idLists:  [][]int64{{1, 1, 2, 1}},
			expected: [][]int64{{1, 2}},
		},
		{
			name:     "skips unknown ids",
			idLists:  [][]int64{{9, 3}},
			expected: [][]int64{{3}},
		},
		{
			name:     "empty list",
			idLists:  [][]int64{{}},
			expected: [][]int64{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := regroup(videos, tt.idLists...)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				assert.Equal(t, tt.expected[i], videoIDs(got[i]))
			}
		})
	}
}

func TestYourStuff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.kid(t, f.parent(t, "pat@example.com", "secret1").ID, models.AgeCategoryOlder)
	a := f.video(t, "a", 1, 1)
	b := f.video(t, "b", 1, 1)
	c := f.video(t, "c", 1, 1)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []int64{a.ID, c.ID, b.ID} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.content.Now = func() time.Time { return at }
		require.NoError(t, f.content.RecordWatch(ctx, kid.ID, id, 0))
	}
	_, err := f.content.ToggleFavorite(ctx, kid.ID, c.ID)
	require.NoError(t, err)

	stuff, err := f.overlays.YourStuff(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, videoIDs(stuff.History))
	assert.Equal(t, []int64{c.ID}, videoIDs(stuff.Favorites))

	_, err = f.overlays.YourStuff(ctx, 999)
	assert.ErrorIs(t, err, ErrKidNotFound)
}

func TestBlockedVideos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kid := f.kid(t, f.parent(t, "pat@example.com", "secret1").ID, models.AgeCategoryOlder)
	a := f.video(t, "a", 1, 1)
	f.video(t, "b", 1, 1)

	blocked, err := f.overlays.BlockedVideos(ctx, kid.ID)
	require.NoError(t, err)
	assert.Empty(t, blocked)

	require.NoError(t, f.content.BlockVideo(ctx, kid.ID, a.ID))

	sub := f.overlays.WatchBlockedVideos(ctx, kid.ID)
	defer sub.Close()
	select {
	case snap := <-sub.C:
		require.NoError(t, snap.Err)
		assert.Equal(t, []int64{a.ID}, videoIDs(snap.Value))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	require.NoError(t, f.content.UnblockVideo(ctx, kid.ID, a.ID))
	select {
	case snap := <-sub.C:
		require.NoError(t, snap.Err)
		assert.Empty(t, snap.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot after unblock")
	}
}
