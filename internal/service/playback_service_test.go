package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/models"
)

func TestPlay(t *testing.T) {
	f := newFixture(t)
	playback := NewPlaybackService(f.videos, f.content, zap.NewNop())
	ctx := context.Background()
	kid := f.kid(t, f.parent(t, "pat@example.com", "secret1").ID, models.AgeCategoryOlder)
	uploaded := f.video(t, "uploaded", 1, 1)

	external := &models.Video{
		VideoURL: "https://www.youtube.com/watch?v=abc", Title: "external",
		AgeCategoryID: 1, CategoryID: 1, SourceType: models.SourceYouTube, Status: models.StatusPublished,
	}
	require.NoError(t, f.videos.CreateVideo(ctx, external))

	tests := []struct {
		name    string
		kidID   *int64
		videoID int64
		wantErr error
		history int
	}{
		{"missing video", &kid.ID, 999, ErrVideoNotFound, 0},
		{"external source", &kid.ID, external.ID, ErrUnplayableSource, 0},
		{"no profile selected", nil, uploaded.ID, nil, 0},
		{"records history", &kid.ID, uploaded.ID, nil, 1},
		{"second play keeps one row", &kid.ID, uploaded.ID, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video, err := playback.Play(ctx, tt.kidID, tt.videoID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, video)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.videoID, video.ID)
			}

			var count int
			require.NoError(t, f.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM watch_history").Scan(&count))
			assert.Equal(t, tt.history, count)
		})
	}
}

func TestRecordProgress(t *testing.T) {
	f := newFixture(t)
	playback := NewPlaybackService(f.videos, f.content, zap.NewNop())
	ctx := context.Background()
	kid := f.kid(t, f.parent(t, "pat@example.com", "secret1").ID, models.AgeCategoryOlder)
	v := f.video(t, "a", 1, 1)

	require.NoError(t, playback.RecordProgress(ctx, nil, v.ID, 30))
	require.NoError(t, playback.RecordProgress(ctx, &kid.ID, v.ID, 30))

	var progress int
	require.NoError(t, f.db.QueryRowContext(ctx, "SELECT progress_seconds FROM watch_history WHERE kid_id = ?", kid.ID).Scan(&progress))
	assert.Equal(t, 30, progress)
}
