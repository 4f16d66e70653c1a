package screens

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/service"
)

func TestPlayerLoad(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	k := f.kid(t, p.ID, "Alex", models.AgeCategoryOlder)
	uploaded := f.video(t, "songs", models.AgeCategoryPreschool, 1, models.SourceUploaded)
	youtube := f.video(t, "clip", models.AgeCategoryPreschool, 1, models.SourceYouTube)
	f.login(t, p, k)

	tests := []struct {
		name      string
		videoID   int64
		wantErr   error
		wantState Status
		wantText  string
	}{
		{name: "uploaded", videoID: uploaded.ID, wantState: StatusReady},
		{name: "youtube", videoID: youtube.ID, wantErr: service.ErrUnplayableSource, wantState: StatusError, wantText: "Only uploaded videos can be played."},
		{name: "missing", videoID: 999, wantErr: service.ErrVideoNotFound, wantState: StatusError, wantText: "Video not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := NewPlayer(f.sess, f.playback, zap.NewNop())
			state, err := player.Load(context.Background(), tt.videoID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, state.Video)
			} else {
				require.NoError(t, err)
				require.NotNil(t, state.Video)
				assert.Equal(t, tt.videoID, state.Video.ID)
			}
			assert.Equal(t, tt.wantState, state.Status)
			assert.Equal(t, tt.wantText, state.Error)
		})
	}

	history, err := repository.NewHistoryRepository(f.db).GetHistoryIDs(context.Background(), k.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{uploaded.ID}, history)
}

func TestPlayerReportProgress(t *testing.T) {
	f := newFixture(t)
	p := f.parent(t, "pat@example.com")
	k := f.kid(t, p.ID, "Alex", models.AgeCategoryOlder)
	v := f.video(t, "songs", models.AgeCategoryPreschool, 1, models.SourceUploaded)
	f.login(t, p, k)
	ctx := context.Background()

	player := NewPlayer(f.sess, f.playback, zap.NewNop())
	assert.NoError(t, player.ReportProgress(ctx, 10))

	_, err := player.Load(ctx, v.ID)
	require.NoError(t, err)
	require.NoError(t, player.ReportProgress(ctx, 42))

	history, err := repository.NewHistoryRepository(f.db).GetHistory(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 42, history[0].ProgressSeconds)
}
