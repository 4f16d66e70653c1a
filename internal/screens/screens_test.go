package screens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/database"
	"kidsvids/internal/database/dbtest"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

type fixture struct {
	db         *database.DB
	parents    *repository.ParentRepository
	kids       *repository.KidRepository
	videos     *repository.VideoRepository
	categories *repository.CategoryRepository
	content    *service.ContentService
	overlays   *service.OverlayService
	profiles   *service.ProfileService
	playback   *service.PlaybackService
	sess       *session.Session
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.New(t)
	sess, err := session.Open(context.Background(), "device-1", session.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)

	videos := repository.NewVideoRepository(db)
	content := service.NewContentService(db, zap.NewNop())
	return &fixture{
		db:         db,
		parents:    repository.NewParentRepository(db),
		kids:       repository.NewKidRepository(db),
		videos:     videos,
		categories: repository.NewCategoryRepository(db),
		content:    content,
		overlays:   service.NewOverlayService(db),
		profiles:   service.NewProfileService(db, zap.NewNop()),
		playback:   service.NewPlaybackService(videos, content, zap.NewNop()),
		sess:       sess,
	}
}

func (f *fixture) parent(t *testing.T, email string) *models.Parent {
	t.Helper()
	p, err := f.parents.CreateParent(context.Background(), "Pat Parent", email, "hash", "1234")
	require.NoError(t, err)
	return p
}

func (f *fixture) kid(t *testing.T, parentID int64, name string, age int64) *models.Kid {
	t.Helper()
	k, err := f.kids.CreateKid(context.Background(), parentID, name, age, "bear")
	require.NoError(t, err)
	return k
}

func (f *fixture) video(t *testing.T, title string, age, category int64, source models.SourceType) *models.Video {
	t.Helper()
	v := &models.Video{
		VideoURL:      "https://cdn.example.com/" + title + ".mp4",
		Title:         title,
		AgeCategoryID: age,
		CategoryID:    category,
		SourceType:    source,
		Status:        models.StatusPublished,
	}
	require.NoError(t, f.videos.CreateVideo(context.Background(), v))
	return v
}

// login signs parent in and, when kid is non-nil, selects it
func (f *fixture) login(t *testing.T, parent *models.Parent, kid *models.Kid) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sess.LoginParent(ctx, parent.ID))
	if kid != nil {
		require.NoError(t, f.sess.SelectProfile(ctx, kid.ID))
	}
}

func await[S any](t *testing.T, h *Holder[S], ready func(S) bool) S {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := h.Await(ctx, ready)
	require.NoError(t, err, "screen never reached the expected state, last: %+v", h.Snapshot())
	return s
}

func ids(videos []models.Video) []int64 {
	out := make([]int64, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func sameIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
