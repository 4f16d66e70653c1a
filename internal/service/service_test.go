package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/database"
	"kidsvids/internal/database/dbtest"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/security"
)

type fixture struct {
	db         *database.DB
	parents    *repository.ParentRepository
	kids       *repository.KidRepository
	videos     *repository.VideoRepository
	categories *repository.CategoryRepository
	content    *ContentService
	overlays   *OverlayService
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.New(t)
	return &fixture{
		db:         db,
		parents:    repository.NewParentRepository(db),
		kids:       repository.NewKidRepository(db),
		videos:     repository.NewVideoRepository(db),
		categories: repository.NewCategoryRepository(db),
		content:    NewContentService(db, zap.NewNop()),
		overlays:   NewOverlayService(db),
	}
}

func (f *fixture) parent(t *testing.T, email, password string) *models.Parent {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	p, err := f.parents.CreateParent(context.Background(), "Pat Parent", email, hash, "1234")
	require.NoError(t, err)
	return p
}

func (f *fixture) kid(t *testing.T, parentID, age int64) *models.Kid {
	t.Helper()
	k, err := f.kids.CreateKid(context.Background(), parentID, "Kid", age, "bear")
	require.NoError(t, err)
	return k
}

func (f *fixture) video(t *testing.T, title string, age, category int64) *models.Video {
	t.Helper()
	v := &models.Video{
		VideoURL:      "https://cdn.example.com/" + title + ".mp4",
		Title:         title,
		AgeCategoryID: age,
		CategoryID:    category,
		SourceType:    models.SourceUploaded,
		Status:        models.StatusPublished,
	}
	require.NoError(t, f.videos.CreateVideo(context.Background(), v))
	return v
}

// videoWithID inserts a video with a fixed primary key
func (f *fixture) videoWithID(t *testing.T, id, age, category int64) {
	t.Helper()
	_, err := f.db.ExecContext(context.Background(),
		"INSERT INTO videos (id, video_url, title, age_category_id, category_id) VALUES (?, ?, ?, ?, ?)",
		id, "https://cdn.example.com/v.mp4", "Video", age, category)
	require.NoError(t, err)
}

func videoIDs(videos []models.Video) []int64 {
	ids := make([]int64, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

type sentEmail struct {
	kind, to, name, pin string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentEmail
	err      error
	disabled bool
}

func (m *fakeMailer) IsEnabled() bool {
	return !m.disabled
}

func (m *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{kind: "welcome", to: toEmail, name: toName})
	return m.err
}

func (m *fakeMailer) SendPINResetEmail(ctx context.Context, toEmail, toName, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{kind: "pin", to: toEmail, name: toName, pin: pin})
	return m.err
}
