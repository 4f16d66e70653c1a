package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/database/dbtest"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.parent(t, "pat@example.com", "secret1")
	require.NoError(t, f.parents.UpdateLastLogin(ctx, parent.ID, parent.CreatedAt))
	kid := f.kid(t, parent.ID, models.AgeCategoryYounger)
	a := f.video(t, "a", 1, 1)
	b := f.video(t, "b", 2, 4)
	_, err := f.content.ToggleFavorite(ctx, kid.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, f.content.BlockVideo(ctx, kid.ID, b.ID))
	require.NoError(t, f.content.RecordWatch(ctx, kid.ID, a.ID, 12))

	var buf bytes.Buffer
	exported, err := NewBackupService(f.db, zap.NewNop()).ExportToWriter(ctx, &buf)
	require.NoError(t, err)
	assert.Len(t, exported.Parents, 1)
	assert.Len(t, exported.Categories, 5)
	assert.Len(t, exported.Videos, 2)

	target := dbtest.New(t)
	imported, err := NewBackupService(target, zap.NewNop()).ImportFromReader(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", imported.DatabaseType)

	restored := NewContentService(target, zap.NewNop())
	videos, err := restored.EligibleVideos(ctx, kid.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, videoIDs(videos))

	favorites, err := restored.FavoriteIDs(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{a.ID: true}, favorites)

	stored, err := repository.NewParentRepository(target).GetParentByEmail(ctx, "pat@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, parent.ID, stored.ID)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestBackupImportRejectsUnknownVersion(t *testing.T) {
	db := dbtest.New(t)
	_, err := NewBackupService(db, zap.NewNop()).ImportFromReader(context.Background(), strings.NewReader(`{"version":"9"}`))
	assert.Error(t, err)

	var categories int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, 5, categories)
}
