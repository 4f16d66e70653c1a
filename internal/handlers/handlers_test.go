package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/database"
	"kidsvids/internal/database/dbtest"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/security"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

const (
	testAdminEmail    = "admin@app.com"
	testAdminPassword = "admin-secret"
)

type apiFixture struct {
	db       *database.DB
	videos   *repository.VideoRepository
	kids     *repository.KidRepository
	sessions *session.Manager
	handler  http.Handler
}

type putter struct {
	keys []string
}

func (p *putter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.keys = append(p.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func newAPIFixture(t *testing.T, media *service.MediaService) *apiFixture {
	t.Helper()
	log := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := dbtest.New(t)
	parents := repository.NewParentRepository(db)
	kids := repository.NewKidRepository(db)
	videos := repository.NewVideoRepository(db)
	categories := repository.NewCategoryRepository(db)

	mailer, err := service.NewEmailService(ctx, "us-east-1", "", "KidsVids", "http://localhost", false, log)
	require.NoError(t, err)
	if media == nil {
		media, err = service.NewMediaService(ctx, "us-east-1", "", "", log)
		require.NoError(t, err)
	}

	content := service.NewContentService(db, log)
	sessions := session.NewManager(ctx, session.NewMemoryStore(), 0, log)
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	middleware := NewMiddleware(tokens, sessions, security.NewRateLimiter(ctx, 100, time.Minute), log)

	mux := Routes(middleware,
		NewAuthHandler(service.NewAuthService(parents, mailer, log), sessions, tokens, middleware, log),
		NewParentHandler(service.NewProfileService(db, log), log),
		NewKidHandler(content, service.NewOverlayService(db), service.NewPlaybackService(videos, content, log), kids, categories, log),
		NewAdminHandler(
			service.NewAdminService(testAdminEmail, testAdminPassword, videos, categories, parents, log),
			service.NewReportService(repository.NewReportRepository(db), parents),
			media, service.NewBackupService(db, log), tokens, 1<<20, log),
	)

	return &apiFixture{db: db, videos: videos, kids: kids, sessions: sessions, handler: Logging(log, mux)}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

// signupAndLogin registers a parent and returns a device token
func (f *apiFixture) signupAndLogin(t *testing.T, email string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/signup", "", service.SignupInput{
		FullName: "Pat Parent", Email: email, Password: "secret123", PIN: "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginResponse](t, rec).Token
}

func (f *apiFixture) adminToken(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/admin/login", "", loginRequest{Email: testAdminEmail, Password: testAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](t, rec)["token"]
}

func (f *apiFixture) video(t *testing.T, title string, age, category int64, source models.SourceType) *models.Video {
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
