package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/repository"
	"kidsvids/internal/validation"
)

// VideoInput is the add/edit video form
type VideoInput struct {
	Title         string             `json:"title"`
	VideoURL      string             `json:"video_url"`
	ThumbnailURL  string             `json:"thumbnail_url"`
	AgeCategoryID int64              `json:"age_category_id"`
	CategoryID    int64              `json:"category_id"`
	SourceType    models.SourceType  `json:"source_type"`
	Status        models.VideoStatus `json:"status"`
}

// AdminService backs the content management panel
type AdminService struct {
	adminEmail    string
	adminPassword string
	videos        *repository.VideoRepository
	categories    *repository.CategoryRepository
	parents       *repository.ParentRepository
	log           *zap.Logger
}

// NewAdminService creates a new admin service. Admin login is refused while
// no admin password is configured.
func NewAdminService(adminEmail, adminPassword string, videos *repository.VideoRepository, categories *repository.CategoryRepository, parents *repository.ParentRepository, log *zap.Logger) *AdminService {
	return &AdminService{
		adminEmail:    strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPassword: adminPassword,
		videos:        videos,
		categories:    categories,
		parents:       parents,
		log:           log.With(zap.String("component", "admin")),
	}
}

// Authenticate checks the configured admin credentials
func (s *AdminService) Authenticate(email, password string) error {
	if s.adminPassword == "" {
		return ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !emailOK || !passwordOK {
		return ErrInvalidCredentials
	}
	return nil
}

// ListVideos returns the whole catalog, newest first
func (s *AdminService) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.videos.GetAllVideos(ctx)
}

// GetVideo returns one catalog entry
func (s *AdminService) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}
	return video, nil
}

// validateVideo normalizes in and checks every field, including that the
// category exists.
func (s *AdminService) validateVideo(ctx context.Context, in *VideoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	if in.SourceType == "" {
		in.SourceType = models.SourceUploaded
	}
	if in.Status == "" {
		in.Status = models.StatusPublished
	}

	errs := validation.Errors{}
	errs.Check(in.Title != "", "title", "Title is required.")
	errs.Check(len(in.Title) <= 200, "title", "Title must be at most 200 characters.")
	errs.Field("video_url", validation.ValidateURL(in.VideoURL))
	errs.Field("thumbnail_url", validation.ValidateURL(in.ThumbnailURL))
	errs.Field("age_category_id", validation.ValidateAgeCategory(in.AgeCategoryID))
	errs.Check(in.SourceType.Valid(), "source_type", "Source must be uploaded or youtube.")
	errs.Check(in.Status.Valid(), "status", "Status must be published or archived.")

	if in.CategoryID <= 0 {
		errs.Add("category_id", "Select a category.")
	} else {
		category, err := s.categories.GetCategoryByID(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		errs.Check(category != nil, "category_id", "Select a category.")
	}
	return errs.Err()
}

// CreateVideo adds a catalog entry
func (s *AdminService) CreateVideo(ctx context.Context, in VideoInput) (*models.Video, error) {
	if err := s.validateVideo(ctx, &in); err != nil {
		return nil, err
	}

	video := &models.Video{
		Title:         in.Title,
		VideoURL:      in.VideoURL,
		ThumbnailURL:  in.ThumbnailURL,
		AgeCategoryID: in.AgeCategoryID,
		CategoryID:    in.CategoryID,
		SourceType:    in.SourceType,
		Status:        in.Status,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	s.log.Info("video created", zap.Int64("video_id", video.ID), zap.String("title", video.Title))
	return video, nil
}

// UpdateVideo replaces a catalog entry's fields
func (s *AdminService) UpdateVideo(ctx context.Context, id int64, in VideoInput) (*models.Video, error) {
	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateVideo(ctx, &in); err != nil {
		return nil, err
	}

	video.Title = in.Title
	video.VideoURL = in.VideoURL
	video.ThumbnailURL = in.ThumbnailURL
	video.AgeCategoryID = in.AgeCategoryID
	video.CategoryID = in.CategoryID
	video.SourceType = in.SourceType
	video.Status = in.Status
	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// DeleteVideo removes a catalog entry and every overlay row that references it
func (s *AdminService) DeleteVideo(ctx context.Context, id int64) error {
	if _, err := s.GetVideo(ctx, id); err != nil {
		return err
	}
	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		return err
	}
	s.log.Info("video deleted", zap.Int64("video_id", id))
	return nil
}

// ListCategories returns every content category
func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListCategories(ctx)
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	errs := validation.Errors{}
	errs.Check(name != "", "name", "Name is required.")
	errs.Check(len(name) <= 100, "name", "Name must be at most 100 characters.")
	return name, errs.Err()
}

// CreateCategory adds a content category
func (s *AdminService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return s.categories.CreateCategory(ctx, name)
}

// UpdateCategory renames a content category
func (s *AdminService) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, id); err != nil {
		return nil, err
	}
	if err := s.categories.UpdateCategory(ctx, id, name); err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: name}, nil
}

// DeleteCategory removes a category together with its videos
func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.requireCategory(ctx, id); err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deleted", zap.Int64("category_id", id))
	return nil
}

func (s *AdminService) requireCategory(ctx context.Context, id int64) error {
	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

// ListParents returns every parent account
func (s *AdminService) ListParents(ctx context.Context) ([]models.Parent, error) {
	return s.parents.ListParents(ctx)
}

// ToggleParentActive flips a parent's active flag and returns the new value
func (s *AdminService) ToggleParentActive(ctx context.Context, id int64) (bool, error) {
	parent, err := s.parents.GetParentByID(ctx, id)
	if err != nil {
		return false, err
	}
	if parent == nil {
		return false, ErrParentNotFound
	}

	active := !parent.IsActive
	if err := s.parents.SetActive(ctx, id, active); err != nil {
		return false, err
	}
	s.log.Info("parent status changed", zap.Int64("parent_id", id), zap.Bool("active", active))
	return active, nil
}

// DeleteParent removes a parent and, by cascade, their kids and overlays
func (s *AdminService) DeleteParent(ctx context.Context, id int64) error {
	parent, err := s.parents.GetParentByID(ctx, id)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrParentNotFound
	}
	if err := s.parents.DeleteParent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete parent %d: %w", id, err)
	}
	s.log.Info("parent deleted", zap.Int64("parent_id", id))
	return nil
}
