package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/database"
	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/repository"
)

// ContentService computes what a kid may watch and applies the favorite,
// block and history mutations that change it.
type ContentService struct {
	db        *database.DB
	kids      *repository.KidRepository
	videos    *repository.VideoRepository
	favorites *repository.FavoriteRepository
	blocked   *repository.BlockedVideoRepository
	history   *repository.HistoryRepository
	log       *zap.Logger

	// Now stamps watch history; replaced in tests
	Now func() time.Time

	toggleLocks [64]sync.Mutex
}

// NewContentService creates a new content service
func NewContentService(db *database.DB, log *zap.Logger) *ContentService {
	return &ContentService{
		db:        db,
		kids:      repository.NewKidRepository(db),
		videos:    repository.NewVideoRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		blocked:   repository.NewBlockedVideoRepository(db),
		history:   repository.NewHistoryRepository(db),
		log:       log.With(zap.String("component", "content")),
		Now:       time.Now,
	}
}

// EligibleVideos returns the videos kidID may watch, newest first, optionally
// narrowed to one category. An unknown kid yields ErrKidNotFound.
func (s *ContentService) EligibleVideos(ctx context.Context, kidID int64, categoryID *int64) ([]models.Video, error) {
	if _, err := s.requireKid(ctx, kidID); err != nil {
		return nil, err
	}

	videos, err := s.videos.GetEligibleVideos(ctx, kidID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible videos: %w", err)
	}
	return videos, nil
}

// WatchEligible re-evaluates EligibleVideos whenever videos, kids or blocks change
func (s *ContentService) WatchEligible(ctx context.Context, kidID int64, categoryID *int64) *live.Subscription[[]models.Video] {
	var filter *int64
	if categoryID != nil {
		v := *categoryID
		filter = &v
	}
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) ([]models.Video, error) {
		return s.EligibleVideos(ctx, kidID, filter)
	}, database.TableVideos, database.TableKids, database.TableBlockedVideos)
}

// FavoriteIDs returns the kid's favorite video IDs as a set
func (s *ContentService) FavoriteIDs(ctx context.Context, kidID int64) (map[int64]bool, error) {
	ids, err := s.favorites.GetFavoriteIDs(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// WatchFavoriteIDs re-evaluates FavoriteIDs whenever favorites change
func (s *ContentService) WatchFavoriteIDs(ctx context.Context, kidID int64) *live.Subscription[map[int64]bool] {
	return live.Watch(ctx, s.db.Changes(), func(ctx context.Context) (map[int64]bool, error) {
		return s.FavoriteIDs(ctx, kidID)
	}, database.TableFavorites)
}

// ToggleFavorite flips favorite membership and reports the new membership.
// Toggles of the same pair are serialized, so two rapid calls net to no change.
func (s *ContentService) ToggleFavorite(ctx context.Context, kidID, videoID int64) (bool, error) {
	if err := s.requirePair(ctx, kidID, videoID); err != nil {
		return false, err
	}

	lock := &s.toggleLocks[uint64(kidID*31+videoID)%uint64(len(s.toggleLocks))]
	lock.Lock()
	defer lock.Unlock()

	added, err := s.favorites.ToggleFavorite(ctx, kidID, videoID)
	if err != nil {
		return false, err
	}
	s.log.Debug("favorite toggled",
		zap.Int64("kid_id", kidID), zap.Int64("video_id", videoID), zap.Bool("favorite", added))
	return added, nil
}

// BlockVideo hides a video from a kid. Blocking twice is harmless.
func (s *ContentService) BlockVideo(ctx context.Context, kidID, videoID int64) error {
	if err := s.requirePair(ctx, kidID, videoID); err != nil {
		return err
	}
	return s.blocked.BlockVideo(ctx, kidID, videoID)
}

// UnblockVideo makes a blocked video visible again
func (s *ContentService) UnblockVideo(ctx context.Context, kidID, videoID int64) error {
	return s.blocked.UnblockVideo(ctx, kidID, videoID)
}

// RecordWatch upserts the kid's history row for the video
func (s *ContentService) RecordWatch(ctx context.Context, kidID, videoID int64, progressSeconds int) error {
	if err := s.requirePair(ctx, kidID, videoID); err != nil {
		return err
	}
	if progressSeconds < 0 {
		progressSeconds = 0
	}
	return s.history.RecordWatch(ctx, kidID, videoID, progressSeconds, s.Now())
}

func (s *ContentService) requireKid(ctx context.Context, kidID int64) (*models.Kid, error) {
	kid, err := s.kids.GetKidByID(ctx, kidID)
	if err != nil {
		return nil, err
	}
	if kid == nil {
		return nil, ErrKidNotFound
	}
	return kid, nil
}

func (s *ContentService) requirePair(ctx context.Context, kidID, videoID int64) error {
	if _, err := s.requireKid(ctx, kidID); err != nil {
		return err
	}
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return ErrVideoNotFound
	}
	return nil
}
