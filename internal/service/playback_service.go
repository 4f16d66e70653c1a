package service

import (
	"context"

	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/repository"
)

// PlaybackService gates which videos may be handed to the player
type PlaybackService struct {
	videos  *repository.VideoRepository
	content *ContentService
	log     *zap.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(videos *repository.VideoRepository, content *ContentService, log *zap.Logger) *PlaybackService {
	return &PlaybackService{
		videos:  videos,
		content: content,
		log:     log.With(zap.String("component", "playback")),
	}
}

// Play loads a playable video and records it in the watch history of kidID
// when a profile is selected. Only uploaded videos can be played.
func (s *PlaybackService) Play(ctx context.Context, kidID *int64, videoID int64) (*models.Video, error) {
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}
	if !video.IsPlayable() {
		return nil, ErrUnplayableSource
	}

	if kidID != nil {
		if err := s.content.RecordWatch(ctx, *kidID, videoID, 0); err != nil {
			return nil, err
		}
	}
	return video, nil
}

// RecordProgress stores how far the kid got into a video. Without a selected
// profile there is nothing to record.
func (s *PlaybackService) RecordProgress(ctx context.Context, kidID *int64, videoID int64, seconds int) error {
	if kidID == nil {
		return nil
	}
	return s.content.RecordWatch(ctx, *kidID, videoID, seconds)
}
