package screens

import (
	"context"

	"go.uber.org/zap"

	"kidsvids/internal/models"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// PlayerState is the snapshot of the video player screen
type PlayerState struct {
	Status Status        `json:"status"`
	Video  *models.Video `json:"video,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Player resolves a video for the external player and records the viewing
type Player struct {
	*Holder[PlayerState]
	sess     *session.Session
	playback *service.PlaybackService
	log      *zap.Logger
}

// NewPlayer creates the player screen for sess
func NewPlayer(sess *session.Session, playback *service.PlaybackService, log *zap.Logger) *Player {
	return &Player{
		Holder:   newHolder(PlayerState{Status: StatusIdle}),
		sess:     sess,
		playback: playback,
		log:      log.With(zap.String("screen", "player")),
	}
}

// Load opens videoID. Only uploaded videos reach the Ready state; any other
// outcome is returned as an error alongside the Error snapshot.
func (p *Player) Load(ctx context.Context, videoID int64) (PlayerState, error) {
	p.update(nil, func(s *PlayerState) { *s = PlayerState{Status: StatusLoading} })

	video, err := p.playback.Play(ctx, p.sess.State().SelectedKidID, videoID)
	if err != nil {
		p.log.Debug("video not playable", zap.Int64("video_id", videoID), zap.Error(err))
		p.update(nil, func(s *PlayerState) { *s = PlayerState{Status: StatusError, Error: errorText(err)} })
		return p.Snapshot(), err
	}

	p.update(nil, func(s *PlayerState) { *s = PlayerState{Status: StatusReady, Video: video} })
	return p.Snapshot(), nil
}

// ReportProgress stores the playback position of the loaded video
func (p *Player) ReportProgress(ctx context.Context, seconds int) error {
	snap := p.Snapshot()
	if snap.Video == nil {
		return nil
	}
	return p.playback.RecordProgress(ctx, p.sess.State().SelectedKidID, snap.Video.ID, seconds)
}
