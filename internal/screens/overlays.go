package screens

import (
	"context"

	"go.uber.org/zap"

	"kidsvids/internal/live"
	"kidsvids/internal/models"
	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// YourStuff shows the selected kid's watch history and saved videos
type YourStuff = Live[int64, *service.YourStuff]

// NewYourStuff opens the "your stuff" screen for sess
func NewYourStuff(sess *session.Session, overlays *service.OverlayService, log *zap.Logger) *YourStuff {
	return newLive[int64, *service.YourStuff](sess, selectedKid, msgNoProfile,
		func(ctx context.Context, kidID int64) *live.Subscription[*service.YourStuff] {
			return overlays.WatchYourStuff(ctx, kidID)
		}, log.With(zap.String("screen", "your_stuff")))
}

// Blocked lists the videos hidden from the selected kid
type Blocked struct {
	*Live[int64, []models.Video]
	actions KidActions
}

// NewBlocked opens the blocked videos screen for sess
func NewBlocked(sess *session.Session, content *service.ContentService, overlays *service.OverlayService, log *zap.Logger) *Blocked {
	return &Blocked{
		Live: newLive[int64, []models.Video](sess, selectedKid, msgNoProfile,
			func(ctx context.Context, kidID int64) *live.Subscription[[]models.Video] {
				return overlays.WatchBlockedVideos(ctx, kidID)
			}, log.With(zap.String("screen", "blocked"))),
		actions: NewKidActions(sess, content),
	}
}

// Unblock removes a video from the block list. The list refreshes itself.
func (b *Blocked) Unblock(ctx context.Context, videoID int64) error {
	if _, err := b.actions.Unblock(ctx, videoID); err != nil {
		b.fail(err)
		return err
	}
	return nil
}
