package screens

import (
	"context"

	"kidsvids/internal/service"
	"kidsvids/internal/session"
)

// KidActions are the overlay intents scoped to the session's selected kid.
// Without a selected kid every action is a no-op and reports applied=false.
type KidActions struct {
	sess    *session.Session
	content *service.ContentService
}

// NewKidActions creates the overlay intents for sess
func NewKidActions(sess *session.Session, content *service.ContentService) KidActions {
	return KidActions{sess: sess, content: content}
}

// ToggleFavorite flips favorite membership and returns the new membership
func (a KidActions) ToggleFavorite(ctx context.Context, videoID int64) (favorite, applied bool, err error) {
	kidID, ok := a.sess.SelectedKidID()
	if !ok {
		return false, false, nil
	}
	favorite, err = a.content.ToggleFavorite(ctx, kidID, videoID)
	return favorite, err == nil, err
}

// Block hides a video from the selected kid
func (a KidActions) Block(ctx context.Context, videoID int64) (applied bool, err error) {
	kidID, ok := a.sess.SelectedKidID()
	if !ok {
		return false, nil
	}
	if err := a.content.BlockVideo(ctx, kidID, videoID); err != nil {
		return false, err
	}
	return true, nil
}

// Unblock makes a blocked video visible to the selected kid again
func (a KidActions) Unblock(ctx context.Context, videoID int64) (applied bool, err error) {
	kidID, ok := a.sess.SelectedKidID()
	if !ok {
		return false, nil
	}
	if err := a.content.UnblockVideo(ctx, kidID, videoID); err != nil {
		return false, err
	}
	return true, nil
}
