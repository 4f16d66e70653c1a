package models

import "time"

// WatchHistory records the latest viewing of a video by a kid.
// There is at most one row per (kid, video).
type WatchHistory struct {
	ID              int64     `json:"id"`
	KidID           int64     `json:"kid_id"`
	VideoID         int64     `json:"video_id"`
	ProgressSeconds int       `json:"progress_seconds"`
	LastWatchedAt   time.Time `json:"last_watched_at"`
}

// KidVideo is a (kid, video) membership row used by favorites and blocks
type KidVideo struct {
	KidID     int64     `json:"kid_id"`
	VideoID   int64     `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}
