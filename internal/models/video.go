package models

import (
	"strings"
	"time"
)

// SourceType is where a video is hosted
type SourceType string

const (
	SourceUploaded SourceType = "uploaded"
	SourceYouTube  SourceType = "youtube"
)

// Valid reports whether s is a known source type
func (s SourceType) Valid() bool {
	return s == SourceUploaded || s == SourceYouTube
}

// DisplayName capitalizes the source type for reports
func (s SourceType) DisplayName() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// VideoStatus is the publication state of a video
type VideoStatus string

const (
	StatusPublished VideoStatus = "published"
	StatusArchived  VideoStatus = "archived"
)

// Valid reports whether s is a known status
func (s VideoStatus) Valid() bool {
	return s == StatusPublished || s == StatusArchived
}

// Video is a catalog entry
type Video struct {
	ID            int64       `json:"id"`
	VideoURL      string      `json:"video_url"`
	ThumbnailURL  string      `json:"thumbnail_url"`
	Title         string      `json:"title"`
	AgeCategoryID int64       `json:"age_category_id"`
	CategoryID    int64       `json:"category_id"`
	SourceType    SourceType  `json:"source_type"`
	Status        VideoStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// IsPlayable reports whether the built-in player can stream the video
func (v *Video) IsPlayable() bool {
	return v.SourceType == SourceUploaded
}

// Category is a content category used for filtering
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
