package models

// VideoStat is a per-video count with a display title
type VideoStat struct {
	VideoID int64  `json:"video_id"`
	Title   string `json:"title"`
	Count   int    `json:"count"`
}

// NamedCount is a count grouped by a display name
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report is the admin dashboard summary
type Report struct {
	MostWatched      []VideoStat  `json:"most_watched"`
	MostSaved        []VideoStat  `json:"most_saved"`
	MostBlocked      []VideoStat  `json:"most_blocked"`
	VideosByCategory []NamedCount `json:"videos_by_category"`
	VideosBySource   []NamedCount `json:"videos_by_source"`
	TotalParents     int          `json:"total_parents"`
}
