package models

import "time"

// Kid represents a child profile under a parent account
type Kid struct {
	ID            int64     `json:"id"`
	ParentID      int64     `json:"parent_id"`
	Name          string    `json:"name"`
	AgeCategoryID int64     `json:"age_category_id"`
	Avatar        string    `json:"avatar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AgeCategory is an ordinal age band. Higher IDs are older audiences.
type AgeCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Seeded age category IDs
const (
	AgeCategoryPreschool int64 = 1
	AgeCategoryYounger   int64 = 2
	AgeCategoryOlder     int64 = 3
)

// AgeCategoryIDForName maps the profile form's age group label to its ID
func AgeCategoryIDForName(name string) (int64, bool) {
	switch name {
	case "Preschool":
		return AgeCategoryPreschool, true
	case "Younger":
		return AgeCategoryYounger, true
	case "Older":
		return AgeCategoryOlder, true
	}
	return 0, false
}
