package database

import (
	"context"
	"fmt"
)

type sampleVideo struct {
	url, thumbnail, title string
	ageCategoryID         int64
	categoryID            int64
}

var sampleVideos = []sampleVideo{
	{
		url:           "https://res.cloudinary.com/dpdvr2b0v/video/upload/v1749483713/samples/dance-2.mp4",
		thumbnail:     "https://res.cloudinary.com/dpdvr2b0v/image/upload/v1749483713/samples/dance-2.jpg",
		title:         "Kids Dancing",
		ageCategoryID: 1, categoryID: 1,
	},
	{
		url:           "https://res.cloudinary.com/dpdvr2b0v/video/upload/v1749483710/samples/sea-turtle.mp4",
		thumbnail:     "https://res.cloudinary.com/demo/image/upload/samples/sea-turtle.jpg",
		title:         "Sea Turtle Swimming",
		ageCategoryID: 2, categoryID: 4,
	},
	{
		url:           "https://res.cloudinary.com/dpdvr2b0v/video/upload/v1749483713/samples/dance-2.mp4",
		thumbnail:     "https://res.cloudinary.com/demo/image/upload/samples/cat.jpg",
		title:         "Dance Video",
		ageCategoryID: 1, categoryID: 3,
	},
	{
		url:           "https://res.cloudinary.com/dpdvr2b0v/video/upload/v1749483711/samples/cld-sample-video.mp4",
		thumbnail:     "https://res.cloudinary.com/demo/image/upload/samples/dog.jpg",
		title:         "Dog Playing Fetch",
		ageCategoryID: 2, categoryID: 4,
	},
	{
		url:           "https://res.cloudinary.com/dpdvr2b0v/video/upload/v1749483710/samples/elephants.mp4",
		thumbnail:     "https://res.cloudinary.com/demo/image/upload/elephants.jpg",
		title:         "Elephants in the Wild",
		ageCategoryID: 3, categoryID: 4,
	},
}

// SeedSampleVideos inserts the sample catalog when the videos table is empty.
// It returns the number of videos inserted.
func (db *DB) SeedSampleVideos(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to check video count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, v := range sampleVideos {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO videos (video_url, thumbnail_url, title, age_category_id, category_id, source_type, status)
				VALUES (?, ?, ?, ?, ?, 'uploaded', 'published')`,
				v.url, v.thumbnail, v.title, v.ageCategoryID, v.categoryID)
			if err != nil {
				return fmt.Errorf("failed to insert sample video %q: %w", v.title, err)
			}
		}
		return nil
	}, TableVideos)
	if err != nil {
		return 0, err
	}

	return len(sampleVideos), nil
}
