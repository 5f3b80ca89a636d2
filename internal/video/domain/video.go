package domain

import "time"

// Video is an uploaded clip. VideoKey and ThumbnailKey identify the assets on
// the media host so deleting the video can delete its files too.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	VideoKey     string    `json:"-"`
	ThumbnailURL string    `json:"thumbnail"`
	ThumbnailKey string    `json:"-"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
