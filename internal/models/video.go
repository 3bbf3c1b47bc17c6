package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	VideoFile   string    `json:"video_file" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Duration    float64   `json:"duration" gorm:"not null"`
	Views       int64     `json:"views" gorm:"default:0"`
	IsPublished bool      `json:"is_published" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

// Playlist name is unique per owner.
type Playlist struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex:idx_playlist_owner_name"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_playlist_owner_name"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

// PlaylistVideo is an ordered membership row. The composite unique index
// forbids the same video appearing twice in one playlist.
type PlaylistVideo struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlaylistID uuid.UUID `json:"playlist_id" gorm:"type:uuid;not null;uniqueIndex:idx_playlist_video"`
	VideoID    uuid.UUID `json:"video_id" gorm:"type:uuid;not null;uniqueIndex:idx_playlist_video"`
	Position   int       `json:"position" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`

	Video Video `json:"video" gorm:"foreignKey:VideoID"`
}

func (Video) TableName() string {
	return "videos"
}

func (Playlist) TableName() string {
	return "playlists"
}

func (PlaylistVideo) TableName() string {
	return "playlist_videos"
}
