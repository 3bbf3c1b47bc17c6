package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"cover_image"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Subscription is a directed edge: subscriber follows channel. The composite
// unique index makes a duplicate edge a constraint violation instead of a
// check-then-insert race.
type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	ChannelID    uuid.UUID `json:"channel_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	CreatedAt    time.Time `json:"created_at"`

	Subscriber User `json:"subscriber" gorm:"foreignKey:SubscriberID"`
	Channel    User `json:"channel" gorm:"foreignKey:ChannelID"`
}

// WatchEntry records that a user watched a video. One row per (user, video);
// rewatching bumps WatchedAt so history reads newest-first.
type WatchEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_video"`
	VideoID   uuid.UUID `json:"video_id" gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_video"`
	WatchedAt time.Time `json:"watched_at" gorm:"index"`

	Video Video `json:"video" gorm:"foreignKey:VideoID"`
}

func (User) TableName() string {
	return "users"
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (WatchEntry) TableName() string {
	return "watch_entries"
}
