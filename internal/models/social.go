package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Tweet struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

type TargetType string

const (
	TargetVideo   TargetType = "video"
	TargetComment TargetType = "comment"
	TargetTweet   TargetType = "tweet"
)

var ErrInvalidTarget = errors.New("invalid target")

// CommentTarget is the thing a comment is attached to: a video or a tweet,
// never both. Construct via VideoCommentTarget or TweetCommentTarget.
type CommentTarget struct {
	Type TargetType
	ID   uuid.UUID
}

func VideoCommentTarget(id uuid.UUID) CommentTarget {
	return CommentTarget{Type: TargetVideo, ID: id}
}

func TweetCommentTarget(id uuid.UUID) CommentTarget {
	return CommentTarget{Type: TargetTweet, ID: id}
}

func (t CommentTarget) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidTarget
	}
	switch t.Type {
	case TargetVideo, TargetTweet:
		return nil
	}
	return ErrInvalidTarget
}

// LikeTarget is the single populated arm of a like: video, comment or tweet.
type LikeTarget struct {
	Type TargetType
	ID   uuid.UUID
}

func VideoLikeTarget(id uuid.UUID) LikeTarget {
	return LikeTarget{Type: TargetVideo, ID: id}
}

func CommentLikeTarget(id uuid.UUID) LikeTarget {
	return LikeTarget{Type: TargetComment, ID: id}
}

func TweetLikeTarget(id uuid.UUID) LikeTarget {
	return LikeTarget{Type: TargetTweet, ID: id}
}

func (t LikeTarget) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidTarget
	}
	switch t.Type {
	case TargetVideo, TargetComment, TargetTweet:
		return nil
	}
	return ErrInvalidTarget
}

type Comment struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null"`
	TargetType TargetType `json:"target_type" gorm:"not null;index:idx_comment_target"`
	TargetID   uuid.UUID  `json:"target_id" gorm:"type:uuid;not null;index:idx_comment_target"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

// NewComment enforces the single-arm target invariant at construction.
func NewComment(owner uuid.UUID, target CommentTarget, content string) (*Comment, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Comment{
		OwnerID:    owner,
		TargetType: target.Type,
		TargetID:   target.ID,
		Content:    content,
	}, nil
}

func (c *Comment) Target() CommentTarget {
	return CommentTarget{Type: c.TargetType, ID: c.TargetID}
}

// Like stores one populated target arm per row. The composite unique index
// over (liked_by, target_type, target_id) enforces at most one like per
// (user, target) pair at the store level.
type Like struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LikedByID  uuid.UUID  `json:"liked_by_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target"`
	TargetType TargetType `json:"target_type" gorm:"not null;uniqueIndex:idx_like_user_target"`
	TargetID   uuid.UUID  `json:"target_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target"`
	CreatedAt  time.Time  `json:"created_at"`

	LikedBy User `json:"liked_by" gorm:"foreignKey:LikedByID"`
}

func NewLike(likedBy uuid.UUID, target LikeTarget) (*Like, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Like{
		LikedByID:  likedBy,
		TargetType: target.Type,
		TargetID:   target.ID,
	}, nil
}

func (l *Like) Target() LikeTarget {
	return LikeTarget{Type: l.TargetType, ID: l.TargetID}
}

func (Tweet) TableName() string {
	return "tweets"
}

func (Comment) TableName() string {
	return "comments"
}

func (Like) TableName() string {
	return "likes"
}
