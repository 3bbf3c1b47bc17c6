package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestLikeTargetValidate(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name    string
		target  LikeTarget
		wantErr bool
	}{
		{"video", VideoLikeTarget(id), false},
		{"comment", CommentLikeTarget(id), false},
		{"tweet", TweetLikeTarget(id), false},
		{"nil id", LikeTarget{Type: TargetVideo}, true},
		{"unknown type", LikeTarget{Type: "playlist", ID: id}, true},
		{"zero value", LikeTarget{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.target.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCommentTargetValidate(t *testing.T) {
	id := uuid.New()

	if err := VideoCommentTarget(id).Validate(); err != nil {
		t.Fatalf("video target: %v", err)
	}
	if err := TweetCommentTarget(id).Validate(); err != nil {
		t.Fatalf("tweet target: %v", err)
	}
	// comments cannot attach to comments
	if err := (CommentTarget{Type: TargetComment, ID: id}).Validate(); err == nil {
		t.Fatalf("expected comment-on-comment target to be rejected")
	}
	if err := (CommentTarget{}).Validate(); err == nil {
		t.Fatalf("expected zero target to be rejected")
	}
}

func TestNewLikeRejectsInvalidTarget(t *testing.T) {
	if _, err := NewLike(uuid.New(), LikeTarget{}); err == nil {
		t.Fatalf("expected error for invalid target")
	}

	like, err := NewLike(uuid.New(), VideoLikeTarget(uuid.New()))
	if err != nil {
		t.Fatalf("new like: %v", err)
	}
	if got := like.Target(); got.Type != TargetVideo || got.ID != like.TargetID {
		t.Fatalf("Target() roundtrip mismatch: %+v", got)
	}
}

func TestNewCommentRejectsInvalidTarget(t *testing.T) {
	if _, err := NewComment(uuid.New(), CommentTarget{}, "hi"); err == nil {
		t.Fatalf("expected error for invalid target")
	}

	target := TweetCommentTarget(uuid.New())
	comment, err := NewComment(uuid.New(), target, "hi")
	if err != nil {
		t.Fatalf("new comment: %v", err)
	}
	if comment.Target() != target {
		t.Fatalf("Target() roundtrip mismatch")
	}
}
