package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
)

type CommentService struct {
	comments CommentStore
	videos   VideoStore
	tweets   TweetStore
	producer EventPublisher
	logger   *logger.Logger
}

func NewCommentService(comments CommentStore, videos VideoStore, tweets TweetStore, producer EventPublisher, logger *logger.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		videos:   videos,
		tweets:   tweets,
		producer: producer,
		logger:   logger,
	}
}

type AddCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type CommentPage struct {
	Items    []*models.Comment `json:"items"`
	PageInfo PageInfo          `json:"page_info"`
}

// AddToVideo attaches a comment to an existing video.
func (s *CommentService) AddToVideo(ctx context.Context, videoID, userID string, req *AddCommentRequest) (*models.Comment, error) {
	id, err := parseID("video id", videoID)
	if err != nil {
		return nil, err
	}
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoID, apperr.ErrNotFound)
	}
	return s.add(ctx, models.VideoCommentTarget(id), userID, req)
}

// AddToTweet attaches a comment to an existing tweet.
func (s *CommentService) AddToTweet(ctx context.Context, tweetID, userID string, req *AddCommentRequest) (*models.Comment, error) {
	id, err := parseID("tweet id", tweetID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.tweets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	if tweet == nil {
		return nil, fmt.Errorf("tweet %s: %w", tweetID, apperr.ErrNotFound)
	}
	return s.add(ctx, models.TweetCommentTarget(id), userID, req)
}

func (s *CommentService) add(ctx context.Context, target models.CommentTarget, userID string, req *AddCommentRequest) (*models.Comment, error) {
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}

	comment, err := models.NewComment(owner, target, req.Content)
	if err != nil {
		return nil, fmt.Errorf("invalid comment target: %w", apperr.ErrValidation)
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.WithField("comment_id", comment.ID).Info("Comment added")
	return comment, nil
}

func (s *CommentService) ListForVideo(ctx context.Context, videoID string, page PageRequest) (*CommentPage, error) {
	id, err := parseID("video id", videoID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, models.VideoCommentTarget(id), page)
}

func (s *CommentService) ListForTweet(ctx context.Context, tweetID string, page PageRequest) (*CommentPage, error) {
	id, err := parseID("tweet id", tweetID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, models.TweetCommentTarget(id), page)
}

func (s *CommentService) list(ctx context.Context, target models.CommentTarget, page PageRequest) (*CommentPage, error) {
	page = page.Normalize()
	total, err := s.comments.CountByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTarget(ctx, target, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &CommentPage{Items: comments, PageInfo: NewPageInfo(page, total)}, nil
}

func (s *CommentService) Update(ctx context.Context, commentID, userID string, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.getOwned(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidation)
	}

	comment.Content = req.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment along with the likes that target it.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	comment, err := s.getOwned(ctx, commentID, userID)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}

	if event, err := queue.NewEvent(queue.EventCommentDeleted, queue.CommentEventData{
		CommentID: comment.ID.String(),
		OwnerID:   comment.OwnerID.String(),
	}); err == nil {
		if err := s.producer.Publish(ctx, comment.ID.String(), event); err != nil {
			s.logger.WithError(err).Error("Failed to publish comment deleted event")
		}
	}

	s.logger.WithField("comment_id", comment.ID).Info("Comment deleted")
	return nil
}

func (s *CommentService) getOwned(ctx context.Context, commentID, userID string) (*models.Comment, error) {
	id, err := parseID("comment id", commentID)
	if err != nil {
		return nil, err
	}
	owner, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, apperr.ErrNotFound)
	}
	if comment.OwnerID != owner {
		return nil, fmt.Errorf("comment belongs to another user: %w", apperr.ErrForbidden)
	}
	return comment, nil
}
