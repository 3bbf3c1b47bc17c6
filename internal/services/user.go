package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vidtube/vidtube/internal/apperr"
	"github.com/vidtube/vidtube/internal/config"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/pkg/logger"
	"github.com/vidtube/vidtube/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users    UserStore
	subs     SubscriptionStore
	history  WatchHistoryStore
	media    MediaStore
	producer EventPublisher
	jwt      config.JWTConfig
	logger   *logger.Logger
}

func NewUserService(users UserStore, subs SubscriptionStore, history WatchHistoryStore, media MediaStore, producer EventPublisher, jwt config.JWTConfig, logger *logger.Logger) *UserService {
	return &UserService{
		users:    users,
		subs:     subs,
		history:  history,
		media:    media,
		producer: producer,
		jwt:      jwt,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Username string `form:"username" binding:"required,min=3,max=30"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6,max=50"`
	FullName string `form:"full_name" binding:"required,max=80"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ChannelProfile is the public channel view plus the viewer's relation to it.
type ChannelProfile struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"cover_image"`
	SubscriberCount   int64     `json:"subscriber_count"`
	SubscribedToCount int64     `json:"subscribed_to_count"`
	IsSubscribed      bool      `json:"is_subscribed"`
}

type WatchHistoryPage struct {
	Items    []*models.WatchEntry `json:"items"`
	PageInfo PageInfo             `json:"page_info"`
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest, avatar, coverImage *Upload) (*models.User, error) {
	defer avatar.Close()
	defer coverImage.Close()

	for _, field := range []string{req.Username, req.Email, req.Password, req.FullName} {
		if strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("all fields are required: %w", apperr.ErrValidation)
		}
	}
	if avatar == nil {
		return nil, fmt.Errorf("avatar file is required: %w", apperr.ErrValidation)
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username already exists: %w", apperr.ErrConflict)
	}

	existing, err = s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already exists: %w", apperr.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	avatarURL, err := s.media.Upload(ctx, "avatars", avatar.Filename, avatar.Reader, avatar.Size, avatar.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", apperr.ErrDependency)
	}

	var coverURL string
	if coverImage != nil {
		coverURL, err = s.media.Upload(ctx, "covers", coverImage.Filename, coverImage.Reader, coverImage.Size, coverImage.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload cover image: %w", apperr.ErrDependency)
		}
	}

	user := &models.User{
		Username:   username,
		Email:      req.Email,
		Password:   string(hashedPassword),
		FullName:   req.FullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if event, err := queue.NewEvent(queue.EventUserRegistered, map[string]string{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}); err == nil {
		if err := s.producer.Publish(ctx, user.ID.String(), event); err != nil {
			s.logger.WithError(err).Error("Failed to publish user registered event")
		}
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, *TokenPair, error) {
	hasUsername := strings.TrimSpace(req.Username) != ""
	hasEmail := strings.TrimSpace(req.Email) != ""
	if (!hasUsername && !hasEmail) || strings.TrimSpace(req.Password) == "" {
		return nil, nil, fmt.Errorf("username or email and password are required: %w", apperr.ErrValidation)
	}

	var user *models.User
	var err error
	if hasUsername {
		user, err = s.users.GetByUsername(ctx, req.Username)
	} else {
		user, err = s.users.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	// persisting the new refresh token invalidates the previous session
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	id, err := parseID("user id", userID)
	if err != nil {
		return err
	}
	if err := s.users.SetRefreshToken(ctx, id, ""); err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Info("User logged out")
	return nil
}

// Refresh rotates the session: the presented refresh token must match the
// stored one, and the swap is conditional on it still being current so two
// concurrent refreshes cannot both win.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("refresh token is required: %w", apperr.ErrUnauthorized)
	}

	claims, err := middleware.ParseToken(refreshToken, s.jwt.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}

	id, err := parseID("user id", claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthorized)
	}
	if user.RefreshToken != refreshToken {
		return nil, fmt.Errorf("refresh token is expired or already used: %w", apperr.ErrUnauthorized)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, fmt.Errorf("session was refreshed concurrently: %w", apperr.ErrConflict)
	}

	s.logger.WithField("user_id", user.ID).Info("Access token refreshed")
	return pair, nil
}

func (s *UserService) issueTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := middleware.GenerateToken(user.ID.String(), user.Username, s.jwt.AccessSecret, s.jwt.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := middleware.GenerateToken(user.ID.String(), user.Username, s.jwt.RefreshSecret, s.jwt.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("full name cannot be blank: %w", apperr.ErrValidation)
		}
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, fmt.Errorf("email cannot be blank: %w", apperr.ErrValidation)
		}
		user.Email = *req.Email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Profile updated")
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return fmt.Errorf("old password is incorrect: %w", apperr.ErrUnauthorized)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, avatar *Upload) (*models.User, error) {
	return s.updateImage(ctx, userID, avatar, "avatars", func(u *models.User, url string) string {
		old := u.Avatar
		u.Avatar = url
		return old
	})
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, cover *Upload) (*models.User, error) {
	return s.updateImage(ctx, userID, cover, "covers", func(u *models.User, url string) string {
		old := u.CoverImage
		u.CoverImage = url
		return old
	})
}

func (s *UserService) updateImage(ctx context.Context, userID string, upload *Upload, folder string, swap func(*models.User, string) string) (*models.User, error) {
	defer upload.Close()
	if upload == nil {
		return nil, fmt.Errorf("image file is required: %w", apperr.ErrValidation)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.Upload(ctx, folder, upload.Filename, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", apperr.ErrDependency)
	}

	old := swap(user, url)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if old != "" {
		if err := s.media.Delete(ctx, old); err != nil {
			s.logger.WithError(err).Warn("Failed to delete previous image")
		}
	}
	return user, nil
}

// GetChannelProfile resolves a channel by username (case-insensitive) and
// decorates it with edge counts and the viewer's subscription state.
func (s *UserService) GetChannelProfile(ctx context.Context, username, viewerID string) (*ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required: %w", apperr.ErrValidation)
	}

	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %q: %w", username, apperr.ErrNotFound)
	}

	subscriberCount, err := s.subs.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	subscribedToCount, err := s.subs.CountSubscribed(ctx, channel.ID)
	if err != nil {
		return nil, err
	}

	profile := &ChannelProfile{
		ID:                channel.ID,
		Username:          channel.Username,
		FullName:          channel.FullName,
		Avatar:            channel.Avatar,
		CoverImage:        channel.CoverImage,
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
	}

	if viewerID != "" {
		viewer, err := parseID("user id", viewerID)
		if err != nil {
			return nil, err
		}
		subscribed, err := s.subs.IsSubscribed(ctx, viewer, channel.ID)
		if err != nil {
			return nil, err
		}
		profile.IsSubscribed = subscribed
	}

	return profile, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID string, page PageRequest) (*WatchHistoryPage, error) {
	id, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	page = page.Normalize()
	total, err := s.history.Count(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.List(ctx, id, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.WatchEntry{}
	}

	return &WatchHistoryPage{
		Items:    entries,
		PageInfo: NewPageInfo(page, total),
	}, nil
}
