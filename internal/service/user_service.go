// Package service implements the business logic layer.
package service

import (
	"context"

	"aviary/internal/middleware"
	"aviary/internal/models"
	"aviary/internal/notifications"
	"aviary/internal/observability"
	"aviary/internal/repository"
	"aviary/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AssetStore persists uploaded images and serves back their public URLs.
type AssetStore interface {
	Save(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// EventPublisher pushes real-time events toward connected clients.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

const (
	suggestedSampleSize = 10
	suggestedLimit      = 5
	maxBioLen           = 500
	maxLinkLen          = 200
)

// UserService provides profile, follow, and suggestion business logic.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	assetStore AssetStore
	publisher  EventPublisher
}

// UpdateProfileInput carries the optional profile fields; empty values leave
// the stored field untouched.
type UpdateProfileInput struct {
	UserID          uint
	Username        string
	FullName        string
	Email           string
	Bio             string
	Link            string
	CurrentPassword string
	NewPassword     string
	ProfileImg      string
	CoverImg        string
}

// NewUserService returns a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	assetStore AssetStore,
	publisher EventPublisher,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		assetStore: assetStore,
		publisher:  publisher,
	}
}

// GetUserByID returns a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns a user's public profile with follower counts resolved.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, username)
}

// ToggleFollow follows the target user when no edge exists, and unfollows
// otherwise. A new follow also records a notification for the target.
// It returns true when the call resulted in a follow.
func (s *UserService) ToggleFollow(ctx context.Context, userID, targetID uint) (bool, error) {
	if userID == targetID {
		return false, models.NewValidationError("You can't follow/unfollow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	if following {
		if err := s.followRepo.Unfollow(ctx, userID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	edge := &models.Follow{FollowerID: userID, FolloweeID: targetID}
	notification := &models.Notification{
		FromUserID: userID,
		ToUserID:   targetID,
		Type:       models.NotificationTypeFollow,
	}
	if err := s.followRepo.Follow(ctx, edge, notification); err != nil {
		return false, err
	}
	observability.NotificationsCreated.WithLabelValues(string(models.NotificationTypeFollow)).Inc()
	publishNotificationEvent(ctx, s.publisher, notification)

	return true, nil
}

// GetSuggestedUsers returns up to five users the viewer does not follow yet.
// Candidates are drawn as a random sample first and filtered after, so the
// result can shrink below the limit when the viewer follows most of the
// sample.
func (s *UserService) GetSuggestedUsers(ctx context.Context, userID uint) ([]models.User, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followed := make(map[uint]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		followed[id] = struct{}{}
	}

	sample, err := s.userRepo.Sample(ctx, userID, suggestedSampleSize)
	if err != nil {
		return nil, err
	}

	suggested := make([]models.User, 0, suggestedLimit)
	for _, candidate := range sample {
		if _, ok := followed[candidate.ID]; ok {
			continue
		}
		suggested = append(suggested, candidate)
		if len(suggested) == suggestedLimit {
			break
		}
	}
	return suggested, nil
}

// UpdateProfile applies the provided profile changes. A password change
// requires both the current and the new password.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, models.NewValidationError("Please provide both current password and new password")
	}
	if in.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		if err := validation.ValidatePassword(in.NewPassword); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, err
		}
		user.Username = in.Username
	}
	if in.Email != "" && in.Email != user.Email {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, err
		}
		user.Email = in.Email
	}
	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Link != "" {
		if len(in.Link) > maxLinkLen {
			return nil, models.NewValidationError("Link too long (max 200 characters)")
		}
		user.Link = in.Link
	}

	if in.ProfileImg != "" {
		url, err := s.replaceImage(ctx, user.ProfileImg, in.ProfileImg)
		if err != nil {
			return nil, err
		}
		user.ProfileImg = url
	}
	if in.CoverImg != "" {
		url, err := s.replaceImage(ctx, user.CoverImg, in.CoverImg)
		if err != nil {
			return nil, err
		}
		user.CoverImg = url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// replaceImage drops the prior image and stores the new one. Removal of the
// previous file comes first and is best-effort.
func (s *UserService) replaceImage(ctx context.Context, old, payload string) (string, error) {
	if old != "" {
		if err := s.assetStore.Delete(ctx, old); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete replaced image", "ref", old, "error", err)
		}
	}
	return s.assetStore.Save(ctx, payload)
}

// publishNotificationEvent pushes a notification event to the recipient's
// live connections. Delivery is best-effort; the stored notification is the
// source of truth.
func publishNotificationEvent(ctx context.Context, publisher EventPublisher, n *models.Notification) {
	if publisher == nil {
		return
	}
	payload, err := notifications.EncodeEvent("notification", n)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to encode notification event", "error", err)
		return
	}
	if err := publisher.PublishUser(ctx, n.ToUserID, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification event", "user_id", n.ToUserID, "error", err)
	}
}
