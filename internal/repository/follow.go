package repository

import (
	"context"

	"aviary/internal/cache"
	"aviary/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	// Follow writes the edge and its notification in one transaction.
	Follow(ctx context.Context, edge *models.Follow, notification *models.Notification) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Follow(ctx context.Context, edge *models.Follow, notification *models.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(edge).Error; err != nil {
			return err
		}
		if notification != nil {
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	r.invalidateProfiles(ctx, edge.FollowerID, edge.FolloweeID)
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", followeeID)
	}
	r.invalidateProfiles(ctx, followerID, followeeID)
	return nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// invalidateProfiles drops the cached profiles on both sides of an edge write;
// each side's follower/following count changed. Best-effort.
func (r *followRepository) invalidateProfiles(ctx context.Context, ids ...uint) {
	if cache.GetClient() == nil {
		return
	}
	var usernames []string
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Pluck("username", &usernames).Error; err != nil {
		return
	}
	for _, name := range usernames {
		cache.InvalidateProfile(ctx, name)
	}
}
