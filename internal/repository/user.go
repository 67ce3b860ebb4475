// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"aviary/internal/cache"
	"aviary/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfile(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Sample(ctx context.Context, excludeID uint, n int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// userCacheRecord carries a user through Redis. models.User cannot be cached
// directly: the json:"-" tag on Password drops the hash on the round trip, and
// a later Save of the cached copy would persist the emptied column.
type userCacheRecord struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var rec userCacheRecord
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &rec, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&rec.User, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		rec.PasswordHash = rec.User.Password
		return nil
	})

	if err != nil {
		return nil, err
	}

	user := rec.User
	user.Password = rec.PasswordHash
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetProfile loads a user by username with follower/following counts resolved.
// The profile is served cache-aside; follow and unfollow invalidate it, so the
// short ProfileTTL only bounds staleness after out-of-band writes.
func (r *userRepository) GetProfile(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(username), &user, cache.ProfileTTL, func() error {
		err := r.db.WithContext(ctx).
			Select("users.*, "+
				"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) as followers_count, "+
				"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as following_count").
			Where("username = ?", username).
			First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", username)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	cache.InvalidateProfile(ctx, user.Username)
	return nil
}

// Sample returns up to n users in random order, excluding the given user.
func (r *userRepository) Sample(ctx context.Context, excludeID uint, n int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("RANDOM()").
		Limit(n).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
