package repository

import (
	"context"
	"errors"

	"aviary/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts, likes, and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListByUserIDs(ctx context.Context, userIDs []uint, limit, offset int) ([]*models.Post, error)
	ListLikedBy(ctx context.Context, userID uint) ([]*models.Post, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	// Like writes the like row and its notification in one transaction.
	Like(ctx context.Context, like *models.Like, notification *models.Notification) error
	Unlike(ctx context.Context, userID, postID uint) error
	LikerIDs(ctx context.Context, postID uint) ([]uint, error)
	AddComment(ctx context.Context, comment *models.Comment) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withAuthors(r.db.WithContext(ctx)).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.resolveLikes(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	// Likes and comments go with the post; the soft-deleted post row keeps
	// its timestamps for audit.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withAuthors(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.resolveLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withAuthors(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.resolveLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByUserIDs(ctx context.Context, userIDs []uint, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := r.withAuthors(r.db.WithContext(ctx)).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.resolveLikes(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListLikedBy returns the posts a user has liked, in like-row order. The feed
// deliberately follows the like sequence rather than post creation time.
func (r *postRepository) ListLikedBy(ctx context.Context, userID uint) ([]*models.Post, error) {
	likedIDs := make([]uint, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("post_id", &likedIDs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(likedIDs) == 0 {
		return []*models.Post{}, nil
	}

	var posts []*models.Post
	if err := r.withAuthors(r.db.WithContext(ctx)).
		Where("id IN ?", likedIDs).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*models.Post, 0, len(posts))
	for _, id := range likedIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	if err := r.resolveLikes(ctx, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, like *models.Like, notification *models.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
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
			return models.NewValidationError("Post already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) LikerIDs(ctx context.Context, postID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	// Reload with the author resolved for the response body
	if err := r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withAuthors preloads the post author and comment authors. Password hashes
// never serialize (json:"-"), so resolved identities are safe to return.
func (r *postRepository) withAuthors(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.User")
}

// resolveLikes fills LikeUserIDs for each post from the likes table.
func (r *postRepository) resolveLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		p.LikeUserIDs = make([]uint, 0)
		postIDs = append(postIDs, p.ID)
	}

	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at ASC").
		Find(&likes).Error; err != nil {
		return models.NewInternalError(err)
	}

	byPost := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byPost[p.ID] = p
	}
	for _, l := range likes {
		if p, ok := byPost[l.PostID]; ok {
			p.LikeUserIDs = append(p.LikeUserIDs, l.UserID)
		}
	}
	return nil
}
