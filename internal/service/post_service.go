package service

import (
	"context"
	"strings"

	"aviary/internal/middleware"
	"aviary/internal/models"
	"aviary/internal/observability"
	"aviary/internal/repository"
)

const maxPostTextLen = 500

// PostService provides post, like, and comment business logic.
type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	assetStore AssetStore
	publisher  EventPublisher
}

type CreatePostInput struct {
	UserID uint
	Text   string
	Img    string
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	assetStore AssetStore,
	publisher EventPublisher,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		assetStore: assetStore,
		publisher:  publisher,
	}
}

// CreatePost stores a new post. A post needs text, an image, or both.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && in.Img == "" {
		return nil, models.NewValidationError("Post must have text or image")
	}
	if len(text) > maxPostTextLen {
		return nil, models.NewValidationError("Text too long (max 500 characters)")
	}

	var imgURL string
	if in.Img != "" {
		url, err := s.assetStore.Save(ctx, in.Img)
		if err != nil {
			return nil, err
		}
		imgURL = url
	}

	post := &models.Post{
		UserID: in.UserID,
		Text:   text,
		Img:    imgURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post owned by the caller, along with its stored image.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You are not authorized to delete this post")
	}

	if post.Img != "" {
		if err := s.assetStore.Delete(ctx, post.Img); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete post image", "ref", post.Img, "error", err)
		}
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike likes the post when the caller has not liked it yet, and removes
// the like otherwise. A new like records a notification for the post's
// author, own posts included. The returned slice holds the post's liker IDs
// after the toggle.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) ([]uint, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		like := &models.Like{UserID: userID, PostID: postID}
		notification := &models.Notification{
			FromUserID: userID,
			ToUserID:   post.UserID,
			Type:       models.NotificationTypeLike,
		}
		if err := s.postRepo.Like(ctx, like, notification); err != nil {
			return nil, err
		}
		observability.NotificationsCreated.WithLabelValues(string(models.NotificationTypeLike)).Inc()
		publishNotificationEvent(ctx, s.publisher, notification)
	}

	return s.postRepo.LikerIDs(ctx, postID)
}

// AddComment appends a comment to the post and returns it with its author
// resolved.
func (s *PostService) AddComment(ctx context.Context, userID, postID uint, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Text field is required")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// GetAllPosts returns the global feed, newest first.
func (s *PostService) GetAllPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListAll(ctx, limit, offset)
}

// GetFollowingPosts returns posts from users the caller follows, newest first.
func (s *PostService) GetFollowingPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByUserIDs(ctx, followingIDs, limit, offset)
}

// GetUserPosts returns a user's posts by username, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, username string, limit, offset int) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.postRepo.ListByUserID(ctx, user.ID, limit, offset)
}

// GetLikedPosts returns the posts a user has liked, in like order.
func (s *PostService) GetLikedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.ListLikedBy(ctx, userID)
}
