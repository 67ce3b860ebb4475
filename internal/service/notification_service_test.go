package service

import (
	"context"
	"errors"
	"testing"

	"aviary/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationRepoStub struct {
	createFn           func(context.Context, *models.Notification) error
	listForUserFn      func(context.Context, uint) ([]*models.Notification, error)
	markAllReadFn      func(context.Context, uint) error
	getByIDFn          func(context.Context, uint) (*models.Notification, error)
	deleteFn           func(context.Context, uint) error
	deleteAllForUserFn func(context.Context, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) ListForUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID uint) error {
	return s.markAllReadFn(ctx, userID)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *notificationRepoStub) DeleteAllForUser(ctx context.Context, userID uint) error {
	return s.deleteAllForUserFn(ctx, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:           func(context.Context, *models.Notification) error { return nil },
		listForUserFn:      func(context.Context, uint) ([]*models.Notification, error) { return nil, nil },
		markAllReadFn:      func(context.Context, uint) error { return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.Notification, error) { return &models.Notification{ID: id}, nil },
		deleteFn:           func(context.Context, uint) error { return nil },
		deleteAllForUserFn: func(context.Context, uint) error { return nil },
	}
}

func TestNotificationService_ListNotifications(t *testing.T) {
	t.Parallel()

	t.Run("list marks the inbox read", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.listForUserFn = func(_ context.Context, userID uint) ([]*models.Notification, error) {
			return []*models.Notification{{ID: 1, ToUserID: userID}}, nil
		}
		var markedFor uint
		repo.markAllReadFn = func(_ context.Context, userID uint) error {
			markedFor = userID
			return nil
		}
		svc := NewNotificationService(repo)

		list, err := svc.ListNotifications(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, uint(5), markedFor)
	})

	t.Run("list error skips mark read", func(t *testing.T) {
		t.Parallel()
		repoErr := errors.New("db down")
		repo := noopNotificationRepo()
		repo.listForUserFn = func(context.Context, uint) ([]*models.Notification, error) { return nil, repoErr }
		marked := false
		repo.markAllReadFn = func(context.Context, uint) error {
			marked = true
			return nil
		}
		svc := NewNotificationService(repo)

		_, err := svc.ListNotifications(context.Background(), 5)
		assert.ErrorIs(t, err, repoErr)
		assert.False(t, marked)
	})
}

func TestNotificationService_DeleteOne(t *testing.T) {
	t.Parallel()

	t.Run("recipient deletes own notification", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, ToUserID: 5}, nil
		}
		var deletedID uint
		repo.deleteFn = func(_ context.Context, id uint) error {
			deletedID = id
			return nil
		}
		svc := NewNotificationService(repo)

		err := svc.DeleteOne(context.Background(), 5, 3)
		require.NoError(t, err)
		assert.Equal(t, uint(3), deletedID)
	})

	t.Run("non-recipient is forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, ToUserID: 6}, nil
		}
		svc := NewNotificationService(repo)

		err := svc.DeleteOne(context.Background(), 5, 3)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("missing notification propagates not found", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Notification, error) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		svc := NewNotificationService(repo)

		err := svc.DeleteOne(context.Background(), 5, 3)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestNotificationService_DeleteAll(t *testing.T) {
	t.Parallel()

	repo := noopNotificationRepo()
	var clearedFor uint
	repo.deleteAllForUserFn = func(_ context.Context, userID uint) error {
		clearedFor = userID
		return nil
	}
	svc := NewNotificationService(repo)

	require.NoError(t, svc.DeleteAll(context.Background(), 5))
	assert.Equal(t, uint(5), clearedFor)
}
