package service

import (
	"context"

	"aviary/internal/models"
	"aviary/internal/repository"
)

// NotificationService provides notification inbox business logic.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListNotifications returns the user's notifications, newest first, and marks
// the whole inbox as read. The returned items reflect their unread state at
// fetch time.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uint) ([]*models.Notification, error) {
	list, err := s.notificationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteAll removes every notification addressed to the user.
func (s *NotificationService) DeleteAll(ctx context.Context, userID uint) error {
	return s.notificationRepo.DeleteAllForUser(ctx, userID)
}

// DeleteOne removes a single notification, refusing when the caller is not
// the recipient.
func (s *NotificationService) DeleteOne(ctx context.Context, userID, notificationID uint) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.ToUserID != userID {
		return models.NewForbiddenError("You are not allowed to delete this notification")
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}
