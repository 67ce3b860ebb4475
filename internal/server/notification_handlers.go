package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications. Fetching the inbox marks
// every notification in it as read.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	notifications, err := s.notificationService.ListNotifications(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

// DeleteNotifications handles DELETE /api/notifications
func (s *Server) DeleteNotifications(c *fiber.Ctx) error {
	if err := s.notificationService.DeleteAll(c.Context(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notifications deleted successfully"})
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.DeleteOne(c.Context(), currentUserID(c), notificationID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted successfully"})
}
