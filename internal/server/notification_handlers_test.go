package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aviary/internal/models"
	"aviary/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock of the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// newNotificationTestServer wires a Server around a mock repository with the
// viewer authenticated as user 1.
func newNotificationTestServer(repo *MockNotificationRepository) (*fiber.App, *Server) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})

	s := &Server{
		config:              testConfig(),
		notificationRepo:    repo,
		notificationService: service.NewNotificationService(repo),
	}
	return app, s
}

func TestGetNotifications(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	app, s := newNotificationTestServer(mockRepo)
	app.Get("/notifications", s.GetNotifications)

	inbox := []*models.Notification{
		{ID: 1, FromUserID: 2, ToUserID: 1, Type: models.NotificationTypeFollow},
		{ID: 2, FromUserID: 3, ToUserID: 1, Type: models.NotificationTypeLike},
	}
	mockRepo.On("ListForUser", mock.Anything, uint(1)).Return(inbox, nil)
	mockRepo.On("MarkAllRead", mock.Anything, uint(1)).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got []models.Notification
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Len(t, got, 2)

	// Fetching the inbox marks it read
	mockRepo.AssertCalled(t, "MarkAllRead", mock.Anything, uint(1))
}

func TestDeleteNotifications(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	app, s := newNotificationTestServer(mockRepo)
	app.Delete("/notifications", s.DeleteNotifications)

	mockRepo.On("DeleteAllForUser", mock.Anything, uint(1)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/notifications", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Notifications deleted successfully", payload["message"])
	mockRepo.AssertExpectations(t)
}

func TestDeleteNotification(t *testing.T) {
	tests := []struct {
		name           string
		notificationID string
		mockSetup      func(repo *MockNotificationRepository)
		expectedStatus int
	}{
		{
			name:           "Recipient Deletes",
			notificationID: "5",
			mockSetup: func(repo *MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, uint(5)).
					Return(&models.Notification{ID: 5, ToUserID: 1}, nil)
				repo.On("Delete", mock.Anything, uint(5)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not The Recipient",
			notificationID: "6",
			mockSetup: func(repo *MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, uint(6)).
					Return(&models.Notification{ID: 6, ToUserID: 2}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Not Found",
			notificationID: "99",
			mockSetup: func(repo *MockNotificationRepository) {
				repo.On("GetByID", mock.Anything, uint(99)).
					Return(nil, models.NewNotFoundError("Notification", 99))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			notificationID: "abc",
			mockSetup:      func(repo *MockNotificationRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockNotificationRepository)
			app, s := newNotificationTestServer(mockRepo)
			app.Delete("/notifications/:id", s.DeleteNotification)

			tt.mockSetup(mockRepo)

			req := httptest.NewRequest(http.MethodDelete, "/notifications/"+tt.notificationID, nil)
			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}
