package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	args := m.Called(ctx, recipientID, unreadOnly, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Notification]), args.Error(1)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) NotifyStatusChanged(ctx context.Context, complaint *domain.Complaint, status domain.ComplaintStatus) {
	m.Called(ctx, complaint, status)
}

func (m *NotificationService) NotifyUpvoteMilestone(ctx context.Context, complaint *domain.Complaint, upvotes int) {
	m.Called(ctx, complaint, upvotes)
}

func (m *NotificationService) NotifyAutoResolved(ctx context.Context, complaint *domain.Complaint) {
	m.Called(ctx, complaint)
}

func (m *NotificationService) NotifyMarkedUrgent(ctx context.Context, complaint *domain.Complaint) {
	m.Called(ctx, complaint)
}

func (m *NotificationService) NotifyRefiled(ctx context.Context, complaint *domain.Complaint, refiledBy uuid.UUID) {
	m.Called(ctx, complaint, refiledBy)
}
