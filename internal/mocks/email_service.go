package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendUrgentAlert(ctx context.Context, to *domain.Official, complaint *domain.Complaint, level domain.UrgencyLevel, reason string) error {
	args := m.Called(ctx, to, complaint, level, reason)
	return args.Error(0)
}
