package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *AuditLogRepository) ListForExport(ctx context.Context, filter domain.AuditLogFilter, maxRows int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, filter, maxRows)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func (m *AuditLogRepository) DistinctActions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *AuditLogRepository) DistinctResourceTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}
