package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type AuditService struct {
	mock.Mock
}

func (m *AuditService) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).(domain.PaginatedResponse[domain.AuditLog]), args.Error(1)
}

func (m *AuditService) Export(ctx context.Context, filter domain.AuditLogFilter, format domain.ExportFormat) (*domain.AuditExport, error) {
	args := m.Called(ctx, filter, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditExport), args.Error(1)
}

func (m *AuditService) Actions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *AuditService) ResourceTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// AuditRecorder keeps every recorded entry in memory.
type AuditRecorder struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *AuditRecorder) Record(entry *domain.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *AuditRecorder) Entries() []*domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AuditLog(nil), r.entries...)
}
