package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type ComplaintService struct {
	mock.Mock
}

func (m *ComplaintService) Create(ctx context.Context, actor *domain.Principal, input domain.CreateComplaintInput) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) Get(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.UpdateStatusInput) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) Refile(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.RefileInput) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) ConfirmResolution(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, domain.ConfirmResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(domain.ConfirmResult), args.Error(2)
	}
	return args.Get(0).(*domain.Complaint), args.Get(1).(domain.ConfirmResult), args.Error(2)
}

func (m *ComplaintService) MarkUrgent(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.MarkUrgentInput) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) Escalate(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.EscalateInput) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) Upvote(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}

func (m *ComplaintService) ListForStaff(ctx context.Context, actor *domain.Principal, filter domain.ComplaintFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Complaint], error) {
	args := m.Called(ctx, actor, filter, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Complaint]), args.Error(1)
}

func (m *ComplaintService) ListMine(ctx context.Context, actor *domain.Principal, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	args := m.Called(ctx, actor, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Complaint), args.Error(1)
}

func (m *ComplaintService) ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.PublicComplaint, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PublicComplaint), args.Error(1)
}

func (m *ComplaintService) SupervisorDashboard(ctx context.Context) (*domain.SupervisorDashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupervisorDashboard), args.Error(1)
}

func (m *ComplaintService) AutoResolveStale(ctx context.Context) ([]domain.Complaint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Complaint), args.Error(1)
}
