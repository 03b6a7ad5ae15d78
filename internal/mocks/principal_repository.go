package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"janmitra/internal/domain"
)

type CitizenRepository struct {
	mock.Mock
}

func (m *CitizenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Citizen), args.Error(1)
}

func (m *CitizenRepository) GetByPhone(ctx context.Context, phone string) (*domain.Citizen, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Citizen), args.Error(1)
}

func (m *CitizenRepository) FindOrCreateByPhone(ctx context.Context, phone string, name *string) (*domain.Citizen, error) {
	args := m.Called(ctx, phone, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Citizen), args.Error(1)
}

type OfficialRepository struct {
	mock.Mock
}

func (m *OfficialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Official, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Official), args.Error(1)
}

func (m *OfficialRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.Official, error) {
	args := m.Called(ctx, loginID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Official), args.Error(1)
}

func (m *OfficialRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
