package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

type CitizenRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Citizen, error)
	// FindOrCreateByPhone returns the citizen registered under phone,
	// creating it on first verification.
	FindOrCreateByPhone(ctx context.Context, phone string, name *string) (*domain.Citizen, error)
}

type citizenRepository struct {
	db *sqlx.DB
}

func NewCitizenRepository(db *sqlx.DB) CitizenRepository {
	return &citizenRepository{db: db}
}

func (r *citizenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Citizen, error) {
	var citizen domain.Citizen
	query := `SELECT id, phone, name, email, is_active, created_at, updated_at FROM citizens WHERE id = $1`

	err := r.db.GetContext(ctx, &citizen, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &citizen, nil
}

func (r *citizenRepository) GetByPhone(ctx context.Context, phone string) (*domain.Citizen, error) {
	var citizen domain.Citizen
	query := `SELECT id, phone, name, email, is_active, created_at, updated_at FROM citizens WHERE phone = $1`

	err := r.db.GetContext(ctx, &citizen, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &citizen, nil
}

func (r *citizenRepository) FindOrCreateByPhone(ctx context.Context, phone string, name *string) (*domain.Citizen, error) {
	var citizen domain.Citizen
	query := `
		INSERT INTO citizens (id, phone, name, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (phone) DO UPDATE SET name = COALESCE(citizens.name, EXCLUDED.name), updated_at = NOW()
		RETURNING id, phone, name, email, is_active, created_at, updated_at`

	if err := r.db.GetContext(ctx, &citizen, query, uuid.New(), phone, name); err != nil {
		return nil, err
	}
	return &citizen, nil
}
