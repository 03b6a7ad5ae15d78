package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

type OfficialRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Official, error)
	GetByLoginID(ctx context.Context, loginID string) (*domain.Official, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

const officialColumns = `id, login_id, name, email, password_hash, role, department_id, is_active, last_login_at, created_at, updated_at`

type officialRepository struct {
	db *sqlx.DB
}

func NewOfficialRepository(db *sqlx.DB) OfficialRepository {
	return &officialRepository{db: db}
}

func (r *officialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Official, error) {
	var official domain.Official
	query := `SELECT ` + officialColumns + ` FROM officials WHERE id = $1`

	err := r.db.GetContext(ctx, &official, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &official, nil
}

func (r *officialRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.Official, error) {
	var official domain.Official
	query := `SELECT ` + officialColumns + ` FROM officials WHERE login_id = $1`

	err := r.db.GetContext(ctx, &official, query, loginID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &official, nil
}

func (r *officialRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE officials SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}
