package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

type DepartmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	// FindForComplaint picks the department serving category in city,
	// falling back to any department for the category.
	FindForComplaint(ctx context.Context, category, city string) (*domain.Department, error)
	GetSupervisor(ctx context.Context, departmentID uuid.UUID) (*domain.Official, error)
}

const departmentColumns = `id, code, name, category, state, city, area, supervisor_id, created_at`

type departmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var dept domain.Department
	err := r.db.GetContext(ctx, &dept, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindForComplaint(ctx context.Context, category, city string) (*domain.Department, error) {
	var dept domain.Department
	query := `
		SELECT ` + departmentColumns + ` FROM departments
		WHERE category = $1
		ORDER BY (LOWER(city) = LOWER($2)) DESC, created_at ASC
		LIMIT 1`

	err := r.db.GetContext(ctx, &dept, query, category, city)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) GetSupervisor(ctx context.Context, departmentID uuid.UUID) (*domain.Official, error) {
	var official domain.Official
	query := `
		SELECT o.id, o.login_id, o.name, o.email, o.password_hash, o.role, o.department_id, o.is_active,
			o.last_login_at, o.created_at, o.updated_at
		FROM departments d
		JOIN officials o ON o.id = d.supervisor_id
		WHERE d.id = $1 AND o.is_active = TRUE`

	err := r.db.GetContext(ctx, &official, query, departmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &official, nil
}
