package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
	ListForExport(ctx context.Context, filter domain.AuditLogFilter, maxRows int) ([]domain.AuditLog, error)
	DistinctActions(ctx context.Context) ([]string, error)
	DistinctResourceTypes(ctx context.Context) ([]string, error)
}

const auditColumns = `id, user_id, user_type, action, resource_type, resource_id, details, ip_address, user_agent,
	device_id, department_id, session_id, success, error_message, timestamp`

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	details := log.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO audit_logs (id, user_id, user_type, action, resource_type, resource_id, details, ip_address,
			user_agent, device_id, department_id, session_id, success, error_message, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.UserType, log.Action, log.ResourceType, log.ResourceID, []byte(details),
		log.IPAddress, log.UserAgent, log.DeviceID, log.DepartmentID, log.SessionID,
		log.Success, log.ErrorMessage, log.Timestamp,
	)
	return err
}

func (r *auditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	where, args := auditWhere(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_logs%s ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`,
		auditColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, total, err
}

func (r *auditLogRepository) ListForExport(ctx context.Context, filter domain.AuditLogFilter, maxRows int) ([]domain.AuditLog, error) {
	where, args := auditWhere(filter)

	query := fmt.Sprintf(`SELECT %s FROM audit_logs%s ORDER BY timestamp DESC LIMIT $%d`,
		auditColumns, where, len(args)+1)
	args = append(args, maxRows)

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, err
}

func (r *auditLogRepository) DistinctActions(ctx context.Context) ([]string, error) {
	var actions []string
	err := r.db.SelectContext(ctx, &actions, `SELECT DISTINCT action FROM audit_logs ORDER BY action`)
	return actions, err
}

func (r *auditLogRepository) DistinctResourceTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.SelectContext(ctx, &types, `SELECT DISTINCT resource_type FROM audit_logs ORDER BY resource_type`)
	return types, err
}

func auditWhere(filter domain.AuditLogFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.UserType != "" {
		add("user_type = $%d", filter.UserType)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.ResourceType != "" {
		add("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		add("resource_id = $%d", filter.ResourceID)
	}
	if filter.DepartmentID != "" {
		add("department_id = $%d", filter.DepartmentID)
	}
	if filter.Success != nil {
		add("success = $%d", *filter.Success)
	}
	if filter.StartDate != nil {
		add("timestamp >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("timestamp <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
