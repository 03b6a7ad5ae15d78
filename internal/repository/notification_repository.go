package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"janmitra/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

const notificationColumns = `id, recipient_id, recipient_type, type, title, message, complaint_id, data, is_read, read_at, created_at`

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	data := notif.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO notifications (id, recipient_id, recipient_type, type, title, message, complaint_id, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.RecipientID, notif.RecipientType, notif.Type, notif.Title, notif.Message,
		notif.ComplaintID, []byte(data),
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	err := r.db.GetContext(ctx, &notif, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	where := ` WHERE recipient_id = $1`
	if unreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+where, recipientID); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var notifications []domain.Notification
	err := r.db.SelectContext(ctx, &notifications, query, recipientID, params.Limit, params.Offset())
	return notifications, total, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	return count, err
}
