package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Complaint    ComplaintRepository
	Citizen      CitizenRepository
	Official     OfficialRepository
	Department   DepartmentRepository
	AuditLog     AuditLogRepository
	Notification NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Complaint:    NewComplaintRepository(db),
		Citizen:      NewCitizenRepository(db),
		Official:     NewOfficialRepository(db),
		Department:   NewDepartmentRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// withTx runs fn in a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
