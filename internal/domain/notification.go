package domain

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Notification struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	RecipientID   uuid.UUID        `json:"recipientId" db:"recipient_id"`
	RecipientType ActorKind        `json:"recipientType" db:"recipient_type"`
	Type          NotificationType `json:"type" db:"type"`
	Title         string           `json:"title" db:"title"`
	Message       string           `json:"message" db:"message"`
	ComplaintID   *uuid.UUID       `json:"complaintId,omitempty" db:"complaint_id"`
	Data          json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead        bool             `json:"isRead" db:"is_read"`
	ReadAt        *time.Time       `json:"readAt,omitempty" db:"read_at"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
}

type NotificationType string

const (
	NotifStatusChanged    NotificationType = "STATUS_CHANGED"
	NotifUpvoteMilestone  NotificationType = "UPVOTE_MILESTONE"
	NotifAutoResolved     NotificationType = "AUTO_RESOLVED"
	NotifMarkedUrgent     NotificationType = "MARKED_URGENT"
	NotifAwaitingConfirm  NotificationType = "AWAITING_CONFIRMATION"
	NotifComplaintRefiled NotificationType = "COMPLAINT_REFILED"
)

var ErrNotificationNotFound = NewNotFoundError("Notification not found")

// IsUpvoteMilestone reports whether reaching count upvotes should notify the reporter.
func IsUpvoteMilestone(count int) bool {
	switch count {
	case 1, 5, 10:
		return true
	}
	return count > 0 && count%25 == 0
}
