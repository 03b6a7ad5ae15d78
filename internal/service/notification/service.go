package notification

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/logging"
	"janmitra/internal/pkg/messages"
	"janmitra/internal/repository"
)

type Service interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error
	GetUnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)

	NotifyStatusChanged(ctx context.Context, complaint *domain.Complaint, status domain.ComplaintStatus)
	NotifyUpvoteMilestone(ctx context.Context, complaint *domain.Complaint, upvotes int)
	NotifyAutoResolved(ctx context.Context, complaint *domain.Complaint)
	NotifyMarkedUrgent(ctx context.Context, complaint *domain.Complaint)
	NotifyRefiled(ctx context.Context, complaint *domain.Complaint, refiledBy uuid.UUID)
}

type service struct {
	notifRepo repository.NotificationRepository
}

func NewService(notifRepo repository.NotificationRepository) Service {
	return &service{notifRepo: notifRepo}
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()
	notifications, total, err := s.notifRepo.ListByRecipient(ctx, recipientID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.Limit, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id, recipientID)
}

func (s *service) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, recipientID)
}

func (s *service) GetUnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, recipientID)
}

func (s *service) NotifyStatusChanged(ctx context.Context, complaint *domain.Complaint, status domain.ComplaintStatus) {
	if status == domain.StatusAwaitingConfirmation {
		s.notifyReporter(ctx, complaint, domain.NotifAwaitingConfirm,
			messages.Format("awaiting_confirmation.title"),
			messages.Format("awaiting_confirmation.message", complaint.ComplaintNumber),
			map[string]any{"status": status})
		return
	}
	s.notifyReporter(ctx, complaint, domain.NotifStatusChanged,
		messages.Format("status_changed.title"),
		messages.Format("status_changed.message", complaint.ComplaintNumber, messages.Format("status."+string(status))),
		map[string]any{"status": status})
}

func (s *service) NotifyUpvoteMilestone(ctx context.Context, complaint *domain.Complaint, upvotes int) {
	if !domain.IsUpvoteMilestone(upvotes) {
		return
	}
	s.notifyReporter(ctx, complaint, domain.NotifUpvoteMilestone,
		messages.Format("upvote_milestone.title"),
		messages.Format("upvote_milestone.message", complaint.ComplaintNumber, upvotes),
		map[string]any{"upvotes": upvotes})
}

func (s *service) NotifyAutoResolved(ctx context.Context, complaint *domain.Complaint) {
	s.notifyReporter(ctx, complaint, domain.NotifAutoResolved,
		messages.Format("auto_resolved.title"),
		messages.Format("auto_resolved.message", complaint.ComplaintNumber), nil)
}

func (s *service) NotifyMarkedUrgent(ctx context.Context, complaint *domain.Complaint) {
	s.notifyReporter(ctx, complaint, domain.NotifMarkedUrgent,
		messages.Format("marked_urgent.title"),
		messages.Format("marked_urgent.message", complaint.ComplaintNumber), nil)
}

func (s *service) NotifyRefiled(ctx context.Context, complaint *domain.Complaint, refiledBy uuid.UUID) {
	if complaint.CitizenID != nil && *complaint.CitizenID == refiledBy {
		return
	}
	s.notifyReporter(ctx, complaint, domain.NotifComplaintRefiled,
		messages.Format("refiled.title"),
		messages.Format("refiled.message", complaint.ComplaintNumber), nil)
}

// notifyReporter stores an in-app notice for the citizen who filed the
// complaint. Guest complaints have nobody to notify. Failures are logged only.
func (s *service) notifyReporter(ctx context.Context, complaint *domain.Complaint, notifType domain.NotificationType, title, message string, data map[string]any) {
	if complaint.CitizenID == nil {
		return
	}

	notif := &domain.Notification{
		ID:            uuid.New(),
		RecipientID:   *complaint.CitizenID,
		RecipientType: domain.ActorCitizen,
		Type:          notifType,
		Title:         title,
		Message:       message,
		ComplaintID:   &complaint.ID,
	}
	if data != nil {
		notif.Data, _ = json.Marshal(data)
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		logging.Warn().Err(err).
			Str("complaint_id", complaint.ID.String()).
			Str("type", string(notifType)).
			Msg("failed to create notification")
	}
}
