package complaint

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"janmitra/internal/domain"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"video/mp4":  true,
	"audio/mpeg": true,
	"audio/wav":  true,
}

// ValidateMedia rejects the first item whose mime type is not accepted.
func ValidateMedia(items []domain.MediaItem) error {
	for i, item := range items {
		if !allowedMimeTypes[strings.ToLower(strings.TrimSpace(item.MimeType))] {
			return domain.ErrUnsupportedMedia.
				WithField(fmt.Sprintf("media[%d].mimeType", i)).
				WithDetails(map[string]any{"mimeType": item.MimeType})
		}
	}
	return nil
}

// CheckDepartment lets staff act only on complaints of their own department.
// Supervisors oversee every department; citizens never pass.
func CheckDepartment(actor *domain.Principal, c *domain.Complaint) error {
	if actor == nil {
		return domain.ErrCredentialRequired
	}
	switch actor.Role {
	case domain.RoleSupervisor:
		return nil
	case domain.RoleStaff:
		if actor.InDepartment(c.DepartmentID) {
			return nil
		}
		return domain.ErrDepartmentMismatch
	case domain.RoleCitizen:
		return domain.ErrInsufficientPermissions
	}
	return domain.ErrInsufficientPermissions
}

// CheckResolvable guards the closing transitions: both resolved and
// awaiting_confirmation need work to have started first.
func CheckResolvable(c *domain.Complaint, target domain.ComplaintStatus) error {
	switch target {
	case domain.StatusResolved, domain.StatusAwaitingConfirmation:
		if !c.HasStatusInHistory(domain.StatusInProgress) {
			return domain.ErrResolveWithoutProgress
		}
	}
	return nil
}

// CheckRefile applies the escalation block, the per-citizen cooldown and the
// media requirement, in that order.
func CheckRefile(c *domain.Complaint, citizenID uuid.UUID, media []domain.MediaItem, now time.Time, cooldown time.Duration) error {
	if c.Status == domain.StatusEscalated {
		return domain.ErrRefileEscalated
	}
	if last := c.LastRefileBy(citizenID); last != nil && now.Sub(*last) < cooldown {
		return domain.ErrRefileCooldown.WithDetails(map[string]any{
			"lastRefiledAt": last,
			"retryAfter":    last.Add(cooldown),
		})
	}
	if !hasMedia(media) {
		return domain.ErrRefileMediaRequired
	}
	return nil
}

func CheckEscalatable(c *domain.Complaint) error {
	switch c.Status {
	case domain.StatusUnresolved, domain.StatusInProgress:
		return nil
	}
	return domain.ErrCannotEscalate
}

func hasMedia(items []domain.MediaItem) bool {
	for _, item := range items {
		if strings.TrimSpace(item.URL) != "" {
			return true
		}
	}
	return false
}
