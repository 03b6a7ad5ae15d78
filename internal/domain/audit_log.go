package domain

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       *string         `json:"userId,omitempty" db:"user_id"`
	UserType     ActorKind       `json:"userType" db:"user_type"`
	Action       string          `json:"action" db:"action"`
	ResourceType string          `json:"resourceType" db:"resource_type"`
	ResourceID   *string         `json:"resourceId,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress    *string         `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent    *string         `json:"userAgent,omitempty" db:"user_agent"`
	DeviceID     *string         `json:"deviceId,omitempty" db:"device_id"`
	DepartmentID *string         `json:"departmentId,omitempty" db:"department_id"`
	SessionID    *string         `json:"sessionId,omitempty" db:"session_id"`
	Success      bool            `json:"success" db:"success"`
	ErrorMessage *string         `json:"errorMessage,omitempty" db:"error_message"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// Actions recorded by the audit query surface itself.
const (
	AuditActionView   = "AUDIT_LOG_VIEW"
	AuditActionExport = "AUDIT_LOG_EXPORT"
)

type AuditLogFilter struct {
	UserID       string
	UserType     string
	Action       string
	ResourceType string
	ResourceID   string
	DepartmentID string
	Success      *bool
	StartDate    *time.Time
	EndDate      *time.Time
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

type AuditExport struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Rows        int    `json:"rows"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

// NewAuditEntry builds an audit entry for a principal, or a guest when p is nil.
func NewAuditEntry(p *Principal, action, resourceType, resourceID string, details any) *AuditLog {
	entry := &AuditLog{
		ID:           uuid.New(),
		UserType:     ActorGuest,
		Action:       action,
		ResourceType: resourceType,
		Success:      true,
		Timestamp:    time.Now(),
	}
	if p != nil {
		id := p.ID.String()
		entry.UserID = &id
		entry.UserType = p.Role.ActorKind()
		if p.DepartmentID != nil {
			dept := p.DepartmentID.String()
			entry.DepartmentID = &dept
		}
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = data
		}
	}
	return entry
}
