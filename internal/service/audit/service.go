package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"janmitra/internal/domain"
	"janmitra/internal/logging"
	"janmitra/internal/repository"
	"janmitra/internal/service/export"
)

type Service interface {
	List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
	Export(ctx context.Context, filter domain.AuditLogFilter, format domain.ExportFormat) (*domain.AuditExport, error)
	Actions(ctx context.Context) ([]string, error)
	ResourceTypes(ctx context.Context) ([]string, error)
}

type service struct {
	auditRepo repository.AuditLogRepository
	exporter  export.Service
	maxRows   int
}

func NewService(auditRepo repository.AuditLogRepository, exporter export.Service, maxRows int) Service {
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &service{
		auditRepo: auditRepo,
		exporter:  exporter,
		maxRows:   maxRows,
	}
}

func (s *service) List(ctx context.Context, filter domain.AuditLogFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()
	logs, total, err := s.auditRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.Limit, total), nil
}

// Export renders at most maxRows entries. When object storage is configured
// the file is archived there and only a download URL is returned.
func (s *service) Export(ctx context.Context, filter domain.AuditLogFilter, format domain.ExportFormat) (*domain.AuditExport, error) {
	logs, err := s.auditRepo.ListForExport(ctx, filter, s.maxRows)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	result := &domain.AuditExport{Rows: len(logs)}

	switch format {
	case domain.ExportCSV:
		result.Filename = fmt.Sprintf("audit-logs-%s.csv", stamp)
		result.ContentType = "text/csv"
		result.Data, err = encodeCSV(logs)
	case domain.ExportJSON, "":
		result.Filename = fmt.Sprintf("audit-logs-%s.json", stamp)
		result.ContentType = "application/json"
		if logs == nil {
			logs = []domain.AuditLog{}
		}
		result.Data, err = json.Marshal(logs)
	default:
		return nil, domain.NewValidationError("Format must be json or csv", "format")
	}
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	if s.exporter == nil || !s.exporter.Enabled() {
		return result, nil
	}

	link, err := s.exporter.Archive(ctx, result.Filename, result.ContentType, result.Data)
	if err != nil {
		if errors.Is(err, export.ErrStorageDisabled) {
			return result, nil
		}
		// the caller still gets the file inline
		logging.Warn().Err(err).Str("filename", result.Filename).Msg("failed to archive audit export")
		return result, nil
	}
	result.URL = link
	result.Data = nil
	return result, nil
}

func (s *service) Actions(ctx context.Context) ([]string, error) {
	actions, err := s.auditRepo.DistinctActions(ctx)
	if actions == nil {
		actions = []string{}
	}
	return actions, err
}

func (s *service) ResourceTypes(ctx context.Context) ([]string, error) {
	types, err := s.auditRepo.DistinctResourceTypes(ctx)
	if types == nil {
		types = []string{}
	}
	return types, err
}

var csvHeader = []string{
	"id", "timestamp", "user_id", "user_type", "action", "resource_type", "resource_id",
	"success", "error_message", "ip_address", "user_agent", "device_id", "department_id", "session_id", "details",
}

func encodeCSV(logs []domain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, l := range logs {
		record := []string{
			l.ID.String(),
			l.Timestamp.UTC().Format(time.RFC3339),
			deref(l.UserID),
			string(l.UserType),
			l.Action,
			l.ResourceType,
			deref(l.ResourceID),
			strconv.FormatBool(l.Success),
			deref(l.ErrorMessage),
			deref(l.IPAddress),
			deref(l.UserAgent),
			deref(l.DeviceID),
			deref(l.DepartmentID),
			deref(l.SessionID),
			string(l.Details),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
