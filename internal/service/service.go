package service

import (
	"github.com/minio/minio-go/v7"

	"janmitra/internal/config"
	"janmitra/internal/kv"
	"janmitra/internal/repository"
	"janmitra/internal/service/audit"
	"janmitra/internal/service/auth"
	"janmitra/internal/service/complaint"
	"janmitra/internal/service/email"
	"janmitra/internal/service/export"
	"janmitra/internal/service/notification"
	"janmitra/internal/service/scoring"
)

type Services struct {
	Auth         auth.Service
	Complaint    complaint.Service
	Audit        audit.Service
	Notification notification.Service
	Email        email.Service
	Export       export.Service
}

// NewServices wires the service graph. minioClient may be nil, in which case
// audit exports are returned inline instead of archived.
func NewServices(repos *repository.Repositories, store kv.Store, minioClient *minio.Client, recorder *audit.Recorder, cfg *config.Config) *Services {
	var objects export.ObjectStore
	if minioClient != nil {
		objects = minioClient
	}

	emailService := email.NewService(cfg)
	notificationService := notification.NewService(repos.Notification)
	exportService := export.NewService(objects, cfg.MinIOExportBucket, cfg.ExportURLExpiry)
	authService := auth.NewService(repos.Citizen, repos.Official, store, cfg)
	auditService := audit.NewService(repos.AuditLog, exportService, cfg.AuditExportMaxRows)
	complaintService := complaint.NewService(
		repos.Complaint,
		repos.Department,
		scoring.NewClient(cfg),
		notificationService,
		emailService,
		recorder,
		cfg,
	)

	return &Services{
		Auth:         authService,
		Complaint:    complaintService,
		Audit:        auditService,
		Notification: notificationService,
		Email:        emailService,
		Export:       exportService,
	}
}
