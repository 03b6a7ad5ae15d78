package handler

import (
	"janmitra/internal/kv"
	"janmitra/internal/middleware"
	"janmitra/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	Complaint    *ComplaintHandler
	Supervisor   *SupervisorHandler
	Audit        *AuditHandler
	Notification *NotificationHandler
	Health       *HealthHandler
}

func NewHandlers(services *service.Services, recorder middleware.AuditRecorder, db Pinger, store kv.Store, production bool) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth, !production),
		Complaint:    NewComplaintHandler(services.Complaint),
		Supervisor:   NewSupervisorHandler(services.Complaint),
		Audit:        NewAuditHandler(services.Audit, recorder),
		Notification: NewNotificationHandler(services.Notification),
		Health:       NewHealthHandler(db, store),
	}
}
