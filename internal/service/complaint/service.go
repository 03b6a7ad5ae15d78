package complaint

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"janmitra/internal/config"
	"janmitra/internal/domain"
	"janmitra/internal/logging"
	"janmitra/internal/metrics"
	"janmitra/internal/repository"
	"janmitra/internal/service/email"
	"janmitra/internal/service/notification"
	"janmitra/internal/service/scoring"
)

const (
	defaultNearbyRadiusKm = 10.0
	maxNearbyRadiusKm     = 50.0
	dashboardUrgentLimit  = 20
	resourceComplaint     = "complaint"
)

// Recorder accepts audit entries without blocking.
type Recorder interface {
	Record(entry *domain.AuditLog)
}

type Service interface {
	Create(ctx context.Context, actor *domain.Principal, input domain.CreateComplaintInput) (*domain.Complaint, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Complaint, error)
	UpdateStatus(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.UpdateStatusInput) (*domain.Complaint, error)
	Refile(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.RefileInput) (*domain.Complaint, error)
	ConfirmResolution(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, domain.ConfirmResult, error)
	MarkUrgent(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.MarkUrgentInput) (*domain.Complaint, error)
	Escalate(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.EscalateInput) (*domain.Complaint, error)
	Upvote(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, error)

	ListForStaff(ctx context.Context, actor *domain.Principal, filter domain.ComplaintFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Complaint], error)
	ListMine(ctx context.Context, actor *domain.Principal, status domain.ComplaintStatus) ([]domain.Complaint, error)
	ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.PublicComplaint, error)
	SupervisorDashboard(ctx context.Context) (*domain.SupervisorDashboard, error)
	AutoResolveStale(ctx context.Context) ([]domain.Complaint, error)
}

type service struct {
	complaintRepo repository.ComplaintRepository
	deptRepo      repository.DepartmentRepository
	scorer        scoring.Scorer
	notifSvc      notification.Service
	emailSvc      email.Service
	recorder      Recorder
	cfg           *config.Config
	now           func() time.Time
}

func NewService(
	complaintRepo repository.ComplaintRepository,
	deptRepo repository.DepartmentRepository,
	scorer scoring.Scorer,
	notifSvc notification.Service,
	emailSvc email.Service,
	recorder Recorder,
	cfg *config.Config,
) Service {
	return &service{
		complaintRepo: complaintRepo,
		deptRepo:      deptRepo,
		scorer:        scorer,
		notifSvc:      notifSvc,
		emailSvc:      emailSvc,
		recorder:      recorder,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor *domain.Principal, input domain.CreateComplaintInput) (*domain.Complaint, error) {
	if actor != nil && actor.Role != domain.RoleCitizen {
		return nil, domain.ErrInsufficientPermissions
	}

	location, err := input.Location.ToLocation()
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)

	if actor != nil {
		dup, err := s.complaintRepo.FindRecentDuplicate(ctx, domain.DuplicateQuery{
			CitizenID:   actor.ID,
			Description: description,
			Longitude:   location.Longitude,
			Latitude:    location.Latitude,
			Since:       s.now().Add(-s.cfg.DuplicateWindow),
		})
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, domain.ErrDuplicateComplaint.WithDetails(map[string]any{
				"complaintId": dup.ID,
				"submittedAt": dup.CreatedAt,
			})
		}
	}

	if err := ValidateMedia(input.Media); err != nil {
		return nil, err
	}

	category := ""
	if input.Category != nil {
		category = strings.ToLower(strings.TrimSpace(*input.Category))
	}

	language := input.Language
	if language == "" {
		language = domain.DefaultLanguage
	}

	score := s.scorer.Score(ctx, scoring.Request{
		Description: description,
		Category:    category,
		Location: scoring.Location{
			Latitude:  location.Latitude,
			Longitude: location.Longitude,
			City:      location.City,
			Area:      location.Area,
		},
		MediaType:  primaryMediaType(input.Media),
		MediaCount: len(input.Media),
		Language:   language,
	})

	c := &domain.Complaint{
		ID:                  uuid.New(),
		ComplaintNumber:     NewComplaintNumber(s.now()),
		Description:         description,
		AudioDescriptionURL: input.AudioDescriptionURL,
		Media:               domain.MediaList(input.Media),
		Language:            language,
		Location:            location,
		DangerScore:         score.DangerScore,
		RiskLevel:           score.RiskLevel,
		Priority:            Priority(score.DangerScore, score.RiskLevel),
		Status:              domain.StatusUnresolved,
	}
	if category != "" {
		c.Category = &category
		dept, err := s.deptRepo.FindForComplaint(ctx, category, location.City)
		if err != nil {
			return nil, err
		}
		if dept != nil {
			c.DepartmentID = &dept.ID
		}
	}

	actorKind := domain.ActorGuest
	var actorID *uuid.UUID
	if actor != nil {
		c.CitizenID = &actor.ID
		actorKind = domain.ActorCitizen
		actorID = &actor.ID
	} else {
		c.GuestDeviceID = input.DeviceID
	}

	comment := "Complaint submitted"
	entry := &domain.StatusHistoryEntry{
		ID:          uuid.New(),
		ComplaintID: c.ID,
		Status:      domain.StatusUnresolved,
		Comment:     &comment,
		ActorID:     actorID,
		ActorKind:   actorKind,
	}
	action := newAction(c.ID, domain.ActionComplaintCreated, actorID, actorKind, map[string]any{
		"dangerScore":   score.DangerScore,
		"riskLevel":     score.RiskLevel,
		"scoreFallback": score.Fallback,
	})

	if err := s.complaintRepo.Create(ctx, c, entry, action); err != nil {
		return nil, err
	}
	metrics.ComplaintTransitions.WithLabelValues(string(domain.StatusUnresolved)).Inc()

	s.audit(actor, domain.ActionComplaintCreated, c.ID, map[string]any{
		"complaintNumber": c.ComplaintNumber,
		"dangerScore":     c.DangerScore,
		"guest":           actor == nil,
	})
	return c, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	c, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrComplaintNotFound
	}
	return c, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.UpdateStatusInput) (*domain.Complaint, error) {
	switch input.Status {
	case domain.StatusUnresolved, domain.StatusInProgress, domain.StatusResolved, domain.StatusAwaitingConfirmation:
	default:
		return nil, domain.ErrInvalidStatus
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckDepartment(actor, c); err != nil {
		return nil, err
	}
	if err := CheckResolvable(c, input.Status); err != nil {
		return nil, err
	}
	if err := ValidateMedia(input.Media); err != nil {
		return nil, err
	}

	actorKind := actor.Role.ActorKind()
	entry := &domain.StatusHistoryEntry{
		ID:                     uuid.New(),
		ComplaintID:            id,
		Status:                 input.Status,
		Comment:                input.Comment,
		ActorID:                &actor.ID,
		ActorKind:              actorKind,
		Media:                  domain.MediaList(input.Media),
		ExpectedResolutionDate: input.ExpectedResolutionDate,
	}

	cmd := repository.TransitionCommand{
		ComplaintID: id,
		Entry:       entry,
		Action: newAction(id, domain.ActionStatusUpdated, &actor.ID, actorKind, map[string]any{
			"from":    c.Status,
			"to":      input.Status,
			"comment": input.Comment,
		}),
	}
	if input.Status == domain.StatusResolved || input.Status == domain.StatusAwaitingConfirmation {
		cmd.Resolution = &domain.Resolution{
			ResolvedBy:             actor.ID,
			ResolvedAt:             s.now(),
			Comment:                input.Comment,
			Media:                  domain.MediaList(input.Media),
			ExpectedResolutionDate: input.ExpectedResolutionDate,
		}
	}

	if err := s.complaintRepo.Transition(ctx, cmd); err != nil {
		return nil, err
	}
	metrics.ComplaintTransitions.WithLabelValues(string(input.Status)).Inc()

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifSvc.NotifyStatusChanged(ctx, updated, input.Status)
	s.audit(actor, domain.ActionStatusUpdated, id, map[string]any{"from": c.Status, "to": input.Status})
	return updated, nil
}

func (s *service) Refile(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.RefileInput) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, domain.ErrInsufficientPermissions
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := CheckRefile(c, actor.ID, input.Media, now, s.cfg.RefileCooldown); err != nil {
		return nil, err
	}
	if err := ValidateMedia(input.Media); err != nil {
		return nil, err
	}

	var description *string
	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		description = &d
	}
	comment := "Complaint refiled"
	if input.Note != nil && *input.Note != "" {
		comment = *input.Note
	}

	cmd := repository.RefileCommand{
		ComplaintID: id,
		Record: &domain.RefileRecord{
			ID:          uuid.New(),
			ComplaintID: id,
			CitizenID:   actor.ID,
			Media:       domain.MediaList(input.Media),
			Note:        input.Note,
		},
		Description: description,
		Entry: &domain.StatusHistoryEntry{
			ID:          uuid.New(),
			ComplaintID: id,
			Status:      domain.StatusUnresolved,
			Comment:     &comment,
			ActorID:     &actor.ID,
			ActorKind:   domain.ActorCitizen,
			Media:       domain.MediaList(input.Media),
		},
		Action: newAction(id, domain.ActionComplaintRefiled, &actor.ID, domain.ActorCitizen, map[string]any{
			"previousStatus": c.Status,
			"mediaCount":     len(input.Media),
		}),
		CooldownSince: now.Add(-s.cfg.RefileCooldown),
	}

	if err := s.complaintRepo.Refile(ctx, cmd); err != nil {
		return nil, err
	}
	metrics.ComplaintTransitions.WithLabelValues(string(domain.StatusUnresolved)).Inc()

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifSvc.NotifyRefiled(ctx, updated, actor.ID)
	s.audit(actor, domain.ActionComplaintRefiled, id, map[string]any{"previousStatus": c.Status, "refiles": updated.Refiles})
	return updated, nil
}

func (s *service) ConfirmResolution(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, domain.ConfirmResult, error) {
	var result domain.ConfirmResult
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, result, domain.ErrInsufficientPermissions
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, result, err
	}
	if c.Status != domain.StatusAwaitingConfirmation {
		return nil, result, domain.ErrNotAwaitingConfirmation
	}
	if c.HasConfirmed(actor.ID) {
		return nil, result, domain.ErrAlreadyConfirmed
	}

	result, err = s.complaintRepo.AddConfirmation(ctx, id, actor.ID, s.cfg.ConfirmationThreshold)
	if err != nil {
		return nil, result, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, result, err
	}
	if result.AutoResolved {
		metrics.ComplaintTransitions.WithLabelValues(string(domain.StatusResolved)).Inc()
		s.notifSvc.NotifyAutoResolved(ctx, updated)
	}
	s.audit(actor, domain.ActionResolutionConfirmed, id, map[string]any{
		"confirmations": result.Confirmations,
		"autoResolved":  result.AutoResolved,
	})
	return updated, result, nil
}

func (s *service) MarkUrgent(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.MarkUrgentInput) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleSupervisor {
		return nil, domain.ErrInsufficientPermissions
	}

	var floor float64
	switch input.UrgencyLevel {
	case domain.UrgencyCritical:
		floor = s.cfg.CriticalDangerFloor
	case domain.UrgencyHigh:
		floor = s.cfg.UrgentDangerFloor
	default:
		return nil, domain.NewValidationError("urgency_level must be one of: high critical", "urgency_level")
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	action := newAction(id, domain.ActionMarkedUrgent, &actor.ID, domain.ActorSupervisor, map[string]any{
		"urgencyLevel":  input.UrgencyLevel,
		"reason":        input.Reason,
		"previousScore": c.DangerScore,
	})
	score, err := s.complaintRepo.RaiseDanger(ctx, id, floor, action)
	if err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reason := ""
	if input.Reason != nil {
		reason = *input.Reason
	}
	s.alertSupervisor(updated, input.UrgencyLevel, reason)
	s.notifSvc.NotifyMarkedUrgent(ctx, updated)
	s.audit(actor, domain.ActionMarkedUrgent, id, map[string]any{
		"urgencyLevel":  input.UrgencyLevel,
		"previousScore": c.DangerScore,
		"dangerScore":   score,
	})
	return updated, nil
}

// alertSupervisor emails the owning department's supervisor in the background.
func (s *service) alertSupervisor(c *domain.Complaint, level domain.UrgencyLevel, reason string) {
	if c.DepartmentID == nil || s.emailSvc == nil {
		return
	}
	deptID := *c.DepartmentID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		supervisor, err := s.deptRepo.GetSupervisor(ctx, deptID)
		if err != nil {
			logging.Error().Err(err).Str("department_id", deptID.String()).Msg("failed to load department supervisor")
			return
		}
		if supervisor == nil {
			return
		}
		if err := s.emailSvc.SendUrgentAlert(ctx, supervisor, c, level, reason); err != nil {
			logging.Error().Err(err).Str("complaint_id", c.ID.String()).Msg("failed to send urgent alert email")
		}
	}()
}

func (s *service) Escalate(ctx context.Context, actor *domain.Principal, id uuid.UUID, input domain.EscalateInput) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleSupervisor {
		return nil, domain.ErrInsufficientPermissions
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckEscalatable(c); err != nil {
		return nil, err
	}

	comment := "Escalated by supervisor"
	if input.Reason != nil && *input.Reason != "" {
		comment = *input.Reason
	}

	err = s.complaintRepo.Transition(ctx, repository.TransitionCommand{
		ComplaintID: id,
		Entry: &domain.StatusHistoryEntry{
			ID:          uuid.New(),
			ComplaintID: id,
			Status:      domain.StatusEscalated,
			Comment:     &comment,
			ActorID:     &actor.ID,
			ActorKind:   domain.ActorSupervisor,
		},
		Action: newAction(id, domain.ActionEscalated, &actor.ID, domain.ActorSupervisor, map[string]any{
			"from":   c.Status,
			"reason": input.Reason,
		}),
		AllowedFrom: []domain.ComplaintStatus{domain.StatusUnresolved, domain.StatusInProgress},
		Reject:      domain.ErrCannotEscalate,
	})
	if err != nil {
		return nil, err
	}
	metrics.ComplaintTransitions.WithLabelValues(string(domain.StatusEscalated)).Inc()

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifSvc.NotifyStatusChanged(ctx, updated, domain.StatusEscalated)
	s.audit(actor, domain.ActionEscalated, id, map[string]any{"from": c.Status})
	return updated, nil
}

func (s *service) Upvote(ctx context.Context, actor *domain.Principal, id uuid.UUID) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, domain.ErrInsufficientPermissions
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	upvotes, err := s.complaintRepo.AddUpvote(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	c.Upvotes = upvotes

	s.notifSvc.NotifyUpvoteMilestone(ctx, c, upvotes)
	s.audit(actor, domain.ActionUpvoted, id, map[string]any{"upvotes": upvotes})
	return c, nil
}

func (s *service) ListForStaff(ctx context.Context, actor *domain.Principal, filter domain.ComplaintFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Complaint], error) {
	params.Validate()
	if filter.Status != "" && !filter.Status.IsValid() {
		return domain.PaginatedResponse[domain.Complaint]{}, domain.ErrInvalidStatus
	}

	if actor != nil && actor.Role == domain.RoleStaff {
		// staff only ever see their own department's queue
		if actor.DepartmentID == nil {
			return domain.NewPaginatedResponse([]domain.Complaint{}, params.Page, params.Limit, 0), nil
		}
		filter.DepartmentID = actor.DepartmentID
	}

	complaints, total, err := s.complaintRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Complaint]{}, err
	}
	return domain.NewPaginatedResponse(complaints, params.Page, params.Limit, total), nil
}

func (s *service) ListMine(ctx context.Context, actor *domain.Principal, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, domain.ErrInsufficientPermissions
	}
	if status != "" && !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	complaints, err := s.complaintRepo.ListByCitizen(ctx, actor.ID, status)
	if complaints == nil {
		complaints = []domain.Complaint{}
	}
	return complaints, err
}

func (s *service) ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.PublicComplaint, error) {
	if q.Latitude < -90 || q.Latitude > 90 || q.Longitude < -180 || q.Longitude > 180 {
		return nil, domain.ErrInvalidLocation
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = defaultNearbyRadiusKm
	}
	if q.RadiusKm > maxNearbyRadiusKm {
		q.RadiusKm = maxNearbyRadiusKm
	}

	complaints, err := s.complaintRepo.ListNearby(ctx, q)
	if err != nil {
		return nil, err
	}

	public := make([]domain.PublicComplaint, 0, len(complaints))
	for i := range complaints {
		public = append(public, complaints[i].Public())
	}
	return public, nil
}

func (s *service) SupervisorDashboard(ctx context.Context) (*domain.SupervisorDashboard, error) {
	counts, err := s.complaintRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	urgent, err := s.complaintRepo.ListUrgent(ctx, s.cfg.UrgentDashboardMin, dashboardUrgentLimit)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if counts == nil {
		counts = []domain.StatusCount{}
	}
	if urgent == nil {
		urgent = []domain.Complaint{}
	}

	return &domain.SupervisorDashboard{
		Success:          true,
		StatusCounts:     counts,
		TotalComplaints:  total,
		UrgentComplaints: urgent,
		GeneratedAt:      s.now(),
	}, nil
}

func (s *service) AutoResolveStale(ctx context.Context) ([]domain.Complaint, error) {
	resolved, err := s.complaintRepo.AutoResolveStale(ctx, s.now().Add(-s.cfg.AutoResolveAfter))
	if err != nil {
		return nil, err
	}

	for i := range resolved {
		c := &resolved[i]
		metrics.ComplaintTransitions.WithLabelValues(string(domain.StatusResolved)).Inc()
		s.notifSvc.NotifyAutoResolved(ctx, c)

		entry := domain.NewAuditEntry(nil, domain.ActionAutoResolved, resourceComplaint, c.ID.String(), map[string]any{
			"complaintNumber": c.ComplaintNumber,
		})
		entry.UserType = domain.ActorSystem
		s.record(entry)
	}

	if len(resolved) > 0 {
		logging.Info().Int("count", len(resolved)).Msg("auto-resolved stale complaints")
	}
	if resolved == nil {
		resolved = []domain.Complaint{}
	}
	return resolved, nil
}

// load prefers the complaint a request guard already fetched.
func (s *service) load(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	if c := loadedFrom(ctx, id); c != nil {
		return c, nil
	}
	return s.Get(ctx, id)
}

func (s *service) audit(actor *domain.Principal, action string, id uuid.UUID, details map[string]any) {
	s.record(domain.NewAuditEntry(actor, action, resourceComplaint, id.String(), details))
}

func (s *service) record(entry *domain.AuditLog) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(entry)
}

func newAction(complaintID uuid.UUID, action string, actorID *uuid.UUID, kind domain.ActorKind, metadata map[string]any) *domain.ComplaintAction {
	a := &domain.ComplaintAction{
		ID:          uuid.New(),
		ComplaintID: complaintID,
		Action:      action,
		ActorID:     actorID,
		ActorKind:   kind,
	}
	if metadata != nil {
		a.Metadata, _ = json.Marshal(metadata)
	}
	return a
}

func primaryMediaType(items []domain.MediaItem) string {
	if len(items) == 0 {
		return ""
	}
	mime := strings.ToLower(items[0].MimeType)
	if i := strings.Index(mime, "/"); i > 0 {
		return mime[:i]
	}
	return mime
}
