package complaint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/repository"
	"janmitra/internal/service/scoring"
)

// fakeRepo is an in-memory ComplaintRepository that honours the same
// invariants the SQL implementation enforces under its row lock.
type fakeRepo struct {
	mu         sync.Mutex
	complaints map[uuid.UUID]*domain.Complaint
	upvoters   map[uuid.UUID]map[uuid.UUID]bool
	now        func() time.Time
}

func newFakeRepo(now func() time.Time) *fakeRepo {
	return &fakeRepo{
		complaints: make(map[uuid.UUID]*domain.Complaint),
		upvoters:   make(map[uuid.UUID]map[uuid.UUID]bool),
		now:        now,
	}
}

func clone(c *domain.Complaint) *domain.Complaint {
	cp := *c
	cp.Media = append(domain.MediaList(nil), c.Media...)
	cp.History = append([]domain.StatusHistoryEntry(nil), c.History...)
	cp.RefileRecords = append([]domain.RefileRecord(nil), c.RefileRecords...)
	cp.Confirmations = append([]domain.Confirmation(nil), c.Confirmations...)
	cp.Actions = append([]domain.ComplaintAction(nil), c.Actions...)
	return &cp
}

func (r *fakeRepo) Create(ctx context.Context, c *domain.Complaint, entry *domain.StatusHistoryEntry, action *domain.ComplaintAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now
	entry.CreatedAt = now
	action.CreatedAt = now
	c.History = []domain.StatusHistoryEntry{*entry}
	c.Actions = []domain.ComplaintAction{*action}
	r.complaints[c.ID] = clone(c)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (r *fakeRepo) FindRecentDuplicate(ctx context.Context, q domain.DuplicateQuery) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.complaints {
		if c.CitizenID != nil && *c.CitizenID == q.CitizenID &&
			c.Description == q.Description &&
			c.Longitude == q.Longitude && c.Latitude == q.Latitude &&
			!c.CreatedAt.Before(q.Since) {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ComplaintFilter, params domain.PaginationParams) ([]domain.Complaint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Complaint
	for _, c := range r.complaints {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.DepartmentID != nil && (c.DepartmentID == nil || *c.DepartmentID != *filter.DepartmentID) {
			continue
		}
		out = append(out, *clone(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DangerScore != out[j].DangerScore {
			return out[i].DangerScore > out[j].DangerScore
		}
		if out[i].Upvotes != out[j].Upvotes {
			return out[i].Upvotes > out[j].Upvotes
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	total := int64(len(out))
	start := params.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + params.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeRepo) ListByCitizen(ctx context.Context, citizenID uuid.UUID, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Complaint
	for _, c := range r.complaints {
		if c.CitizenID == nil || *c.CitizenID != citizenID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *clone(c))
	}
	return out, nil
}

func (r *fakeRepo) ListNearby(ctx context.Context, q domain.NearbyQuery) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Complaint
	for _, c := range r.complaints {
		if c.Status != domain.StatusResolved {
			out = append(out, *clone(c))
		}
	}
	return out, nil
}

func (r *fakeRepo) ListUrgent(ctx context.Context, minDanger float64, limit int) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Complaint
	for _, c := range r.complaints {
		if c.DangerScore >= minDanger && c.Status != domain.StatusResolved {
			out = append(out, *clone(c))
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[domain.ComplaintStatus]int64{}
	for _, c := range r.complaints {
		counts[c.Status]++
	}
	var out []domain.StatusCount
	for status, n := range counts {
		out = append(out, domain.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (r *fakeRepo) Transition(ctx context.Context, cmd repository.TransitionCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[cmd.ComplaintID]
	if !ok {
		return domain.ErrComplaintNotFound
	}
	if len(cmd.AllowedFrom) > 0 && !containsStatus(cmd.AllowedFrom, c.Status) {
		return cmd.Reject
	}

	now := r.now()
	c.Status = cmd.Entry.Status
	c.UpdatedAt = now
	if res := cmd.Resolution; res != nil {
		c.ResolvedBy = &res.ResolvedBy
		c.ResolvedAt = &res.ResolvedAt
		c.ResolutionComment = res.Comment
		c.ResolutionMedia = res.Media
		c.ExpectedResolutionDate = res.ExpectedResolutionDate
	}
	cmd.Entry.CreatedAt = now
	c.History = append(c.History, *cmd.Entry)
	if cmd.Action != nil {
		c.Actions = append(c.Actions, *cmd.Action)
	}
	return nil
}

func (r *fakeRepo) Refile(ctx context.Context, cmd repository.RefileCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[cmd.ComplaintID]
	if !ok {
		return domain.ErrComplaintNotFound
	}
	if c.Status == domain.StatusEscalated {
		return domain.ErrRefileEscalated
	}
	for _, rec := range c.RefileRecords {
		if rec.CitizenID == cmd.Record.CitizenID && rec.CreatedAt.After(cmd.CooldownSince) {
			return domain.ErrRefileCooldown
		}
	}

	now := r.now()
	c.Refiles++
	c.Status = domain.StatusUnresolved
	c.UpdatedAt = now
	if cmd.Description != nil {
		c.Description = *cmd.Description
	}
	cmd.Record.CreatedAt = now
	cmd.Entry.CreatedAt = now
	c.RefileRecords = append(c.RefileRecords, *cmd.Record)
	c.History = append(c.History, *cmd.Entry)
	c.Actions = append(c.Actions, *cmd.Action)
	return nil
}

func (r *fakeRepo) AddConfirmation(ctx context.Context, complaintID, citizenID uuid.UUID, threshold int) (domain.ConfirmResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result domain.ConfirmResult
	c, ok := r.complaints[complaintID]
	if !ok {
		return result, domain.ErrComplaintNotFound
	}
	if c.Status != domain.StatusAwaitingConfirmation {
		return result, domain.ErrNotAwaitingConfirmation
	}
	for _, conf := range c.Confirmations {
		if conf.CitizenID == citizenID {
			return result, domain.ErrAlreadyConfirmed
		}
	}

	now := r.now()
	c.Confirmations = append(c.Confirmations, domain.Confirmation{ComplaintID: complaintID, CitizenID: citizenID, CreatedAt: now})
	result.Inserted = true
	result.Confirmations = len(c.Confirmations)

	if result.Confirmations >= threshold {
		c.Status = domain.StatusResolved
		c.Upvotes = 0
		c.UpdatedAt = now
		c.History = append(c.History, domain.StatusHistoryEntry{
			ID:          uuid.New(),
			ComplaintID: complaintID,
			Status:      domain.StatusResolved,
			ActorKind:   domain.ActorSystem,
			CreatedAt:   now,
		})
		result.AutoResolved = true
	}
	c.Actions = append(c.Actions, domain.ComplaintAction{
		ID:          uuid.New(),
		ComplaintID: complaintID,
		Action:      domain.ActionResolutionConfirmed,
		ActorID:     &citizenID,
		ActorKind:   domain.ActorCitizen,
		CreatedAt:   now,
	})
	return result, nil
}

func (r *fakeRepo) AddUpvote(ctx context.Context, complaintID, citizenID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[complaintID]
	if !ok {
		return 0, domain.ErrComplaintNotFound
	}
	if r.upvoters[complaintID] == nil {
		r.upvoters[complaintID] = make(map[uuid.UUID]bool)
	}
	if r.upvoters[complaintID][citizenID] {
		return 0, domain.ErrAlreadyUpvoted
	}
	r.upvoters[complaintID][citizenID] = true
	c.Upvotes++
	return c.Upvotes, nil
}

func (r *fakeRepo) RaiseDanger(ctx context.Context, complaintID uuid.UUID, floor float64, action *domain.ComplaintAction) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.complaints[complaintID]
	if !ok {
		return 0, domain.ErrComplaintNotFound
	}
	if floor > c.DangerScore {
		c.DangerScore = floor
	}
	c.IsUrgent = true
	c.Actions = append(c.Actions, *action)
	return c.DangerScore, nil
}

func (r *fakeRepo) AutoResolveStale(ctx context.Context, before time.Time) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Complaint
	for _, c := range r.complaints {
		if c.Status == domain.StatusAwaitingConfirmation && c.UpdatedAt.Before(before) {
			c.Status = domain.StatusResolved
			c.History = append(c.History, domain.StatusHistoryEntry{
				ID:          uuid.New(),
				ComplaintID: c.ID,
				Status:      domain.StatusResolved,
				ActorKind:   domain.ActorSystem,
				CreatedAt:   r.now(),
			})
			out = append(out, *clone(c))
		}
	}
	return out, nil
}

// setStatus forces a status, bypassing the service; used to arrange fixtures.
func (r *fakeRepo) setStatus(id uuid.UUID, status domain.ComplaintStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complaints[id].Status = status
}

func (r *fakeRepo) setDanger(id uuid.UUID, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complaints[id].DangerScore = score
}

func containsStatus(list []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeDepartments struct {
	byCategory map[string]*domain.Department
	supervisor *domain.Official
}

func (d *fakeDepartments) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	for _, dept := range d.byCategory {
		if dept.ID == id {
			return dept, nil
		}
	}
	return nil, nil
}

func (d *fakeDepartments) FindForComplaint(ctx context.Context, category, city string) (*domain.Department, error) {
	return d.byCategory[category], nil
}

func (d *fakeDepartments) GetSupervisor(ctx context.Context, departmentID uuid.UUID) (*domain.Official, error) {
	return d.supervisor, nil
}

type fixedScorer struct {
	result scoring.Result
	calls  int
	mu     sync.Mutex
}

func (s *fixedScorer) Score(ctx context.Context, req scoring.Request) scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *captureRecorder) Record(entry *domain.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *captureRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
