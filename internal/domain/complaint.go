package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ComplaintStatus string

const (
	StatusUnresolved           ComplaintStatus = "unresolved"
	StatusInProgress           ComplaintStatus = "in_progress"
	StatusResolved             ComplaintStatus = "resolved"
	StatusEscalated            ComplaintStatus = "escalated"
	StatusAwaitingConfirmation ComplaintStatus = "awaiting_confirmation"
)

func (s ComplaintStatus) IsValid() bool {
	switch s {
	case StatusUnresolved, StatusInProgress, StatusResolved, StatusEscalated, StatusAwaitingConfirmation:
		return true
	}
	return false
}

// DefaultLanguage applies when a reporter did not pick one.
const DefaultLanguage = "en"

// Complaint action tags recorded on the complaint and in the audit store.
const (
	ActionComplaintCreated    = "complaint_created"
	ActionStatusUpdated       = "status_updated"
	ActionComplaintRefiled    = "complaint_refiled"
	ActionResolutionConfirmed = "resolution_confirmed"
	ActionMarkedUrgent        = "complaint_marked_urgent"
	ActionEscalated           = "complaint_escalated"
	ActionUpvoted             = "complaint_upvoted"
	ActionAutoResolved        = "complaint_auto_resolved"
)

var (
	ErrComplaintNotFound       = NewNotFoundError("Complaint not found")
	ErrInvalidComplaintID      = NewValidationError("Invalid complaint ID", "id")
	ErrDuplicateComplaint      = NewConflictError("Duplicate complaint detected")
	ErrDepartmentMismatch      = NewForbiddenError("Access denied: You do not have permission to update this complaint")
	ErrUnsupportedMedia        = NewValidationError("Unsupported media type", "media")
	ErrResolveWithoutProgress  = NewValidationError("Cannot mark as resolved without any progress updates", "status")
	ErrInvalidStatus           = NewValidationError("Invalid status value", "status")
	ErrRefileEscalated         = NewValidationError("Cannot refile an escalated complaint. Please wait for supervisor review.", "status")
	ErrRefileCooldown          = &Error{Kind: KindConflict, Status: 429, Message: "You can only refile a complaint once every 7 days"}
	ErrRefileMediaRequired     = NewValidationError("At least one media item is required to refile", "media")
	ErrNotAwaitingConfirmation = NewValidationError("Complaint is not awaiting confirmation", "status")
	ErrAlreadyConfirmed        = NewConflictError("You have already confirmed this resolution")
	ErrAlreadyUpvoted          = NewConflictError("You have already upvoted this complaint")
	ErrCannotEscalate          = NewValidationError("Only unresolved or in-progress complaints can be escalated", "status")
	ErrInvalidLocation         = NewValidationError("Location coordinates must be [longitude, latitude]", "location.coordinates")
)

type MediaItem struct {
	URL        string `json:"url" validate:"required,url"`
	MimeType   string `json:"mimeType" validate:"required"`
	UploadedBy string `json:"uploadedBy,omitempty"`
}

// MediaList is stored as a JSONB array.
type MediaList []MediaItem

func (m MediaList) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MediaList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("media list: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, m)
}

// Location is embedded in Complaint; its columns are flat in the complaints table.
type Location struct {
	Longitude       float64 `json:"longitude" db:"longitude"`
	Latitude        float64 `json:"latitude" db:"latitude"`
	State           string  `json:"state" db:"state"`
	City            string  `json:"city" db:"city"`
	Area            string  `json:"area" db:"area"`
	PreciseLocation *string `json:"preciseLocation,omitempty" db:"precise_location"`
}

type Complaint struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	ComplaintNumber     string     `json:"complaintNumber" db:"complaint_number"`
	CitizenID           *uuid.UUID `json:"citizenId,omitempty" db:"citizen_id"`
	GuestDeviceID       *string    `json:"-" db:"guest_device_id"`
	Description         string     `json:"description" db:"description"`
	AudioDescriptionURL *string    `json:"audioDescriptionUrl,omitempty" db:"audio_description_url"`
	Media               MediaList  `json:"media" db:"media"`
	// Language is the reporter's language code, forwarded to the danger scorer.
	Language            string     `json:"language" db:"language"`

	Location `json:"location"`

	Category     *string         `json:"category,omitempty" db:"category"`
	DepartmentID *uuid.UUID      `json:"departmentId,omitempty" db:"department_id"`
	Upvotes      int             `json:"upvotes" db:"upvotes"`
	Refiles      int             `json:"refiles" db:"refiles"`
	DangerScore  float64         `json:"dangerScore" db:"danger_score"`
	RiskLevel    string          `json:"riskLevel" db:"risk_level"`
	IsUrgent     bool            `json:"isUrgent" db:"is_urgent"`
	Priority     int             `json:"priority" db:"priority"`
	Status       ComplaintStatus `json:"status" db:"status"`

	ResolvedBy             *uuid.UUID `json:"resolvedBy,omitempty" db:"resolved_by"`
	ResolvedAt             *time.Time `json:"resolvedAt,omitempty" db:"resolved_at"`
	ResolutionComment      *string    `json:"resolutionComment,omitempty" db:"resolution_comment"`
	ResolutionMedia        MediaList  `json:"resolutionMedia,omitempty" db:"resolution_media"`
	ExpectedResolutionDate *time.Time `json:"expectedResolutionDate,omitempty" db:"expected_resolution_date"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Set by nearby searches only.
	DistanceKm *float64 `json:"distanceKm,omitempty" db:"distance_km"`

	// Loaded by detail reads only.
	History       []StatusHistoryEntry `json:"statusHistory,omitempty" db:"-"`
	RefileRecords []RefileRecord       `json:"refileHistory,omitempty" db:"-"`
	Confirmations []Confirmation       `json:"confirmations,omitempty" db:"-"`
	Actions       []ComplaintAction    `json:"actions,omitempty" db:"-"`
}

func (c *Complaint) HasStatusInHistory(status ComplaintStatus) bool {
	for _, h := range c.History {
		if h.Status == status {
			return true
		}
	}
	return false
}

// LastRefileBy returns when citizenID last refiled this complaint, or nil.
func (c *Complaint) LastRefileBy(citizenID uuid.UUID) *time.Time {
	var last *time.Time
	for i := range c.RefileRecords {
		r := &c.RefileRecords[i]
		if r.CitizenID != citizenID {
			continue
		}
		if last == nil || r.CreatedAt.After(*last) {
			last = &r.CreatedAt
		}
	}
	return last
}

func (c *Complaint) HasConfirmed(citizenID uuid.UUID) bool {
	for _, conf := range c.Confirmations {
		if conf.CitizenID == citizenID {
			return true
		}
	}
	return false
}

type PublicComplaint struct {
	ID              uuid.UUID       `json:"id"`
	ComplaintNumber string          `json:"complaintNumber"`
	Status          ComplaintStatus `json:"status"`
	Description     string          `json:"description"`
	Location        Location        `json:"location"`
	MediaURLs       []string        `json:"mediaUrls"`
	DangerScore     float64         `json:"dangerScore"`
	Priority        int             `json:"priority"`
	Upvotes         int             `json:"upvotes"`
	DistanceKm      *float64        `json:"distanceKm,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (c *Complaint) Public() PublicComplaint {
	urls := make([]string, 0, len(c.Media))
	for _, m := range c.Media {
		urls = append(urls, m.URL)
	}
	return PublicComplaint{
		ID:              c.ID,
		ComplaintNumber: c.ComplaintNumber,
		Status:          c.Status,
		Description:     c.Description,
		Location:        c.Location,
		MediaURLs:       urls,
		DangerScore:     c.DangerScore,
		Priority:        c.Priority,
		Upvotes:         c.Upvotes,
		DistanceKm:      c.DistanceKm,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type StatusHistoryEntry struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	ComplaintID            uuid.UUID       `json:"complaintId" db:"complaint_id"`
	Status                 ComplaintStatus `json:"status" db:"status"`
	Comment                *string         `json:"comment,omitempty" db:"comment"`
	ActorID                *uuid.UUID      `json:"updatedBy,omitempty" db:"actor_id"`
	ActorKind              ActorKind       `json:"updatedByType" db:"actor_kind"`
	Media                  MediaList       `json:"media,omitempty" db:"media"`
	ExpectedResolutionDate *time.Time      `json:"expectedResolutionDate,omitempty" db:"expected_resolution_date"`
	CreatedAt              time.Time       `json:"timestamp" db:"created_at"`
}

type RefileRecord struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ComplaintID uuid.UUID `json:"complaintId" db:"complaint_id"`
	CitizenID   uuid.UUID `json:"refiledBy" db:"citizen_id"`
	Media       MediaList `json:"media" db:"media"`
	Note        *string   `json:"note,omitempty" db:"note"`
	CreatedAt   time.Time `json:"timestamp" db:"created_at"`
}

type Confirmation struct {
	ComplaintID uuid.UUID `json:"complaintId" db:"complaint_id"`
	CitizenID   uuid.UUID `json:"citizenId" db:"citizen_id"`
	CreatedAt   time.Time `json:"confirmedAt" db:"created_at"`
}

type ComplaintAction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ComplaintID uuid.UUID       `json:"complaintId" db:"complaint_id"`
	Action      string          `json:"action" db:"action"`
	ActorID     *uuid.UUID      `json:"actorId,omitempty" db:"actor_id"`
	ActorKind   ActorKind       `json:"actorType" db:"actor_kind"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time       `json:"timestamp" db:"created_at"`
}

// Resolution is stamped on the complaint when staff resolve it.
type Resolution struct {
	ResolvedBy             uuid.UUID
	ResolvedAt             time.Time
	Comment                *string
	Media                  MediaList
	ExpectedResolutionDate *time.Time
}

// ConfirmResult reports the outcome of one confirmation vote.
type ConfirmResult struct {
	Inserted      bool
	Confirmations int
	AutoResolved  bool
}

type LocationInput struct {
	Type            string    `json:"type"`
	Coordinates     []float64 `json:"coordinates" validate:"required,len=2"`
	State           string    `json:"state" validate:"required,max=100"`
	City            string    `json:"city" validate:"required,max=100"`
	Area            string    `json:"area" validate:"max=200"`
	PreciseLocation *string   `json:"preciseLocation" validate:"omitempty,max=500"`
}

// ToLocation converts GeoJSON-ordered coordinates ([lng, lat]).
func (l LocationInput) ToLocation() (Location, error) {
	if len(l.Coordinates) != 2 {
		return Location{}, ErrInvalidLocation
	}
	lng, lat := l.Coordinates[0], l.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return Location{}, ErrInvalidLocation
	}
	return Location{
		Longitude:       lng,
		Latitude:        lat,
		State:           l.State,
		City:            l.City,
		Area:            l.Area,
		PreciseLocation: l.PreciseLocation,
	}, nil
}

type CreateComplaintInput struct {
	Description         string        `json:"description" validate:"required,min=5,max=2000"`
	AudioDescriptionURL *string       `json:"audioDescriptionUrl" validate:"omitempty,url"`
	Location            LocationInput `json:"location"`
	Media               []MediaItem   `json:"media" validate:"max=10,dive"`
	Category            *string       `json:"category" validate:"omitempty,max=50"`
	DeviceID            *string       `json:"deviceId" validate:"omitempty,max=100"`
	Language            string        `json:"language" validate:"omitempty,oneof=en hi"`
}

type UpdateStatusInput struct {
	Status                 ComplaintStatus `json:"status" validate:"required,oneof=unresolved in_progress resolved awaiting_confirmation"`
	Comment                *string         `json:"comment" validate:"omitempty,max=1000"`
	Media                  []MediaItem     `json:"media" validate:"max=10,dive"`
	ExpectedResolutionDate *time.Time      `json:"expectedResolutionDate"`
}

type RefileInput struct {
	Description *string     `json:"description" validate:"omitempty,min=5,max=2000"`
	Media       []MediaItem `json:"media" validate:"max=10,dive"`
	Note        *string     `json:"note" validate:"omitempty,max=1000"`
}

type UrgencyLevel string

const (
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type MarkUrgentInput struct {
	UrgencyLevel UrgencyLevel `json:"urgency_level" validate:"required,oneof=high critical"`
	Reason       *string      `json:"reason" validate:"omitempty,max=500"`
}

type EscalateInput struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type ComplaintSort string

const (
	SortPriority ComplaintSort = "priority"
	SortNewest   ComplaintSort = "new"
	SortOldest   ComplaintSort = "old"
)

type ComplaintFilter struct {
	Status       ComplaintStatus
	DepartmentID *uuid.UUID
	City         string
	Area         string
	Sort         ComplaintSort
}

type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// DuplicateQuery describes the similarity window used by the duplicate guard.
type DuplicateQuery struct {
	CitizenID   uuid.UUID
	Description string
	Longitude   float64
	Latitude    float64
	Since       time.Time
}

type StatusCount struct {
	Status ComplaintStatus `json:"status" db:"status"`
	Count  int64           `json:"count" db:"count"`
}

type SupervisorDashboard struct {
	Success          bool          `json:"success"`
	StatusCounts     []StatusCount `json:"statusCounts"`
	TotalComplaints  int64         `json:"totalComplaints"`
	UrgentComplaints []Complaint   `json:"urgentComplaints"`
	GeneratedAt      time.Time     `json:"generatedAt"`
}
