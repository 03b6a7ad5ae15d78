package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/mocks"
)

func sampleComplaint() *domain.Complaint {
	now := time.Now()
	return &domain.Complaint{
		ID:              uuid.New(),
		ComplaintNumber: "COMP-LOYW3V28-AB12C",
		Description:     "Large pothole near the school gate",
		Media:           domain.MediaList{{URL: "https://cdn.example.com/p.jpg", MimeType: "image/jpeg"}},
		Location:        domain.Location{Longitude: 77.2, Latitude: 28.6, State: "Delhi", City: "New Delhi"},
		DangerScore:     6.5,
		Priority:        95,
		Status:          domain.StatusUnresolved,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func createBody() map[string]any {
	return map[string]any{
		"description": "Large pothole near the school gate",
		"location": map[string]any{
			"type":        "Point",
			"coordinates": []float64{77.2, 28.6},
			"state":       "Delhi",
			"city":        "New Delhi",
		},
		"media": []map[string]any{{"url": "https://cdn.example.com/p.jpg", "mimeType": "image/jpeg"}},
	}
}

func TestComplaintHandler_Create(t *testing.T) {
	t.Run("Returns the public projection", func(t *testing.T) {
		svc := new(mocks.ComplaintService)
		citizen := citizenPrincipal()
		created := sampleComplaint()
		created.CitizenID = &citizen.ID

		svc.On("Create", mock.Anything, citizen, mock.MatchedBy(func(in domain.CreateComplaintInput) bool {
			return in.Description == "Large pothole near the school gate" && in.DeviceID != nil && *in.DeviceID == "dev-7"
		})).Return(created, nil)

		app := newTestApp(citizen)
		app.Post("/complaints", NewComplaintHandler(svc).Create)

		resp, body := doJSON(t, app, http.MethodPost, "/complaints", createBody(), map[string]string{"X-Device-ID": "dev-7"})
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, true, body["success"])

		out := body["complaint"].(map[string]any)
		assert.Equal(t, created.ComplaintNumber, out["complaintNumber"])
		assert.Equal(t, []any{"https://cdn.example.com/p.jpg"}, out["mediaUrls"])
		assert.NotContains(t, out, "citizenId")
		svc.AssertExpectations(t)
	})

	t.Run("Guest creation passes a nil principal", func(t *testing.T) {
		svc := new(mocks.ComplaintService)
		svc.On("Create", mock.Anything, (*domain.Principal)(nil), mock.Anything).Return(sampleComplaint(), nil)

		app := newTestApp(nil)
		app.Post("/complaints", NewComplaintHandler(svc).Create)

		resp, _ := doJSON(t, app, http.MethodPost, "/complaints", createBody(), nil)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("Validation failure names the field", func(t *testing.T) {
		svc := new(mocks.ComplaintService)
		app := newTestApp(citizenPrincipal())
		app.Post("/complaints", NewComplaintHandler(svc).Create)

		body := createBody()
		body["description"] = "bad"
		resp, out := doJSON(t, app, http.MethodPost, "/complaints", body, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "description", out["field"])
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		svc := new(mocks.ComplaintService)
		app := newTestApp(citizenPrincipal())
		app.Post("/complaints", NewComplaintHandler(svc).Create)

		resp, out := doJSON(t, app, http.MethodPost, "/complaints", "{not json", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", out["error"])
	})

	t.Run("Duplicate surfaces as conflict", func(t *testing.T) {
		svc := new(mocks.ComplaintService)
		svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateComplaint)

		app := newTestApp(citizenPrincipal())
		app.Post("/complaints", NewComplaintHandler(svc).Create)

		resp, out := doJSON(t, app, http.MethodPost, "/complaints", createBody(), nil)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, domain.ErrDuplicateComplaint.Message, out["error"])
	})
}

func TestComplaintHandler_Get(t *testing.T) {
	svc := new(mocks.ComplaintService)
	found := sampleComplaint()
	svc.On("Get", mock.Anything, found.ID).Return(found, nil)
	svc.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrComplaintNotFound)

	app := newTestApp(citizenPrincipal())
	app.Get("/complaints/:id", NewComplaintHandler(svc).Get)

	resp, body := doJSON(t, app, http.MethodGet, "/complaints/"+found.ID.String(), nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, found.ID.String(), body["complaint"].(map[string]any)["id"])

	resp, _ = doJSON(t, app, http.MethodGet, "/complaints/"+uuid.NewString(), nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/complaints/nope", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "id", body["field"])
}

func TestComplaintHandler_List(t *testing.T) {
	dept := uuid.New()
	staff := staffPrincipal(dept)

	svc := new(mocks.ComplaintService)
	svc.On("ListForStaff", mock.Anything, staff, domain.ComplaintFilter{
		Status:       domain.StatusInProgress,
		DepartmentID: &dept,
		City:         "Pune",
		Sort:         domain.SortNewest,
	}, domain.PaginationParams{Page: 2, Limit: 10}).
		Return(domain.NewPaginatedResponse([]domain.Complaint{*sampleComplaint()}, 2, 10, 11), nil)

	app := newTestApp(staff)
	app.Get("/complaints", NewComplaintHandler(svc).List)

	resp, body := doJSON(t, app, http.MethodGet,
		"/complaints?status=in_progress&department="+dept.String()+"&city=Pune&sort=new&page=2&limit=10", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Len(t, body["data"], 1)
	svc.AssertExpectations(t)

	resp, body = doJSON(t, app, http.MethodGet, "/complaints?department=xyz", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "department", body["field"])
}

func TestComplaintHandler_ListNearby(t *testing.T) {
	svc := new(mocks.ComplaintService)
	svc.On("ListNearby", mock.Anything, domain.NearbyQuery{Latitude: 28.6, Longitude: 77.2, RadiusKm: 5}).
		Return([]domain.PublicComplaint{sampleComplaint().Public()}, nil)

	app := newTestApp(citizenPrincipal())
	app.Get("/complaints/nearby", NewComplaintHandler(svc).ListNearby)

	resp, body := doJSON(t, app, http.MethodGet, "/complaints/nearby?lat=28.6&lng=77.2&radius=5", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, _ = doJSON(t, app, http.MethodGet, "/complaints/nearby?lat=28.6", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestComplaintHandler_ListMine(t *testing.T) {
	citizen := citizenPrincipal()
	svc := new(mocks.ComplaintService)
	svc.On("ListMine", mock.Anything, citizen, domain.StatusResolved).Return([]domain.Complaint{}, nil)

	app := newTestApp(citizen)
	app.Get("/complaints/mine", NewComplaintHandler(svc).ListMine)

	resp, body := doJSON(t, app, http.MethodGet, "/complaints/mine?status=resolved", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["data"])
}

func TestComplaintHandler_UpdateStatus(t *testing.T) {
	dept := uuid.New()
	staff := staffPrincipal(dept)
	loaded := sampleComplaint()
	loaded.DepartmentID = &dept

	svc := new(mocks.ComplaintService)
	updated := *loaded
	updated.Status = domain.StatusInProgress
	svc.On("UpdateStatus",
		mock.MatchedBy(func(ctx context.Context) bool { return ctx != nil }),
		staff, loaded.ID,
		mock.MatchedBy(func(in domain.UpdateStatusInput) bool { return in.Status == domain.StatusInProgress }),
	).Return(&updated, nil)

	app := newTestApp(staff)
	app.Patch("/complaints/:id/status", middleware.DepartmentOwnership(svc), NewComplaintHandler(svc).UpdateStatus)
	svc.On("Get", mock.Anything, loaded.ID).Return(loaded, nil)

	resp, body := doJSON(t, app, http.MethodPatch, "/complaints/"+loaded.ID.String()+"/status", map[string]any{"status": "in_progress"}, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_progress", body["complaint"].(map[string]any)["status"])

	resp, body = doJSON(t, app, http.MethodPatch, "/complaints/"+loaded.ID.String()+"/status", map[string]any{"status": "escalated"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "status", body["field"])
}

func TestComplaintHandler_Refile(t *testing.T) {
	citizen := citizenPrincipal()
	id := uuid.New()

	svc := new(mocks.ComplaintService)
	svc.On("Refile", mock.Anything, citizen, id, mock.Anything).Return(nil, domain.ErrRefileCooldown)

	app := newTestApp(citizen)
	app.Post("/complaints/:id/refile", NewComplaintHandler(svc).Refile)

	resp, body := doJSON(t, app, http.MethodPost, "/complaints/"+id.String()+"/refile", map[string]any{
		"media": []map[string]any{{"url": "https://cdn.example.com/again.jpg", "mimeType": "image/png"}},
	}, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, domain.ErrRefileCooldown.Message, body["error"])
}

func TestComplaintHandler_ConfirmResolution(t *testing.T) {
	citizen := citizenPrincipal()
	complaint := sampleComplaint()
	complaint.Status = domain.StatusResolved

	svc := new(mocks.ComplaintService)
	svc.On("ConfirmResolution", mock.Anything, citizen, complaint.ID).
		Return(complaint, domain.ConfirmResult{Inserted: true, Confirmations: 3, AutoResolved: true}, nil)

	app := newTestApp(citizen)
	app.Post("/complaints/:id/confirm-resolution", NewComplaintHandler(svc).ConfirmResolution)

	resp, body := doJSON(t, app, http.MethodPost, "/complaints/"+complaint.ID.String()+"/confirm-resolution", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["confirmations"])
	assert.Equal(t, true, body["autoResolved"])
	assert.Equal(t, "Resolution confirmed. Complaint marked as resolved.", body["message"])
}

func TestComplaintHandler_Upvote(t *testing.T) {
	citizen := citizenPrincipal()
	complaint := sampleComplaint()
	complaint.Upvotes = 4

	svc := new(mocks.ComplaintService)
	svc.On("Upvote", mock.Anything, citizen, complaint.ID).Return(complaint, nil).Once()
	svc.On("Upvote", mock.Anything, citizen, complaint.ID).Return(nil, domain.ErrAlreadyUpvoted)

	app := newTestApp(citizen)
	app.Post("/complaints/:id/upvote", NewComplaintHandler(svc).Upvote)

	resp, body := doJSON(t, app, http.MethodPost, "/complaints/"+complaint.ID.String()+"/upvote", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), body["upvotes"])

	resp, _ = doJSON(t, app, http.MethodPost, "/complaints/"+complaint.ID.String()+"/upvote", nil, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
