package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"janmitra/internal/domain"
	"janmitra/internal/mocks"
)

func reportedComplaint() *domain.Complaint {
	citizen := uuid.New()
	return &domain.Complaint{ID: uuid.New(), ComplaintNumber: "COMP-LOYW3V28-AB12C", CitizenID: &citizen}
}

func captureCreate(repo *mocks.NotificationRepository) *[]*domain.Notification {
	var got []*domain.Notification
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { got = append(got, args.Get(1).(*domain.Notification)) }).
		Return(nil)
	return &got
}

func TestNotifyStatusChanged(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	got := captureCreate(repo)
	svc := NewService(repo)
	ctx := context.Background()

	c := reportedComplaint()
	svc.NotifyStatusChanged(ctx, c, domain.StatusInProgress)
	svc.NotifyStatusChanged(ctx, c, domain.StatusAwaitingConfirmation)

	require.Len(t, *got, 2)
	first, second := (*got)[0], (*got)[1]

	assert.Equal(t, domain.NotifStatusChanged, first.Type)
	assert.Equal(t, "Your complaint COMP-LOYW3V28-AB12C is now in progress.", first.Message)
	assert.Equal(t, *c.CitizenID, first.RecipientID)
	assert.Equal(t, domain.ActorCitizen, first.RecipientType)
	assert.Equal(t, &c.ID, first.ComplaintID)

	var data map[string]any
	require.NoError(t, json.Unmarshal(first.Data, &data))
	assert.Equal(t, "in_progress", data["status"])

	assert.Equal(t, domain.NotifAwaitingConfirm, second.Type)
	assert.Equal(t, "Please confirm the resolution", second.Title)
}

func TestNotifyUpvoteMilestone(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	got := captureCreate(repo)
	svc := NewService(repo)
	c := reportedComplaint()

	for _, n := range []int{1, 2, 3, 5, 7, 10, 24, 25} {
		svc.NotifyUpvoteMilestone(context.Background(), c, n)
	}

	require.Len(t, *got, 4)
	assert.Equal(t, "Your complaint COMP-LOYW3V28-AB12C has reached 25 upvotes.", (*got)[3].Message)
}

func TestNotify_SkipsGuestsAndSelfRefiles(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	svc := NewService(repo)
	ctx := context.Background()

	guest := reportedComplaint()
	guest.CitizenID = nil
	svc.NotifyAutoResolved(ctx, guest)
	svc.NotifyMarkedUrgent(ctx, guest)

	own := reportedComplaint()
	svc.NotifyRefiled(ctx, own, *own.CitizenID)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotify_RepositoryFailureIsSwallowed(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	svc := NewService(repo)

	assert.NotPanics(t, func() {
		svc.NotifyRefiled(context.Background(), reportedComplaint(), uuid.New())
	})
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestList_ClampsPagination(t *testing.T) {
	repo := new(mocks.NotificationRepository)
	recipient := uuid.New()
	repo.On("ListByRecipient", mock.Anything, recipient, false, domain.PaginationParams{Page: 1, Limit: 100}).
		Return([]domain.Notification{{ID: uuid.New()}}, int64(101), nil)

	resp, err := NewService(repo).List(context.Background(), recipient, false, domain.PaginationParams{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Data, 1)
}
