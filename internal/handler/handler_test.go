package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeStore is an in-memory persistence.Store for handler tests.
type fakeStore struct {
	mu            sync.Mutex
	seq           int
	notifications map[string]notify.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		notifications: make(map[string]notify.Notification),
	}
}

func (s *fakeStore) Setup(ctx context.Context) error {
	return nil
}

func (s *fakeStore) Create(ctx context.Context, request persistence.CreateRequest) (notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++

	notification := notify.Notification{
		Id:           fmt.Sprintf("n-%d", s.seq),
		UserId:       request.UserId,
		Type:         request.Type,
		Title:        request.Title,
		Message:      request.Message,
		InspectionId: request.InspectionId,
		ListingId:    request.ListingId,
		PaymentId:    request.PaymentId,
		Metadata:     request.Metadata,
		CreateTime:   time.Now().Add(time.Duration(s.seq) * time.Millisecond),
	}

	s.notifications[notification.Id] = notification

	return notification, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("notification not found"))
	}

	return notification, nil
}

func (s *fakeStore) List(ctx context.Context, request persistence.ListRequest) (persistence.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []notify.Notification
	var unread int64

	for _, notification := range s.notifications {
		if notification.UserId != request.UserId {
			continue
		}

		if !notification.Read {
			unread++
		}

		if request.UnreadOnly && notification.Read {
			continue
		}

		owned = append(owned, notification)
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreateTime.After(owned[j].CreateTime)
	})

	matched := int64(len(owned))

	start := request.Offset
	if start > matched {
		start = matched
	}

	end := start + request.Limit
	if end > matched {
		end = matched
	}

	page := owned[start:end]

	var total int64
	for _, notification := range s.notifications {
		if notification.UserId == request.UserId {
			total++
		}
	}

	return persistence.ListResult{
		Notifications: page,
		Total:         total,
		Unread:        unread,
		HasMore:       end < matched,
	}, nil
}

func (s *fakeStore) MarkRead(ctx context.Context, id string, read bool) (notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("notification not found"))
	}

	notification.Read = read
	s.notifications[id] = notification

	return notification, nil
}

func (s *fakeStore) MarkAllRead(ctx context.Context, userId string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64

	for id, notification := range s.notifications {
		if notification.UserId == userId && !notification.Read {
			notification.Read = true
			s.notifications[id] = notification
			count++
		}
	}

	return count, nil
}

func authenticatedContext(subject string, role string) context.Context {
	return auth.WithAuthentication(context.Background(), &auth.Authentication{
		Subject: subject,
		Role:    role,
	})
}

func seed(t *testing.T, store *fakeStore, userId string, count int) []notify.Notification {
	t.Helper()

	notifications := make([]notify.Notification, count)
	for i := 0; i < count; i++ {
		notification, err := store.Create(context.Background(), persistence.CreateRequest{
			UserId:  userId,
			Type:    "inspection_scheduled",
			Title:   fmt.Sprintf("Inspection %d", i),
			Message: "An inspection was scheduled for your listing",
		})
		assert.NoError(t, err)
		notifications[i] = notification
	}

	return notifications
}

func TestCreateHandler(t *testing.T) {
	store := newFakeStore()
	createHandler := NewCreateHandler(store)

	t.Run("admin can create", func(t *testing.T) {
		ctx := authenticatedContext("admin-1", auth.RoleAdmin)

		notification, err := createHandler.Handle(ctx, CreateRequest{
			UserId:    "client-1",
			Type:      "offer_received",
			Title:     "New offer",
			Message:   "You received an offer on your listing",
			ListingId: "listing-9",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, notification.Id)
		assert.Equal(t, "client-1", notification.UserId)
		assert.False(t, notification.Read)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		ctx := authenticatedContext("agent-1", auth.RoleAgent)

		_, err := createHandler.Handle(ctx, CreateRequest{
			UserId:  "client-1",
			Type:    "offer_received",
			Title:   "New offer",
			Message: "You received an offer",
		})

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodePermissionDenied, err.(ierr.Error).Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		ctx := authenticatedContext("admin-1", auth.RoleAdmin)

		_, err := createHandler.Handle(ctx, CreateRequest{
			UserId: "client-1",
			Type:   "offer_received",
		})

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		_, err := createHandler.Handle(context.Background(), CreateRequest{})

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeUnauthenticated, err.(ierr.Error).Code)
	})
}

func TestListHandler(t *testing.T) {
	store := newFakeStore()
	listHandler := NewListHandler(store)

	notifications := seed(t, store, "client-1", 5)
	seed(t, store, "client-2", 3)

	_, err := store.MarkRead(context.Background(), notifications[0].Id, true)
	assert.NoError(t, err)

	ctx := authenticatedContext("client-1", auth.RoleClient)

	t.Run("returns only the caller's notifications", func(t *testing.T) {
		response, err := listHandler.Handle(ctx, ListRequest{})

		assert.NoError(t, err)
		assert.Len(t, response.Notifications, 5)
		assert.Equal(t, int64(5), response.Total)
		assert.Equal(t, int64(4), response.Unread)
		assert.False(t, response.HasMore)
	})

	t.Run("unreadOnly filters read notifications", func(t *testing.T) {
		response, err := listHandler.Handle(ctx, ListRequest{UnreadOnly: true})

		assert.NoError(t, err)
		assert.Len(t, response.Notifications, 4)
		for _, notification := range response.Notifications {
			assert.False(t, notification.Read)
		}
	})

	t.Run("pagination sets hasMore", func(t *testing.T) {
		response, err := listHandler.Handle(ctx, ListRequest{Limit: 2})

		assert.NoError(t, err)
		assert.Len(t, response.Notifications, 2)
		assert.True(t, response.HasMore)

		response, err = listHandler.Handle(ctx, ListRequest{Limit: 2, Offset: 4})

		assert.NoError(t, err)
		assert.Len(t, response.Notifications, 1)
		assert.False(t, response.HasMore)
	})
}

func TestMarkReadHandler(t *testing.T) {
	store := newFakeStore()
	markReadHandler := NewMarkReadHandler(store)

	notifications := seed(t, store, "client-1", 1)
	id := notifications[0].Id

	t.Run("owner can mark read and unread", func(t *testing.T) {
		ctx := authenticatedContext("client-1", auth.RoleClient)

		notification, err := markReadHandler.Handle(ctx, id, true)

		assert.NoError(t, err)
		assert.True(t, notification.Read)

		notification, err = markReadHandler.Handle(ctx, id, false)

		assert.NoError(t, err)
		assert.False(t, notification.Read)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		ctx := authenticatedContext("client-2", auth.RoleClient)

		_, err := markReadHandler.Handle(ctx, id, true)

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodePermissionDenied, err.(ierr.Error).Code)
	})

	t.Run("missing notification", func(t *testing.T) {
		ctx := authenticatedContext("client-1", auth.RoleClient)

		_, err := markReadHandler.Handle(ctx, "missing", true)

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeNotFound, err.(ierr.Error).Code)
	})
}

func TestMarkAllReadHandler(t *testing.T) {
	store := newFakeStore()
	markAllReadHandler := NewMarkAllReadHandler(store)

	seed(t, store, "client-1", 3)

	ctx := authenticatedContext("client-1", auth.RoleClient)

	response, err := markAllReadHandler.Handle(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), response.Count)

	// Second call finds nothing unread.
	response, err = markAllReadHandler.Handle(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), response.Count)
}

func TestDispatchHandler(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := notify.NewRegistry(logger)
	broadcaster := notify.NewBroadcaster(logger, registry)
	dispatchHandler := NewDispatchHandler(broadcaster)

	t.Run("requires service credentials", func(t *testing.T) {
		ctx := authenticatedContext("client-1", auth.RoleClient)

		_, err := dispatchHandler.Handle(ctx, DispatchRequest{UserIds: []string{"client-1"}})

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodePermissionDenied, err.(ierr.Error).Code)
	})

	t.Run("requires recipients", func(t *testing.T) {
		ctx := authenticatedContext("service", auth.RoleAdmin)

		_, err := dispatchHandler.Handle(ctx, DispatchRequest{})

		assert.Error(t, err)
		assert.Equal(t, ierr.ErrorCodeInvalidArgument, err.(ierr.Error).Code)
	})

	t.Run("reports delivered count", func(t *testing.T) {
		ctx := authenticatedContext("service", auth.RoleAdmin)

		response, err := dispatchHandler.Handle(ctx, DispatchRequest{
			UserIds: []string{"offline-1", "offline-2"},
			Payload: map[string]any{"title": "New offer"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, response.Delivered)
	})
}
