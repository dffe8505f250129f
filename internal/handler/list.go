package handler

import (
	"context"
	"errors"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ListRequest struct {
	UnreadOnly bool
	Limit      int64
	Offset     int64
}

type ListResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	HasMore       bool                  `json:"hasMore"`
}

type ListHandler struct {
	store persistence.Store
}

func NewListHandler(store persistence.Store) *ListHandler {
	return &ListHandler{
		store,
	}
}

func (h *ListHandler) Handle(ctx context.Context, req ListRequest) (ListResponse, error) {
	authentication, ok := auth.AuthenticationFromContext(ctx)
	if !ok {
		return ListResponse{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	result, err := h.store.List(ctx, persistence.ListRequest{
		UserId:     authentication.Subject,
		UnreadOnly: req.UnreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return ListResponse{}, err
	}

	return ListResponse{
		Notifications: result.Notifications,
		Total:         result.Total,
		Unread:        result.Unread,
		HasMore:       result.HasMore,
	}, nil
}
