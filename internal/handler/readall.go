package handler

import (
	"context"
	"errors"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/persistence"
)

type MarkAllReadResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadHandler struct {
	store persistence.Store
}

func NewMarkAllReadHandler(store persistence.Store) *MarkAllReadHandler {
	return &MarkAllReadHandler{
		store,
	}
}

func (h *MarkAllReadHandler) Handle(ctx context.Context) (MarkAllReadResponse, error) {
	authentication, ok := auth.AuthenticationFromContext(ctx)
	if !ok {
		return MarkAllReadResponse{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	count, err := h.store.MarkAllRead(ctx, authentication.Subject)
	if err != nil {
		return MarkAllReadResponse{}, err
	}

	return MarkAllReadResponse{
		Count: count,
	}, nil
}
