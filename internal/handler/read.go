package handler

import (
	"context"
	"errors"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
)

// MarkReadHandler flips the read flag of a single notification. Only the
// owning user may touch it.
type MarkReadHandler struct {
	store persistence.Store
}

func NewMarkReadHandler(store persistence.Store) *MarkReadHandler {
	return &MarkReadHandler{
		store,
	}
}

func (h *MarkReadHandler) Handle(ctx context.Context, id string, read bool) (notify.Notification, error) {
	authentication, ok := auth.AuthenticationFromContext(ctx)
	if !ok {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	notification, err := h.store.Get(ctx, id)
	if err != nil {
		return notify.Notification{}, err
	}

	if notification.UserId != authentication.Subject {
		return notify.Notification{},
			ierr.New(ierr.ErrorCodePermissionDenied, errors.New("notification belongs to another user"))
	}

	return h.store.MarkRead(ctx, id, read)
}
