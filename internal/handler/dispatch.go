package handler

import (
	"context"
	"errors"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
)

type DispatchRequest struct {
	UserIds []string `json:"userIds"`
	Payload any      `json:"payload"`
}

type DispatchResponse struct {
	Delivered int `json:"delivered"`
}

// DispatchHandler pushes an already-persisted notification to any live
// connections of the target users. Delivery is best-effort; the count only
// reflects recipients that were actually reached.
type DispatchHandler struct {
	broadcaster *notify.Broadcaster
}

func NewDispatchHandler(broadcaster *notify.Broadcaster) *DispatchHandler {
	return &DispatchHandler{
		broadcaster,
	}
}

func (h *DispatchHandler) Handle(ctx context.Context, req DispatchRequest) (DispatchResponse, error) {
	authentication, ok := auth.AuthenticationFromContext(ctx)
	if !ok {
		return DispatchResponse{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	if !authentication.IsAdmin() {
		return DispatchResponse{},
			ierr.New(ierr.ErrorCodePermissionDenied, errors.New("service credentials required to dispatch"))
	}

	if len(req.UserIds) == 0 {
		return DispatchResponse{},
			ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("userIds cannot be empty"))
	}

	delivered := h.broadcaster.SendToUsers(req.UserIds, req.Payload)

	return DispatchResponse{
		Delivered: delivered,
	}, nil
}
