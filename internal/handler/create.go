package handler

import (
	"context"
	"errors"

	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/ierr"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
)

type CreateRequest struct {
	UserId       string         `json:"userId"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	InspectionId string         `json:"inspectionId,omitempty"`
	ListingId    string         `json:"listingId,omitempty"`
	PaymentId    string         `json:"paymentId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// CreateHandler persists a notification on behalf of a platform admin. It
// deliberately does not broadcast; producers trigger real-time delivery
// through the dispatch endpoint after the durable write.
type CreateHandler struct {
	store persistence.Store
}

func NewCreateHandler(store persistence.Store) *CreateHandler {
	return &CreateHandler{
		store,
	}
}

func (h *CreateHandler) Handle(ctx context.Context, req CreateRequest) (notify.Notification, error) {
	authentication, ok := auth.AuthenticationFromContext(ctx)
	if !ok {
		return notify.Notification{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("user not authenticated"))
	}

	if !authentication.IsAdmin() {
		return notify.Notification{},
			ierr.New(ierr.ErrorCodePermissionDenied, errors.New("platform admin role required"))
	}

	if req.UserId == "" || req.Type == "" || req.Title == "" || req.Message == "" {
		return notify.Notification{},
			ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("userId, type, title and message are required"))
	}

	return h.store.Create(ctx, persistence.CreateRequest{
		UserId:       req.UserId,
		Type:         req.Type,
		Title:        req.Title,
		Message:      req.Message,
		InspectionId: req.InspectionId,
		ListingId:    req.ListingId,
		PaymentId:    req.PaymentId,
		Metadata:     req.Metadata,
	})
}
