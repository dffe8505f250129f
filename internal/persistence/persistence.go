package persistence

import (
	"context"

	"github.com/hauslink/notify/internal/notify"
)

// Store is the durable notification store. It is the source of truth for
// notification records; real-time push is layered on top of it and never
// writes here.
type Store interface {
	Setup(ctx context.Context) error
	Create(ctx context.Context, request CreateRequest) (notify.Notification, error)
	Get(ctx context.Context, id string) (notify.Notification, error)
	List(ctx context.Context, request ListRequest) (ListResult, error)
	MarkRead(ctx context.Context, id string, read bool) (notify.Notification, error)
	MarkAllRead(ctx context.Context, userId string) (int64, error)
}

type CreateRequest struct {
	UserId       string
	Type         string
	Title        string
	Message      string
	InspectionId string
	ListingId    string
	PaymentId    string
	Metadata     map[string]any
}

type ListRequest struct {
	UserId     string
	UnreadOnly bool
	Limit      int64
	Offset     int64
}

type ListResult struct {
	Notifications []notify.Notification
	Total         int64
	Unread        int64
	HasMore       bool
}
