package notify

import "time"

// Notification is the durable record relayed over live streams. The store is
// the source of truth; the push path treats it as an opaque payload.
type Notification struct {
	Id           string         `json:"id"`
	UserId       string         `json:"userId"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Read         bool           `json:"read"`
	InspectionId string         `json:"inspectionId,omitempty"`
	ListingId    string         `json:"listingId,omitempty"`
	PaymentId    string         `json:"paymentId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreateTime   time.Time      `json:"createTime"`
}
