package notify

import "time"

const (
	FrameTypeConnected    = "connected"
	FrameTypeHeartbeat    = "heartbeat"
	FrameTypeNotification = "notification"
)

// Frame is a single message pushed over a live stream.
type Frame struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewConnectedFrame() Frame {
	return Frame{
		Type:      FrameTypeConnected,
		Message:   "real-time notifications connected",
		Timestamp: time.Now(),
	}
}

func NewHeartbeatFrame() Frame {
	return Frame{
		Type:      FrameTypeHeartbeat,
		Timestamp: time.Now(),
	}
}

func NewNotificationFrame(data any) Frame {
	return Frame{
		Type:      FrameTypeNotification,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Handle is a write-only channel to exactly one remote client. Concrete
// transports (SSE, WebSocket) implement it. Implementations must serialize
// concurrent Send calls.
type Handle interface {
	Send(frame Frame) error
	Close() error
}
