package notify

import "go.uber.org/zap"

// Broadcaster attempts best-effort delivery of notification payloads to live
// connections. It never blocks, never persists and never retries; a failed
// write evicts the dead handle and that is the whole recovery story.
type Broadcaster struct {
	logger   *zap.Logger
	registry *Registry
}

func NewBroadcaster(
	logger *zap.Logger,
	registry *Registry,
) *Broadcaster {
	return &Broadcaster{
		logger,
		registry,
	}
}

// SendToUser pushes a notification frame to the user's live handle, if any.
// It returns true only if the write succeeded.
func (b *Broadcaster) SendToUser(userId string, payload any) bool {
	handle, ok := b.registry.lookup(userId)
	if !ok {
		return false
	}

	err := handle.Send(NewNotificationFrame(payload))
	if err != nil {
		b.logger.Warn("write failed, evicting dead connection",
			zap.String("userId", userId),
			zap.Error(err))

		b.registry.Evict(userId, handle)

		return false
	}

	return true
}

// SendToUsers delivers independently to each user; one recipient's failure
// never aborts delivery to the others. Returns the number of successful
// deliveries.
func (b *Broadcaster) SendToUsers(userIds []string, payload any) int {
	delivered := 0

	for _, userId := range userIds {
		if b.SendToUser(userId, payload) {
			delivered++
		}
	}

	return delivered
}
