package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Registry maps a user id to their single live push handle. It is
// process-local shared state; all operations are safe for concurrent use.
type Registry struct {
	logger *zap.Logger

	mu      sync.RWMutex
	handles map[string]Handle
}

func NewRegistry(
	logger *zap.Logger,
) *Registry {
	return &Registry{
		logger:  logger,
		handles: make(map[string]Handle),
	}
}

// Register stores the handle for the user, replacing any previous one. The
// replaced handle is not closed here; the superseded stream owns its own
// teardown and will notice on its next write or transport close.
func (r *Registry) Register(userId string, handle Handle) {
	r.mu.Lock()
	_, replaced := r.handles[userId]
	r.handles[userId] = handle
	r.mu.Unlock()

	if replaced {
		r.logger.Debug("replaced existing connection",
			zap.String("userId", userId))
	}
}

// Unregister removes the user's entry if present. Idempotent.
func (r *Registry) Unregister(userId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handles, userId)
}

// Evict removes the entry only if it still points at the given handle, so a
// dead stream tearing down late can never remove a newer connection's entry.
func (r *Registry) Evict(userId string, handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.handles[userId]
	if !ok || current != handle {
		return false
	}

	delete(r.handles, userId)

	return true
}

func (r *Registry) IsConnected(userId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handles[userId]

	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handles)
}

func (r *Registry) lookup(userId string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.handles[userId]

	return handle, ok
}
