package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBroadcaster_SendToUser(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)
	broadcaster := NewBroadcaster(logger, registry)

	t.Run("delivers to a live handle", func(t *testing.T) {
		handle := &stubHandle{}
		registry.Register("user-1", handle)

		delivered := broadcaster.SendToUser("user-1", map[string]any{"title": "New offer"})

		assert.True(t, delivered)

		frames := handle.sent()
		assert.Len(t, frames, 1)
		assert.Equal(t, FrameTypeNotification, frames[0].Type)
		assert.Equal(t, map[string]any{"title": "New offer"}, frames[0].Data)
		assert.False(t, frames[0].Timestamp.IsZero())
	})

	t.Run("returns false for an unregistered user", func(t *testing.T) {
		delivered := broadcaster.SendToUser("nobody", "payload")

		assert.False(t, delivered)
	})

	t.Run("reaches only the newest handle after replacement", func(t *testing.T) {
		first := &stubHandle{}
		second := &stubHandle{}

		registry.Register("user-2", first)
		registry.Register("user-2", second)

		delivered := broadcaster.SendToUser("user-2", "payload")

		assert.True(t, delivered)
		assert.Empty(t, first.sent())
		assert.Len(t, second.sent(), 1)
	})

	t.Run("evicts a dead handle on write failure", func(t *testing.T) {
		handle := &stubHandle{failing: true}
		registry.Register("user-3", handle)

		delivered := broadcaster.SendToUser("user-3", "payload")

		assert.False(t, delivered)
		assert.False(t, registry.IsConnected("user-3"))
	})
}

func TestBroadcaster_SendToUsers(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)
	broadcaster := NewBroadcaster(logger, registry)

	handleA := &stubHandle{}
	handleB := &stubHandle{failing: true}
	handleC := &stubHandle{}

	registry.Register("a", handleA)
	registry.Register("b", handleB)
	registry.Register("c", handleC)

	delivered := broadcaster.SendToUsers([]string{"a", "b", "c"}, "payload")

	assert.Equal(t, 2, delivered)

	// One broken recipient never aborts delivery to the others, and the
	// dead entry is gone afterwards.
	assert.True(t, registry.IsConnected("a"))
	assert.False(t, registry.IsConnected("b"))
	assert.True(t, registry.IsConnected("c"))
	assert.Len(t, handleA.sent(), 1)
	assert.Len(t, handleC.sent(), 1)
}
