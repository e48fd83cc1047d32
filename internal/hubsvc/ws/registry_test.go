package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records everything written to it.
type fakeConn struct {
	mu       sync.Mutex
	messages []interface{}
	closed   bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.messages...)
}

func TestRegistrySend(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	r.Register("sock-a", conn)

	r.Send("sock-a", "hello")
	r.Send("sock-missing", "dropped")

	require.Len(t, conn.received(), 1)
	assert.Equal(t, "hello", conn.received()[0])
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	r.Register("sock-a", conn)
	r.Bind("sock-a", 1)

	r.Unregister("sock-a")
	r.Unregister("sock-a")

	_, bound := r.UserFor("sock-a")
	assert.False(t, bound)

	r.Send("sock-a", "dropped")
	assert.Empty(t, conn.received())
}

func TestRegistryBindAbsentConnection(t *testing.T) {
	r := NewRegistry()

	r.Bind("sock-gone", 1)

	_, bound := r.UserFor("sock-gone")
	assert.False(t, bound)
}

func TestRegistryBindLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register("sock-a", &fakeConn{})

	r.Bind("sock-a", 1)
	r.Bind("sock-a", 2)

	userID, bound := r.UserFor("sock-a")
	require.True(t, bound)
	assert.Equal(t, int64(2), userID)
}

func TestRegistryNotifyUserMultipleDevices(t *testing.T) {
	r := NewRegistry()
	phone := &fakeConn{}
	laptop := &fakeConn{}
	other := &fakeConn{}
	r.Register("sock-phone", phone)
	r.Register("sock-laptop", laptop)
	r.Register("sock-other", other)
	r.Bind("sock-phone", 1)
	r.Bind("sock-laptop", 1)
	r.Bind("sock-other", 2)

	r.NotifyUser(1, "ping")

	assert.Len(t, phone.received(), 1)
	assert.Len(t, laptop.received(), 1)
	assert.Empty(t, other.received())
}

func TestRegistryBroadcast(t *testing.T) {
	r := NewRegistry()
	bound := &fakeConn{}
	unbound := &fakeConn{}
	r.Register("sock-a", bound)
	r.Register("sock-b", unbound)
	r.Bind("sock-a", 1)

	r.Broadcast("everyone")

	assert.Len(t, bound.received(), 1)
	assert.Len(t, unbound.received(), 1)
}
