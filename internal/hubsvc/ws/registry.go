package ws

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Conn is the slice of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// client pairs a live connection with its write lock. gorilla/websocket
// allows only one concurrent writer per connection.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Registry tracks live connections and the optional user identity bound to
// each. State is in-memory only, presence is ephemeral by nature.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*client
	users map[string]int64 // socketId -> bound user id
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*client),
		users: make(map[string]int64),
	}
}

func (r *Registry) Register(socketId string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[socketId] = &client{conn: conn}
}

// Unregister removes the connection and its binding. Removing an absent
// connection is a no-op.
func (r *Registry) Unregister(socketId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, socketId)
	delete(r.users, socketId)
}

// Bind attaches a user identity to a connection. Last bind wins.
func (r *Registry) Bind(socketId string, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[socketId]; !ok {
		return
	}
	r.users[socketId] = userID
}

// UserFor returns the user bound to a connection, if any.
func (r *Registry) UserFor(socketId string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.users[socketId]
	return userID, ok
}

// Send delivers a message to one connection. Absent connections are skipped.
func (r *Registry) Send(socketId string, v interface{}) {
	r.mu.RLock()
	c, ok := r.conns[socketId]
	r.mu.RUnlock()
	if !ok {
		return
	}

	if err := c.write(v); err != nil {
		log.Errorf("failed to write to socket %s: %v", socketId, err)
	}
}

// NotifyUser delivers a message to every connection bound to userID,
// covering the same account on several devices or tabs.
func (r *Registry) NotifyUser(userID int64, v interface{}) {
	for _, c := range r.boundTo(userID) {
		if err := c.write(v); err != nil {
			log.Errorf("failed to notify user %d: %v", userID, err)
		}
	}
}

// Broadcast delivers a message to every live connection, bound or not.
func (r *Registry) Broadcast(v interface{}) {
	r.mu.RLock()
	clients := make([]*client, 0, len(r.conns))
	for _, c := range r.conns {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(v); err != nil {
			log.Errorf("failed to broadcast: %v", err)
		}
	}
}

func (r *Registry) boundTo(userID int64) []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*client
	for socketId, id := range r.users {
		if id != userID {
			continue
		}
		if c, ok := r.conns[socketId]; ok {
			clients = append(clients, c)
		}
	}
	return clients
}
