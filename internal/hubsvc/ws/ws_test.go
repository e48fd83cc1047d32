package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiduel/vocab-services/internal/comm"
	"github.com/lexiduel/vocab-services/internal/game/models"
)

// hubFixture wires a real registry and presence tracker around the in-memory
// session service, with fake connections at the edge.
type hubFixture struct {
	sessions *memSessions
	users    *mockUsers
	hub      *Hub
}

func newHubFixture() *hubFixture {
	sessions := newMemSessions()
	users := &mockUsers{
		byID: map[int64]*models.User{
			1: {ID: 1, Name: "alice"},
			2: {ID: 2, Name: "bob"},
		},
		byToken: map[string]*models.User{},
	}
	users.byToken["1|alice-token"] = users.byID[1]
	users.byToken["2|bob-token"] = users.byID[2]

	registry := NewRegistry()
	presence := NewPresence(registry, users)
	games := NewCoordinator(sessions, users, &mockScheduler{}, registry)
	return &hubFixture{
		sessions: sessions,
		users:    users,
		hub:      NewHub(registry, presence, games),
	}
}

func (f *hubFixture) connect(t *testing.T, socketId, token string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	f.hub.HandleOpen(socketId, conn)
	if token != "" {
		f.hub.HandleMessage(socketId, &comm.ClientMessage{Token: token})
		_, bound := f.hub.Registry.UserFor(socketId)
		require.True(t, bound)
	}
	return conn
}

func errorsIn(msgs []interface{}) []string {
	var out []string
	for _, v := range msgs {
		if e, ok := v.(comm.ErrorMessage); ok {
			out = append(out, e.Error)
		}
	}
	return out
}

func statusUpdatesIn(msgs []interface{}) []comm.StatusUpdate {
	var out []comm.StatusUpdate
	for _, v := range msgs {
		if s, ok := v.(comm.StatusUpdate); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestHubAuthenticate(t *testing.T) {
	f := newHubFixture()
	conn := f.connect(t, "sock-a", "")
	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Token: "1|alice-token"})

	userID, bound := f.hub.Registry.UserFor("sock-a")
	require.True(t, bound)
	assert.Equal(t, int64(1), userID)
	assert.True(t, f.users.byID[1].IsOnline)

	updates := statusUpdatesIn(conn.received())
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].User)
	assert.Equal(t, int64(1), updates[0].User.ID)
	assert.True(t, updates[0].User.IsOnline)
}

func TestHubAuthenticateInvalidToken(t *testing.T) {
	f := newHubFixture()
	conn := f.connect(t, "sock-a", "")
	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Token: "1|wrong"})

	_, bound := f.hub.Registry.UserFor("sock-a")
	assert.False(t, bound)
	assert.Empty(t, conn.received())
}

func TestHubActionRequiresBinding(t *testing.T) {
	f := newHubFixture()
	conn := f.connect(t, "sock-a", "")

	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Action: comm.ActionCreateGame, OpponentID: 2})

	assert.Equal(t, []string{"Authentication required"}, errorsIn(conn.received()))
	assert.Equal(t, 0, f.sessions.activeCountFor(2))
}

func TestHubCreateGameFlow(t *testing.T) {
	f := newHubFixture()
	alice := f.connect(t, "sock-a", "1|alice-token")
	bob := f.connect(t, "sock-b", "2|bob-token")

	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Action: comm.ActionCreateGame, OpponentID: 2})

	require.Equal(t, 1, f.sessions.activeCountFor(1))

	var gotInvite bool
	for _, v := range bob.received() {
		if invite, ok := v.(comm.GameInvite); ok {
			gotInvite = true
			assert.Equal(t, "alice", invite.FromUser.Name)
		}
	}
	assert.True(t, gotInvite)

	var gotWaiting bool
	for _, v := range alice.received() {
		if _, ok := v.(comm.GameWaiting); ok {
			gotWaiting = true
		}
	}
	assert.True(t, gotWaiting)

	// every game action is followed by a cosmetic status refresh
	refreshed := statusUpdatesIn(bob.received())
	require.NotEmpty(t, refreshed)
	assert.Nil(t, refreshed[len(refreshed)-1].User)
}

func TestHubIgnoresInternalActionsFromClients(t *testing.T) {
	f := newHubFixture()
	alice := f.connect(t, "sock-a", "1|alice-token")
	before := len(alice.received())

	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Action: comm.ActionAutoDeclineGame, SessionID: 1})
	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Action: comm.ActionGameOver, SessionID: 1})

	assert.Len(t, alice.received(), before)
}

func TestHubUnknownActionIgnored(t *testing.T) {
	f := newHubFixture()
	alice := f.connect(t, "sock-a", "1|alice-token")
	before := len(alice.received())

	f.hub.HandleMessage("sock-a", &comm.ClientMessage{Action: "launch_rockets"})

	assert.Len(t, alice.received(), before)
}

func TestHubLoopbackAutoDecline(t *testing.T) {
	f := newHubFixture()
	alice := f.connect(t, "sock-a", "1|alice-token")
	before := len(alice.received())

	f.hub.HandleLoopback(&comm.LoopbackMessage{
		Message:   "Game session deleted",
		Action:    comm.ActionAutoDeclineGame,
		SessionID: 7,
		Player1ID: 1,
	})

	var declined bool
	for _, v := range alice.received()[before:] {
		if e, ok := v.(comm.GameEvent); ok && e.Type == comm.TypeGameAutoDeclined {
			declined = true
			assert.Equal(t, int64(7), e.SessionID)
		}
	}
	assert.True(t, declined)
}

func TestHubLoopbackGameOver(t *testing.T) {
	f := newHubFixture()
	alice := f.connect(t, "sock-a", "1|alice-token")
	bob := f.connect(t, "sock-b", "2|bob-token")

	f.hub.HandleLoopback(&comm.LoopbackMessage{
		Message:   "Game over by session",
		Action:    comm.ActionGameOver,
		SessionID: 7,
		Player1ID: 1,
		Player2ID: 2,
	})

	for _, conn := range []*fakeConn{alice, bob} {
		var completed bool
		for _, v := range conn.received() {
			if e, ok := v.(comm.GameEvent); ok && e.Type == comm.TypeGameCompleted {
				completed = true
			}
		}
		assert.True(t, completed)
	}
}

func TestHubDisconnect(t *testing.T) {
	f := newHubFixture()
	f.connect(t, "sock-a", "1|alice-token")
	bob := f.connect(t, "sock-b", "2|bob-token")

	_, err := f.sessions.Create(context.Background(), 1, 2)
	require.NoError(t, err)

	f.hub.HandleDisconnect("sock-a")

	_, bound := f.hub.Registry.UserFor("sock-a")
	assert.False(t, bound)
	assert.False(t, f.users.byID[1].IsOnline)
	assert.Equal(t, 0, f.sessions.activeCountFor(1))

	var cancelled bool
	for _, v := range bob.received() {
		if c, ok := v.(comm.GameCancelled); ok {
			cancelled = true
			assert.Equal(t, "onClose", c.When)
		}
	}
	assert.True(t, cancelled)
}

func TestHubDisconnectUnbound(t *testing.T) {
	f := newHubFixture()
	f.connect(t, "sock-a", "")

	// must not mark anyone offline or touch sessions
	f.hub.HandleDisconnect("sock-a")

	assert.False(t, f.users.byID[1].IsOnline)
}
