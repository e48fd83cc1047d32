package ws

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/comm"
)

// messageTimeout bounds the store calls made while handling one inbound
// socket message.
const messageTimeout = 30 * time.Second

// Hub is the single inbound entry point: it owns the connection lifecycle
// and dispatches messages to the presence tracker or the game coordinator
// by their shape.
type Hub struct {
	Registry *Registry
	Presence *Presence
	Games    *Coordinator
}

func NewHub(registry *Registry, presence *Presence, games *Coordinator) *Hub {
	return &Hub{
		Registry: registry,
		Presence: presence,
		Games:    games,
	}
}

// HandleOpen registers a fresh connection. It stays unbound until a token
// message authenticates it.
func (h *Hub) HandleOpen(socketId string, conn Conn) {
	h.Registry.Register(socketId, conn)
}

// HandleMessage dispatches one inbound payload. Token messages authenticate
// the connection, action messages drive the game coordinator, anything else
// is logged and dropped.
func (h *Hub) HandleMessage(socketId string, msg *comm.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	switch {
	case msg.Token != "":
		h.Presence.Authenticate(ctx, socketId, msg.Token)
	case msg.Action != "":
		log.Infof("Call action: %s", msg.Action)
		h.handleAction(ctx, socketId, msg)
	default:
		log.Warnf("message without token or action from socket %s", socketId)
	}
}

func (h *Hub) handleAction(ctx context.Context, socketId string, msg *comm.ClientMessage) {
	if msg.Action == comm.ActionAutoDeclineGame || msg.Action == comm.ActionGameOver {
		// loopback-only actions never come from client sockets
		log.Warnf("ignoring internal action %q from socket %s", msg.Action, socketId)
		return
	}

	userID, bound := h.Registry.UserFor(socketId)
	if !bound {
		h.Registry.Send(socketId, comm.ErrorMessage{Error: errNotSignedIn})
		return
	}

	switch msg.Action {
	case comm.ActionCreateGame:
		h.Games.CreateGame(ctx, socketId, userID, msg.OpponentID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionAcceptGame:
		h.Games.AcceptGame(ctx, socketId, userID, msg.SessionID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionDeclineGame:
		h.Games.DeclineGame(ctx, socketId, userID, msg.SessionID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionCancelGame:
		h.Games.CancelGame(ctx, socketId, userID, msg.SessionID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionCompleteGame:
		h.Games.CompleteGame(ctx, socketId, userID, msg.SessionID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionCorrectAnswer, comm.ActionIncorrectAnswer:
		isCorrect := msg.Action == comm.ActionCorrectAnswer
		h.Games.SubmitAnswer(ctx, socketId, userID, msg.SessionID, msg.WordID, msg.SentenceID, isCorrect, msg.IsLast)
	default:
		log.Warnf("Unknown action: %s", msg.Action)
	}
}

// HandleLoopback dispatches a job-runner originated action. These arrive
// over the loopback topic, never from a client socket, and may originate
// from a different process than the hub.
func (h *Hub) HandleLoopback(msg *comm.LoopbackMessage) {
	switch msg.Action {
	case comm.ActionAutoDeclineGame:
		h.Games.AutoDeclined(msg.SessionID, msg.Player1ID)
		h.Presence.BroadcastStatus(nil)
	case comm.ActionGameOver:
		h.Games.GameOver(msg.SessionID, msg.Player1ID, msg.Player2ID)
	default:
		log.Warnf("unknown loopback action: %s", msg.Action)
	}
}

// HandleDisconnect tears the connection down: unregister first, then mark
// the user offline and clean up any live session they were part of.
func (h *Hub) HandleDisconnect(socketId string) {
	userID, bound := h.Registry.UserFor(socketId)
	h.Registry.Unregister(socketId)

	if !bound {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	h.Presence.SetOffline(ctx, userID)
	h.Games.DisconnectCleanup(ctx, userID)
}
