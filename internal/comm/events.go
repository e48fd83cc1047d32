package comm

import (
	"github.com/lexiduel/vocab-services/internal/game/models"
)

// StatusUpdate announces a presence change to every live connection. User
// is nil on the cosmetic refresh that follows game actions.
type StatusUpdate struct {
	Type string       `json:"type"`
	User *models.User `json:"user"`
}

// GameInvite goes to the invited player when a session is created.
type GameInvite struct {
	Type      string       `json:"type"`
	SessionID int64        `json:"session_id"`
	FromUser  *models.User `json:"from_user"`
}

// GameWaiting acknowledges the requester while the invite is open.
type GameWaiting struct {
	Type      string       `json:"type"`
	SessionID int64        `json:"session_id"`
	Waiting   *models.User `json:"waiting"`
}

// GameEvent is the shared shape of accepted/declined/auto-declined/completed
// notifications.
type GameEvent struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
}

// GameCancelled notifies both players that a session was withdrawn. When is
// set to "onClose" on disconnect-driven cleanup, and the player1 copy also
// carries the player1 id, matching the client contract.
type GameCancelled struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
	When      string `json:"when,omitempty"`
	Player1   int64  `json:"player1,omitempty"`
}
