package models

import (
	"database/sql"
	"time"
)

// Session lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Invitation statuses.
const (
	GameStatusPending   = "pending"
	GameStatusAccepted  = "accepted"
	GameStatusDeclined  = "declined"
	GameStatusCompleted = "completed"
)

// GameSession is a two-player quiz duel. Player2 is nullable in the schema,
// its FK is set null when the invited account is removed.
type GameSession struct {
	ID                int64         `json:"id"`
	Player1ID         int64         `json:"player1_id"`
	Player2ID         sql.NullInt64 `json:"player2_id"`
	Status            string        `json:"status"`
	GameStatus        string        `json:"game_status"`
	IsPlayer1Finished bool          `json:"is_player1_finished"`
	IsPlayer2Finished bool          `json:"is_player2_finished"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// IsParticipant reports whether userID plays on either side of the session.
func (s *GameSession) IsParticipant(userID int64) bool {
	return s.Player1ID == userID || (s.Player2ID.Valid && s.Player2ID.Int64 == userID)
}

// IsPlayer2 reports whether userID is the invited player.
func (s *GameSession) IsPlayer2(userID int64) bool {
	return s.Player2ID.Valid && s.Player2ID.Int64 == userID
}
