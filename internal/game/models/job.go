package models

import (
	"time"
)

// Delayed job kinds executed by the job runner.
const (
	JobWaitingGame = "waiting_game"
	JobGameOver    = "game_over"
)

// ScheduledJob is a persisted delayed task. Jobs survive hub restarts and
// are claimed atomically by the runner once due.
type ScheduledJob struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	SessionID int64     `json:"session_id"`
	RunAt     time.Time `json:"run_at"`
	CreatedAt time.Time `json:"created_at"`
}
