package models

import (
	"time"
)

// GameAnswer is one submitted quiz answer. Rows are immutable once created;
// running scores are derived with count queries, never stored.
type GameAnswer struct {
	ID             int64     `json:"id"`
	GameSessionID  int64     `json:"game_session_id"`
	UserID         int64     `json:"user_id"`
	WordID         int64     `json:"word_id"`
	WordSentenceID int64     `json:"word_sentence_id"`
	IsCorrect      bool      `json:"is_correct"`
	CreatedAt      time.Time `json:"created_at"`
}
