package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexiduel/vocab-services/internal/game/models"
)

type AnswerStore struct {
	db *pgxpool.Pool
}

func NewAnswerStore(db *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{db: db}
}

func (s *AnswerStore) Create(ctx context.Context, a *models.GameAnswer) error {
	query := `
        INSERT INTO game_answers
            (game_session_id, user_id, word_id, word_sentence_id, is_correct, created_at)
        VALUES ($1, $2, $3, $4, $5, now())
        RETURNING id, created_at
    `

	err := s.db.QueryRow(ctx, query,
		a.GameSessionID,
		a.UserID,
		a.WordID,
		a.WordSentenceID,
		a.IsCorrect,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game answer: %w", err)
	}

	return nil
}

// CorrectCount derives a player's running score for one session.
func (s *AnswerStore) CorrectCount(ctx context.Context, sessionID, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM game_answers
        WHERE game_session_id = $1 AND user_id = $2 AND is_correct = true
    `, sessionID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count correct answers: %w", err)
	}

	return count, nil
}

// TotalsForUser returns the user's lifetime answer count and how many of
// those were correct. Feeds the stats read model.
func (s *AnswerStore) TotalsForUser(ctx context.Context, userID int64) (total, correct int64, err error) {
	err = s.db.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
        FROM game_answers
        WHERE user_id = $1
    `, userID).Scan(&total, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to total answers for user: %w", err)
	}

	return total, correct, nil
}
