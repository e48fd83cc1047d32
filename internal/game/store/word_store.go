package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexiduel/vocab-services/internal/game/models"
)

type WordStore struct {
	db *pgxpool.Pool
}

func NewWordStore(db *pgxpool.Pool) *WordStore {
	return &WordStore{db: db}
}

// RandomBatch picks limit random words that carry exactly two example
// sentences, sentences included. This is the quiz feed for an active game.
func (s *WordStore) RandomBatch(ctx context.Context, limit int) ([]*models.Word, error) {
	rows, err := s.db.Query(ctx, `
        SELECT w.id, w.word, w.language, w.difficulty_level
        FROM words w
        WHERE (SELECT COUNT(*) FROM word_sentences ws WHERE ws.word_id = w.id) = 2
        ORDER BY random()
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to pick random words: %w", err)
	}
	defer rows.Close()

	var words []*models.Word
	byID := make(map[int64]*models.Word)
	var ids []int64
	for rows.Next() {
		w := &models.Word{}
		if err := rows.Scan(&w.ID, &w.Word, &w.Language, &w.DifficultyLevel); err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		words = append(words, w)
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word rows: %w", err)
	}

	if len(ids) == 0 {
		return words, nil
	}

	sentenceRows, err := s.db.Query(ctx, `
        SELECT id, word_id, sentence
        FROM word_sentences
        WHERE word_id = ANY($1)
        ORDER BY id
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load word sentences: %w", err)
	}
	defer sentenceRows.Close()

	for sentenceRows.Next() {
		ws := &models.WordSentence{}
		if err := sentenceRows.Scan(&ws.ID, &ws.WordID, &ws.Sentence); err != nil {
			return nil, fmt.Errorf("failed to scan sentence row: %w", err)
		}
		if w, ok := byID[ws.WordID]; ok {
			w.Sentences = append(w.Sentences, ws)
		}
	}
	if err := sentenceRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sentence rows: %w", err)
	}

	return words, nil
}
