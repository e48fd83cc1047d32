package service

import (
	"context"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

// QuizBatchSize is how many words a game round serves to both players.
const QuizBatchSize = 5

type WordService struct {
	wordStore *store.WordStore
}

func NewWordService(wordStore *store.WordStore) *WordService {
	return &WordService{wordStore: wordStore}
}

func (s *WordService) QuizBatch(ctx context.Context) ([]*models.Word, error) {
	return s.wordStore.RandomBatch(ctx, QuizBatchSize)
}
