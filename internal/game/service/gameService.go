package service

import (
	"context"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

// GameService owns the game-session lifecycle and the score queries derived
// from recorded answers.
type GameService struct {
	sessionStore *store.SessionStore
	answerStore  *store.AnswerStore
}

func NewGameService(sessionStore *store.SessionStore, answerStore *store.AnswerStore) *GameService {
	return &GameService{sessionStore: sessionStore, answerStore: answerStore}
}

// Create opens a (pending, pending) session. store.ErrActiveSessionExists
// comes back when either player is already in a live session.
func (s *GameService) Create(ctx context.Context, player1ID, player2ID int64) (*models.GameSession, error) {
	return s.sessionStore.Create(ctx, player1ID, player2ID)
}

func (s *GameService) Get(ctx context.Context, id int64) (*models.GameSession, error) {
	return s.sessionStore.GetByID(ctx, id)
}

func (s *GameService) Accept(ctx context.Context, id int64) error {
	return s.sessionStore.Accept(ctx, id)
}

func (s *GameService) Complete(ctx context.Context, id int64) error {
	return s.sessionStore.Complete(ctx, id)
}

func (s *GameService) Delete(ctx context.Context, id int64) error {
	return s.sessionStore.Delete(ctx, id)
}

func (s *GameService) ActiveForUser(ctx context.Context, userID int64) (*models.GameSession, error) {
	return s.sessionStore.ActiveForUser(ctx, userID)
}

func (s *GameService) HasActiveGame(ctx context.Context, userID int64) (bool, error) {
	return s.sessionStore.HasActive(ctx, userID)
}

func (s *GameService) SetPlayerFinished(ctx context.Context, id int64, player int) error {
	return s.sessionStore.SetPlayerFinished(ctx, id, player)
}

func (s *GameService) RecordAnswer(ctx context.Context, a *models.GameAnswer) error {
	return s.answerStore.Create(ctx, a)
}

func (s *GameService) ListForUser(ctx context.Context, userID int64, page, perPage int) ([]*models.GameSession, int64, error) {
	return s.sessionStore.ListForUser(ctx, userID, page, perPage)
}

func (s *GameService) AnswerTotalsForUser(ctx context.Context, userID int64) (total, correct int64, err error) {
	return s.answerStore.TotalsForUser(ctx, userID)
}

// Scores recomputes both players' correct-answer counts for one session.
// A vacant player2 slot scores zero.
func (s *GameService) Scores(ctx context.Context, session *models.GameSession) (player1, player2 int64, err error) {
	player1, err = s.answerStore.CorrectCount(ctx, session.ID, session.Player1ID)
	if err != nil {
		return 0, 0, err
	}

	if session.Player2ID.Valid {
		player2, err = s.answerStore.CorrectCount(ctx, session.ID, session.Player2ID.Int64)
		if err != nil {
			return 0, 0, err
		}
	}

	return player1, player2, nil
}

// IsWinner reports whether the given participant strictly out-scored the
// other. A draw makes neither player the winner.
func (s *GameService) IsWinner(ctx context.Context, session *models.GameSession, playerID int64) (bool, error) {
	player1, player2, err := s.Scores(ctx, session)
	if err != nil {
		return false, err
	}

	if playerID == session.Player1ID {
		return player1 > player2, nil
	}

	return player2 > player1, nil
}
