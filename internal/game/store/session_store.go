package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexiduel/vocab-services/internal/game/models"
)

// ErrActiveSessionExists is returned when a create would give either player
// a second pending/active session. The check runs inside the insert itself,
// two racing creates cannot both pass it.
var ErrActiveSessionExists = errors.New("player already has an active game session")

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `id, player1_id, player2_id, status, game_status,
        is_player1_finished, is_player2_finished, created_at, updated_at`

func scanSession(row pgx.Row) (*models.GameSession, error) {
	s := &models.GameSession{}
	err := row.Scan(
		&s.ID,
		&s.Player1ID,
		&s.Player2ID,
		&s.Status,
		&s.GameStatus,
		&s.IsPlayer1Finished,
		&s.IsPlayer2Finished,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a (pending, pending) session, guarded against either player
// already being in a live one. The guard and the insert are a single
// statement so concurrent creates from two devices cannot both succeed.
func (s *SessionStore) Create(ctx context.Context, player1ID, player2ID int64) (*models.GameSession, error) {
	query := `
        INSERT INTO game_sessions
            (player1_id, player2_id, status, game_status, is_player1_finished, is_player2_finished, created_at, updated_at)
        SELECT $1, $2, 'pending', 'pending', false, false, now(), now()
        WHERE NOT EXISTS (
            SELECT 1 FROM game_sessions
            WHERE status IN ('pending', 'active')
              AND (player1_id IN ($1, $2) OR player2_id IN ($1, $2))
        )
        RETURNING ` + sessionColumns

	session, err := scanSession(s.db.QueryRow(ctx, query, player1ID, player2ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActiveSessionExists
		}
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	return session, nil
}

func (s *SessionStore) GetByID(ctx context.Context, id int64) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`

	session, err := scanSession(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // session not found
		}
		return nil, fmt.Errorf("failed to get game session by ID: %w", err)
	}

	return session, nil
}

// ActiveForUser returns the user's single pending/active session, nil if none.
func (s *SessionStore) ActiveForUser(ctx context.Context, userID int64) (*models.GameSession, error) {
	query := `
        SELECT ` + sessionColumns + `
        FROM game_sessions
        WHERE status IN ('pending', 'active')
          AND (player1_id = $1 OR player2_id = $1)
        LIMIT 1`

	session, err := scanSession(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session for user: %w", err)
	}

	return session, nil
}

func (s *SessionStore) HasActive(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM game_sessions
            WHERE status IN ('pending', 'active')
              AND (player1_id = $1 OR player2_id = $1)
        )
    `, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active session: %w", err)
	}

	return exists, nil
}

func (s *SessionStore) Accept(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `
        UPDATE game_sessions
        SET status = 'active', game_status = 'accepted', updated_at = now()
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("failed to accept game session: %w", err)
	}

	return nil
}

func (s *SessionStore) Complete(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `
        UPDATE game_sessions
        SET status = 'completed', game_status = 'completed', updated_at = now()
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("failed to complete game session: %w", err)
	}

	return nil
}

// CompleteIfOpen marks the session completed and reports whether this call
// was the one that did it. Already-completed sessions are left untouched.
func (s *SessionStore) CompleteIfOpen(ctx context.Context, id int64) (*models.GameSession, bool, error) {
	query := `
        UPDATE game_sessions
        SET status = 'completed', game_status = 'completed', updated_at = now()
        WHERE id = $1
          AND (status <> 'completed' OR game_status <> 'completed')
        RETURNING ` + sessionColumns

	session, err := scanSession(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to complete game session: %w", err)
	}

	return session, true, nil
}

// SetPlayerFinished raises the finished flag for player slot 1 or 2.
func (s *SessionStore) SetPlayerFinished(ctx context.Context, id int64, player int) error {
	var query string
	switch player {
	case 1:
		query = `UPDATE game_sessions SET is_player1_finished = true, updated_at = now() WHERE id = $1`
	case 2:
		query = `UPDATE game_sessions SET is_player2_finished = true, updated_at = now() WHERE id = $1`
	default:
		return fmt.Errorf("invalid player slot: %d", player)
	}

	if _, err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to set player finished: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM game_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game session: %w", err)
	}

	return nil
}

// DeleteIfPending removes the session only when it never left
// (pending, pending). Used by the auto-decline job, so the fire-and-check
// is a single atomic statement.
func (s *SessionStore) DeleteIfPending(ctx context.Context, id int64) (*models.GameSession, bool, error) {
	query := `
        DELETE FROM game_sessions
        WHERE id = $1 AND status = 'pending' AND game_status = 'pending'
        RETURNING ` + sessionColumns

	session, err := scanSession(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to delete pending session: %w", err)
	}

	return session, true, nil
}

// ListForUser returns one page of the user's sessions, newest first, and
// the total row count for pagination.
func (s *SessionStore) ListForUser(ctx context.Context, userID int64, page, perPage int) ([]*models.GameSession, int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM game_sessions
        WHERE player1_id = $1 OR player2_id = $1
    `, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions for user: %w", err)
	}

	offset := (page - 1) * perPage
	rows, err := s.db.Query(ctx, `
        SELECT `+sessionColumns+`
        FROM game_sessions
        WHERE player1_id = $1 OR player2_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions for user: %w", err)
	}
	defer rows.Close()

	var sessions []*models.GameSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read session rows: %w", err)
	}

	return sessions, total, nil
}
