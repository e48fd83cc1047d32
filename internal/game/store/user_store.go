package store

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexiduel/vocab-services/internal/game/models"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, email, avatar, is_online, created_at, updated_at
        FROM users
        WHERE id = $1
    `, id)

	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Avatar,
		&u.IsOnline,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return u, nil
}

// FindByToken resolves an opaque bearer token of the form "<id>|<plain>"
// against the personal_access_tokens table. The stored value is the hex
// sha256 of the plain part. Unknown or malformed tokens resolve to nil
// without an error, the caller decides whether that is worth reporting.
func (s *UserStore) FindByToken(ctx context.Context, token string) (*models.User, error) {
	tokenID, plain, ok := SplitToken(token)
	if !ok {
		return nil, nil
	}

	var userID int64
	var storedHash string
	err := s.db.QueryRow(ctx, `
        SELECT tokenable_id, token
        FROM personal_access_tokens
        WHERE id = $1
    `, tokenID).Scan(&userID, &storedHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up access token: %w", err)
	}

	if !TokenMatches(plain, storedHash) {
		return nil, nil
	}

	return s.GetByID(ctx, userID)
}

func (s *UserStore) SetOnline(ctx context.Context, id int64, online bool) error {
	_, err := s.db.Exec(ctx, `
        UPDATE users
        SET is_online = $2, updated_at = now()
        WHERE id = $1
    `, id, online)
	if err != nil {
		return fmt.Errorf("failed to update online status: %w", err)
	}

	return nil
}

// SplitToken splits "<id>|<plain>" into its parts.
func SplitToken(token string) (int64, string, bool) {
	idPart, plain, found := strings.Cut(token, "|")
	if !found || plain == "" {
		return 0, "", false
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", false
	}

	return id, plain, true
}

// TokenMatches compares the plain token part against the stored sha256 hex.
func TokenMatches(plain, storedHash string) bool {
	sum := sha256.Sum256([]byte(plain))
	hashed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(storedHash)) == 1
}
