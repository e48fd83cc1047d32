package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

type mockUsers struct {
	byToken map[string]*models.User
	byID    map[int64]*models.User
}

func (m *mockUsers) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return m.byToken[token], nil
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.byID[id], nil
}

type mockGames struct {
	sessions   map[int64]*models.GameSession
	scores     map[int64][2]int64
	hasActive  bool
	created    []int64
	accepted   []int64
	deleted    []int64
	createErr  error
	total      int64
	correct    int64
	listResult []*models.GameSession
}

func (m *mockGames) Create(ctx context.Context, player1ID, player2ID int64) (*models.GameSession, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, player2ID)
	return &models.GameSession{ID: 1, Player1ID: player1ID}, nil
}

func (m *mockGames) Get(ctx context.Context, id int64) (*models.GameSession, error) {
	return m.sessions[id], nil
}

func (m *mockGames) Accept(ctx context.Context, id int64) error {
	m.accepted = append(m.accepted, id)
	return nil
}

func (m *mockGames) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockGames) HasActiveGame(ctx context.Context, userID int64) (bool, error) {
	return m.hasActive, nil
}

func (m *mockGames) Scores(ctx context.Context, session *models.GameSession) (int64, int64, error) {
	pair := m.scores[session.ID]
	return pair[0], pair[1], nil
}

func (m *mockGames) IsWinner(ctx context.Context, session *models.GameSession, playerID int64) (bool, error) {
	pair := m.scores[session.ID]
	if playerID == session.Player1ID {
		return pair[0] > pair[1], nil
	}
	return pair[1] > pair[0], nil
}

func (m *mockGames) ListForUser(ctx context.Context, userID int64, page, perPage int) ([]*models.GameSession, int64, error) {
	return m.listResult, int64(len(m.listResult)), nil
}

func (m *mockGames) AnswerTotalsForUser(ctx context.Context, userID int64) (int64, int64, error) {
	return m.total, m.correct, nil
}

type mockWords struct {
	batch []*models.Word
}

func (m *mockWords) QuizBatch(ctx context.Context) ([]*models.Word, error) {
	return m.batch, nil
}

func session(id, player1, player2 int64, status, gameStatus string) *models.GameSession {
	return &models.GameSession{
		ID:         id,
		Player1ID:  player1,
		Player2ID:  sql.NullInt64{Int64: player2, Valid: true},
		Status:     status,
		GameStatus: gameStatus,
		CreatedAt:  time.Now(),
	}
}

type apiFixture struct {
	games  *mockGames
	router *chi.Mux
}

func newAPIFixture() *apiFixture {
	users := &mockUsers{
		byToken: map[string]*models.User{
			"1|alice-token": {ID: 1, Name: "alice"},
			"2|bob-token":   {ID: 2, Name: "bob"},
		},
		byID: map[int64]*models.User{
			1: {ID: 1, Name: "alice"},
			2: {ID: 2, Name: "bob"},
		},
	}
	games := &mockGames{
		sessions: map[int64]*models.GameSession{},
		scores:   map[int64][2]int64{},
	}
	h := NewHandler(users, games, &mockWords{
		batch: []*models.Word{{ID: 10, Word: "ephemeral"}},
	})

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.BearerAuth)
			r.Post("/game", h.CreateGame)
			r.Post("/game/{sessionID}/accept", h.AcceptGame)
			r.Post("/game/{sessionID}/decline", h.DeclineGame)
			r.Get("/game/{sessionID}", h.ResultGame)
			r.Get("/games", h.GetUserGames)
			r.Get("/games/active", h.GetActiveSession)
			r.Get("/games/history", h.GetGameHistory)
			r.Get("/games/stats", h.GetStats)
		})
	})

	return &apiFixture{games: games, router: r}
}

func (f *apiFixture) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBearerAuthMissingToken(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodGet, "/v1/games", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated.", decodeBody(t, rec)["message"])
}

func TestBearerAuthUnknownToken(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodGet, "/v1/games", "1|stolen", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGame(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodPost, "/v1/game", "1|alice-token", `{"opponent_id": 2}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Game created successfully", decodeBody(t, rec)["message"])
	assert.Equal(t, []int64{2}, f.games.created)
}

func TestCreateGameAlreadyActive(t *testing.T) {
	f := newAPIFixture()
	f.games.hasActive = true

	rec := f.request(t, http.MethodPost, "/v1/game", "1|alice-token", `{"opponent_id": 2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You already have an active game", decodeBody(t, rec)["error"])
	assert.Empty(t, f.games.created)
}

// The pre-check can race a socket create; the store guard surfaces as the
// same client-facing error.
func TestCreateGameGuardRace(t *testing.T) {
	f := newAPIFixture()
	f.games.createErr = store.ErrActiveSessionExists

	rec := f.request(t, http.MethodPost, "/v1/game", "1|alice-token", `{"opponent_id": 2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You already have an active game", decodeBody(t, rec)["error"])
}

func TestAcceptGame(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusPending, models.GameStatusPending)

	rec := f.request(t, http.MethodPost, "/v1/game/5/accept", "2|bob-token", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Game accepted and started", decodeBody(t, rec)["message"])
	assert.Equal(t, []int64{5}, f.games.accepted)
}

func TestAcceptGameNotInvited(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusPending, models.GameStatusPending)

	rec := f.request(t, http.MethodPost, "/v1/game/5/accept", "1|alice-token", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.games.accepted)
}

func TestAcceptGameMissingSession(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodPost, "/v1/game/99/accept", "2|bob-token", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active game session found", decodeBody(t, rec)["message"])
}

func TestDeclineGame(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusPending, models.GameStatusPending)

	rec := f.request(t, http.MethodPost, "/v1/game/5/decline", "2|bob-token", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{5}, f.games.deleted)
}

func TestResultGameWinnerFlags(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusCompleted, models.GameStatusCompleted)
	f.games.scores[5] = [2]int64{3, 4}

	rec := f.request(t, http.MethodGet, "/v1/game/5", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	player1 := body["player1"].(map[string]interface{})
	player2 := body["player2"].(map[string]interface{})
	assert.Equal(t, false, player1["isWinner"])
	assert.Equal(t, true, player2["isWinner"])
	assert.Equal(t, float64(3), body["player1_correct_answers"])
	assert.Equal(t, float64(4), body["player2_correct_answers"])
}

func TestResultGameDraw(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusCompleted, models.GameStatusCompleted)
	f.games.scores[5] = [2]int64{2, 2}

	rec := f.request(t, http.MethodGet, "/v1/game/5", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["player1"].(map[string]interface{})["isWinner"])
	assert.Equal(t, false, body["player2"].(map[string]interface{})["isWinner"])
}

func TestGetActiveSession(t *testing.T) {
	f := newAPIFixture()
	f.games.sessions[5] = session(5, 1, 2, models.StatusActive, models.GameStatusAccepted)

	rec := f.request(t, http.MethodGet, "/v1/games/active?session_id=5", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(5), body["id"])
	words := body["words"].([]interface{})
	require.Len(t, words, 1)
}

func TestGetActiveSessionNotFound(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodGet, "/v1/games/active?session_id=99", "1|alice-token", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active game session found", decodeBody(t, rec)["message"])
}

func TestGetUserGamesPagination(t *testing.T) {
	f := newAPIFixture()
	f.games.listResult = []*models.GameSession{
		session(5, 1, 2, models.StatusCompleted, models.GameStatusCompleted),
		session(4, 1, 2, models.StatusCompleted, models.GameStatusCompleted),
	}
	f.games.scores[5] = [2]int64{3, 4}

	rec := f.request(t, http.MethodGet, "/v1/games", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["current_page"])
	assert.Equal(t, float64(20), body["per_page"])
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["last_page"])

	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, float64(5), first["game_id"])
	assert.Equal(t, float64(3), first["player1_score"])
	assert.Equal(t, float64(4), first["player2_score"])
}

func TestGetGameHistorySkipsUnfinished(t *testing.T) {
	f := newAPIFixture()
	f.games.listResult = []*models.GameSession{
		session(5, 1, 2, models.StatusCompleted, models.GameStatusCompleted),
		session(6, 1, 2, models.StatusActive, models.GameStatusAccepted),
	}

	rec := f.request(t, http.MethodGet, "/v1/games/history", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, float64(5), history[0]["session_id"])
}

func TestGetStats(t *testing.T) {
	f := newAPIFixture()
	f.games.total = 8
	f.games.correct = 6
	f.games.listResult = []*models.GameSession{
		session(5, 1, 2, models.StatusCompleted, models.GameStatusCompleted),
		session(6, 1, 2, models.StatusCompleted, models.GameStatusCompleted),
		session(7, 1, 2, models.StatusActive, models.GameStatusAccepted),
	}
	f.games.scores[5] = [2]int64{4, 2} // won
	f.games.scores[6] = [2]int64{1, 3} // lost

	rec := f.request(t, http.MethodGet, "/v1/games/stats", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["games_played"])
	assert.Equal(t, float64(1), body["games_won"])
	assert.Equal(t, float64(8), body["total_answers"])
	assert.Equal(t, float64(6), body["correct_answers"])
	assert.Equal(t, "75.00", body["accuracy"])
}

func TestGetStatsNoAnswers(t *testing.T) {
	f := newAPIFixture()

	rec := f.request(t, http.MethodGet, "/v1/games/stats", "1|alice-token", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0.00", decodeBody(t, rec)["accuracy"])
}
