package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

const gamesPerPage = 20

// UserService is the slice of the user service the API needs.
type UserService interface {
	FindByToken(ctx context.Context, token string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// GameService is the read/write surface behind the game endpoints.
type GameService interface {
	Create(ctx context.Context, player1ID, player2ID int64) (*models.GameSession, error)
	Get(ctx context.Context, id int64) (*models.GameSession, error)
	Accept(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	HasActiveGame(ctx context.Context, userID int64) (bool, error)
	Scores(ctx context.Context, session *models.GameSession) (player1, player2 int64, err error)
	IsWinner(ctx context.Context, session *models.GameSession, playerID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, page, perPage int) ([]*models.GameSession, int64, error)
	AnswerTotalsForUser(ctx context.Context, userID int64) (total, correct int64, err error)
}

// WordService feeds the quiz word batch on the active-session endpoint.
type WordService interface {
	QuizBatch(ctx context.Context) ([]*models.Word, error)
}

type Handler struct {
	users UserService
	games GameService
	words WordService
}

func NewHandler(users UserService, games GameService, words WordService) *Handler {
	return &Handler{users: users, games: games, words: words}
}

type ctxKey int

const userKey ctxKey = 0

// BearerAuth resolves the Authorization bearer token against the store and
// stashes the user on the request context.
func (h *Handler) BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}

		user, err := h.users.FindByToken(r.Context(), token)
		if err != nil {
			log.Errorf("token lookup failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
			return
		}
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// GetActiveSession returns the requested session together with a fresh quiz
// word batch for the round.
func (h *Handler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)

	session, err := h.games.Get(r.Context(), sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No active game session found"})
		return
	}

	words, err := h.words.QuizBatch(r.Context())
	if err != nil {
		log.Errorf("failed to load quiz batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	player1, player2 := h.loadPlayers(r.Context(), session)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          session.ID,
		"status":      session.Status,
		"game_status": session.GameStatus,
		"player1":     player1,
		"player2":     player2,
		"currentUser": currentUser(r),
		"created_at":  session.CreatedAt,
		"updated_at":  session.UpdatedAt,
		"words":       words,
	})
}

// CreateGame is the HTTP twin of the socket create_game action.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var body struct {
		OpponentID int64 `json:"opponent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	active, err := h.games.HasActiveGame(r.Context(), user.ID)
	if err != nil {
		log.Errorf("failed to check active game: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}
	if active {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "You already have an active game"})
		return
	}

	if _, err := h.games.Create(r.Context(), user.ID, body.OpponentID); err != nil {
		if err == store.ErrActiveSessionExists {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "You already have an active game"})
			return
		}
		log.Errorf("failed to create game: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Game created successfully"})
}

func (h *Handler) AcceptGame(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if !session.IsPlayer2(user.ID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You are not authorized to accept this game"})
		return
	}

	if err := h.games.Accept(r.Context(), session.ID); err != nil {
		log.Errorf("failed to accept game: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Game accepted and started"})
}

func (h *Handler) DeclineGame(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if !session.IsPlayer2(user.ID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You are not authorized to decline this game"})
		return
	}

	if err := h.games.Delete(r.Context(), session.ID); err != nil {
		log.Errorf("failed to decline game: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Game declined"})
}

// ResultGame derives winner flags by comparing both correct-answer counts.
// A draw leaves both flags false.
func (h *Handler) ResultGame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	player1Score, player2Score, err := h.games.Scores(r.Context(), session)
	if err != nil {
		log.Errorf("failed to compute scores: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	player1, player2 := h.loadPlayers(r.Context(), session)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":                      session.ID,
		"status":                  session.Status,
		"game_status":             session.GameStatus,
		"player1":                 withWinner(player1, player1Score > player2Score),
		"player2":                 withWinner(player2, player2Score > player1Score),
		"currentUser":             currentUser(r),
		"player1_correct_answers": player1Score,
		"player2_correct_answers": player2Score,
	})
}

// GetUserGames lists the caller's sessions, newest first, 20 per page, with
// derived scores on every row.
func (h *Handler) GetUserGames(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	sessions, total, err := h.games.ListForUser(r.Context(), user.ID, page, gamesPerPage)
	if err != nil {
		log.Errorf("failed to list games: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	data := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		player1Score, player2Score, err := h.games.Scores(r.Context(), session)
		if err != nil {
			log.Errorf("failed to compute scores for session %d: %v", session.ID, err)
			continue
		}

		player1, player2 := h.loadPlayers(r.Context(), session)
		data = append(data, map[string]interface{}{
			"game_id":       session.ID,
			"created_at":    session.CreatedAt,
			"status":        session.Status,
			"game_status":   session.GameStatus,
			"player1":       player1,
			"player2":       player2,
			"player1_score": player1Score,
			"player2_score": player2Score,
		})
	}

	lastPage := (total + gamesPerPage - 1) / gamesPerPage
	if lastPage < 1 {
		lastPage = 1
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_page": page,
		"data":         data,
		"per_page":     gamesPerPage,
		"total":        total,
		"last_page":    lastPage,
	})
}

// GetGameHistory returns every past session of the caller with scores.
func (h *Handler) GetGameHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	sessions, _, err := h.games.ListForUser(r.Context(), user.ID, 1, 1000)
	if err != nil {
		log.Errorf("failed to load game history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	history := make([]map[string]interface{}, 0, len(sessions))
	for _, session := range sessions {
		if session.Status != models.StatusCompleted {
			continue
		}

		player1Score, player2Score, err := h.games.Scores(r.Context(), session)
		if err != nil {
			log.Errorf("failed to compute scores for session %d: %v", session.ID, err)
			continue
		}

		history = append(history, map[string]interface{}{
			"session_id":    session.ID,
			"created_at":    session.CreatedAt,
			"player1_score": player1Score,
			"player2_score": player2Score,
		})
	}

	writeJSON(w, http.StatusOK, history)
}

// GetStats reports the caller's lifetime record: games played and won plus
// answer accuracy.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	total, correct, err := h.games.AnswerTotalsForUser(r.Context(), user.ID)
	if err != nil {
		log.Errorf("failed to total answers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	sessions, _, err := h.games.ListForUser(r.Context(), user.ID, 1, 1000)
	if err != nil {
		log.Errorf("failed to list games for stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return
	}

	var played, won int64
	for _, session := range sessions {
		if session.Status != models.StatusCompleted {
			continue
		}
		played++

		isWinner, err := h.games.IsWinner(r.Context(), session, user.ID)
		if err != nil {
			log.Errorf("failed to derive winner for session %d: %v", session.ID, err)
			continue
		}
		if isWinner {
			won++
		}
	}

	accuracy := decimal.Zero
	if total > 0 {
		accuracy = decimal.NewFromInt(correct).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games_played":    played,
		"games_won":       won,
		"total_answers":   total,
		"correct_answers": correct,
		"accuracy":        accuracy.StringFixed(2),
	})
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*models.GameSession, bool) {
	sessionID, _ := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)

	session, err := h.games.Get(r.Context(), sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error."})
		return nil, false
	}
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No active game session found"})
		return nil, false
	}

	return session, true
}

func (h *Handler) loadPlayers(ctx context.Context, session *models.GameSession) (*models.User, *models.User) {
	player1, err := h.users.GetByID(ctx, session.Player1ID)
	if err != nil {
		log.Errorf("failed to load player1 %d: %v", session.Player1ID, err)
	}

	var player2 *models.User
	if session.Player2ID.Valid {
		player2, err = h.users.GetByID(ctx, session.Player2ID.Int64)
		if err != nil {
			log.Errorf("failed to load player2 %d: %v", session.Player2ID.Int64, err)
		}
	}

	return player1, player2
}

func withWinner(user *models.User, isWinner bool) map[string]interface{} {
	if user == nil {
		return map[string]interface{}{"isWinner": isWinner}
	}

	return map[string]interface{}{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"avatar":    user.Avatar,
		"is_online": user.IsOnline,
		"isWinner":  isWinner,
	}
}
