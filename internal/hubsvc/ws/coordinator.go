package ws

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/comm"
	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/service"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

// GameOverDelay is the grace period between both players finishing and the
// completion job marking the session done.
const GameOverDelay = 5 * time.Second

// Advisory error strings sent back to the offending connection only.
const (
	errAlreadyActive   = "You already have an active game"
	errOpponentActive  = "Opponent already has an active game"
	errAcceptAuth      = "You are not authorized to accept this game"
	errDeclineAuth     = "You are not authorized to decline this game"
	errCompleteAuth    = "You are not authorized to end this game"
	errSessionNotFound = "No active game session found"
	errNotSignedIn     = "Authentication required"
)

// SessionService is the slice of the game service the coordinator uses.
type SessionService interface {
	Create(ctx context.Context, player1ID, player2ID int64) (*models.GameSession, error)
	Get(ctx context.Context, id int64) (*models.GameSession, error)
	Accept(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ActiveForUser(ctx context.Context, userID int64) (*models.GameSession, error)
	HasActiveGame(ctx context.Context, userID int64) (bool, error)
	SetPlayerFinished(ctx context.Context, id int64, player int) error
	RecordAnswer(ctx context.Context, a *models.GameAnswer) error
	Scores(ctx context.Context, session *models.GameSession) (player1, player2 int64, err error)
}

// Scheduler enqueues persistent delayed jobs.
type Scheduler interface {
	ScheduleWaitingGame(ctx context.Context, sessionID int64, delay time.Duration) error
	ScheduleGameOver(ctx context.Context, sessionID int64, delay time.Duration) error
}

// notifier is the delivery surface the coordinator needs. *Registry
// satisfies it.
type notifier interface {
	Send(socketId string, v interface{})
	NotifyUser(userID int64, v interface{})
	Broadcast(v interface{})
}

// Coordinator owns the lifecycle of two-player game sessions: invitations,
// accept/decline, scoring relay, completion and disconnect cleanup.
type Coordinator struct {
	sessions  SessionService
	users     UserDirectory
	scheduler Scheduler
	notify    notifier
}

func NewCoordinator(sessions SessionService, users UserDirectory, scheduler Scheduler, notify notifier) *Coordinator {
	return &Coordinator{
		sessions:  sessions,
		users:     users,
		scheduler: scheduler,
		notify:    notify,
	}
}

func (c *Coordinator) sendError(socketId, msg string) {
	c.notify.Send(socketId, comm.ErrorMessage{Error: msg})
}

// CreateGame opens an invitation against opponentID. The friendly
// precondition checks run first, the store-level guard inside Create is the
// authoritative one and catches racing creates.
func (c *Coordinator) CreateGame(ctx context.Context, socketId string, userID, opponentID int64) {
	active, err := c.sessions.HasActiveGame(ctx, userID)
	if err != nil {
		log.Errorf("failed to check active game for user %d: %v", userID, err)
		return
	}
	if active {
		c.sendError(socketId, errAlreadyActive)
		return
	}

	opponent, err := c.users.GetByID(ctx, opponentID)
	if err != nil {
		log.Errorf("failed to load opponent %d: %v", opponentID, err)
		return
	}
	if opponent != nil {
		active, err := c.sessions.HasActiveGame(ctx, opponentID)
		if err != nil {
			log.Errorf("failed to check active game for opponent %d: %v", opponentID, err)
			return
		}
		if active {
			c.sendError(socketId, errOpponentActive)
			return
		}
	}

	session, err := c.sessions.Create(ctx, userID, opponentID)
	if err != nil {
		if errors.Is(err, store.ErrActiveSessionExists) {
			c.sendError(socketId, errAlreadyActive)
			return
		}
		log.Errorf("failed to create game session: %v", err)
		return
	}

	log.Infof("Game created by user %d with opponent %d", userID, opponentID)

	requester, err := c.users.GetByID(ctx, userID)
	if err != nil {
		log.Errorf("failed to load requester %d: %v", userID, err)
	}

	c.notify.NotifyUser(opponentID, comm.GameInvite{
		Type:      comm.TypeGameInvite,
		SessionID: session.ID,
		FromUser:  requester,
	})
	c.notify.NotifyUser(userID, comm.GameWaiting{
		Type:      comm.TypeGameWaiting,
		SessionID: session.ID,
		Waiting:   opponent,
	})

	if err := c.scheduler.ScheduleWaitingGame(ctx, session.ID, service.WaitingGameDelay); err != nil {
		log.Errorf("failed to schedule auto-decline for session %d: %v", session.ID, err)
	}
}

// AcceptGame transitions (pending,pending) -> (active,accepted). Only the
// invited player may accept.
func (c *Coordinator) AcceptGame(ctx context.Context, socketId string, userID, sessionID int64) {
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		return
	}
	if session == nil {
		c.sendError(socketId, errSessionNotFound)
		return
	}

	if !session.IsPlayer2(userID) {
		c.sendError(socketId, errAcceptAuth)
		return
	}

	if err := c.sessions.Accept(ctx, session.ID); err != nil {
		log.Errorf("failed to accept session %d: %v", session.ID, err)
		return
	}

	log.Infof("Game accepted by user %d", userID)

	accepted := comm.GameEvent{Type: comm.TypeGameAccepted, SessionID: session.ID}
	c.notify.NotifyUser(session.Player1ID, accepted)
	c.notify.Send(socketId, accepted)
}

// DeclineGame deletes the invitation. A session that already vanished is a
// silent no-op, the auto-decline job may have beaten us to it.
func (c *Coordinator) DeclineGame(ctx context.Context, socketId string, userID, sessionID int64) {
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		return
	}
	if session == nil {
		return
	}

	if !session.IsPlayer2(userID) {
		c.sendError(socketId, errDeclineAuth)
		return
	}

	if err := c.sessions.Delete(ctx, session.ID); err != nil {
		log.Errorf("failed to delete session %d: %v", session.ID, err)
		return
	}

	log.Infof("Game declined by user %d", userID)

	c.notify.NotifyUser(session.Player1ID, comm.GameEvent{
		Type:      comm.TypeGameDeclined,
		SessionID: session.ID,
	})
}

// CancelGame is a caller-initiated withdrawal. With no session id the
// caller's own pending/active session is resolved.
func (c *Coordinator) CancelGame(ctx context.Context, socketId string, userID, sessionID int64) {
	var session *models.GameSession
	var err error
	if sessionID == 0 {
		session, err = c.sessions.ActiveForUser(ctx, userID)
	} else {
		session, err = c.sessions.Get(ctx, sessionID)
	}
	if err != nil {
		log.Errorf("failed to resolve session for cancel: %v", err)
		return
	}
	if session == nil {
		return
	}

	if err := c.sessions.Delete(ctx, session.ID); err != nil {
		log.Errorf("failed to delete session %d: %v", session.ID, err)
		return
	}

	log.Infof("Game cancelled by user %d", userID)

	cancelled := comm.GameCancelled{Type: comm.TypeGameCancelled, SessionID: session.ID}
	c.notify.NotifyUser(session.Player1ID, cancelled)
	if session.Player2ID.Valid {
		c.notify.NotifyUser(session.Player2ID.Int64, cancelled)
	}
}

// SubmitAnswer records one quiz answer and relays both running scores to
// both players. The finished flags may be raised in either order; the
// result reads isFinished=true only once both are set.
func (c *Coordinator) SubmitAnswer(ctx context.Context, socketId string, userID, sessionID, wordID, sentenceID int64, isCorrect, isLast bool) {
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		return
	}
	if session == nil {
		c.sendError(socketId, errSessionNotFound)
		return
	}

	answer := &models.GameAnswer{
		GameSessionID:  session.ID,
		UserID:         userID,
		WordID:         wordID,
		WordSentenceID: sentenceID,
		IsCorrect:      isCorrect,
	}
	if err := c.sessions.RecordAnswer(ctx, answer); err != nil {
		log.Errorf("failed to record answer for session %d: %v", session.ID, err)
		return
	}

	if isLast {
		if userID == session.Player1ID {
			if err := c.sessions.SetPlayerFinished(ctx, session.ID, 1); err != nil {
				log.Errorf("failed to mark player1 finished: %v", err)
			} else {
				session.IsPlayer1Finished = true
				log.Infof("User1 %d has finished the game session %d", userID, session.ID)
			}
		}
		if session.IsPlayer2(userID) {
			if err := c.sessions.SetPlayerFinished(ctx, session.ID, 2); err != nil {
				log.Errorf("failed to mark player2 finished: %v", err)
			} else {
				session.IsPlayer2Finished = true
				log.Infof("User2 %d has finished the game session %d", userID, session.ID)
			}
		}
	}

	player1Score, player2Score, err := c.sessions.Scores(ctx, session)
	if err != nil {
		log.Errorf("failed to compute scores for session %d: %v", session.ID, err)
		return
	}

	isFinished := session.IsPlayer1Finished && session.IsPlayer2Finished
	result := comm.AnswerResult{
		Type:       comm.TypeAnswerResult,
		SessionID:  session.ID,
		User1Score: player1Score,
		User2Score: player2Score,
		IsFinished: isFinished,
	}

	c.notify.NotifyUser(session.Player1ID, result)
	if session.Player2ID.Valid {
		c.notify.NotifyUser(session.Player2ID.Int64, result)
	}

	if isLast && isFinished {
		if err := c.scheduler.ScheduleGameOver(ctx, session.ID, GameOverDelay); err != nil {
			log.Errorf("failed to schedule completion for session %d: %v", session.ID, err)
		}
	}
}

// CompleteGame transitions to (completed,completed). Either participant
// may end the game.
func (c *Coordinator) CompleteGame(ctx context.Context, socketId string, userID, sessionID int64) {
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Errorf("failed to load session %d: %v", sessionID, err)
		return
	}
	if session == nil {
		c.sendError(socketId, errSessionNotFound)
		return
	}

	if !session.IsParticipant(userID) {
		c.sendError(socketId, errCompleteAuth)
		return
	}

	if err := c.sessions.Complete(ctx, session.ID); err != nil {
		log.Errorf("failed to complete session %d: %v", session.ID, err)
		return
	}

	log.Infof("Game completed by user %d", userID)

	completed := comm.GameEvent{Type: comm.TypeGameCompleted, SessionID: session.ID}
	c.notify.NotifyUser(session.Player1ID, completed)
	if session.Player2ID.Valid {
		c.notify.NotifyUser(session.Player2ID.Int64, completed)
	}
}

// AutoDeclined relays the job runner's auto-decline to the inviter. The
// session itself is already gone, the job deleted it before looping back.
func (c *Coordinator) AutoDeclined(sessionID, player1ID int64) {
	log.Info("Game auto declined by supervisor")

	c.notify.NotifyUser(player1ID, comm.GameEvent{
		Type:      comm.TypeGameAutoDeclined,
		SessionID: sessionID,
	})
}

// GameOver relays the completion job to both players.
func (c *Coordinator) GameOver(sessionID, player1ID, player2ID int64) {
	completed := comm.GameEvent{Type: comm.TypeGameCompleted, SessionID: sessionID}
	c.notify.NotifyUser(player1ID, completed)
	if player2ID != 0 {
		c.notify.NotifyUser(player2ID, completed)
	}
}

// DisconnectCleanup deletes the user's live session when their connection
// closes mid-game. Both players hear game_cancelled.
func (c *Coordinator) DisconnectCleanup(ctx context.Context, userID int64) {
	session, err := c.sessions.ActiveForUser(ctx, userID)
	if err != nil {
		log.Errorf("failed to resolve active session for user %d: %v", userID, err)
		return
	}
	if session == nil {
		return
	}

	if err := c.sessions.Delete(ctx, session.ID); err != nil {
		log.Errorf("failed to delete session %d: %v", session.ID, err)
		return
	}

	log.Infof("Game session %d has been deleted due to user %d disconnection.", session.ID, userID)

	c.notify.NotifyUser(session.Player1ID, comm.GameCancelled{
		Type:      comm.TypeGameCancelled,
		SessionID: session.ID,
		When:      "onClose",
		Player1:   session.Player1ID,
	})
	if session.Player2ID.Valid {
		c.notify.NotifyUser(session.Player2ID.Int64, comm.GameCancelled{
			Type:      comm.TypeGameCancelled,
			SessionID: session.ID,
			When:      "onClose",
		})
	}
}
