package jobsvc

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/comm"
	"github.com/lexiduel/vocab-services/internal/game/models"
	natscli "github.com/lexiduel/vocab-services/internal/nats"
)

// PollInterval is how often due jobs are claimed from the queue.
const PollInterval = time.Second

// SessionStore is the slice of the session store the runner needs. Both
// mutations are atomic check-and-act statements, the fire-and-check
// semantics of the delayed jobs depend on that.
type SessionStore interface {
	DeleteIfPending(ctx context.Context, id int64) (*models.GameSession, bool, error)
	CompleteIfOpen(ctx context.Context, id int64) (*models.GameSession, bool, error)
}

// JobQueue claims due jobs. Claiming removes them, a job runs at most once.
type JobQueue interface {
	ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error)
}

// Publisher pushes loopback messages toward the hub. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Runner executes persistent delayed jobs: the 30-second invitation
// auto-decline and the idempotent game completion. It runs apart from the
// hub and reaches it only over the loopback topic.
type Runner struct {
	jobs     JobQueue
	sessions SessionStore
	pub      Publisher
}

func NewRunner(jobs JobQueue, sessions SessionStore, pub Publisher) *Runner {
	return &Runner{jobs: jobs, sessions: sessions, pub: pub}
}

// Run polls until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Tick(ctx, now)
		}
	}
}

// Tick claims and executes every job due at now.
func (r *Runner) Tick(ctx context.Context, now time.Time) {
	jobs, err := r.jobs.ClaimDue(ctx, now)
	if err != nil {
		log.Errorf("failed to claim due jobs: %v", err)
		return
	}

	for _, job := range jobs {
		switch job.Kind {
		case models.JobWaitingGame:
			r.runWaitingGame(ctx, job)
		case models.JobGameOver:
			r.runGameOver(ctx, job)
		default:
			log.Warnf("unknown job kind: %s", job.Kind)
		}
	}
}

// runWaitingGame deletes the session only if it is still (pending, pending)
// at fire time. An accepted, declined or cancelled session makes this a
// no-op; the timer is never cancelled up front.
func (r *Runner) runWaitingGame(ctx context.Context, job *models.ScheduledJob) {
	session, deleted, err := r.sessions.DeleteIfPending(ctx, job.SessionID)
	if err != nil {
		log.Errorf("waiting_game job failed for session %d: %v", job.SessionID, err)
		return
	}
	if !deleted {
		return
	}

	log.Infof("session %d auto-declined after %s of no response", session.ID, time.Since(session.CreatedAt).Round(time.Second))

	r.publish(&comm.LoopbackMessage{
		Message:   "Game session deleted",
		Action:    comm.ActionAutoDeclineGame,
		SessionID: session.ID,
		Player1ID: session.Player1ID,
		Player2ID: session.Player2ID.Int64,
	})
}

// runGameOver marks the session completed, once. Re-runs and already
// completed sessions fall through silently.
func (r *Runner) runGameOver(ctx context.Context, job *models.ScheduledJob) {
	session, changed, err := r.sessions.CompleteIfOpen(ctx, job.SessionID)
	if err != nil {
		log.Errorf("game_over job failed for session %d: %v", job.SessionID, err)
		return
	}
	if !changed {
		return
	}

	log.Infof("session %d marked completed", session.ID)

	r.publish(&comm.LoopbackMessage{
		Message:   "Game over by session",
		Action:    comm.ActionGameOver,
		SessionID: session.ID,
		Player1ID: session.Player1ID,
		Player2ID: session.Player2ID.Int64,
	})
}

func (r *Runner) publish(msg *comm.LoopbackMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("failed to marshal loopback message: %v", err)
		return
	}

	if err := r.pub.Publish(natscli.TopicHubLoopback, data); err != nil {
		log.Errorf("failed to publish loopback message: %v", err)
	}
}
