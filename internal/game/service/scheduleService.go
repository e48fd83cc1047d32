package service

import (
	"context"
	"time"

	"github.com/lexiduel/vocab-services/internal/game/models"
	"github.com/lexiduel/vocab-services/internal/game/store"
)

// WaitingGameDelay is how long an invitation stays open before the
// auto-decline job fires. The timer is never cancelled, the job re-checks
// session state when it runs.
const WaitingGameDelay = 30 * time.Second

type ScheduleService struct {
	jobStore *store.JobStore
}

func NewScheduleService(jobStore *store.JobStore) *ScheduleService {
	return &ScheduleService{jobStore: jobStore}
}

func (s *ScheduleService) ScheduleWaitingGame(ctx context.Context, sessionID int64, delay time.Duration) error {
	return s.jobStore.Schedule(ctx, models.JobWaitingGame, sessionID, time.Now().Add(delay))
}

func (s *ScheduleService) ScheduleGameOver(ctx context.Context, sessionID int64, delay time.Duration) error {
	return s.jobStore.Schedule(ctx, models.JobGameOver, sessionID, time.Now().Add(delay))
}
