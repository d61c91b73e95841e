package auth

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sebuszqo/ExpenseTracker/internal/logger"
	"go.uber.org/zap"
)

const DefaultSessionSweepSchedule = "@every 1h"

// SessionSweeper forgets refresh tokens that are older than their own lifetime,
// so a user who never logs out does not keep a stored session forever.
type SessionSweeper struct {
	tokens TokenStore
	maxAge time.Duration
	now    func() time.Time
}

func NewSessionSweeper(tokens TokenStore, maxAge time.Duration) *SessionSweeper {
	return &SessionSweeper{
		tokens: tokens,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Sweep clears every refresh token issued more than maxAge ago and reports how many it cleared.
func (s *SessionSweeper) Sweep(ctx context.Context) (int64, error) {
	return s.tokens.ClearRefreshTokensIssuedBefore(ctx, s.now().Add(-s.maxAge))
}

// Start runs Sweep on the cron schedule until the returned scheduler is stopped.
func (s *SessionSweeper) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cleared, err := s.Sweep(ctx)
		if err != nil {
			logger.Get().Error("Error clearing expired sessions", zap.Error(err))
			return
		}
		if cleared > 0 {
			logger.Get().Info("Expired sessions cleared", zap.Int64("count", cleared))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
