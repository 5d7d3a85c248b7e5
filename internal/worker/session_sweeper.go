package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
)

// StartSessionSweeper periodically purges expired sessions from stores that do not expire keys
// themselves. It returns immediately when the store needs no sweeping. The loop stops with ctx.
func StartSessionSweeper(ctx context.Context, store auth.SessionStore, interval time.Duration, logger *zap.Logger) {
	sweeper, ok := store.(auth.Sweeper)
	if !ok || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := sweeper.Sweep(ctx); removed > 0 {
					logger.Debug("expired sessions swept", zap.Int("removed", removed))
				}
			}
		}
	}()
}
