package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LockoutSweeper drops stale lockout state
type LockoutSweeper interface {
	Cleanup() (attemptsRemoved, blocksRemoved int)
}

// ExpiredTokenPurger deletes revocation rows whose token has expired anyway
type ExpiredTokenPurger interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CleanupManager periodically sweeps the in-memory lockout maps and removes
// expired revoked tokens from the database
type CleanupManager struct {
	lockout    LockoutSweeper
	revokeRepo ExpiredTokenPurger
	logger     *slog.Logger
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	lockout LockoutSweeper,
	revokeRepo ExpiredTokenPurger,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		lockout:    lockout,
		revokeRepo: revokeRepo,
		logger:     logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start runs a cleanup immediately and then once per interval until Stop
// is called or ctx is cancelled
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			cm.RunOnce(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce performs a single cleanup pass
func (cm *CleanupManager) RunOnce(ctx context.Context) {
	attempts, blocks := cm.lockout.Cleanup()
	if attempts > 0 || blocks > 0 {
		cm.logger.Info("lockout state cleanup completed",
			slog.Int("attempts_removed", attempts),
			slog.Int("blocks_removed", blocks))
	}

	if cm.revokeRepo == nil {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.revokeRepo.CleanupExpiredTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired tokens", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired token cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopCh)
	})
}
