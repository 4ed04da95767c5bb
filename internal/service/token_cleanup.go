package service

import (
	"context"
	"time"

	"barylstyle/contacts-api/internal/repository"

	"go.uber.org/zap"
)

// TokenCleanup periodically clears session tokens that have expired. An
// expired token is already rejected by the auth middleware, this only
// keeps stale credentials from lingering in the database.
func TokenCleanup(ctx context.Context, t time.Duration, users repository.UserRepository) {
	ticker := time.NewTicker(t)
	defer ticker.Stop()

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := users.ClearExpiredTokens(ctx, now)
			if err != nil {
				zap.L().Error("Failed to clear expired tokens", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Cleared expired tokens", zap.Int64("count", n))
			}
		}
	}
}
