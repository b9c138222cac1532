package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartCleaner purges expired tokens and hard-deleted habits on an interval.
func StartCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM tokens WHERE expires_at < now()
                `)
				if err != nil {
					log.Error("failed to clean expired tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired tokens", zap.Int64("removed", rows))
				}

				cutoff := time.Now().Add(-retention)
				res, err = db.ExecContext(ctx, `
                    DELETE FROM habits
                     WHERE deleted = true
                       AND created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean deleted habits", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned deleted habits", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
