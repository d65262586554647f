// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/app/store/oauthstate"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// CourseHub applies any COURSEHUB_TIMEOUT_* overrides and sweeps OAuth
// states left over from flows abandoned while the app was down. The
// TTL index handles steady-state cleanup; the sweep just avoids waiting
// for the TTL monitor after a restart.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("applied timeout overrides from environment", zap.Int("count", n))
	}

	sweepCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	removed, err := oauthstate.New(deps.MongoDatabase).CleanupExpired(sweepCtx)
	if err != nil {
		// Not fatal: the TTL index will get there eventually.
		logger.Warn("oauth state sweep failed", zap.Error(err))
		return nil
	}
	if removed > 0 {
		logger.Info("swept expired oauth states", zap.Int64("removed", removed))
	}
	return nil
}
