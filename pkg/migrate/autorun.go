package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gobacks-backend/pkg/config"
	"github.com/angelmondragon/gobacks-backend/pkg/db"
	"github.com/angelmondragon/gobacks-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// MaybeRun applies the embedded migrations at startup when the feature flag is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running Goose migrations (auto-run)")

	goose.SetLogger(gooseLogger{ctx: ctx, logg: logg})
	defer goose.SetLogger(goose.NopLogger())

	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	version, err := Version(ctx, sqlDB, client.Dialect())
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "version", version), "Goose migrations completed")
	return nil
}

// gooseLogger routes goose progress output through the service logger.
type gooseLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logg.Debug(g.ctx, fmt.Sprintf(format, v...))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logg.Error(g.ctx, "goose fatal", fmt.Errorf(format, v...))
}
