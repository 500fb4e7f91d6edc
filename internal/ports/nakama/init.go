package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"castlebattle/internal/app"
	"castlebattle/internal/config"
	"castlebattle/internal/domain"
	"castlebattle/internal/platform/otel"
	"castlebattle/internal/storage/sqlite"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires configuration, storage, tracing and RPCs for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	envMap, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.LoadEnv(envMap)
	if err != nil {
		return fmt.Errorf("failed to load env: %w", err)
	}
	if err := config.LoadRules(cfg.RulesPath); err != nil {
		return err
	}

	if _, err := otel.Setup(ctx, otel.Config{
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		logger.Warn("Tracing disabled: %v", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	svc := app.NewService(store, domain.NewEngine(config.Rules(), nil))
	if err := NewModule(svc, cfg.Notify).Register(initializer); err != nil {
		_ = store.Close()
		return err
	}

	logger.WithFields(map[string]interface{}{
		"db_path": cfg.DBPath,
		"notify":  cfg.Notify,
	}).Info("CastleBattle Go module loaded.")
	return nil
}
