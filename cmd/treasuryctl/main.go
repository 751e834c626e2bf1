// Command treasuryctl runs maintenance jobs against the treasury database.
package main

import (
	"fmt"
	"os"

	"github.com/erp/treasury/internal/infrastructure/config"
	"github.com/erp/treasury/internal/infrastructure/logger"
	"github.com/erp/treasury/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	cmd := newRootCmd(openFromConfig)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openFromConfig connects with the same configuration the server uses
func openFromConfig(logLevel string) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logger.New(logger.ForEnvironment(cfg.App.Env, logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	}))
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))))
	if err != nil {
		return nil, err
	}
	log.Debug("database connected", zap.String("driver", db.Driver))
	if db.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}

	rt := newRuntime(db.DB, cfg.Treasury.ImplicitCreditNotes, log)
	rt.closers = append(rt.closers, db.Close, func() error { _ = log.Sync(); return nil })
	return rt, nil
}
