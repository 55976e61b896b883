package app

import (
	"fmt"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
)

// OpenDatabase 初始化全局连接并迁移表结构；debug 时记录全部 SQL
func OpenDatabase(cfg config.DatabaseConfig, debug bool) error {
	err := models.InitDB(models.DBOptions{
		Driver: cfg.Driver,
		DSN:    cfg.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
		},
		Logger: logger.NewGormLogger(debug, cfg.SlowQueryThreshold()),
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
