package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// GormLogger 把 gorm 的 SQL 日志转到 zap：失败记 error，慢查询记 warn，其余仅 debug 模式输出
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger 创建 gorm 日志适配器，slowThreshold 为 0 时不记录慢查询
func NewGormLogger(debug bool, slowThreshold time.Duration) *GormLogger {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &GormLogger{level: level, slowThreshold: slowThreshold}
}

// LogMode 实现 gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) sugar() *zap.SugaredLogger {
	return Z().WithOptions(zap.WithCaller(false)).Sugar().With("source", utils.FileWithLineNum())
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Info {
		g.sugar().Infow("db_message", "detail", fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.sugar().Warnw("db_message", "detail", fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Error {
		g.sugar().Errorw("db_message", "detail", fmt.Sprintf(msg, data...))
	}
}

// Trace 记录单条 SQL；记录不存在不视为错误
func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.sugar().Errorw("db_query_failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.sugar().Warnw("db_query_slow", "sql", sql, "rows", rows, "elapsed", elapsed, "threshold", g.slowThreshold)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.sugar().Debugw("db_query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
