package queue

import (
	"fmt"

	"github.com/comissoes-next/internal/logger"
)

// asynqLogger 将 asynq 内部日志转到 zap
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.Debugw("asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{}) { logger.Infow("asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{}) { logger.Warnw("asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { logger.Errorw("asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { logger.Errorw("asynq_fatal", "msg", fmt.Sprint(args...)) }
