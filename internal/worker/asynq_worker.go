package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/provider"
	"github.com/comissoes-next/internal/queue"
	"github.com/comissoes-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommissionSyncJob, c.handleCommissionSyncJob)
	mux.HandleFunc(queue.TaskNotificationEmail, c.handleNotificationEmail)
}

// handleCommissionSyncJob 执行同步任务。任务失败已落库为 erro，不交给 asynq 重试
func (c *Consumer) handleCommissionSyncJob(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.SyncJobService == nil {
		logger.Debugw("worker_commission_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePayload[queue.CommissionSyncJobPayload](task, queue.TaskCommissionSyncJob)
	if err != nil {
		logger.Warnw("worker_commission_sync_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.JobID == 0 {
		logger.Debugw("worker_commission_sync_skip_invalid_payload", "job_id", payload.JobID)
		return nil
	}

	result, err := c.SyncJobService.Run(ctx, payload.JobID)
	switch {
	case err == nil:
		logger.Infow("worker_commission_sync_done", "job_id", payload.JobID, "success", result.Success)
		return nil
	case errors.Is(err, service.ErrSyncJobNotFound), errors.Is(err, service.ErrSyncJobNotRunnable):
		logger.Debugw("worker_commission_sync_skip", "job_id", payload.JobID, "reason", err.Error())
		return nil
	default:
		logger.Warnw("worker_commission_sync_failed", "job_id", payload.JobID, "error", err)
		return nil
	}
}

func (c *Consumer) handleNotificationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.NotificationService == nil {
		logger.Debugw("worker_notification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePayload[queue.NotificationEmailPayload](task, queue.TaskNotificationEmail)
	if err != nil {
		logger.Warnw("worker_notification_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.NotificationID == 0 {
		logger.Debugw("worker_notification_email_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}

	err = c.NotificationService.SendEmail(payload.NotificationID, payload.To)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailRecipientRejected):
		// 重试也不会成功
		logger.Warnw("worker_notification_email_dropped", "notification_id", payload.NotificationID, "error", err)
		return nil
	default:
		logger.Warnw("worker_notification_email_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
}
