package worker

import (
	"context"
	"errors"
	"time"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/queue"

	"github.com/hibiken/asynq"
)

var errConsumerMissing = errors.New("worker: consumer is nil")

// Service 队列消费服务，附带定时对账
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
}

// NewService 队列未启用时返回 queue.ErrQueueDisabled
func NewService(cfg *config.QueueConfig, commissionCfg config.CommissionConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, queue.ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errConsumerMissing
	}
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:   asynq.NewServer(queue.RedisOpt(cfg), queue.ServerConfig(cfg)),
		mux:      mux,
		consumer: consumer,
		interval: commissionCfg.ScheduleInterval(),
	}, nil
}

func (s *Service) Name() string { return "worker" }

// Start 启动消费者并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_started", "schedule_interval", s.interval.String())
	sweepStaleJobs(s.consumer)
	if s.interval > 0 && s.consumer.SyncJobService != nil {
		go s.reconcileLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待处理中的任务结束
func (s *Service) Stop(context.Context) error {
	s.server.Shutdown()
	logger.Infow("worker_stopped")
	return nil
}

// reconcileLoop 首轮等待一个间隔
func (s *Service) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scheduleReconcile(s.consumer)
		}
	}
}

// sweepStaleJobs 启动时回收上个进程遗留的处理中任务
func sweepStaleJobs(consumer *Consumer) {
	if consumer == nil || consumer.SyncJobService == nil {
		return
	}
	if _, err := consumer.SyncJobService.SweepStale(); err != nil {
		logger.Warnw("worker_stale_job_sweep_failed", "error", err)
	}
}

func scheduleReconcile(consumer *Consumer) {
	if consumer == nil || consumer.SyncJobService == nil {
		return
	}
	job, created, err := consumer.SyncJobService.CreateScheduled()
	switch {
	case err != nil:
		logger.Warnw("worker_scheduled_reconcile_failed", "error", err)
	case !created:
		logger.Debugw("worker_scheduled_reconcile_skip_active_job")
	default:
		logger.Infow("worker_scheduled_reconcile_created", "job_id", job.ID)
	}
}
