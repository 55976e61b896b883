package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comissoes-next/internal/cache"
	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/queue"
	"github.com/comissoes-next/internal/repository"
)

const staleJobMessage = "interrompido"

// SyncJobRunResult 后台同步执行结果
type SyncJobRunResult struct {
	Success   bool                  `json:"success"`
	Resultado *models.SyncJobResult `json:"resultado,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// SyncJobService 后台佣金同步任务（排队 -> 处理中 -> 完成/失败）
type SyncJobService struct {
	cfg         config.CommissionConfig
	jobRepo     repository.SyncJobRepository
	syncService *CommissionSyncService
	notifier    *NotificationService
	queueClient *queue.Client
	now         func() time.Time
	runInline   func(jobID uint)
	cacheJobTTL time.Duration
}

// NewSyncJobService 创建同步任务服务
func NewSyncJobService(cfg config.CommissionConfig, jobRepo repository.SyncJobRepository, syncService *CommissionSyncService, notifier *NotificationService, queueClient *queue.Client) *SyncJobService {
	ttl := time.Duration(cfg.JobCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	s := &SyncJobService{
		cfg:         cfg,
		jobRepo:     jobRepo,
		syncService: syncService,
		notifier:    notifier,
		queueClient: queueClient,
		now:         time.Now,
		cacheJobTTL: ttl,
	}
	s.runInline = func(jobID uint) {
		go func() {
			if _, err := s.Run(context.Background(), jobID); err != nil {
				logger.Warnw("commission_sync_job_inline_failed", "job_id", jobID, "error", err)
			}
		}()
	}
	return s
}

// Create 创建任务并投递到队列，队列不可用时在后台协程内执行
func (s *SyncJobService) Create(solicitante string) (*models.SyncJob, error) {
	job := &models.SyncJob{
		Status:      constants.SyncJobStatusQueued,
		Solicitante: strings.TrimSpace(solicitante),
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}

	err := s.queueClient.EnqueueCommissionSyncJob(queue.CommissionSyncJobPayload{JobID: job.ID})
	switch {
	case err == nil:
		logger.Infow("commission_sync_job_enqueued", "job_id", job.ID)
	case errors.Is(err, queue.ErrQueueDisabled):
		s.runInline(job.ID)
	default:
		logger.Warnw("commission_sync_job_enqueue_failed", "job_id", job.ID, "error", err)
		s.runInline(job.ID)
	}
	return job, nil
}

// SweepStale 将超时的处理中任务标记为中断，避免阻塞后续对账
func (s *SyncJobService) SweepStale() (int64, error) {
	now := s.now()
	swept, err := s.jobRepo.FailStaleProcessing(now.Add(-s.cfg.JobStaleAfter()), now, staleJobMessage)
	if err != nil {
		return 0, fmt.Errorf("sweep stale sync jobs: %w", err)
	}
	if swept > 0 {
		logger.Warnw("commission_sync_job_stale_swept", "count", swept, "stale_after", s.cfg.JobStaleAfter().String())
	}
	return swept, nil
}

// CreateScheduled 定时对账入口，先清理中断任务，已有排队或处理中的任务时跳过
func (s *SyncJobService) CreateScheduled() (*models.SyncJob, bool, error) {
	if _, err := s.SweepStale(); err != nil {
		return nil, false, err
	}
	for _, status := range []string{constants.SyncJobStatusQueued, constants.SyncJobStatusProcessing} {
		_, total, err := s.jobRepo.List(repository.SyncJobListFilter{Page: 1, PageSize: 1, Status: status})
		if err != nil {
			return nil, false, err
		}
		if total > 0 {
			return nil, false, nil
		}
	}
	job, err := s.Create(constants.ActorSystem)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

// Get 获取任务，终态任务走缓存
func (s *SyncJobService) Get(ctx context.Context, id uint) (*models.SyncJob, error) {
	if cached, hit, err := cache.GetSyncJob(ctx, id); err == nil && hit && cached != nil {
		return cached, nil
	}
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrSyncJobNotFound
	}
	if job.IsTerminal() {
		_ = cache.SetSyncJob(ctx, job, s.cacheJobTTL)
	}
	return job, nil
}

// List 分页查询任务
func (s *SyncJobService) List(filter repository.SyncJobListFilter) ([]models.SyncJob, int64, error) {
	return s.jobRepo.List(filter)
}

// Run 执行同步任务。开始处理状态写入失败时直接返回；之后的任何失败都会落为 erro 状态
func (s *SyncJobService) Run(ctx context.Context, jobID uint) (SyncJobRunResult, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return SyncJobRunResult{Success: false, Error: err.Error()}, err
	}
	if job == nil {
		return SyncJobRunResult{Success: false, Error: ErrSyncJobNotFound.Error()}, ErrSyncJobNotFound
	}
	if job.IsTerminal() || job.Status == constants.SyncJobStatusProcessing {
		return SyncJobRunResult{Success: false, Error: ErrSyncJobNotRunnable.Error()}, ErrSyncJobNotRunnable
	}

	if err := s.jobRepo.MarkProcessing(job.ID, s.now()); err != nil {
		return SyncJobRunResult{Success: false, Error: err.Error()}, fmt.Errorf("mark sync job %d processing: %w", job.ID, err)
	}
	logger.Infow("commission_sync_job_started", "job_id", job.ID)

	final, err := s.execute(ctx, job)
	if err != nil {
		return SyncJobRunResult{Success: false, Error: err.Error()}, err
	}
	// 任务已落为 concluido，通知失败不影响状态
	s.notifySuccess(job, final)
	return SyncJobRunResult{Success: true, Resultado: &final}, nil
}

// execute 处理中阶段，错误与 panic 都会标记任务失败
func (s *SyncJobService) execute(ctx context.Context, job *models.SyncJob) (final models.SyncJobResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			s.fail(job, err)
		}
	}()

	// 进入处理中后不再响应取消
	runCtx := context.WithoutCancel(ctx)
	counters, err := s.syncService.RunConcurrent(runCtx, func(p BatchProgress) error {
		return s.jobRepo.UpdateProgress(job.ID, p.Counters.Result())
	})
	if err != nil {
		return models.SyncJobResult{}, err
	}

	final = counters.Result()
	if err := s.jobRepo.MarkConcluded(job.ID, s.now(), final); err != nil {
		return models.SyncJobResult{}, fmt.Errorf("mark sync job %d concluded: %w", job.ID, err)
	}
	logger.Infow("commission_sync_job_concluded",
		"job_id", job.ID,
		"criados", final.Criados,
		"atualizados", final.Atualizados,
		"ignorados", final.Ignorados,
		"erros", final.Erros,
		"total", final.Total,
	)
	return final, nil
}

func (s *SyncJobService) fail(job *models.SyncJob, cause error) {
	logger.Errorw("commission_sync_job_failed", "job_id", job.ID, "error", cause)
	if err := s.jobRepo.MarkError(job.ID, s.now(), cause.Error()); err != nil {
		logger.Errorw("commission_sync_job_mark_error_failed", "job_id", job.ID, "error", err)
	}
	_ = cache.DelSyncJob(context.Background(), job.ID)
	s.notify(job, NotificationInput{
		Titulo:     "Sincronização de comissões falhou",
		Mensagem:   fmt.Sprintf("A sincronização #%d terminou com erro: %s", job.ID, cause.Error()),
		Prioridade: constants.NotificationPriorityHigh,
		Dados:      models.JSON{"job_id": job.ID, "erro": cause.Error()},
	})
}

func (s *SyncJobService) notifySuccess(job *models.SyncJob, result models.SyncJobResult) {
	priority := constants.NotificationPriorityNormal
	if result.Erros > 0 {
		priority = constants.NotificationPriorityHigh
	}
	s.notify(job, NotificationInput{
		Titulo: "Sincronização de comissões concluída",
		Mensagem: fmt.Sprintf(
			"Sincronização #%d concluída: %d criadas, %d atualizadas, %d ignoradas, %d erros (total %d).",
			job.ID, result.Criados, result.Atualizados, result.Ignorados, result.Erros, result.Total,
		),
		Prioridade: priority,
		Dados: models.JSON{
			"job_id":      job.ID,
			"criados":     result.Criados,
			"atualizados": result.Atualizados,
			"ignorados":   result.Ignorados,
			"erros":       result.Erros,
			"total":       result.Total,
		},
	})
}

// notify 通知发送失败只记录日志
func (s *SyncJobService) notify(job *models.SyncJob, input NotificationInput) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("commission_sync_job_notify_panic", "job_id", job.ID, "panic", r)
		}
	}()
	input.Destinatario = job.Solicitante
	if strings.TrimSpace(input.Destinatario) == "" {
		input.Destinatario = s.cfg.DefaultNotifyRecipient
	}
	if strings.TrimSpace(input.Destinatario) == "" {
		input.Destinatario = constants.ActorSystem
	}
	input.Tipo = constants.NotificationTypeCommissionSync
	if _, err := s.notifier.Notify(input); err != nil {
		logger.Warnw("commission_sync_job_notify_failed", "job_id", job.ID, "error", err)
	}
}
