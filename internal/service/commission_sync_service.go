package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionSyncService 佣金同步服务（后台任务与交互式进度流共用）
type CommissionSyncService struct {
	cfg            config.CommissionConfig
	orderRepo      repository.OrderRepository
	commissionRepo repository.CommissionRepository
	processor      *BatchProcessor
	now            func() time.Time
}

// NewCommissionSyncService 创建佣金同步服务
func NewCommissionSyncService(cfg config.CommissionConfig, orderRepo repository.OrderRepository, commissionRepo repository.CommissionRepository) *CommissionSyncService {
	s := &CommissionSyncService{
		cfg:            cfg,
		orderRepo:      orderRepo,
		commissionRepo: commissionRepo,
		now:            time.Now,
	}
	s.processor = &BatchProcessor{reconciler: s.newReconciler()}
	return s
}

// SetClock 替换时钟
func (s *CommissionSyncService) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.now = now
	s.processor.reconciler = s.newReconciler()
}

func (s *CommissionSyncService) newReconciler() *reconciler {
	return &reconciler{
		orderRepo:      s.orderRepo,
		commissionRepo: s.commissionRepo,
		defaultPercent: s.defaultPercent(),
		now:            s.now,
	}
}

func (s *CommissionSyncService) defaultPercent() decimal.Decimal {
	if s.cfg.DefaultPercent <= 0 {
		return defaultPercent
	}
	return decimal.NewFromFloat(s.cfg.DefaultPercent).Round(2)
}

func (s *CommissionSyncService) batchSize() int {
	if s.cfg.BatchSize <= 0 {
		return constants.DefaultSyncBatchSize
	}
	return s.cfg.BatchSize
}

// prepareRun 加载已付款订单与现有佣金记录，筛选出本次待处理的订单
func (s *CommissionSyncService) prepareRun() (*syncRun, error) {
	orders, err := s.orderRepo.ListPaid()
	if err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}
	ids := make([]uint, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
	}
	entries, err := s.commissionRepo.ListByPedidoIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("list commission entries: %w", err)
	}
	current := repository.PickCurrentEntries(entries)
	return &syncRun{
		candidates: selectCandidates(orders, current),
		current:    current,
		resolver:   newCompetencyResolver(s.commissionRepo, s.now),
	}, nil
}

// RunConcurrent 后台模式：批内并发处理，逐批等待
func (s *CommissionSyncService) RunConcurrent(ctx context.Context, onBatch func(BatchProgress) error) (BatchCounters, error) {
	run, err := s.prepareRun()
	if err != nil {
		return BatchCounters{}, err
	}
	return s.processor.Process(ctx, run, BatchOptions{
		Size:       s.batchSize(),
		Concurrent: true,
	}, onBatch)
}

// StreamEvent 进度流事件
type StreamEvent struct {
	Fase        string `json:"fase"`
	Progresso   int    `json:"progresso"`
	Total       *int   `json:"total,omitempty"`
	Processados *int   `json:"processados,omitempty"`
	Criados     *int   `json:"criados,omitempty"`
	Atualizados *int   `json:"atualizados,omitempty"`
	Ignorados   *int   `json:"ignorados,omitempty"`
	Erros       *int   `json:"erros,omitempty"`
	Mensagem    string `json:"mensagem"`
}

func intPtr(v int) *int {
	return &v
}

func countersEvent(fase string, counters BatchCounters, msg string) StreamEvent {
	return StreamEvent{
		Fase:        fase,
		Progresso:   counters.Percent(),
		Total:       intPtr(counters.Total),
		Processados: intPtr(counters.Processados),
		Criados:     intPtr(counters.Criados),
		Atualizados: intPtr(counters.Atualizados),
		Ignorados:   intPtr(counters.Ignorados),
		Erros:       intPtr(counters.Erros),
		Mensagem:    msg,
	}
}

// errStreamClosed emit 失败（客户端已断开）
var errStreamClosed = errors.New("stream closed")

// Stream 交互式同步：顺序处理并逐批推送进度，emit 返回错误视为客户端断开
func (s *CommissionSyncService) Stream(ctx context.Context, emit func(StreamEvent) error) (err error) {
	runID := uuid.NewString()
	log := logger.SW("run_id", runID)
	send := func(ev StreamEvent) error {
		if ctx.Err() != nil {
			return errStreamClosed
		}
		if emitErr := emit(ev); emitErr != nil {
			return errStreamClosed
		}
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		switch {
		case err == nil:
		case errors.Is(err, errStreamClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Infow("commission_stream_client_gone", "error", err)
			err = nil
		default:
			log.Errorw("commission_stream_failed", "error", err)
			_ = send(StreamEvent{Fase: constants.StreamPhaseError, Progresso: 0, Mensagem: "Erro na sincronização: " + err.Error()})
		}
	}()

	if err := send(StreamEvent{Fase: constants.StreamPhaseStarting, Progresso: 0, Mensagem: "Iniciando sincronização de comissões..."}); err != nil {
		return err
	}

	run, err := s.prepareRun()
	if err != nil {
		return err
	}
	total := len(run.candidates)
	if err := send(StreamEvent{
		Fase:      constants.StreamPhaseStarting,
		Progresso: 0,
		Total:     intPtr(total),
		Mensagem:  fmt.Sprintf("%d pedidos para processar", total),
	}); err != nil {
		return err
	}
	if total == 0 {
		return send(StreamEvent{
			Fase:      constants.StreamPhaseConcluded,
			Progresso: 100,
			Total:     intPtr(0),
			Mensagem:  "Nenhum pedido pendente de sincronização",
		})
	}

	counters, err := s.processor.Process(ctx, run, BatchOptions{
		Size:       s.batchSize(),
		Concurrent: false,
		ItemDelay:  s.cfg.StreamItemDelay(),
		BatchDelay: s.cfg.StreamBatchDelay(),
	}, func(p BatchProgress) error {
		msg := fmt.Sprintf("Lote %d/%d processado (%d/%d pedidos)", p.Batch, p.Batches, p.Counters.Processados, p.Counters.Total)
		return send(countersEvent(constants.StreamPhaseProcessing, p.Counters, msg))
	})
	if err != nil {
		return err
	}

	log.Infow("commission_stream_completed",
		"total", counters.Total,
		"criados", counters.Criados,
		"atualizados", counters.Atualizados,
		"ignorados", counters.Ignorados,
		"erros", counters.Erros,
	)
	final := countersEvent(constants.StreamPhaseConcluded, counters, fmt.Sprintf(
		"Sincronização concluída: %d criadas, %d atualizadas, %d ignoradas, %d erros",
		counters.Criados, counters.Atualizados, counters.Ignorados, counters.Erros,
	))
	final.Progresso = 100
	return send(final)
}

// GenerateResult 单笔订单生成佣金结果
type GenerateResult struct {
	Status   string                  `json:"status"`
	Comissao *models.CommissionEntry `json:"comissao,omitempty"`
}

// GenerateForOrder 为单笔订单生成或更新佣金，不受同步时间戳限制
func (s *CommissionSyncService) GenerateForOrder(orderID uint) (*GenerateResult, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	switch {
	case order.Status != constants.OrderStatusPaid:
		return &GenerateResult{Status: constants.GenerateStatusSkipped}, nil
	case !isFullyPaid(order):
		return &GenerateResult{Status: constants.GenerateStatusSkippedPartial}, nil
	case !order.TotalPago.IsPositive():
		return &GenerateResult{Status: constants.GenerateStatusSkippedZero}, nil
	}

	existing, err := s.commissionRepo.GetCurrentByPedidoID(order.ID)
	if err != nil {
		return nil, err
	}
	resolver := newCompetencyResolver(s.commissionRepo, s.now)
	comp, err := resolver.Resolve(paymentDateOf(order))
	if err != nil {
		return nil, err
	}
	outcome, entry, err := s.newReconciler().apply(order, existing, comp)
	if err != nil {
		return nil, err
	}
	logger.Infow("commission_generated_for_order", "pedido_id", order.ID, "outcome", string(outcome))
	switch outcome {
	case outcomeCreated:
		return &GenerateResult{Status: constants.GenerateStatusCreated, Comissao: entry}, nil
	case outcomeUpdated:
		return &GenerateResult{Status: constants.GenerateStatusUpdated, Comissao: entry}, nil
	default:
		return &GenerateResult{Status: constants.GenerateStatusSkipped, Comissao: entry}, nil
	}
}
