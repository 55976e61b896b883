package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"

	"golang.org/x/sync/errgroup"
)

// BatchCounters 同步累计计数
type BatchCounters struct {
	Criados     int `json:"criados"`
	Atualizados int `json:"atualizados"`
	Ignorados   int `json:"ignorados"`
	Erros       int `json:"erros"`
	Total       int `json:"total"`
	Processados int `json:"processados"`
}

// Result 转换为任务结果
func (c BatchCounters) Result() models.SyncJobResult {
	return models.SyncJobResult{
		Criados:     c.Criados,
		Atualizados: c.Atualizados,
		Ignorados:   c.Ignorados,
		Erros:       c.Erros,
		Total:       c.Total,
	}
}

// Percent 已处理百分比（0-100 的整数）
func (c BatchCounters) Percent() int {
	if c.Total <= 0 {
		return 100
	}
	pct := c.Processados * 100 / c.Total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (c *BatchCounters) add(outcome reconcileOutcome, err error) {
	switch {
	case err != nil:
		c.Erros++
	case outcome == outcomeCreated:
		c.Criados++
	case outcome == outcomeUpdated:
		c.Atualizados++
	default:
		c.Ignorados++
	}
}

// BatchProgress 单批处理完成后的进度
type BatchProgress struct {
	Batch    int
	Batches  int
	Counters BatchCounters
}

// BatchOptions 批处理参数
type BatchOptions struct {
	Size       int
	Concurrent bool          // 批内并发（后台任务）或顺序处理（交互式进度流）
	ItemDelay  time.Duration // 顺序模式下每条之间的间隔
	BatchDelay time.Duration // 批与批之间的间隔
}

// syncRun 单次同步的运行期状态，不跨次复用
type syncRun struct {
	candidates []models.Order
	current    map[uint]*models.CommissionEntry
	resolver   *competencyResolver
}

// BatchProcessor 按固定批次驱动对账
type BatchProcessor struct {
	reconciler *reconciler
}

// Process 依次处理各批次，onBatch 返回错误时中止
func (p *BatchProcessor) Process(ctx context.Context, run *syncRun, opts BatchOptions, onBatch func(BatchProgress) error) (BatchCounters, error) {
	counters := BatchCounters{Total: len(run.candidates)}
	size := opts.Size
	if size <= 0 {
		size = len(run.candidates)
	}
	if size <= 0 {
		return counters, nil
	}
	batches := (len(run.candidates) + size - 1) / size

	for batch := 0; batch < batches; batch++ {
		if err := ctx.Err(); err != nil {
			return counters, err
		}
		start := batch * size
		end := start + size
		if end > len(run.candidates) {
			end = len(run.candidates)
		}
		chunk := run.candidates[start:end]

		if opts.Concurrent {
			p.processConcurrent(run, chunk, size, &counters)
		} else if err := p.processSequential(ctx, run, chunk, opts.ItemDelay, &counters); err != nil {
			return counters, err
		}

		if onBatch != nil {
			if err := onBatch(BatchProgress{Batch: batch + 1, Batches: batches, Counters: counters}); err != nil {
				return counters, err
			}
		}
		if opts.BatchDelay > 0 && batch < batches-1 {
			if err := sleepContext(ctx, opts.BatchDelay); err != nil {
				return counters, err
			}
		}
	}
	return counters, nil
}

func (p *BatchProcessor) processConcurrent(run *syncRun, chunk []models.Order, limit int, counters *BatchCounters) {
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range chunk {
		order := &chunk[i]
		g.Go(func() error {
			outcome, err := p.processItem(run, order)
			mu.Lock()
			counters.add(outcome, err)
			counters.Processados++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

func (p *BatchProcessor) processSequential(ctx context.Context, run *syncRun, chunk []models.Order, delay time.Duration, counters *BatchCounters) error {
	for i := range chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := p.processItem(run, &chunk[i])
		counters.add(outcome, err)
		counters.Processados++
		if delay > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				return err
			}
		}
	}
	return nil
}

// processItem 处理单笔订单，错误与 panic 均在此处吸收
func (p *BatchProcessor) processItem(run *syncRun, order *models.Order) (outcome reconcileOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			logger.Warnw("commission_sync_item_failed", "pedido_id", order.ID, "error", err)
		}
	}()
	comp, err := run.resolver.Resolve(paymentDateOf(order))
	if err != nil {
		return "", err
	}
	outcome, _, err = p.reconciler.apply(order, run.current[order.ID], comp)
	return outcome, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
