package service

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// TransferInput 转移代表参数
type TransferInput struct {
	EntryID                 uint
	PedidoID                uint
	NovoRepresentanteCodigo string
	MoverTodos              bool
}

// TransferResult 转移结果
type TransferResult struct {
	RepresentanteCodigo  string `json:"representante_codigo"`
	RepresentanteNome    string `json:"representante_nome"`
	PedidosMovidos       []uint `json:"pedidos_movidos"`
	ComissoesAtualizadas int    `json:"comissoes_atualizadas"`
	FechamentosAjustados []uint `json:"fechamentos_ajustados"`
	Falhas               int    `json:"falhas"`
}

// ReassignmentService 订单转移代表的级联处理
type ReassignmentService struct {
	orderRepo          repository.OrderRepository
	commissionRepo     repository.CommissionRepository
	customerRepo       repository.CustomerRepository
	representativeRepo repository.RepresentativeRepository
	settlementRepo     repository.SettlementRepository
}

// NewReassignmentService 创建转移服务
func NewReassignmentService(
	orderRepo repository.OrderRepository,
	commissionRepo repository.CommissionRepository,
	customerRepo repository.CustomerRepository,
	representativeRepo repository.RepresentativeRepository,
	settlementRepo repository.SettlementRepository,
) *ReassignmentService {
	return &ReassignmentService{
		orderRepo:          orderRepo,
		commissionRepo:     commissionRepo,
		customerRepo:       customerRepo,
		representativeRepo: representativeRepo,
		settlementRepo:     settlementRepo,
	}
}

// Transfer 按顺序执行：校验代表与订单 -> 转移订单 -> 同步客户 -> 转移未关闭佣金 -> 清理草稿结算快照。
// 校验之后的各步骤尽力执行，单条失败不回滚已完成的写入
func (s *ReassignmentService) Transfer(input TransferInput) (*TransferResult, error) {
	code := strings.TrimSpace(input.NovoRepresentanteCodigo)
	if code == "" {
		return nil, ErrRepresentativeRequired
	}
	if input.EntryID == 0 && input.PedidoID == 0 {
		return nil, ErrTransferTargetRequired
	}

	rep, err := s.representativeRepo.GetByCodigo(code)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrRepresentativeNotFound
	}
	primary, err := s.resolvePrimaryOrder(input)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{*primary}
	if input.MoverTodos {
		sameCustomer, err := s.orderRepo.ListMovableByCustomer(primary.ClienteNome)
		if err != nil {
			return nil, err
		}
		orders = mergeOrders(*primary, sameCustomer)
	}
	ids := make([]uint, 0, len(orders))
	moved := make(map[uint]struct{}, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		moved[orders[i].ID] = struct{}{}
	}

	result := &TransferResult{
		RepresentanteCodigo:  rep.Codigo,
		RepresentanteNome:    rep.Nome,
		PedidosMovidos:       ids,
		FechamentosAjustados: []uint{},
	}
	var failures atomic.Int64
	log := logger.SW("representante_codigo", rep.Codigo, "pedido_id", primary.ID)

	// 订单
	fanOut(ids, func(id uint) {
		if err := s.orderRepo.Reassign(id, rep.Codigo, rep.Nome); err != nil {
			failures.Add(1)
			log.Warnw("reassign_order_failed", "order_id", id, "error", err)
		}
	})

	// 客户
	if customer, err := s.customerRepo.GetByNome(primary.ClienteNome); err != nil {
		failures.Add(1)
		log.Warnw("reassign_customer_lookup_failed", "cliente_nome", primary.ClienteNome, "error", err)
	} else if customer != nil {
		if err := s.customerRepo.UpdateRepresentative(customer.ID, rep.Codigo, rep.Nome); err != nil {
			failures.Add(1)
			log.Warnw("reassign_customer_failed", "customer_id", customer.ID, "error", err)
		}
	}

	// 未关闭佣金
	entries, err := s.commissionRepo.ListOpenByPedidoIDs(ids)
	if err != nil {
		failures.Add(1)
		log.Warnw("reassign_list_entries_failed", "error", err)
	}
	entryIDs := make([]uint, 0, len(entries))
	for i := range entries {
		entryIDs = append(entryIDs, entries[i].ID)
	}
	var updatedEntries atomic.Int64
	fanOut(entryIDs, func(id uint) {
		if err := s.commissionRepo.Reassign(id, rep.Codigo, rep.Nome); err != nil {
			failures.Add(1)
			log.Warnw("reassign_entry_failed", "entry_id", id, "error", err)
			return
		}
		updatedEntries.Add(1)
	})
	result.ComissoesAtualizadas = int(updatedEntries.Load())

	// 草稿结算快照
	snapshots, err := s.settlementRepo.ListByStatuses([]string{constants.SettlementStatusDraft, constants.SettlementStatusOpen})
	if err != nil {
		failures.Add(1)
		log.Warnw("reassign_list_snapshots_failed", "error", err)
	}
	var mu sync.Mutex
	var g errgroup.Group
	for i := range snapshots {
		snapshot := &snapshots[i]
		if !scrubSnapshot(snapshot, moved) {
			continue
		}
		g.Go(func() error {
			if err := s.settlementRepo.UpdateTotals(snapshot); err != nil {
				failures.Add(1)
				log.Warnw("reassign_snapshot_scrub_failed", "fechamento_id", snapshot.ID, "error", err)
				return nil
			}
			mu.Lock()
			result.FechamentosAjustados = append(result.FechamentosAjustados, snapshot.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.Falhas = int(failures.Load())
	log.Infow("commission_reassignment_completed",
		"pedidos", len(ids),
		"comissoes", result.ComissoesAtualizadas,
		"fechamentos", len(result.FechamentosAjustados),
		"falhas", result.Falhas,
	)
	return result, nil
}

func (s *ReassignmentService) resolvePrimaryOrder(input TransferInput) (*models.Order, error) {
	pedidoID := input.PedidoID
	if pedidoID == 0 {
		entry, err := s.commissionRepo.GetByID(input.EntryID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, ErrCommissionNotFound
		}
		pedidoID = entry.PedidoID
	}
	order, err := s.orderRepo.GetByID(pedidoID)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", pedidoID, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// mergeOrders 主订单在前，去重
func mergeOrders(primary models.Order, others []models.Order) []models.Order {
	merged := make([]models.Order, 0, len(others)+1)
	merged = append(merged, primary)
	for i := range others {
		if others[i].ID == primary.ID {
			continue
		}
		merged = append(merged, others[i])
	}
	return merged
}

// fanOut 并发执行同一步骤内的写入，全部发出并完成后返回
func fanOut(ids []uint, fn func(id uint)) {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			fn(id)
			return nil
		})
	}
	_ = g.Wait()
}

// scrubSnapshot 移除已转移订单的明细并重算汇总，扣款字段保持不变。返回是否有改动
func scrubSnapshot(snapshot *models.SettlementSnapshot, moved map[uint]struct{}) bool {
	kept := make(models.SettlementLines, 0, len(snapshot.PedidosDetalhes))
	for _, line := range snapshot.PedidosDetalhes {
		if _, ok := moved[line.PedidoID]; ok {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == len(snapshot.PedidosDetalhes) {
		return false
	}

	totalVendas := decimal.Zero
	bruto := decimal.Zero
	for _, line := range kept {
		totalVendas = totalVendas.Add(line.ValorPedido.Decimal)
		bruto = bruto.Add(line.ValorComissao.Decimal)
	}
	liquido := bruto.Sub(snapshot.ValesAdiantamentos.Decimal).Sub(snapshot.OutrosDescontos.Decimal)

	snapshot.PedidosDetalhes = kept
	snapshot.TotalVendas = models.NewMoneyFromDecimal(totalVendas)
	snapshot.TotalComissoesBruto = models.NewMoneyFromDecimal(bruto)
	snapshot.ValorLiquido = models.NewMoneyFromDecimal(liquido)
	return true
}
