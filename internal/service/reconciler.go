package service

import (
	"fmt"
	"time"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// reconcileOutcome 单笔订单对账结果
type reconcileOutcome string

const (
	outcomeCreated reconcileOutcome = "created"
	outcomeUpdated reconcileOutcome = "updated"
	outcomeIgnored reconcileOutcome = "ignored"
)

// reconciler 单笔订单的佣金创建或更新
type reconciler struct {
	orderRepo      repository.OrderRepository
	commissionRepo repository.CommissionRepository
	defaultPercent decimal.Decimal
	now            func() time.Time
}

// apply 对单笔订单执行对账，existing 为该订单当前佣金记录（可为空）
func (r *reconciler) apply(order *models.Order, existing *models.CommissionEntry, comp Competency) (reconcileOutcome, *models.CommissionEntry, error) {
	if existing.IsClosed() {
		if err := r.orderRepo.StampCommissionSync(order.ID, &existing.ID, r.now()); err != nil {
			return "", nil, fmt.Errorf("stamp order %d: %w", order.ID, err)
		}
		return outcomeIgnored, existing, nil
	}

	percent, err := resolvePercent(order, r.defaultPercent)
	if err != nil {
		return "", nil, err
	}
	base := resolveBase(order)
	value := computeCommission(base, percent)

	if existing == nil {
		entry := r.buildEntry(order, base, percent, value, comp)
		err := r.commissionRepo.Transaction(func(tx *gorm.DB) error {
			if err := r.commissionRepo.WithTx(tx).Create(entry); err != nil {
				return err
			}
			return r.orderRepo.WithTx(tx).StampCommissionSync(order.ID, &entry.ID, r.now())
		})
		if err != nil {
			return "", nil, fmt.Errorf("create commission for order %d: %w", order.ID, err)
		}
		return outcomeCreated, entry, nil
	}

	var (
		current *models.CommissionEntry
		updated bool
	)
	err = r.commissionRepo.Transaction(func(tx *gorm.DB) error {
		repo := r.commissionRepo.WithTx(tx)
		// 以库中最新状态为准，运行期间可能已被关闭或转移
		fresh, err := repo.GetByID(existing.ID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.IsClosed() {
			current = fresh
			return r.orderRepo.WithTx(tx).StampCommissionSync(order.ID, &existing.ID, r.now())
		}
		note := fmt.Sprintf("[%s] Sincronização: base %s -> %s, percentual %s%% -> %s%%",
			r.now().Format("2006-01-02 15:04"),
			fresh.ValorBase.String(), round2(base).StringFixed(2),
			fresh.Percentual.String(), round2(percent).StringFixed(2),
		)
		updated, err = repo.UpdateOpenAmounts(fresh.ID, repository.CommissionAmounts{
			ValorBase:       models.NewMoneyFromDecimal(base),
			Percentual:      models.NewMoneyFromDecimal(percent),
			ValorComissao:   models.NewMoneyFromDecimal(value),
			MesOrigem:       comp.OriginMonth,
			DataCompetencia: comp.Date,
			MesCompetencia:  comp.Month,
			Nota:            note,
		})
		if err != nil {
			return err
		}
		if updated {
			if current, err = repo.GetByID(fresh.ID); err != nil {
				return err
			}
		} else {
			current = fresh
		}
		return r.orderRepo.WithTx(tx).StampCommissionSync(order.ID, &existing.ID, r.now())
	})
	if err != nil {
		return "", nil, fmt.Errorf("update commission %d for order %d: %w", existing.ID, order.ID, err)
	}
	if !updated {
		if current == nil {
			current = existing
		}
		return outcomeIgnored, current, nil
	}
	return outcomeUpdated, current, nil
}

func (r *reconciler) buildEntry(order *models.Order, base, percent, value decimal.Decimal, comp Competency) *models.CommissionEntry {
	entry := &models.CommissionEntry{
		PedidoID:            order.ID,
		PedidoNumero:        order.Numero,
		ClienteNome:         order.ClienteNome,
		RepresentanteCodigo: order.RepresentanteCodigo,
		RepresentanteNome:   order.RepresentanteNome,
		Status:              constants.CommissionStatusOpen,
		ValorBase:           models.NewMoneyFromDecimal(base),
		Percentual:          models.NewMoneyFromDecimal(percent),
		ValorComissao:       models.NewMoneyFromDecimal(value),
		DataCompetencia:     comp.Date,
		MesCompetencia:      comp.Month,
		Movimentacoes:       models.CommissionMovements{},
	}
	if comp.Rolled {
		entry.Movimentacoes = append(entry.Movimentacoes, models.CommissionMovement{
			Data:       r.now().Format(time.RFC3339),
			MesOrigem:  comp.OriginMonth,
			MesDestino: comp.Month,
			Usuario:    constants.ActorSystem,
			Motivo:     "Competência de origem fechada",
		})
		entry.Observacao = fmt.Sprintf("Competência %s já fechada; lançamento movido para %s.", comp.OriginMonth, comp.Month)
	}
	return entry
}
