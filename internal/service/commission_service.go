package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/shopspring/decimal"
)

// UpdateBaseInput 手工调整佣金基数/比例
type UpdateBaseInput struct {
	EntryID    uint
	ValorBase  *decimal.Decimal
	Percentual *decimal.Decimal
	Usuario    string
}

// AdjustInput 佣金调整请求
type AdjustInput struct {
	Action     string
	UpdateBase UpdateBaseInput
	Transfer   TransferInput
}

// AdjustResult 佣金调整结果
type AdjustResult struct {
	Action        string                  `json:"action"`
	Comissao      *models.CommissionEntry `json:"comissao,omitempty"`
	Transferencia *TransferResult         `json:"transferencia,omitempty"`
}

// CommissionService 佣金台账服务
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	settlementRepo repository.SettlementRepository
	reassignment   *ReassignmentService
	now            func() time.Time
}

// NewCommissionService 创建佣金台账服务
func NewCommissionService(commissionRepo repository.CommissionRepository, settlementRepo repository.SettlementRepository, reassignment *ReassignmentService) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		settlementRepo: settlementRepo,
		reassignment:   reassignment,
		now:            time.Now,
	}
}

// Adjust 按动作分发：atualizar_base 重算佣金，transferir 执行代表转移
func (s *CommissionService) Adjust(input AdjustInput) (*AdjustResult, error) {
	switch strings.TrimSpace(input.Action) {
	case constants.CommissionActionUpdateBase:
		entry, err := s.UpdateBase(input.UpdateBase)
		if err != nil {
			return nil, err
		}
		return &AdjustResult{Action: constants.CommissionActionUpdateBase, Comissao: entry}, nil
	case constants.CommissionActionTransfer:
		if s.reassignment == nil {
			return nil, ErrInvalidAction
		}
		result, err := s.reassignment.Transfer(input.Transfer)
		if err != nil {
			return nil, err
		}
		return &AdjustResult{Action: constants.CommissionActionTransfer, Transferencia: result}, nil
	default:
		return nil, ErrInvalidAction
	}
}

// UpdateBase 调整基数或比例并重算佣金，已关闭记录拒绝修改
func (s *CommissionService) UpdateBase(input UpdateBaseInput) (*models.CommissionEntry, error) {
	if input.ValorBase != nil && input.ValorBase.IsNegative() {
		return nil, ErrCommissionBaseInvalid
	}
	if input.Percentual != nil {
		if err := validatePercent(*input.Percentual); err != nil {
			return nil, err
		}
	}

	entry, err := s.commissionRepo.GetByID(input.EntryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrCommissionNotFound
	}
	if entry.IsClosed() {
		return nil, ErrCommissionClosed
	}

	base := entry.ValorBase.Decimal
	if input.ValorBase != nil {
		base = round2(*input.ValorBase)
	}
	percent := entry.Percentual.Decimal
	if input.Percentual != nil {
		percent = round2(*input.Percentual)
	}
	user := strings.TrimSpace(input.Usuario)
	if user == "" {
		user = constants.ActorSystem
	}
	note := fmt.Sprintf("[%s] Ajuste manual por %s: base %s -> %s, percentual %s%% -> %s%%",
		s.now().Format("2006-01-02 15:04"), user,
		entry.ValorBase.String(), base.StringFixed(2),
		entry.Percentual.String(), percent.StringFixed(2),
	)

	updated, err := s.commissionRepo.UpdateOpenAmounts(entry.ID, repository.CommissionAmounts{
		ValorBase:     models.NewMoneyFromDecimal(base),
		Percentual:    models.NewMoneyFromDecimal(percent),
		ValorComissao: models.NewMoneyFromDecimal(computeCommission(base, percent)),
		Nota:          note,
	})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrCommissionClosed
	}
	entry, err = s.commissionRepo.GetByID(entry.ID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrCommissionNotFound
	}
	return entry, nil
}

// List 分页查询佣金记录
func (s *CommissionService) List(filter repository.CommissionListFilter) ([]models.CommissionEntry, int64, error) {
	return s.commissionRepo.List(filter)
}

// GetSettlement 获取结算快照
func (s *CommissionService) GetSettlement(id uint) (*models.SettlementSnapshot, error) {
	snapshot, err := s.settlementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrSettlementNotFound
	}
	return snapshot, nil
}
