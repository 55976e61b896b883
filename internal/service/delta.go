package service

import (
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
)

// isSyncCandidate 判断订单是否需要进入本次佣金同步
func isSyncCandidate(order *models.Order, current *models.CommissionEntry) bool {
	if order == nil || order.Status != constants.OrderStatusPaid {
		return false
	}
	if current.IsClosed() {
		return false
	}
	if !isFullyPaid(order) {
		return false
	}
	if !order.TotalPago.IsPositive() {
		return false
	}
	if order.ComissaoLastSync == nil {
		return true
	}
	// 时间相等不重复处理
	return order.UpdatedAt.After(*order.ComissaoLastSync)
}

// selectCandidates 按原顺序筛选待同步订单
func selectCandidates(orders []models.Order, current map[uint]*models.CommissionEntry) []models.Order {
	candidates := make([]models.Order, 0, len(orders))
	for i := range orders {
		if isSyncCandidate(&orders[i], current[orders[i].ID]) {
			candidates = append(candidates, orders[i])
		}
	}
	return candidates
}
