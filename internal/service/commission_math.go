package service

import (
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"

	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	paidTolerance  = decimal.RequireFromString(constants.PaidBalanceTolerance)
	defaultPercent = decimal.NewFromInt(constants.DefaultCommissionPercent)
)

// round2 四舍五入到 2 位小数
func round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// computeCommission 计算佣金金额：round2(base * pct / 100)
func computeCommission(base, percent decimal.Decimal) decimal.Decimal {
	return round2(base.Mul(percent).Div(hundred))
}

// validatePercent 校验佣金比例范围 [0, 100]
func validatePercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return ErrCommissionPercentInvalid
	}
	return nil
}

// resolvePercent 读取订单佣金比例，为空时回落到默认比例
func resolvePercent(order *models.Order, fallback decimal.Decimal) (decimal.Decimal, error) {
	if order == nil || order.PorcentagemComissao == nil {
		return fallback, nil
	}
	pct := order.PorcentagemComissao.Decimal
	if err := validatePercent(pct); err != nil {
		return decimal.Zero, err
	}
	return pct, nil
}

// resolveBase 佣金基数取订单实收金额，负数按 0 处理
func resolveBase(order *models.Order) decimal.Decimal {
	if order == nil || order.TotalPago.IsNegative() {
		return decimal.Zero
	}
	return order.TotalPago.Decimal
}

// isFullyPaid 剩余未付金额在容差以内
func isFullyPaid(order *models.Order) bool {
	return !order.SaldoRestante.GreaterThan(paidTolerance)
}
