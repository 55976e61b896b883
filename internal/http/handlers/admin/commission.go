package admin

import (
	"errors"
	"strings"

	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/repository"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GenerateCommissionRequest 单笔订单生成佣金请求
type GenerateCommissionRequest struct {
	PedidoID uint `json:"pedido_id" binding:"required"`
}

// GenerateCommission 为单笔订单生成或更新佣金
func (h *Handler) GenerateCommission(c *gin.Context) {
	var req GenerateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.CommissionSyncService.GenerateForOrder(req.PedidoID)
	if err != nil {
		if respondCommissionError(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "error.commission_generate_failed", err)
		return
	}
	response.Success(c, result)
}

// AdjustCommissionRequest 佣金调整请求
type AdjustCommissionRequest struct {
	Action                  string           `json:"action" binding:"required"`
	EntryID                 uint             `json:"entry_id"`
	PedidoID                uint             `json:"pedido_id"`
	ValorBase               *decimal.Decimal `json:"valor_base"`
	Percentual              *decimal.Decimal `json:"percentual"`
	NovoRepresentanteCodigo string           `json:"novo_representante_codigo"`
	MoverTodos              bool             `json:"mover_todos"`
}

// AdjustCommission 调整佣金基数或转移代表
func (h *Handler) AdjustCommission(c *gin.Context) {
	var req AdjustCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	usuario := getAdminUsername(c)
	result, err := h.CommissionService.Adjust(service.AdjustInput{
		Action: strings.TrimSpace(req.Action),
		UpdateBase: service.UpdateBaseInput{
			EntryID:    req.EntryID,
			ValorBase:  req.ValorBase,
			Percentual: req.Percentual,
			Usuario:    usuario,
		},
		Transfer: service.TransferInput{
			EntryID:                 req.EntryID,
			PedidoID:                req.PedidoID,
			NovoRepresentanteCodigo: strings.TrimSpace(req.NovoRepresentanteCodigo),
			MoverTodos:              req.MoverTodos,
		},
	})
	if err != nil {
		if respondCommissionError(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "error.commission_adjust_failed", err)
		return
	}
	response.Success(c, result)
}

// GetCommissions 佣金台账列表
func (h *Handler) GetCommissions(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	entries, total, err := h.CommissionService.List(repository.CommissionListFilter{
		Page:                page,
		PageSize:            pageSize,
		PedidoID:            queryUint(c, "pedido_id"),
		MesCompetencia:      strings.TrimSpace(c.Query("mes")),
		Status:              strings.TrimSpace(c.Query("status")),
		RepresentanteCodigo: strings.TrimSpace(c.Query("representante")),
		Busca:               strings.TrimSpace(c.Query("busca")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.commission_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.NewPagination(page, pageSize, total))
}

// GetSettlement 查看结算快照
func (h *Handler) GetSettlement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.CommissionService.GetSettlement(id)
	if err != nil {
		if respondCommissionError(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "error.settlement_fetch_failed", err)
		return
	}
	response.Success(c, snapshot)
}

// respondCommissionError 映射佣金领域错误，已处理返回 true
func respondCommissionError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrCommissionClosed):
		respondError(c, response.CodeConflict, "error.commission_closed", nil)
	case errors.Is(err, service.ErrCommissionNotFound):
		respondError(c, response.CodeNotFound, "error.commission_not_found", nil)
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrRepresentativeNotFound):
		respondError(c, response.CodeNotFound, "error.representative_not_found", nil)
	case errors.Is(err, service.ErrSettlementNotFound):
		respondError(c, response.CodeNotFound, "error.settlement_not_found", nil)
	case errors.Is(err, service.ErrCommissionPercentInvalid):
		respondError(c, response.CodeBadRequest, "error.commission_percent_invalid", nil)
	case errors.Is(err, service.ErrCommissionBaseInvalid):
		respondError(c, response.CodeBadRequest, "error.commission_base_invalid", nil)
	case errors.Is(err, service.ErrInvalidAction):
		respondError(c, response.CodeBadRequest, "error.commission_action_invalid", nil)
	case errors.Is(err, service.ErrRepresentativeRequired):
		respondError(c, response.CodeBadRequest, "error.representative_required", nil)
	case errors.Is(err, service.ErrTransferTargetRequired):
		respondError(c, response.CodeBadRequest, "error.transfer_target_required", nil)
	default:
		return false
	}
	return true
}
