package admin

import (
	"strings"

	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetOrders 订单列表（含佣金同步标记，只读）
func (h *Handler) GetOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	orders, total, err := h.OrderRepo.List(repository.OrderListFilter{
		Page:                page,
		PageSize:            pageSize,
		Status:              strings.TrimSpace(c.Query("status")),
		RepresentanteCodigo: strings.TrimSpace(c.Query("representante")),
		Busca:               strings.TrimSpace(c.Query("busca")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
