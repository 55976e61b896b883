package admin

import (
	"strconv"

	"github.com/comissoes-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetNotifications 当前管理员收到的同步通知
func (h *Handler) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := h.NotificationService.ListForRecipient(getAdminUsername(c), limit)
	if err != nil {
		respondError(c, response.CodeInternal, "error.notification_fetch_failed", err)
		return
	}
	response.Success(c, items)
}
