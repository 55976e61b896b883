package internalapi

import (
	"errors"

	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/provider"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 内部调用接口（仅供可信的后台触发方使用）
type Handler struct {
	*provider.Container
}

// New 创建内部接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// RunSyncJobRequest 执行同步任务请求
type RunSyncJobRequest struct {
	JobID uint `json:"job_id" binding:"required"`
}

// RunCommissionSyncJob 同步执行指定任务直到终态
func (h *Handler) RunCommissionSyncJob(c *gin.Context) {
	var req RunSyncJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.SyncJobService.Run(c.Request.Context(), req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSyncJobNotFound):
			handlershared.RespondError(c, response.CodeNotFound, "error.sync_job_not_found", nil)
			return
		case errors.Is(err, service.ErrSyncJobNotRunnable):
			handlershared.RespondError(c, response.CodeConflict, "error.sync_job_not_runnable", nil)
			return
		}
		// 已落为 erro 状态，结果体携带失败原因
		handlershared.RequestLog(c).Warnw("internal_commission_sync_run_failed", "job_id", req.JobID, "error", err)
	}
	response.Success(c, result)
}
