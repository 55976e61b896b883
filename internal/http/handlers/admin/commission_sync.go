package admin

import (
	"errors"
	"strings"

	handlershared "github.com/comissoes-next/internal/http/handlers/shared"
	"github.com/comissoes-next/internal/http/response"
	"github.com/comissoes-next/internal/repository"
	"github.com/comissoes-next/internal/service"

	"github.com/gin-gonic/gin"
)

// streamEventName SSE 事件名
const streamEventName = "progress"

// CreateCommissionSyncJob 创建后台佣金同步任务
func (h *Handler) CreateCommissionSyncJob(c *gin.Context) {
	job, err := h.SyncJobService.Create(getAdminUsername(c))
	if err != nil {
		respondError(c, response.CodeInternal, "error.sync_job_create_failed", err)
		return
	}
	response.Success(c, job)
}

// GetCommissionSyncJob 查询同步任务状态
func (h *Handler) GetCommissionSyncJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.SyncJobService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSyncJobNotFound) {
			respondError(c, response.CodeNotFound, "error.sync_job_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.sync_job_fetch_failed", err)
		return
	}
	response.Success(c, job)
}

// GetCommissionSyncJobs 同步任务列表
func (h *Handler) GetCommissionSyncJobs(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	jobs, total, err := h.SyncJobService.List(repository.SyncJobListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.sync_job_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, jobs, response.NewPagination(page, pageSize, total))
}

// StreamCommissionSync 交互式同步，通过 SSE 推送进度
func (h *Handler) StreamCommissionSync(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(200)

	ctx := c.Request.Context()
	emit := func(ev service.StreamEvent) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.SSEvent(streamEventName, ev)
		if c.IsAborted() {
			return errors.New("sse write failed")
		}
		c.Writer.Flush()
		return nil
	}

	if err := h.CommissionSyncService.Stream(ctx, emit); err != nil {
		handlershared.RequestLog(c).Errorw("commission_stream_handler_failed", "error", err)
	}
}
