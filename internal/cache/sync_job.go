package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/comissoes-next/internal/models"
)

func syncJobKey(jobID uint) string {
	return fmt.Sprintf("commission:sync_job:%d", jobID)
}

// GetSyncJob 读取已结束的同步任务快照
func GetSyncJob(ctx context.Context, jobID uint) (*models.SyncJob, bool, error) {
	if jobID == 0 {
		return nil, false, nil
	}
	var job models.SyncJob
	hit, err := GetJSON(ctx, syncJobKey(jobID), &job)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &job, true, nil
}

// SetSyncJob 缓存同步任务，仅终态任务可缓存
func SetSyncJob(ctx context.Context, job *models.SyncJob, ttl time.Duration) error {
	if job == nil || job.ID == 0 || !job.IsTerminal() {
		return nil
	}
	return SetJSON(ctx, syncJobKey(job.ID), job, ttl)
}

// DelSyncJob 删除同步任务缓存
func DelSyncJob(ctx context.Context, jobID uint) error {
	if jobID == 0 {
		return nil
	}
	return Del(ctx, syncJobKey(jobID))
}
