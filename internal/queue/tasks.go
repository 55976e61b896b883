package queue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/comissoes-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	TaskCommissionSyncJob = constants.TaskCommissionSyncJob
	TaskNotificationEmail = constants.TaskNotificationEmail
)

// CommissionSyncJobPayload 同步任务载荷，只携带任务 ID，状态以数据库为准
type CommissionSyncJobPayload struct {
	JobID uint `json:"job_id"`
}

// NotificationEmailPayload 通知邮件载荷
type NotificationEmailPayload struct {
	NotificationID uint   `json:"notification_id"`
	To             string `json:"to"`
}

// NewCommissionSyncJobTask 构造同步任务
func NewCommissionSyncJobTask(payload CommissionSyncJobPayload) (*asynq.Task, error) {
	return newTask(TaskCommissionSyncJob, payload)
}

// NewNotificationEmailTask 构造邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	return newTask(TaskNotificationEmail, payload)
}

// ParsePayload 解析任务载荷，类型不匹配时返回错误
func ParsePayload[T any](task *asynq.Task, expected string) (T, error) {
	var payload T
	if task == nil {
		return payload, fmt.Errorf("queue: nil task")
	}
	if task.Type() != expected {
		return payload, fmt.Errorf("queue: unexpected task type %q, want %q", task.Type(), expected)
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("queue: decode %s: %w", expected, err)
	}
	return payload, nil
}

// syncJobTaskID 同一同步任务在队列中只保留一份
func syncJobTaskID(jobID uint) string {
	return TaskCommissionSyncJob + ":" + strconv.FormatUint(uint64(jobID), 10)
}

func newTask[T any](typename string, payload T) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("queue: encode %s: %w", typename, err)
	}
	return asynq.NewTask(typename, body), nil
}
