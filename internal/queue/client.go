package queue

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"

	"github.com/hibiken/asynq"
)

// ErrQueueDisabled 队列未启用，调用方应同步执行
var ErrQueueDisabled = errors.New("queue disabled")

const (
	defaultConcurrency = 10
	emailMaxRetry      = 3
)

// Client 包装 asynq 客户端，未启用时所有投递返回 ErrQueueDisabled
type Client struct {
	client *asynq.Client
}

// NewClient 按配置创建客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueCommissionSyncJob 投递同步任务。
// 同步任务不可重试，重复投递同一任务视为成功。
func (c *Client) EnqueueCommissionSyncJob(payload CommissionSyncJobPayload, opts ...asynq.Option) error {
	task, err := NewCommissionSyncJobTask(payload)
	if err != nil {
		return err
	}
	base := []asynq.Option{
		asynq.Queue(constants.QueueCritical),
		asynq.MaxRetry(0),
		asynq.TaskID(syncJobTaskID(payload.JobID)),
	}
	err = c.enqueue(task, append(base, opts...))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Debugw("queue_sync_job_already_enqueued", "job_id", payload.JobID)
		return nil
	}
	return err
}

// EnqueueNotificationEmail 投递通知邮件
func (c *Client) EnqueueNotificationEmail(payload NotificationEmailPayload, opts ...asynq.Option) error {
	task, err := NewNotificationEmailTask(payload)
	if err != nil {
		return err
	}
	base := []asynq.Option{asynq.Queue(constants.QueueDefault), asynq.MaxRetry(emailMaxRetry)}
	return c.enqueue(task, append(base, opts...))
}

func (c *Client) enqueue(task *asynq.Task, opts []asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return err
	}
	logger.Debugw("queue_task_enqueued", "type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

// ServerConfig 生成 worker 端配置
func ServerConfig(cfg *config.QueueConfig) asynq.Config {
	out := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{constants.QueueCritical: 6, constants.QueueDefault: 3},
		Logger:      asynqLogger{},
	}
	if cfg == nil {
		return out
	}
	if cfg.Concurrency > 0 {
		out.Concurrency = cfg.Concurrency
	}
	if len(cfg.Queues) > 0 {
		out.Queues = cfg.Queues
	}
	return out
}

// RedisOpt 队列使用的 Redis 连接参数
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := "127.0.0.1", 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}
