package provider

import (
	"errors"
	"fmt"

	"github.com/comissoes-next/internal/authz"
	"github.com/comissoes-next/internal/cache"
	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/queue"
	"github.com/comissoes-next/internal/repository"
	"github.com/comissoes-next/internal/service"

	"gorm.io/gorm"
)

// Container 进程内共享的仓储与服务
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	AdminRepo          repository.AdminRepository
	OrderRepo          repository.OrderRepository
	CommissionRepo     repository.CommissionRepository
	SettlementRepo     repository.SettlementRepository
	SyncJobRepo        repository.SyncJobRepository
	RepresentativeRepo repository.RepresentativeRepository
	CustomerRepo       repository.CustomerRepository
	NotificationRepo   repository.NotificationRepository
	AuthzAuditLogRepo  repository.AuthzAuditLogRepository

	AuthzService          *authz.Service
	AuthzAuditService     *service.AuthzAuditService
	AuthService           *service.AuthService
	EmailService          *service.EmailService
	NotificationService   *service.NotificationService
	CommissionSyncService *service.CommissionSyncService
	SyncJobService        *service.SyncJobService
	ReassignmentService   *service.ReassignmentService
	CommissionService     *service.CommissionService
}

// NewContainer 依赖 models.DB 已初始化。
// Redis 不可用时继续运行，缓存降级为直接查库。
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_redis_unavailable", "error", err)
	}
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("queue client: %w", err)
	}

	c := &Container{Config: cfg, QueueClient: queueClient}
	c.wireRepositories(models.DB)
	if err := c.wireServices(models.DB); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wireRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.SettlementRepo = repository.NewSettlementRepository(db)
	c.SyncJobRepo = repository.NewSyncJobRepository(db)
	c.RepresentativeRepo = repository.NewRepresentativeRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) wireServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		return fmt.Errorf("authz: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("authz bootstrap: %w", err)
	}
	c.AuthzService = authzService

	cfg := c.Config
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.AuthService = service.NewAuthService(&cfg.JWT, c.AdminRepo)
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.AdminRepo, c.EmailService, c.QueueClient)
	c.CommissionSyncService = service.NewCommissionSyncService(cfg.Commission, c.OrderRepo, c.CommissionRepo)
	c.SyncJobService = service.NewSyncJobService(cfg.Commission, c.SyncJobRepo, c.CommissionSyncService, c.NotificationService, c.QueueClient)
	c.ReassignmentService = service.NewReassignmentService(c.OrderRepo, c.CommissionRepo, c.CustomerRepo, c.RepresentativeRepo, c.SettlementRepo)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.SettlementRepo, c.ReassignmentService)
	return nil
}

// Close 释放队列与缓存连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.QueueClient.Close(), cache.Close())
}
