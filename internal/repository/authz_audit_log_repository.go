package repository

import (
	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// AuthzAuditLogRepository 角色变更审计，只追加不修改
type AuthzAuditLogRepository interface {
	Create(log *models.AuthzAuditLog) error
	List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error)
}

type GormAuthzAuditLogRepository struct {
	db *gorm.DB
}

func NewAuthzAuditLogRepository(db *gorm.DB) *GormAuthzAuditLogRepository {
	return &GormAuthzAuditLogRepository{db: db}
}

func (r *GormAuthzAuditLogRepository) Create(log *models.AuthzAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 最新的记录在前
func (r *GormAuthzAuditLogRepository) List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	query := r.db.Model(&models.AuthzAuditLog{}).Scopes(
		whereIf(filter.OperatorAdminID != 0, "operator_admin_id = ?", filter.OperatorAdminID),
		whereIf(filter.TargetAdminID != 0, "target_admin_id = ?", filter.TargetAdminID),
		whereIf(filter.Action != "", "action = ?", filter.Action),
		whereIf(filter.CreatedFrom != nil, "created_at >= ?", filter.CreatedFrom),
		whereIf(filter.CreatedTo != nil, "created_at <= ?", filter.CreatedTo),
	)
	return countAndFind[models.AuthzAuditLog](query, filter.Page, filter.PageSize, "id DESC")
}
